package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/petwell/petwell/internal/ai"
	"github.com/petwell/petwell/internal/model"
	"github.com/petwell/petwell/internal/repo"
	appErr "github.com/petwell/petwell/internal/pkg/errors"
)

// DocumentService is the ingestion boundary. Every producer of personal or
// shared content lands here: chat transcripts, vaccination and vision notes,
// imported knowledge chunks, derived plan summaries.
type DocumentService struct {
	docs    *repo.DocumentRepo
	manager *ai.Manager
}

func NewDocumentService(docs *repo.DocumentRepo, manager *ai.Manager) *DocumentService {
	return &DocumentService{docs: docs, manager: manager}
}

type DocumentInput struct {
	ID       string            `json:"id,omitempty"`
	PetID    string            `json:"pet_id,omitempty"`
	DocType  string            `json:"doc_type"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Upsert embeds and writes a batch into one corpus. Inputs without an id get
// a generated one; repeated ids overwrite in place. An empty batch is a
// zero no-op.
func (s *DocumentService) Upsert(ctx context.Context, ownerID string, corpus model.Corpus, inputs []DocumentInput) (int, error) {
	if len(inputs) == 0 {
		return 0, nil
	}
	if corpus == model.CorpusPersonal && strings.TrimSpace(ownerID) == "" {
		return 0, appErr.ErrInvalid
	}
	logger := logutil.GetLogger(ctx).With(zap.String("owner_id", ownerID), zap.String("corpus", string(corpus)))

	now := time.Now().UnixMilli()
	docs := make([]model.Document, 0, len(inputs))
	for _, in := range inputs {
		content := strings.TrimSpace(in.Content)
		if content == "" || strings.TrimSpace(in.DocType) == "" {
			return 0, appErr.ErrInvalid
		}
		if max := s.manager.MaxInputChars(); max > 0 && len(content) > max {
			return 0, appErr.ErrInvalid
		}
		id := strings.TrimSpace(in.ID)
		if id == "" {
			id = uuid.NewString()
		}
		owner := ownerID
		if corpus == model.CorpusShared {
			owner = model.OwnerShared
		}
		embedding, err := s.manager.Embed(ctx, content, "RETRIEVAL_DOCUMENT")
		if err != nil {
			logger.Error("failed to embed document", zap.String("doc_id", id), zap.Error(err))
			return 0, appErr.ErrAIUnavailable
		}
		docs = append(docs, model.Document{
			ID:        id,
			OwnerID:   owner,
			PetID:     in.PetID,
			DocType:   in.DocType,
			Content:   content,
			Metadata:  in.Metadata,
			Embedding: embedding,
			Ctime:     now,
			Mtime:     now,
		})
	}
	inserted, err := s.docs.Upsert(ctx, corpus, docs)
	if err != nil {
		logger.Error("document upsert failed", zap.Error(err))
		return 0, err
	}
	logger.Info("documents upserted", zap.Int("count", inserted))
	return inserted, nil
}

// Query is the auxiliary non-ranked read used by maintenance endpoints.
func (s *DocumentService) Query(ctx context.Context, corpus model.Corpus, filter repo.DocumentFilter) ([]model.Document, error) {
	return s.docs.Query(ctx, corpus, filter)
}
