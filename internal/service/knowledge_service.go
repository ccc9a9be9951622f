package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/petwell/petwell/internal/ai"
	"github.com/petwell/petwell/internal/model"
	appErr "github.com/petwell/petwell/internal/pkg/errors"
)

// KnowledgeService imports reference articles into the shared corpus.
// Chunk ids are derived from the source name, so re-importing an updated
// article overwrites its old chunks.
type KnowledgeService struct {
	chunker   *ai.Chunker
	documents *DocumentService
}

func NewKnowledgeService(chunker *ai.Chunker, documents *DocumentService) *KnowledgeService {
	return &KnowledgeService{chunker: chunker, documents: documents}
}

func (s *KnowledgeService) ImportMarkdown(ctx context.Context, source, markdown string) (int, error) {
	source = strings.TrimSpace(source)
	if source == "" || strings.TrimSpace(markdown) == "" {
		return 0, appErr.ErrInvalid
	}
	chunks := s.chunker.Chunk(ctx, markdown)
	if len(chunks) == 0 {
		return 0, appErr.ErrInvalid
	}
	inputs := make([]DocumentInput, 0, len(chunks))
	for _, chunk := range chunks {
		inputs = append(inputs, DocumentInput{
			ID:      fmt.Sprintf("kb:%s:%d", source, chunk.Position),
			DocType: model.DocTypeKnowledge,
			Content: chunk.Content,
			Metadata: map[string]string{
				"source":  source,
				"heading": chunk.Heading,
			},
		})
	}
	count, err := s.documents.Upsert(ctx, model.OwnerShared, model.CorpusShared, inputs)
	if err != nil {
		return 0, err
	}
	logutil.GetLogger(ctx).Info("knowledge imported",
		zap.String("source", source),
		zap.Int("chunks", count),
	)
	return count, nil
}
