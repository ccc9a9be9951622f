package service

import (
	"context"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/petwell/petwell/internal/ai"
	"github.com/petwell/petwell/internal/model"
	"github.com/petwell/petwell/internal/repo"
	appErr "github.com/petwell/petwell/internal/pkg/errors"
)

const maxSearchTopK = 50

// RetrievalService is the ranked read path: embed the query, run one KNN
// search per corpus, blend the two ranked lists under the slot quota.
type RetrievalService struct {
	manager  *ai.Manager
	docs     *repo.DocumentRepo
	services *repo.ServiceLocationRepo
	topK     int
	budget   int
}

func NewRetrievalService(manager *ai.Manager, docs *repo.DocumentRepo, services *repo.ServiceLocationRepo, topK, contextBudget int) *RetrievalService {
	if topK <= 0 {
		topK = 6
	}
	if contextBudget <= 0 {
		contextBudget = 8000
	}
	return &RetrievalService{
		manager:  manager,
		docs:     docs,
		services: services,
		topK:     topK,
		budget:   contextBudget,
	}
}

type SearchInput struct {
	OwnerID  string
	Query    string
	PetID    string
	DocTypes []string
	TopK     int
}

func (s *RetrievalService) Search(ctx context.Context, in SearchInput) ([]model.ScoredDocument, error) {
	if strings.TrimSpace(in.OwnerID) == "" || strings.TrimSpace(in.Query) == "" {
		return nil, appErr.ErrInvalid
	}
	k := in.TopK
	if k <= 0 {
		k = s.topK
	}
	if k > maxSearchTopK {
		k = maxSearchTopK
	}
	logger := logutil.GetLogger(ctx).With(zap.String("owner_id", in.OwnerID), zap.Int("top_k", k))

	queryVec, err := s.manager.Embed(ctx, in.Query, "RETRIEVAL_QUERY")
	if err != nil {
		logger.Error("failed to embed search query", zap.Error(err))
		return nil, appErr.ErrAIUnavailable
	}

	personal, err := s.docs.SearchVectors(ctx, model.CorpusPersonal, queryVec, repo.DocumentFilter{
		OwnerID:  in.OwnerID,
		PetID:    in.PetID,
		DocTypes: in.DocTypes,
	}, k)
	if err != nil {
		logger.Error("personal corpus search failed", zap.Error(err))
		return nil, err
	}
	shared, err := s.docs.SearchVectors(ctx, model.CorpusShared, queryVec, repo.DocumentFilter{
		DocTypes: in.DocTypes,
	}, k)
	if err != nil {
		logger.Error("shared corpus search failed", zap.Error(err))
		return nil, err
	}

	blended := Blend(personal, shared, k)
	logger.Debug("search blended",
		zap.Int("personal", len(personal)),
		zap.Int("shared", len(shared)),
		zap.Int("result", len(blended)),
	)
	return blended, nil
}

// NearbyServices geo-ranks the service catalog around the given point.
func (s *RetrievalService) NearbyServices(ctx context.Context, lat, lng float64, category string, limit int) ([]model.RankedService, error) {
	services, err := s.services.List(ctx, category)
	if err != nil {
		return nil, err
	}
	return RankByDistance(services, lat, lng, limit), nil
}

func (s *RetrievalService) ContextBudget() int {
	return s.budget
}
