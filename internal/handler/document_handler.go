package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/petwell/petwell/internal/model"
	"github.com/petwell/petwell/internal/pkg/errcode"
	"github.com/petwell/petwell/internal/pkg/response"
	"github.com/petwell/petwell/internal/service"
)

type DocumentHandler struct {
	documents *service.DocumentService
	retrieval *service.RetrievalService
}

func NewDocumentHandler(documents *service.DocumentService, retrieval *service.RetrievalService) *DocumentHandler {
	return &DocumentHandler{documents: documents, retrieval: retrieval}
}

type upsertRequest struct {
	Corpus    string                  `json:"corpus"`
	Documents []service.DocumentInput `json:"documents"`
}

func (h *DocumentHandler) Upsert(c *gin.Context) {
	var req upsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	corpus := model.Corpus(req.Corpus)
	if corpus == "" {
		corpus = model.CorpusPersonal
	}
	if corpus != model.CorpusPersonal && corpus != model.CorpusShared {
		response.Error(c, errcode.ErrInvalid, "invalid corpus")
		return
	}
	inserted, err := h.documents.Upsert(c.Request.Context(), getOwnerID(c), corpus, req.Documents)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"inserted_count": inserted})
}

func (h *DocumentHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		response.Error(c, errcode.ErrInvalid, "query required")
		return
	}
	topK := 0
	if raw := c.Query("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.Error(c, errcode.ErrInvalid, "invalid k")
			return
		}
		topK = n
	}
	var docTypes []string
	if raw := c.Query("doc_types"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				docTypes = append(docTypes, trimmed)
			}
		}
	}
	results, err := h.retrieval.Search(c.Request.Context(), service.SearchInput{
		OwnerID:  getOwnerID(c),
		Query:    query,
		PetID:    c.Query("pet_id"),
		DocTypes: docTypes,
		TopK:     topK,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	if results == nil {
		results = []model.ScoredDocument{}
	}
	response.Success(c, gin.H{"count": len(results), "results": results})
}
