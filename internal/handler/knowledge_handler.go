package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/petwell/petwell/internal/pkg/errcode"
	"github.com/petwell/petwell/internal/pkg/response"
	"github.com/petwell/petwell/internal/service"
)

type KnowledgeHandler struct {
	knowledge *service.KnowledgeService
}

func NewKnowledgeHandler(knowledge *service.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{knowledge: knowledge}
}

type importRequest struct {
	Source   string `json:"source"`
	Markdown string `json:"markdown"`
}

func (h *KnowledgeHandler) Import(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	chunks, err := h.knowledge.ImportMarkdown(c.Request.Context(), req.Source, req.Markdown)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"chunks": chunks})
}
