package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/petwell/petwell/internal/pkg/errcode"
	"github.com/petwell/petwell/internal/pkg/response"
	"github.com/petwell/petwell/internal/service"
)

type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type chatRequest struct {
	ThreadID string   `json:"thread_id"`
	PetID    string   `json:"pet_id"`
	Message  string   `json:"message"`
	TopK     int      `json:"top_k"`
	DocTypes []string `json:"doc_types"`
	Lat      *float64 `json:"lat"`
	Lng      *float64 `json:"lng"`
}

func (h *ChatHandler) Converse(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	reply, err := h.chat.Converse(c.Request.Context(), service.ConverseInput{
		Binding: service.Binding{
			OwnerID:  getOwnerID(c),
			PetID:    req.PetID,
			TopK:     req.TopK,
			DocTypes: req.DocTypes,
			Lat:      req.Lat,
			Lng:      req.Lng,
		},
		ThreadID: req.ThreadID,
		Message:  req.Message,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"thread_id": req.ThreadID, "reply": reply})
}
