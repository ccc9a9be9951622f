package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/petwell/petwell/internal/repo"
	"github.com/petwell/petwell/internal/pkg/errcode"
	"github.com/petwell/petwell/internal/pkg/response"
	"github.com/petwell/petwell/internal/service"
)

type PetHandler struct {
	pets      *repo.PetRepo
	retrieval *service.RetrievalService
}

func NewPetHandler(pets *repo.PetRepo, retrieval *service.RetrievalService) *PetHandler {
	return &PetHandler{pets: pets, retrieval: retrieval}
}

func (h *PetHandler) List(c *gin.Context) {
	pets, err := h.pets.ListByOwner(c.Request.Context(), getOwnerID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"count": len(pets), "pets": pets})
}

func (h *PetHandler) Profile(c *gin.Context) {
	profile, err := h.pets.GetProfile(c.Request.Context(), getOwnerID(c), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, profile)
}

func (h *PetHandler) Nearby(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lng, err2 := strconv.ParseFloat(c.Query("lng"), 64)
	if err1 != nil || err2 != nil {
		response.Error(c, errcode.ErrInvalid, "lat and lng required")
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, errcode.ErrInvalid, "invalid limit")
			return
		}
		limit = n
	}
	services, err := h.retrieval.NearbyServices(c.Request.Context(), lat, lng, c.Query("category"), limit)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"count": len(services), "services": services})
}
