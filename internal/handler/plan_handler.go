package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/petwell/petwell/internal/pkg/errcode"
	"github.com/petwell/petwell/internal/pkg/response"
	"github.com/petwell/petwell/internal/service"
)

type PlanHandler struct {
	plans *service.PlanService
}

func NewPlanHandler(plans *service.PlanService) *PlanHandler {
	return &PlanHandler{plans: plans}
}

type generatePlanRequest struct {
	Force bool `json:"force"`
}

func (h *PlanHandler) Generate(c *gin.Context) {
	var req generatePlanRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, errcode.ErrInvalid, "invalid request")
			return
		}
	}
	result, err := h.plans.Generate(c.Request.Context(), getOwnerID(c), c.Param("id"), req.Force)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *PlanHandler) Get(c *gin.Context) {
	plan, err := h.plans.Get(c.Request.Context(), getOwnerID(c), c.Param("id"), c.Query("week_start"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, plan)
}
