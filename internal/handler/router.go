package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/petwell/petwell/internal/middleware"
)

type RouterDeps struct {
	Documents *DocumentHandler
	Chat      *ChatHandler
	Plans     *PlanHandler
	Pets      *PetHandler
	Knowledge *KnowledgeHandler
	JWTSecret []byte
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	authGroup := api.Group("")
	authGroup.Use(middleware.JWTAuth(deps.JWTSecret))

	authGroup.POST("/documents/upsert", deps.Documents.Upsert)
	authGroup.GET("/search", deps.Documents.Search)

	authGroup.POST("/knowledge/import", deps.Knowledge.Import)

	authGroup.GET("/pets", deps.Pets.List)
	authGroup.GET("/pets/:id/profile", deps.Pets.Profile)
	authGroup.GET("/pets/:id/nearby", deps.Pets.Nearby)
	authGroup.GET("/pets/:id/plan", deps.Plans.Get)

	// Model-backed endpoints get a per-owner rate limit.
	aiGroup := authGroup.Group("")
	aiGroup.Use(middleware.RateLimit(2 * time.Second))
	aiGroup.POST("/chat", deps.Chat.Converse)
	aiGroup.POST("/pets/:id/plan/generate", deps.Plans.Generate)
}
