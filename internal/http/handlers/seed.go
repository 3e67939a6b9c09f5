package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/catalog-backend/internal/http/response"
	"github.com/yungbote/catalog-backend/internal/services"
)

type SeedHandler struct {
	seed services.SeedService
}

func NewSeedHandler(seed services.SeedService) *SeedHandler {
	return &SeedHandler{seed: seed}
}

// GET /seed
func (h *SeedHandler) ExecuteSeed(c *gin.Context) {
	msg, err := h.seed.RunSeed(c.Request.Context())
	if err != nil {
		respondServiceError(c, "seed_failed", err)
		return
	}
	response.RespondMessage(c, msg)
}
