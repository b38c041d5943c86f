package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/songforge/api/internal/client"
	"github.com/songforge/api/internal/config"
	"github.com/songforge/api/internal/model"
	"github.com/songforge/api/internal/orchestrator"
	"github.com/songforge/api/pkg/response"
)

type ProviderHandler struct {
	orch      *orchestrator.Orchestrator
	lyricsCfg *config.LyricsConfig
	validator *validator.Validate
}

func NewProviderHandler(orch *orchestrator.Orchestrator, lyricsCfg *config.LyricsConfig, v *validator.Validate) *ProviderHandler {
	return &ProviderHandler{
		orch:      orch,
		lyricsCfg: lyricsCfg,
		validator: v,
	}
}

// Get handles GET /api/provider
func (h *ProviderHandler) Get(c *fiber.Ctx) error {
	return response.OK(c, model.ProviderResponse{
		Provider:  h.orch.Provider(),
		Available: client.AvailableProviders(h.lyricsCfg),
	})
}

// Set handles POST /api/provider
func (h *ProviderHandler) Set(c *fiber.Ctx) error {
	var req model.SetProviderRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	if err := h.orch.SwapProvider(req.Provider); err != nil {
		return response.ValidationError(c, err.Error(), nil)
	}

	return response.OK(c, model.ProviderResponse{
		Provider:  h.orch.Provider(),
		Available: client.AvailableProviders(h.lyricsCfg),
	})
}
