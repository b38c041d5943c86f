package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/songforge/api/internal/model"
	"github.com/songforge/api/internal/service"
	"github.com/songforge/api/pkg/response"
)

type PromptHandler struct {
	service   *service.LyricsService
	validator *validator.Validate
}

func NewPromptHandler(svc *service.LyricsService, v *validator.Validate) *PromptHandler {
	return &PromptHandler{
		service:   svc,
		validator: v,
	}
}

// GetLyricsPrompt handles GET /api/prompts/lyrics
func (h *PromptHandler) GetLyricsPrompt(c *fiber.Ctx) error {
	return response.OK(c, h.service.LyricsPrompt())
}

// UpdateLyricsPrompt handles PUT /api/prompts/lyrics
func (h *PromptHandler) UpdateLyricsPrompt(c *fiber.Ctx) error {
	var req model.UpdatePromptRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	if err := h.service.UpdateLyricsPrompt(req.Prompt); err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, h.service.LyricsPrompt())
}

// GetGenrePrompt handles GET /api/prompts/genre
func (h *PromptHandler) GetGenrePrompt(c *fiber.Ctx) error {
	return response.OK(c, h.service.GenrePrompt())
}

// UpdateGenrePrompt handles PUT /api/prompts/genre
func (h *PromptHandler) UpdateGenrePrompt(c *fiber.Ctx) error {
	var req model.UpdatePromptRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	if err := h.service.UpdateGenrePrompt(req.Prompt); err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, h.service.GenrePrompt())
}
