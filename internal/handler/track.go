package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/songforge/api/internal/genre"
	"github.com/songforge/api/internal/model"
	"github.com/songforge/api/internal/orchestrator"
	"github.com/songforge/api/internal/queue"
	"github.com/songforge/api/internal/service"
	"github.com/songforge/api/pkg/response"
)

type TrackHandler struct {
	service   *service.TrackService
	validator *validator.Validate
}

func NewTrackHandler(svc *service.TrackService, v *validator.Validate) *TrackHandler {
	return &TrackHandler{
		service:   svc,
		validator: v,
	}
}

// Submit handles POST /api/tracks
func (h *TrackHandler) Submit(c *fiber.Ctx) error {
	var req model.SubmitTrackRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.Submit(c.Context(), &req)
	if err != nil {
		if errors.Is(err, queue.ErrFull) {
			return response.ServiceUnavailable(c, "Queue is full, try again later")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.Accepted(c, result)
}

// SubmitFromPrompt handles POST /api/tracks/from-prompt
func (h *TrackHandler) SubmitFromPrompt(c *fiber.Ctx) error {
	var req model.SubmitPromptRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.SubmitFromPrompt(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrNoProvider) {
			return response.ServiceUnavailable(c, "No lyrics provider configured")
		}
		if errors.Is(err, queue.ErrFull) {
			return response.ServiceUnavailable(c, "Queue is full, try again later")
		}
		return response.ProviderError(c, err.Error())
	}

	return response.Accepted(c, result)
}

// SubmitWithGenres handles POST /api/tracks/with-genres
func (h *TrackHandler) SubmitWithGenres(c *fiber.Ctx) error {
	var req model.SubmitWithGenresRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.SubmitWithGenres(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrNoProvider) {
			return response.ServiceUnavailable(c, "No lyrics provider configured")
		}
		if errors.Is(err, queue.ErrFull) {
			return response.ServiceUnavailable(c, "Queue is full, try again later")
		}
		return response.ProviderError(c, err.Error())
	}

	return response.Accepted(c, result)
}

// Genres handles GET /api/genres
func (h *TrackHandler) Genres(c *fiber.Ctx) error {
	return response.OK(c, fiber.Map{"genres": genre.All()})
}

// Status handles GET /api/tracks/:id
func (h *TrackHandler) Status(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return response.ValidationError(c, "Track ID is required", nil)
	}

	result, err := h.service.Status(id)
	if err != nil {
		if service.IsNotFound(err) {
			return response.NotFound(c, "Track not found")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, result)
}

// Download handles GET /api/tracks/:id/download
func (h *TrackHandler) Download(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return response.ValidationError(c, "Track ID is required", nil)
	}

	artifactType := c.Query("type", model.ArtifactAudio)

	loc, err := h.service.ResolveArtifact(c.Context(), id, artifactType)
	if err != nil {
		if service.IsNotFound(err) {
			return response.NotFound(c, "Track not found")
		}
		if errors.Is(err, service.ErrNotReady) {
			return response.NotFound(c, "Track is not ready yet")
		}
		if errors.Is(err, service.ErrNoArtifact) {
			return response.NotFound(c, "Artifact not found")
		}
		return response.ServiceError(c, err.Error())
	}

	if loc.URL != "" {
		return c.Redirect(loc.URL, fiber.StatusFound)
	}
	return c.SendFile(loc.LocalPath)
}

// Repair handles POST /api/tracks/:id/repair
func (h *TrackHandler) Repair(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return response.ValidationError(c, "Track ID is required", nil)
	}

	result, err := h.service.Repair(id)
	if err != nil {
		if service.IsNotFound(err) {
			return response.NotFound(c, "Track not found")
		}
		if errors.Is(err, orchestrator.ErrNotComplete) {
			return response.ValidationError(c, "Track is not complete", nil)
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, result)
}
