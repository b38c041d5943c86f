package service

import (
	"context"
	"fmt"

	"github.com/songforge/api/internal/genre"
	"github.com/songforge/api/internal/model"
	"github.com/songforge/api/internal/orchestrator"
)

// LyricsService handles standalone lyrics generation and the system
// prompt overrides.
type LyricsService struct {
	orch *orchestrator.Orchestrator
}

func NewLyricsService(orch *orchestrator.Orchestrator) *LyricsService {
	return &LyricsService{orch: orch}
}

// Generate produces lyrics for a prompt without queueing a track.
// Genre extraction failures are non-fatal; the suggestion is simply
// omitted.
func (s *LyricsService) Generate(ctx context.Context, req *model.LyricsGenerateRequest) (*model.LyricsGenerateResponse, error) {
	provider := s.orch.CurrentProvider()
	if provider == nil {
		return nil, ErrNoProvider
	}

	lyrics, err := provider.GenerateLyrics(ctx, req.Prompt, s.orch.PromptFiles().Lyrics())
	if err != nil {
		return nil, fmt.Errorf("lyrics generation failed: %w", err)
	}

	resp := &model.LyricsGenerateResponse{
		Lyrics:   lyrics,
		Provider: provider.Name(),
	}

	if raw, err := provider.ExtractGenre(ctx, req.Prompt, s.orch.PromptFiles().Genre()); err == nil {
		resp.SuggestedGenre = genre.Match(raw)
	}

	return resp, nil
}

// LyricsPrompt returns the current lyrics system prompt override.
func (s *LyricsService) LyricsPrompt() *model.PromptResponse {
	return &model.PromptResponse{
		Prompt:   s.orch.PromptFiles().Lyrics(),
		Provider: s.orch.Provider(),
	}
}

// UpdateLyricsPrompt replaces the lyrics system prompt override.
func (s *LyricsService) UpdateLyricsPrompt(prompt string) error {
	return s.orch.PromptFiles().WriteLyrics(prompt)
}

// GenrePrompt returns the current genre extraction prompt override.
func (s *LyricsService) GenrePrompt() *model.PromptResponse {
	return &model.PromptResponse{
		Prompt:   s.orch.PromptFiles().Genre(),
		Provider: s.orch.Provider(),
	}
}

// UpdateGenrePrompt replaces the genre extraction prompt override.
func (s *LyricsService) UpdateGenrePrompt(prompt string) error {
	return s.orch.PromptFiles().WriteGenre(prompt)
}
