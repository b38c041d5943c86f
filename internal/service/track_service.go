package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/songforge/api/internal/client"
	"github.com/songforge/api/internal/genre"
	"github.com/songforge/api/internal/model"
	"github.com/songforge/api/internal/orchestrator"
	"github.com/songforge/api/internal/store"
)

var (
	// ErrNoProvider is returned when an operation needs a lyrics
	// provider and none is configured.
	ErrNoProvider = errors.New("no lyrics provider configured")

	// ErrNotReady is returned when artifacts are requested for a job
	// that has not completed.
	ErrNotReady = errors.New("track is not ready")

	// ErrNoArtifact is returned when the requested artifact type is
	// not in the job's manifest.
	ErrNoArtifact = errors.New("artifact not found")
)

const signedURLExpiry = 1 * time.Hour

// ArtifactLocation tells the handler how to serve an artifact:
// exactly one of URL or LocalPath is set.
type ArtifactLocation struct {
	URL       string
	LocalPath string
}

// TrackService handles track submission and retrieval on top of the
// orchestrator.
type TrackService struct {
	orch    *orchestrator.Orchestrator
	storage client.StorageClient
}

func NewTrackService(orch *orchestrator.Orchestrator, storage client.StorageClient) *TrackService {
	return &TrackService{orch: orch, storage: storage}
}

// Submit queues a track request that already carries lyrics and a genre.
func (s *TrackService) Submit(ctx context.Context, req *model.SubmitTrackRequest) (*model.SubmitTrackResponse, error) {
	job, pos, wait, err := s.orch.Submit(model.TrackRequest{
		Genre:  req.Genre,
		Lyrics: req.Lyrics,
		Params: req.Params,
	}, orchestrator.SubmitMeta{})
	if err != nil {
		return nil, err
	}

	return &model.SubmitTrackResponse{
		RequestID:            job.ID,
		Status:               job.Status,
		QueuePosition:        pos,
		EstimatedWaitSeconds: wait,
	}, nil
}

// SubmitFromPrompt generates lyrics and a genre from a free-text
// prompt, then queues the track. Lyrics generation happens before the
// job is created so the caller gets the lyrics back in the response.
func (s *TrackService) SubmitFromPrompt(ctx context.Context, req *model.SubmitPromptRequest) (*model.SubmitTrackResponse, error) {
	provider := s.orch.CurrentProvider()
	if provider == nil {
		return nil, ErrNoProvider
	}

	lyrics, err := provider.GenerateLyrics(ctx, req.Prompt, s.orch.PromptFiles().Lyrics())
	if err != nil {
		return nil, fmt.Errorf("lyrics generation failed: %w", err)
	}

	raw, err := provider.ExtractGenre(ctx, req.Prompt, s.orch.PromptFiles().Genre())
	if err != nil {
		return nil, fmt.Errorf("genre extraction failed: %w", err)
	}
	matched := genre.Match(raw)

	job, pos, wait, err := s.orch.Submit(model.TrackRequest{
		Genre:  matched,
		Lyrics: lyrics,
		Prompt: req.Prompt,
		Params: req.Params,
	}, orchestrator.SubmitMeta{
		Provider: provider.Name(),
		Genres:   []string{matched},
	})
	if err != nil {
		return nil, err
	}

	return &model.SubmitTrackResponse{
		RequestID:            job.ID,
		Status:               job.Status,
		QueuePosition:        pos,
		EstimatedWaitSeconds: wait,
		Provider:             job.Provider,
		Lyrics:               lyrics,
		Genres:               job.Genres,
	}, nil
}

// SubmitWithGenres queues a track generated from a prompt plus an
// optional genre list. Genres the matcher cannot place are dropped;
// when none survive (or none were given) the provider infers them
// from the prompt.
func (s *TrackService) SubmitWithGenres(ctx context.Context, req *model.SubmitWithGenresRequest) (*model.SubmitTrackResponse, error) {
	provider := s.orch.CurrentProvider()
	if provider == nil {
		return nil, ErrNoProvider
	}

	genres := genre.MatchMany(req.Genres)
	inferred := false
	if len(req.Genres) == 0 || (len(genres) == 1 && genres[0] == genre.Fallback && !hasValidCandidate(req.Genres)) {
		raw, err := provider.InferGenres(ctx, req.Prompt)
		if err != nil {
			return nil, fmt.Errorf("genre inference failed: %w", err)
		}
		genres = genre.MatchMany(raw)
		inferred = true
	}

	lyrics, err := provider.GenerateLyricsWithGenres(ctx, req.Prompt, genres)
	if err != nil {
		return nil, fmt.Errorf("lyrics generation failed: %w", err)
	}

	job, pos, wait, err := s.orch.Submit(model.TrackRequest{
		Genre:  genres[0],
		Lyrics: lyrics,
		Prompt: req.Prompt,
		Params: req.Params,
	}, orchestrator.SubmitMeta{
		Provider:       provider.Name(),
		Genres:         genres,
		GenresInferred: inferred,
	})
	if err != nil {
		return nil, err
	}

	return &model.SubmitTrackResponse{
		RequestID:            job.ID,
		Status:               job.Status,
		QueuePosition:        pos,
		EstimatedWaitSeconds: wait,
		Provider:             job.Provider,
		Lyrics:               lyrics,
		Genres:               job.Genres,
		GenresInferred:       job.GenresInferred,
	}, nil
}

// Status returns the full projection for a job.
func (s *TrackService) Status(id string) (*model.TrackStatusResponse, error) {
	return s.orch.Status(id)
}

// Repair rebuilds a completed job's artifact manifest from disk.
func (s *TrackService) Repair(id string) (*model.RepairResponse, error) {
	job, err := s.orch.Repair(id)
	if err != nil {
		return nil, err
	}
	return &model.RepairResponse{
		RequestID: job.ID,
		Repaired:  true,
		Manifest:  job.Manifest,
	}, nil
}

// ResolveArtifact locates an artifact for download. Remote artifacts
// resolve to a signed URL, local ones to a file path.
func (s *TrackService) ResolveArtifact(ctx context.Context, id, artifactType string) (*ArtifactLocation, error) {
	job, err := s.orch.Get(id)
	if err != nil {
		return nil, err
	}
	if job.Status != model.JobStatusComplete {
		return nil, ErrNotReady
	}

	art, ok := job.Manifest[artifactType]
	if !ok {
		return nil, ErrNoArtifact
	}

	if art.RemoteKey != "" && s.storage != nil && s.storage.IsConfigured() {
		url, err := s.storage.GetSignedURL(ctx, art.RemoteKey, signedURLExpiry)
		if err != nil {
			return nil, fmt.Errorf("failed to sign download url: %w", err)
		}
		return &ArtifactLocation{URL: url}, nil
	}

	if art.LocalPath == "" {
		return nil, ErrNoArtifact
	}
	return &ArtifactLocation{LocalPath: art.LocalPath}, nil
}

// hasValidCandidate reports whether the caller named at least one
// vocabulary genre verbatim. An explicit choice of the fallback genre
// must not trigger inference.
func hasValidCandidate(candidates []string) bool {
	for _, c := range candidates {
		if genre.Valid(strings.TrimSpace(c)) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err means the job does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
