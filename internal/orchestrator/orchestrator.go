// Package orchestrator owns the job state machine: it pulls submitted
// jobs off the queue one at a time and drives each through lyrics
// generation, audio inference, and artifact upload, persisting every
// transition.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/songforge/api/internal/client"
	"github.com/songforge/api/internal/config"
	"github.com/songforge/api/internal/engine"
	"github.com/songforge/api/internal/genre"
	"github.com/songforge/api/internal/model"
	"github.com/songforge/api/internal/prompts"
	"github.com/songforge/api/internal/queue"
	"github.com/songforge/api/internal/store"
	ws "github.com/songforge/api/internal/websocket"
)

const (
	genreFileName  = "genre.txt"
	lyricsFileName = "lyrics.txt"
)

// Provider is the lyrics-generation capability the worker calls out
// to. Swappable at runtime.
type Provider interface {
	Name() string
	GenerateLyrics(ctx context.Context, prompt, systemPrompt string) (string, error)
	ExtractGenre(ctx context.Context, prompt, extra string) (string, error)
	InferGenres(ctx context.Context, prompt string) ([]string, error)
	GenerateLyricsWithGenres(ctx context.Context, prompt string, genres []string) (string, error)
}

// SubmitMeta carries provenance recorded on the job at submission.
type SubmitMeta struct {
	Provider       string
	Genres         []string
	GenresInferred bool
}

// Orchestrator serializes job processing through a single worker and
// owns every job mutation after submission.
type Orchestrator struct {
	queue   *queue.Queue
	store   *store.Store
	engine  engine.Runner
	storage client.StorageClient
	hub     *ws.Hub
	prompts *prompts.Files

	outputBase     string
	perJobEstimate int // seconds per queued job, static estimate
	lyricsCfg      *config.LyricsConfig

	mu       sync.RWMutex
	provider Provider
}

// New wires the orchestrator. storage and hub may be nil; provider
// may be nil when no backend is configured (prompt-based submissions
// then fail at the lyrics stage, explicit-lyrics jobs still work).
func New(
	q *queue.Queue,
	st *store.Store,
	eng engine.Runner,
	storage client.StorageClient,
	hub *ws.Hub,
	promptFiles *prompts.Files,
	provider Provider,
	cfg *config.Config,
) *Orchestrator {
	return &Orchestrator{
		queue:          q,
		store:          st,
		engine:         eng,
		storage:        storage,
		hub:            hub,
		prompts:        promptFiles,
		outputBase:     cfg.Engine.OutputDir,
		perJobEstimate: cfg.Queue.PerJobEstimateSeconds,
		lyricsCfg:      &cfg.Lyrics,
		provider:       provider,
	}
}

// Provider returns the active lyrics provider's name, or "".
func (o *Orchestrator) Provider() string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.provider == nil {
		return ""
	}
	return o.provider.Name()
}

// CurrentProvider returns the active provider for synchronous use by
// the submission flows.
func (o *Orchestrator) CurrentProvider() Provider {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.provider
}

// SwapProvider switches the lyrics backend at runtime. The new
// provider is validated (constructed and configured) before the swap;
// in-flight jobs keep the provider they started with.
func (o *Orchestrator) SwapProvider(name string) error {
	p, err := client.NewLyricsProvider(name, o.lyricsCfg)
	if err != nil {
		return err
	}

	o.mu.Lock()
	o.provider = p
	o.mu.Unlock()
	log.Printf("Lyrics provider switched to %s", name)
	return nil
}

// SetProvider injects a provider directly (tests, custom wiring).
func (o *Orchestrator) SetProvider(p Provider) {
	o.mu.Lock()
	o.provider = p
	o.mu.Unlock()
}

// PromptFiles exposes the prompt override files.
func (o *Orchestrator) PromptFiles() *prompts.Files {
	return o.prompts
}

// Submit creates a job in QUEUED state, persists it, and enqueues it
// as one logical step. Returns the job plus its queue position and
// estimated wait.
func (o *Orchestrator) Submit(req model.TrackRequest, meta SubmitMeta) (*model.Job, int, int, error) {
	job := &model.Job{
		ID:             uuid.New().String(),
		Status:         model.JobStatusQueued,
		Input:          req,
		Provider:       meta.Provider,
		Genres:         meta.Genres,
		GenresInferred: meta.GenresInferred,
		SubmittedAt:    time.Now(),
	}

	if err := o.store.Put(job); err != nil {
		return nil, 0, 0, fmt.Errorf("failed to save job: %w", err)
	}

	pos, err := o.queue.Enqueue(job.ID)
	if err != nil {
		msg := err.Error()
		now := time.Now()
		_, _ = o.store.Update(job.ID, func(j *model.Job) {
			j.Status = model.JobStatusError
			j.Error = &msg
			j.CompletedAt = &now
		})
		return nil, 0, 0, err
	}

	return job, pos, pos * o.perJobEstimate, nil
}

// Status builds the full job projection, recomputing queue position
// from the live queue while the job is still pending.
func (o *Orchestrator) Status(id string) (*model.TrackStatusResponse, error) {
	job, err := o.store.Get(id)
	if err != nil {
		return nil, err
	}

	resp := &model.TrackStatusResponse{
		RequestID:      job.ID,
		Status:         job.Status,
		Manifest:       job.Manifest,
		Error:          job.Error,
		Provider:       job.Provider,
		Genres:         job.Genres,
		GenresInferred: job.GenresInferred,
		SubmittedAt:    job.SubmittedAt,
		StartedAt:      job.StartedAt,
		CompletedAt:    job.CompletedAt,
	}

	if job.Status == model.JobStatusQueued {
		if pos := o.queue.Position(id); pos >= 0 {
			eta := pos * o.perJobEstimate
			resp.QueuePosition = &pos
			resp.EstimatedWaitSeconds = &eta
		}
	}

	return resp, nil
}

// Get returns a copy of the raw job record.
func (o *Orchestrator) Get(id string) (*model.Job, error) {
	return o.store.Get(id)
}

// QueueDepth returns the number of pending jobs.
func (o *Orchestrator) QueueDepth() int {
	return o.queue.Len()
}

// Run is the single worker loop. It blocks until ctx is canceled.
// Jobs are processed strictly in submission order; at most one job is
// ever past PROCESSING at a time.
func (o *Orchestrator) Run(ctx context.Context) {
	for {
		id, err := o.queue.Dequeue(ctx)
		if err != nil {
			return
		}
		o.process(ctx, id)
	}
}

func (o *Orchestrator) process(ctx context.Context, id string) {
	log.Printf("Processing job %s", id)

	job, err := o.setStatus(id, model.JobStatusProcessing, func(j *model.Job) {
		now := time.Now()
		j.StartedAt = &now
	})
	if err != nil {
		log.Printf("Failed to start job %s: %v", id, err)
		return
	}

	outputDir := filepath.Join(o.outputBase, id)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		o.fail(id, fmt.Sprintf("failed to create output directory: %v", err))
		return
	}

	// Lyrics stage, skipped when the submission carried lyrics.
	if !job.Input.HasLyrics() {
		job, err = o.generateLyrics(ctx, id, job)
		if err != nil {
			o.fail(id, err.Error())
			return
		}
	}

	// Audio stage: normalize the genre, write the scratch files, run
	// the inference process. Jobs that carried a normalized genre
	// list use it verbatim.
	matched := strings.Join(job.Genres, " ")
	if matched == "" {
		matched = genre.Match(job.Input.Genre)
	}
	genrePath := filepath.Join(outputDir, genreFileName)
	lyricsPath := filepath.Join(outputDir, lyricsFileName)
	if err := os.WriteFile(genrePath, []byte(matched), 0o644); err != nil {
		o.fail(id, fmt.Sprintf("failed to write genre file: %v", err))
		return
	}
	if err := os.WriteFile(lyricsPath, []byte(job.Input.Lyrics), 0o644); err != nil {
		o.fail(id, fmt.Sprintf("failed to write lyrics file: %v", err))
		return
	}

	if _, err := o.setStatus(id, model.JobStatusGeneratingAudio, nil); err != nil {
		log.Printf("Failed to update job %s: %v", id, err)
		return
	}

	renderErr := o.engine.Render(ctx, engine.RenderInput{
		GenreFile:  genrePath,
		LyricsFile: lyricsPath,
		OutputDir:  outputDir,
		Params:     job.Input.Params,
	})

	// A failed exit and a clean exit with no output are the same
	// failure as far as the caller is concerned.
	manifest, discErr := DiscoverArtifacts(outputDir)
	if renderErr != nil {
		o.fail(id, fmt.Sprintf("audio generation failed: %v", renderErr))
		return
	}
	if discErr != nil {
		o.fail(id, "no result files found in output directory")
		return
	}

	for name, art := range scratchArtifacts(outputDir) {
		manifest[name] = art
	}

	// Upload stage, skipped entirely when storage is unavailable; the
	// manifest then points at local paths.
	if o.storage != nil && o.storage.IsConfigured() {
		if _, err := o.setStatus(id, model.JobStatusUploading, nil); err != nil {
			log.Printf("Failed to update job %s: %v", id, err)
			return
		}
		manifest = o.uploadArtifacts(ctx, id, manifest)
		if manifest == nil {
			o.fail(id, "all artifact uploads failed")
			return
		}
	}

	o.complete(id, manifest)
}

func (o *Orchestrator) generateLyrics(ctx context.Context, id string, job *model.Job) (*model.Job, error) {
	provider := o.CurrentProvider()
	if provider == nil {
		return nil, fmt.Errorf("lyrics generation failed: no provider configured")
	}

	if _, err := o.setStatus(id, model.JobStatusGeneratingLyrics, nil); err != nil {
		return nil, err
	}

	lyrics, err := provider.GenerateLyrics(ctx, job.Input.Prompt, o.prompts.Lyrics())
	if err != nil {
		return nil, fmt.Errorf("lyrics generation failed: %v", err)
	}

	return o.store.Update(id, func(j *model.Job) {
		j.Input.Lyrics = lyrics
		j.Provider = provider.Name()
	})
}

// uploadArtifacts pushes each artifact to object storage. Individual
// failures are non-fatal; nil is returned only when every upload
// failed.
func (o *Orchestrator) uploadArtifacts(ctx context.Context, id string, manifest map[string]model.Artifact) map[string]model.Artifact {
	uploaded := 0
	for name, art := range manifest {
		key := fmt.Sprintf("tracks/%s/%s", id, filepath.Base(art.LocalPath))
		url, err := o.storage.UploadFile(ctx, art.LocalPath, key)
		if err != nil {
			log.Printf("Upload of %s for job %s failed: %v", name, id, err)
			continue
		}
		art.RemoteKey = key
		art.URL = url
		manifest[name] = art
		uploaded++
	}
	if uploaded == 0 {
		return nil
	}
	return manifest
}

func (o *Orchestrator) complete(id string, manifest map[string]model.Artifact) {
	now := time.Now()
	_, err := o.store.Update(id, func(j *model.Job) {
		j.Status = model.JobStatusComplete
		j.Manifest = manifest
		j.CompletedAt = &now
	})
	if err != nil {
		log.Printf("Failed to complete job %s: %v", id, err)
		return
	}

	if o.hub != nil {
		o.hub.BroadcastComplete(id, manifest)
	}
	log.Printf("Job %s complete (%d artifacts)", id, len(manifest))
}

func (o *Orchestrator) fail(id, msg string) {
	now := time.Now()
	_, err := o.store.Update(id, func(j *model.Job) {
		j.Status = model.JobStatusError
		j.Error = &msg
		j.CompletedAt = &now
	})
	if err != nil {
		log.Printf("Failed to mark job %s as failed: %v", id, err)
		return
	}

	if o.hub != nil {
		o.hub.BroadcastError(id, "JOB_FAILED", msg)
	}
	log.Printf("Job %s failed: %s", id, msg)
}

// setStatus persists a status transition and broadcasts it. extra,
// when non-nil, runs inside the same persisted mutation.
func (o *Orchestrator) setStatus(id string, status model.JobStatus, extra func(*model.Job)) (*model.Job, error) {
	job, err := o.store.Update(id, func(j *model.Job) {
		j.Status = status
		if extra != nil {
			extra(j)
		}
	})
	if err != nil {
		return nil, err
	}

	if o.hub != nil {
		o.hub.BroadcastStatus(id, status)
	}
	return job, nil
}

// OutputDir returns the job-private output directory for id.
func (o *Orchestrator) OutputDir(id string) string {
	return filepath.Join(o.outputBase, id)
}
