package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/songforge/api/internal/config"
	"github.com/songforge/api/internal/engine"
	"github.com/songforge/api/internal/model"
	"github.com/songforge/api/internal/orchestrator"
	"github.com/songforge/api/internal/prompts"
	"github.com/songforge/api/internal/queue"
	"github.com/songforge/api/internal/service"
	"github.com/songforge/api/internal/store"
)

type stubEngine struct{}

func (stubEngine) Render(ctx context.Context, in engine.RenderInput) error { return nil }

// newTrackApp builds a minimal app around a store seeded with the
// given jobs. No worker runs, so seeded statuses stay put.
func newTrackApp(t *testing.T, jobs ...*model.Job) *fiber.App {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Engine.OutputDir = filepath.Join(dir, "outputs")
	cfg.Queue.Capacity = 4
	cfg.Queue.PerJobEstimateSeconds = 60

	jobStore, err := store.New(filepath.Join(dir, "results.json"))
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	for _, j := range jobs {
		if err := jobStore.Put(j); err != nil {
			t.Fatalf("seeding job %s failed: %v", j.ID, err)
		}
	}

	orch := orchestrator.New(queue.New(cfg.Queue.Capacity), jobStore, stubEngine{}, nil, nil, prompts.New(&cfg.Prompts), nil, cfg)
	h := NewTrackHandler(service.NewTrackService(orch, nil), validator.New())

	app := fiber.New()
	app.Get("/api/tracks/:id/download", h.Download)
	return app
}

func errorCode(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(b, &body); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, b)
	}
	return body.Error.Code
}

func TestDownloadNotCompleteReturnsNotFound(t *testing.T) {
	app := newTrackApp(t, &model.Job{
		ID:          "j1",
		Status:      model.JobStatusGeneratingAudio,
		SubmittedAt: time.Now(),
	})

	req, _ := http.NewRequest(http.MethodGet, "/api/tracks/j1/download?type=audio", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
	if code := errorCode(t, resp); code != "NOT_FOUND" {
		t.Errorf("expected error code NOT_FOUND, got %q", code)
	}
}

func TestDownloadUnknownJobReturnsNotFound(t *testing.T) {
	app := newTrackApp(t)

	req, _ := http.NewRequest(http.MethodGet, "/api/tracks/nope/download", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}
