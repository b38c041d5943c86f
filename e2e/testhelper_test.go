package e2e

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/songforge/api/internal/config"
	"github.com/songforge/api/internal/engine"
	"github.com/songforge/api/internal/handler"
	"github.com/songforge/api/internal/middleware"
	"github.com/songforge/api/internal/orchestrator"
	"github.com/songforge/api/internal/prompts"
	"github.com/songforge/api/internal/queue"
	"github.com/songforge/api/internal/service"
	"github.com/songforge/api/internal/store"
)

// fakeEngine stands in for the inference process and writes a wav
// file so artifact discovery succeeds.
type fakeEngine struct{}

func (fakeEngine) Render(ctx context.Context, in engine.RenderInput) error {
	return os.WriteFile(filepath.Join(in.OutputDir, "mix.wav"), []byte("audio"), 0o644)
}

// fakeProvider satisfies orchestrator.Provider without network calls.
type fakeProvider struct{}

func (fakeProvider) Name() string { return "openai" }

func (fakeProvider) GenerateLyrics(ctx context.Context, prompt, system string) (string, error) {
	return "verse one\nchorus", nil
}

func (fakeProvider) ExtractGenre(ctx context.Context, prompt, extra string) (string, error) {
	return "rock", nil
}

func (fakeProvider) InferGenres(ctx context.Context, prompt string) ([]string, error) {
	return []string{"rock", "indie"}, nil
}

func (fakeProvider) GenerateLyricsWithGenres(ctx context.Context, prompt string, genres []string) (string, error) {
	return "genre-aware verse", nil
}

// testApp holds all components needed for testing
type testApp struct {
	app  *fiber.App
	orch *orchestrator.Orchestrator
}

// setupApp creates a Fiber app identical to main.go but with fake
// engine and provider, local-only storage, and a running worker.
func setupApp(t *testing.T, withProvider bool) *testApp {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.Queue.Capacity = 16
	cfg.Queue.PerJobEstimateSeconds = 60
	cfg.Engine.OutputDir = filepath.Join(dir, "outputs")
	cfg.Prompts.LyricsPath = filepath.Join(dir, "lyrics_prompt.txt")
	cfg.Prompts.GenrePath = filepath.Join(dir, "genre_prompt.txt")
	cfg.RateLimit.TracksPerHour = 10000
	cfg.RateLimit.LyricsPerMin = 10000

	// Redis (localhost — rate limiting is skipped when unavailable)
	redisClient := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // use DB 15 for tests to avoid collision
	})

	validate := validator.New()

	jobStore, err := store.New(filepath.Join(dir, "results.json"))
	if err != nil {
		t.Fatalf("store.New failed: %v", err)
	}
	jobQueue := queue.New(cfg.Queue.Capacity)
	promptFiles := prompts.New(&cfg.Prompts)

	var provider orchestrator.Provider
	if withProvider {
		provider = fakeProvider{}
	}

	orch := orchestrator.New(jobQueue, jobStore, fakeEngine{}, nil, nil, promptFiles, provider, cfg)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	t.Cleanup(stopWorker)
	go orch.Run(workerCtx)

	// Services
	trackService := service.NewTrackService(orch, nil)
	lyricsService := service.NewLyricsService(orch)

	// Handlers
	trackHandler := handler.NewTrackHandler(trackService, validate)
	lyricsHandler := handler.NewLyricsHandler(lyricsService, validate)
	providerHandler := handler.NewProviderHandler(orch, &cfg.Lyrics, validate)
	promptHandler := handler.NewPromptHandler(lyricsService, validate)

	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Fiber app
	app := fiber.New()

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":     "ok",
			"queueDepth": orch.QueueDepth(),
			"services": fiber.Map{
				"engine":   true,
				"storage":  false,
				"provider": orch.Provider() != "",
			},
		})
	})

	api := app.Group("/api")

	tracks := api.Group("/tracks")
	tracks.Post("/", rateLimiter.TracksLimit(cfg.RateLimit.TracksPerHour), trackHandler.Submit)
	tracks.Post("/from-prompt", rateLimiter.TracksLimit(cfg.RateLimit.TracksPerHour), trackHandler.SubmitFromPrompt)
	tracks.Post("/with-genres", rateLimiter.TracksLimit(cfg.RateLimit.TracksPerHour), trackHandler.SubmitWithGenres)
	tracks.Get("/:id", trackHandler.Status)
	tracks.Get("/:id/download", trackHandler.Download)
	tracks.Post("/:id/repair", trackHandler.Repair)

	api.Get("/genres", trackHandler.Genres)

	lyrics := api.Group("/lyrics", rateLimiter.LyricsLimit(cfg.RateLimit.LyricsPerMin))
	lyrics.Post("/generate", lyricsHandler.Generate)

	api.Get("/provider", providerHandler.Get)
	api.Post("/provider", providerHandler.Set)

	promptsGroup := api.Group("/prompts")
	promptsGroup.Get("/lyrics", promptHandler.GetLyricsPrompt)
	promptsGroup.Put("/lyrics", promptHandler.UpdateLyricsPrompt)
	promptsGroup.Get("/genre", promptHandler.GetGenrePrompt)
	promptsGroup.Put("/genre", promptHandler.UpdateGenrePrompt)

	return &testApp{app: app, orch: orch}
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	return app.Test(req, -1)
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// waitForStatus polls the status endpoint until the job reaches the
// wanted state or the deadline passes.
func waitForStatus(t *testing.T, ta *testApp, id, want string) map[string]interface{} {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := doRequest(ta.app, http.MethodGet, "/api/tracks/"+id, "")
		if err != nil {
			t.Fatalf("status request failed: %v", err)
		}
		result := parseJSON(t, resp)
		if result["status"] == want {
			return result
		}
		if result["status"] == "error" && want != "error" {
			t.Fatalf("job failed: %v", result["error"])
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("job %s never reached status %q", id, want)
	return nil
}
