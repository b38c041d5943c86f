package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/songforge/api/internal/client"
	"github.com/songforge/api/internal/config"
	"github.com/songforge/api/internal/engine"
	"github.com/songforge/api/internal/handler"
	"github.com/songforge/api/internal/middleware"
	"github.com/songforge/api/internal/orchestrator"
	"github.com/songforge/api/internal/prompts"
	"github.com/songforge/api/internal/queue"
	"github.com/songforge/api/internal/service"
	"github.com/songforge/api/internal/store"
	ws "github.com/songforge/api/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test Redis connection
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
	}

	// Initialize validator
	validate := validator.New()

	// Initialize WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Initialize storage client (optional - continues if not configured)
	var storageClient client.StorageClient
	if cfg.Storage.AccessKeyID != "" && cfg.Storage.SecretAccessKey != "" {
		s3Client, err := client.NewS3Client(&cfg.Storage)
		if err != nil {
			log.Printf("Warning: storage client not initialized: %v", err)
		} else {
			storageClient = s3Client
		}
	} else {
		log.Println("Info: object storage not configured, artifacts stay local")
	}

	// Initialize lyrics provider (optional - prompt-based submissions
	// need it, explicit-lyrics submissions do not)
	var provider orchestrator.Provider
	lyricsProvider, err := client.NewLyricsProvider(cfg.Lyrics.Provider, &cfg.Lyrics)
	if err != nil {
		log.Printf("Warning: lyrics provider not available: %v", err)
	} else {
		provider = lyricsProvider
	}

	// Initialize persistence and queue
	jobStore, err := store.New(cfg.Store.ResultsPath)
	if err != nil {
		log.Fatalf("Failed to open job store: %v", err)
	}
	jobQueue := queue.New(cfg.Queue.Capacity)

	// Initialize inference engine
	yue := engine.NewYuE(&cfg.Engine)
	if !yue.IsConfigured() {
		log.Println("Warning: inference engine not configured, audio jobs will fail")
	}

	promptFiles := prompts.New(&cfg.Prompts)

	// Initialize orchestrator and recover from any prior crash
	orch := orchestrator.New(jobQueue, jobStore, yue, storageClient, hub, promptFiles, provider, cfg)
	orch.RecoverManifests()

	workerCtx, stopWorker := context.WithCancel(context.Background())
	go orch.Run(workerCtx)

	// Initialize services
	trackService := service.NewTrackService(orch, storageClient)
	lyricsService := service.NewLyricsService(orch)

	// Initialize handlers
	trackHandler := handler.NewTrackHandler(trackService, validate)
	lyricsHandler := handler.NewLyricsHandler(lyricsService, validate)
	providerHandler := handler.NewProviderHandler(orch, &cfg.Lyrics, validate)
	promptHandler := handler.NewPromptHandler(lyricsService, validate)

	// Initialize middleware
	var apiAuthMiddleware fiber.Handler
	if cfg.Gateway.Enabled {
		log.Println("Info: Gateway mode enabled — using header-based auth")
		apiAuthMiddleware = middleware.GatewayAuthMiddleware()
	} else {
		apiAuthMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    10 * 1024 * 1024, // 10MB
	})

	// Global middleware
	app.Use(recover.New())
	isDebug := strings.EqualFold(cfg.Server.LogLevel, "debug")
	logFormat := "[${time}] ${status} - ${latency} ${method} ${path}\n"
	if isDebug {
		logFormat = "[${time}] ${status} - ${latency} ${method} ${path} ${queryParams} ${body}\n"
		log.Println("Debug logging enabled")
	}
	app.Use(logger.New(logger.Config{
		Format: logFormat,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Base URL - timestamp
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"timestamp": time.Now().Unix(),
		})
	})

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":     "ok",
			"queueDepth": orch.QueueDepth(),
			"services": fiber.Map{
				"engine":   yue.IsConfigured(),
				"storage":  storageClient != nil && storageClient.IsConfigured(),
				"provider": orch.Provider() != "",
			},
		})
	})

	// API routes
	api := app.Group("/api", apiAuthMiddleware)

	// Track routes
	tracks := api.Group("/tracks")
	tracks.Post("/", rateLimiter.TracksLimit(cfg.RateLimit.TracksPerHour), trackHandler.Submit)
	tracks.Post("/from-prompt", rateLimiter.TracksLimit(cfg.RateLimit.TracksPerHour), trackHandler.SubmitFromPrompt)
	tracks.Post("/with-genres", rateLimiter.TracksLimit(cfg.RateLimit.TracksPerHour), trackHandler.SubmitWithGenres)
	tracks.Get("/:id", trackHandler.Status)
	tracks.Get("/:id/download", trackHandler.Download)
	tracks.Post("/:id/repair", trackHandler.Repair)

	// Genre vocabulary
	api.Get("/genres", trackHandler.Genres)

	// Lyrics routes
	lyrics := api.Group("/lyrics", rateLimiter.LyricsLimit(cfg.RateLimit.LyricsPerMin))
	lyrics.Post("/generate", lyricsHandler.Generate)

	// Provider routes
	api.Get("/provider", providerHandler.Get)
	api.Post("/provider", providerHandler.Set)

	// Prompt override routes
	promptsGroup := api.Group("/prompts")
	promptsGroup.Get("/lyrics", promptHandler.GetLyricsPrompt)
	promptsGroup.Put("/lyrics", promptHandler.UpdateLyricsPrompt)
	promptsGroup.Get("/genre", promptHandler.GetGenrePrompt)
	promptsGroup.Put("/genre", promptHandler.UpdateGenrePrompt)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/jobs/:jobId", websocket.New(func(c *websocket.Conn) {
		jobID := c.Params("jobId")
		hub.HandleConnection(c, jobID)
	}))

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		stopWorker()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}
