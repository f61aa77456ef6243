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
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/YatinKare/DesignDual/internal/client"
	"github.com/YatinKare/DesignDual/internal/config"
	"github.com/YatinKare/DesignDual/internal/grading"
	"github.com/YatinKare/DesignDual/internal/handler"
	"github.com/YatinKare/DesignDual/internal/middleware"
	"github.com/YatinKare/DesignDual/internal/repository"
	"github.com/YatinKare/DesignDual/internal/service"
	"github.com/YatinKare/DesignDual/internal/upload"
	ws "github.com/YatinKare/DesignDual/internal/websocket"
	"github.com/YatinKare/DesignDual/internal/worker"
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
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
	}

	// Initialize Postgres and apply schema + seed catalog
	db, err := repository.NewDB(cfg.Postgres.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.ApplySchema(ctx); err != nil {
		log.Fatalf("Failed to apply schema: %v", err)
	}
	store := repository.NewStore(db)
	if err := store.Problems.Seed(ctx, repository.DefaultProblems()); err != nil {
		log.Fatalf("Failed to seed problems: %v", err)
	}

	// Initialize Asynq client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	// Initialize validator
	validate := validator.New()

	// Initialize WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Initialize grading capabilities: Gemini when configured, deterministic
	// mocks otherwise so the full pipeline stays usable in development
	var (
		transcriber grading.Transcriber
		evaluator   grading.PhaseEvaluator
		planner     grading.Planner
	)
	geminiClient := client.NewGeminiClient(&cfg.Gemini)
	if geminiClient.IsConfigured() {
		transcriber = geminiClient
		evaluator = geminiClient
		planner = geminiClient
	} else {
		log.Println("Info: Gemini not configured, using mock grading")
		transcriber = grading.MockTranscriber{}
		evaluator = grading.MockEvaluator{}
		planner = grading.MockPlanner{}
	}

	gradingCfg := grading.Config{
		TranscriptionTimeout: time.Duration(cfg.Grading.TranscriptionTimeout) * time.Second,
		PipelineTimeout:      time.Duration(cfg.Grading.PipelineTimeout) * time.Second,
	}

	// Initialize services
	uploadStore := upload.NewStore(cfg.Upload.Dir, cfg.Upload.MaxCanvasMB, cfg.Upload.MaxAudioMB)
	submissionService := service.NewSubmissionService(store, uploadStore, asynqClient)
	problemService := service.NewProblemService(store.Problems)
	dashboardService := service.NewDashboardService(store.Results)

	// Initialize handlers
	submissionHandler := handler.NewSubmissionHandler(submissionService, validate)
	problemHandler := handler.NewProblemHandler(problemService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, cfg.JWT.Expiration)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    50 * 1024 * 1024, // 50MB
	})

	// Global middleware
	app.Use(recover.New())
	isDebug := strings.EqualFold(cfg.Server.LogLevel, "debug")
	logFormat := "[${time}] ${status} - ${latency} ${method} ${path}\n"
	if isDebug {
		logFormat = "[${time}] ${status} - ${latency} ${method} ${path} ${queryParams} ${reqHeaders}\n"
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
			"status": "ok",
			"services": fiber.Map{
				"gemini":   geminiClient.IsConfigured(),
				"postgres": db.PingContext(c.Context()) == nil,
				"redis":    redisClient.Ping(c.Context()).Err() == nil,
			},
		})
	})

	// API routes
	api := app.Group("/api", authMiddleware.Authenticate())

	// Problem catalog
	api.Get("/problems", problemHandler.List)
	api.Get("/problems/:id", problemHandler.Get)

	// Submissions
	submissions := api.Group("/submissions")
	submissions.Post("/", rateLimiter.SubmissionLimit(cfg.RateLimit.SubmissionsPerHour), submissionHandler.Create)
	submissions.Get("/:id/status", submissionHandler.Status)
	submissions.Get("/:id/result", submissionHandler.Result)
	submissions.Get("/:id/events", submissionHandler.Events)

	// Dashboard
	dashboard := api.Group("/dashboard")
	dashboard.Get("/history", dashboardHandler.History)
	dashboard.Get("/summary", dashboardHandler.Summary)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/submissions/:id", websocket.New(func(c *websocket.Conn) {
		submissionID := c.Params("id")
		hub.HandleConnection(c, submissionID)
	}))

	// Start Asynq worker server
	go startWorkerServer(cfg, store, hub, transcriber, evaluator, planner, gradingCfg)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
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

func startWorkerServer(
	cfg *config.Config,
	store *repository.Store,
	hub *ws.Hub,
	transcriber grading.Transcriber,
	evaluator grading.PhaseEvaluator,
	planner grading.Planner,
	gradingCfg grading.Config,
) {
	asynqLogLevel := asynq.InfoLevel
	if strings.EqualFold(cfg.Server.LogLevel, "debug") {
		asynqLogLevel = asynq.DebugLevel
	} else if strings.EqualFold(cfg.Server.LogLevel, "warn") {
		asynqLogLevel = asynq.WarnLevel
	} else if strings.EqualFold(cfg.Server.LogLevel, "error") {
		asynqLogLevel = asynq.ErrorLevel
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: cfg.Grading.WorkerConcurrency,
			Queues: map[string]int{
				"grading": 10,
			},
			LogLevel: asynqLogLevel,
		},
	)

	gradingWorker := worker.NewGradingWorker(store, hub, transcriber, evaluator, planner, gradingCfg)

	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TaskTypeGrading, gradingWorker.ProcessTask)

	if err := srv.Run(mux); err != nil {
		log.Printf("Asynq worker error: %v", err)
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
