package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"smartquiz/internal/adapter"
	"smartquiz/internal/adapter/extractor"
	"smartquiz/internal/adapter/provider"
	"smartquiz/internal/cache"
	"smartquiz/internal/config"
	"smartquiz/internal/database"
	"smartquiz/internal/domain"
	"smartquiz/internal/handler"
	"smartquiz/internal/logger"
	"smartquiz/internal/middleware"
	"smartquiz/internal/repository"
	"smartquiz/internal/service"
	"smartquiz/internal/storage"
	"smartquiz/internal/worker"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		// Process request
		err := c.Next()

		// Log request details
		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get("User-Agent")),
		)

		return err
	}
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Connect to database
	db, err := database.NewSQLXOracleDB(cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Initialize repositories
	quizRepository := repository.NewQuizDatabaseAdapter(db)
	questionRepository := repository.NewQuestionDatabaseAdapter(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// Initialize Redis cache. The service degrades gracefully without
	// it: details are simply read from the database every time.
	var cacheAdapter domain.Cache
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		cacheAdapter = adapter.NewRedisCacheAdapter(redisClient)
		appLogger.Info("RedisCacheAdapter initialized")
	} else {
		appLogger.Warn("Redis address not configured, quiz detail caching disabled")
	}

	// Build the text provider chain: Gemini first, Ollama fallback.
	ctx := context.Background()
	gemini, err := provider.NewGeminiProvider(ctx, cfg.Provider.Gemini, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create Gemini provider", zap.Error(err))
	}
	ollama, err := provider.NewOllamaProvider(cfg.Provider.Ollama, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create Ollama provider", zap.Error(err))
	}
	chain := provider.NewChain(appLogger, gemini, ollama)

	pdfExtractor := extractor.NewPDFExtractor()
	staging := storage.NewStaging(cfg.Generation.UploadDir)

	// Initialize services
	lifecycle := service.NewQuizLifecycle(quizRepository)
	runner := service.NewJobRunner(
		quizRepository,
		questionRepository,
		txManager,
		pdfExtractor,
		chain,
		lifecycle,
		cacheAdapter,
		cfg.Generation.SourceCharLimit,
	)

	pool := worker.NewPool(runner, cfg.Generation.QueueSize)
	pool.Start(cfg.Generation.Workers)

	submissionService := service.NewSubmissionService(
		quizRepository,
		lifecycle,
		staging,
		pool,
		cfg.Generation.MaxFiles,
		cfg.Generation.DefaultQuestions,
	)
	rebuildService := service.NewRebuildService(
		quizRepository,
		lifecycle,
		staging,
		pool,
		extractor.IsSourceDocument,
		cacheAdapter,
	)
	queryService := service.NewQuizQueryService(
		quizRepository,
		questionRepository,
		cacheAdapter,
		cfg.Generation.DetailCacheTTL,
	)

	// Initialize handlers
	quizHandler := handler.NewQuizHandler(submissionService, rebuildService, queryService)
	verifier := middleware.NewTokenVerifier(cfg.JWTSecret)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    20 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,PUT,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization", MaxAge: 300}))
	app.Use(recover.New())

	// API group
	apiGroup := app.Group("/api")

	quizGroup := apiGroup.Group("/quizzes")
	quizGroup.Post("/generate-from-file", middleware.Protected(verifier), quizHandler.GenerateFromFile)
	quizGroup.Get("/my", middleware.Protected(verifier), quizHandler.ListMyQuizzes)
	quizGroup.Post("/:id/rebuild", middleware.Protected(verifier), quizHandler.RebuildQuiz)
	quizGroup.Get("/:id/status", quizHandler.GetQuizStatus)
	quizGroup.Get("/:id", middleware.OptionalAuth(verifier), quizHandler.GetQuizDetail)
	quizGroup.Get("/", quizHandler.ListQuizzes)

	// Start server
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown: stop accepting requests first, then drain the
	// generation queue so accepted jobs reach a terminal status.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := pool.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Worker pool did not drain in time", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
