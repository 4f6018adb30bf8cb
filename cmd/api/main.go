// @title Academy Quiz API
// @version 1.0
// @description Quiz definitions, attempts, grading and result visibility for academy programs.
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"academy-quiz/internal/adapter"
	"academy-quiz/internal/cache"
	"academy-quiz/internal/config"
	"academy-quiz/internal/database"
	"academy-quiz/internal/domain"
	"academy-quiz/internal/handler"
	"academy-quiz/internal/logger"
	"academy-quiz/internal/metrics"
	"academy-quiz/internal/middleware"
	"academy-quiz/internal/repository"
	"academy-quiz/internal/service"
	"academy-quiz/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.Connect(ctx, cfg.DB, cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	appMetrics := metrics.NewMetrics(prometheus.DefaultRegisterer)
	go recordPoolStats(ctx, db, appMetrics)

	// Redis is optional; without it quiz definitions are read straight from the database.
	var cacheAdapter domain.Cache
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		cacheAdapter = adapter.NewRedisCacheAdapter(redisClient)
		appLogger.Info("Successfully connected to Redis", zap.String("address", cfg.Redis.Address))
	} else {
		appLogger.Info("Redis disabled, quiz definition cache is off")
	}

	// Initialize repositories
	quizRepository := repository.NewSQLXQuizRepository(db)
	attemptRepository := repository.NewSQLXAttemptRepository(db)
	enrollmentRepository := repository.NewSQLXEnrollmentRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// Initialize services
	quizCache := service.NewQuizDefinitionCache(quizRepository, cacheAdapter, cfg.Cache.QuizDefinitionTTL, appMetrics)
	enrollmentGate := service.NewEnrollmentGate(quizCache, enrollmentRepository)
	quizService := service.NewQuizService(txManager, quizRepository, quizCache, enrollmentGate)
	attemptService := service.NewAttemptService(txManager, quizRepository, quizCache, attemptRepository, enrollmentGate, appMetrics)

	tokenValidator, err := service.NewTokenValidator(cfg.JWT)
	if err != nil {
		appLogger.Fatal("Failed to create token validator", zap.Error(err))
	}

	// Initialize handlers
	validator := validation.NewValidator()
	routes := handler.Routes{
		Tokens:     tokenValidator,
		Validation: middleware.NewValidationMiddleware(validator),
		Quizzes:    handler.NewQuizHandler(quizService, validator),
		Attempts:   handler.NewAttemptHandler(attemptService, validator),
		Health:     handler.NewHealthHandler(db, cacheAdapter),
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
		MaxAge:       300,
	}))
	app.Use(middleware.RequestLogger(appMetrics))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	handler.RegisterRoutes(app, routes)

	// Start server
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Env), zap.String("db_driver", cfg.DB.Driver))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Error("Server stopped", zap.Error(err))
			stop()
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	appLogger.Info("Server exited gracefully")
}

func recordPoolStats(ctx context.Context, db *sqlx.DB, m *metrics.Metrics) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.RecordDBPoolStats(db.Stats())
		}
	}
}
