package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ItsBlendi/Hackathon-projekt/internal/catalog"
	"github.com/ItsBlendi/Hackathon-projekt/internal/config"
	"github.com/ItsBlendi/Hackathon-projekt/internal/database"
	"github.com/ItsBlendi/Hackathon-projekt/internal/handlers"
	"github.com/ItsBlendi/Hackathon-projekt/internal/middleware"
	"github.com/ItsBlendi/Hackathon-projekt/internal/repositories"
	"github.com/ItsBlendi/Hackathon-projekt/internal/services"
	"github.com/ItsBlendi/Hackathon-projekt/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Initialize logger
	logger.Init()
	defer logger.Sync()

	logger.Info("Starting GameVerse scoring service...")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", err)
	}

	// Validate production security settings
	if cfg.AppEnv == "production" {
		if err := cfg.ValidateProductionSecurity(); err != nil {
			logger.Fatal("Production security validation failed", err)
		}
		logger.Info("Production security validation passed")
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", err)
	}

	// Run GORM auto-migration
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Provision the four houses
	if err := database.SeedHouses(db); err != nil {
		logger.Fatal("Failed to seed houses", err)
	}

	// Wire the scoring core
	gameCatalog := catalog.Default()
	userRepo := repositories.NewUserRepository(db)
	ledgerRepo := repositories.NewLedgerRepository(db)
	aggregateRepo := repositories.NewAggregateRepository(db)

	scoringService := services.NewScoringService(db, gameCatalog, userRepo, ledgerRepo, aggregateRepo).
		WithLockTimeout(cfg.GetSubmitLockTimeout())
	leaderboardService := services.NewLeaderboardService(userRepo, ledgerRepo, aggregateRepo)

	// Drift audit between ledger and aggregates
	reconciler := services.NewReconciler(db, ledgerRepo, cfg.GetReconcileInterval())
	if err := reconciler.Start(); err != nil {
		logger.Fatal("Failed to start reconciler", err)
	}
	defer reconciler.Stop()

	// HTTP surface
	app := fiber.New(fiber.Config{
		AppName:      "gameverse-scoring",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerUser, cfg.RateLimitPerIP, time.Minute)

	scoreHandler := handlers.NewScoreHandler(scoringService)
	leaderboardHandler := handlers.NewLeaderboardHandler(leaderboardService, cfg.LeaderboardLimit)
	userHandler := handlers.NewUserHandler(leaderboardService)

	handlers.SetupRoutes(app, cfg, scoreHandler, leaderboardHandler, userHandler, limiter)

	go func() {
		if err := app.Listen(":" + cfg.AppPort); err != nil {
			logger.Fatal("Server stopped", err)
		}
	}()

	logger.Info("Server started", "port", cfg.AppPort, "env", cfg.AppEnv, "games", gameCatalog.Slugs())

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down gracefully...")
	if err := app.Shutdown(); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}
