package main

import (
	"context"
	"flag"
	"log"
	"time"

	"academy-quiz/internal/config"
	"academy-quiz/internal/database"
	"academy-quiz/internal/logger"

	"go.uber.org/zap"
)

func main() {
	direction := flag.String("direction", string(database.Up), "migration direction: up or down")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall migration timeout")
	flag.Parse()

	dir := database.Direction(*direction)
	if dir != database.Up && dir != database.Down {
		log.Fatalf("invalid -direction %q, want up or down", *direction)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	l := logger.Get()
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := database.Connect(ctx, cfg.DB, cfg.GetDSN())
	if err != nil {
		l.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db, cfg.DB.Driver, dir); err != nil {
		l.Fatal("Failed to run migrations", zap.String("direction", string(dir)), zap.Error(err))
	}
	l.Info("Migrations finished", zap.String("driver", cfg.DB.Driver), zap.String("direction", string(dir)))
}
