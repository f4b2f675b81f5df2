package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/abdullahdev00/video-downloader/internal/config"
	"github.com/abdullahdev00/video-downloader/internal/store"
)

func main() {
	slog.Info("Starting database migrator service")

	startupCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("could not load .env file", "error", err)
	}

	conf, err := config.LoadConfig(startupCtx)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if conf.DatabaseDSN == "" {
		slog.Error("DATABASE_DSN is required for migrations")
		os.Exit(1)
	}

	// Connect to database with retry logic
	pg, err := store.OpenPostgres(startupCtx, conf.DatabaseDSN, conf.DatabaseRetries)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pg.Close()
	slog.Info("Database pool connection established")

	// Run migrations
	if err := pg.Migrate(startupCtx); err != nil {
		slog.Error("failed to run PostgreSQL migrations", "error", err)
		os.Exit(1)
	}

	slog.Info("Database migrations completed successfully")
}
