// Package main is the entry point for the receipt ingestion Telegram bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gitlab.com/centavo/ingest-bot/internal/bot"
	"gitlab.com/centavo/ingest-bot/internal/config"
	"gitlab.com/centavo/ingest-bot/internal/database"
	"gitlab.com/centavo/ingest-bot/internal/gemini"
	"gitlab.com/centavo/ingest-bot/internal/logger"
	"gitlab.com/centavo/ingest-bot/internal/storage"
	"gitlab.com/centavo/ingest-bot/internal/telemetry"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("ingest-bot %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.SetLevel(cfg.LogLevel)
	logger.InitHashSalt()

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Exporter)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to set up telemetry")
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logger.Log.Error().Err(err).Msg("Telemetry shutdown failed")
		}
	}()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	logger.Log.Info().Msg("Database initialized successfully")

	extractor, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to create extraction client")
	}

	var images storage.ObjectStore
	if cfg.StorageBucket != "" {
		gcs, err := storage.NewGCSStore(ctx, cfg.StorageBucket)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to create object store")
		}
		defer func() { _ = gcs.Close() }()
		images = gcs
	} else {
		logger.Log.Warn().Msg("STORAGE_BUCKET not set, receipt photos disabled")
	}

	telegramBot, err := bot.New(cfg, pool, extractor, images)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to create bot")
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Log.Info().Msg("Shutting down...")
		cancel()
	}()

	go telegramBot.StartDailySummaryLoop(ctx)

	if err := telegramBot.Run(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Bot stopped with error")
	}
}
