// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the service.
type Config struct {
	TelegramBotToken string
	WebhookURL       string
	ListenAddr       string
	DatabaseURL      string
	GeminiAPIKey     string
	StorageBucket    string
	LogLevel         string

	// AllowRebind controls whether /start with an account id may silently
	// rebind a chat that is already linked to a different account.
	AllowRebind bool

	DailySummaryEnabled bool
	SummaryHour         int
	SummaryTimezone     string

	// Exporter selects the telemetry exporter: otlp-grpc, otlp-http, stdout
	// or empty to disable.
	Exporter string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		WebhookURL:       os.Getenv("WEBHOOK_URL"),
		ListenAddr:       os.Getenv("LISTEN_ADDR"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		StorageBucket:    os.Getenv("STORAGE_BUCKET"),
		LogLevel:         os.Getenv("LOG_LEVEL"),
		Exporter:         os.Getenv("OTEL_EXPORTER"),
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}

	cfg.AllowRebind = os.Getenv("ALLOW_REBIND") != "false"

	cfg.DailySummaryEnabled = os.Getenv("DAILY_SUMMARY_ENABLED") == "true"
	cfg.SummaryHour = 21
	if hourStr := os.Getenv("SUMMARY_HOUR"); hourStr != "" {
		if h, err := strconv.Atoi(hourStr); err == nil && h >= 0 && h <= 23 {
			cfg.SummaryHour = h
		}
	}
	cfg.SummaryTimezone = "UTC"
	if tz := os.Getenv("SUMMARY_TIMEZONE"); tz != "" {
		if _, err := time.LoadLocation(tz); err == nil {
			cfg.SummaryTimezone = tz
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that all required configuration is present.
func (c *Config) validate() error {
	var errs []string

	if c.TelegramBotToken == "" {
		errs = append(errs, "TELEGRAM_BOT_TOKEN is required")
	}

	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}

	if c.GeminiAPIKey == "" {
		errs = append(errs, "GEMINI_API_KEY is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
