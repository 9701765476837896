package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token-123")
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	t.Setenv("GEMINI_API_KEY", "test-gemini-key")
}

func TestLoad(t *testing.T) {
	t.Run("loads config from env with defaults", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, "test-token-123", cfg.TelegramBotToken)
		require.Equal(t, "postgres://localhost/test", cfg.DatabaseURL)
		require.Equal(t, "test-gemini-key", cfg.GeminiAPIKey)
		require.Equal(t, ":8080", cfg.ListenAddr)
		require.Equal(t, 21, cfg.SummaryHour)
		require.Equal(t, "UTC", cfg.SummaryTimezone)
		require.True(t, cfg.AllowRebind)
		require.False(t, cfg.DailySummaryEnabled)
	})

	t.Run("missing bot token fails validation", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("TELEGRAM_BOT_TOKEN", "")

		_, err := Load()
		require.Error(t, err)
		require.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN is required")
	})

	t.Run("missing database URL fails validation", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("DATABASE_URL", "")

		_, err := Load()
		require.Error(t, err)
		require.Contains(t, err.Error(), "DATABASE_URL is required")
	})

	t.Run("missing Gemini key fails validation", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("GEMINI_API_KEY", "")

		_, err := Load()
		require.Error(t, err)
		require.Contains(t, err.Error(), "GEMINI_API_KEY is required")
	})

	t.Run("rebinding can be disabled", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("ALLOW_REBIND", "false")

		cfg, err := Load()
		require.NoError(t, err)
		require.False(t, cfg.AllowRebind)
	})

	t.Run("summary hour within range overrides default", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("DAILY_SUMMARY_ENABLED", "true")
		t.Setenv("SUMMARY_HOUR", "8")
		t.Setenv("SUMMARY_TIMEZONE", "Asia/Singapore")

		cfg, err := Load()
		require.NoError(t, err)
		require.True(t, cfg.DailySummaryEnabled)
		require.Equal(t, 8, cfg.SummaryHour)
		require.Equal(t, "Asia/Singapore", cfg.SummaryTimezone)
	})

	t.Run("invalid summary hour falls back to default", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SUMMARY_HOUR", "25")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, 21, cfg.SummaryHour)
	})

	t.Run("invalid timezone falls back to UTC", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SUMMARY_TIMEZONE", "Not/AZone")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, "UTC", cfg.SummaryTimezone)
	})
}
