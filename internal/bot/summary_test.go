package bot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gitlab.com/centavo/ingest-bot/internal/bot/mocks"
	"gitlab.com/centavo/ingest-bot/internal/repository"
)

func summaryTotals() []repository.CategoryTotal {
	return []repository.CategoryTotal{
		{CategoryID: 1, CategoryName: "Dining", Total: mustParseDecimal("23.40")},
		{CategoryID: 2, CategoryName: "Groceries", Total: mustParseDecimal("56.10")},
	}
}

func TestFormatDailySummary(t *testing.T) {
	now := time.Date(2026, 9, 1, 21, 0, 0, 0, time.UTC)
	text := formatDailySummary(summaryTotals(), now)

	require.Contains(t, text, "01 Sep 2026")
	require.Contains(t, text, "Dining: 23.40")
	require.Contains(t, text, "Groceries: 56.10")
	require.Contains(t, text, "Total: 79.50")
}

func TestRenderSummaryChart(t *testing.T) {
	now := time.Date(2026, 9, 1, 21, 0, 0, 0, time.UTC)
	data, err := renderSummaryChart(summaryTotals(), now)
	require.NoError(t, err)
	require.NotEmpty(t, data)
}

func TestCheckAndSendSummaries(t *testing.T) {
	ctx := context.Background()
	atSummaryHour := time.Date(2026, 9, 1, 21, 10, 0, 0, time.UTC)

	t.Run("sends one summary per chat per day", func(t *testing.T) {
		tb := newTestBot()
		tb.seedLinkedAccount(100)
		tb.transactions.totals = summaryTotals()
		mockBot := mocks.NewMockBot()
		sent := make(map[int64]string)

		tb.bot.checkAndSendSummaries(ctx, mockBot, sent, atSummaryHour)
		require.Len(t, mockBot.SentPhotos, 1)
		require.Contains(t, mockBot.SentPhotos[0].Caption, "Total: 79.50")

		tb.bot.checkAndSendSummaries(ctx, mockBot, sent, atSummaryHour)
		require.Len(t, mockBot.SentPhotos, 1)
	})

	t.Run("does nothing outside the configured hour", func(t *testing.T) {
		tb := newTestBot()
		tb.seedLinkedAccount(100)
		tb.transactions.totals = summaryTotals()
		mockBot := mocks.NewMockBot()

		morning := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
		tb.bot.checkAndSendSummaries(ctx, mockBot, make(map[int64]string), morning)

		require.Empty(t, mockBot.SentPhotos)
		require.Equal(t, 0, mockBot.SentMessageCount())
	})

	t.Run("skips accounts with no spending today", func(t *testing.T) {
		tb := newTestBot()
		tb.seedLinkedAccount(100)
		mockBot := mocks.NewMockBot()
		sent := make(map[int64]string)

		tb.bot.checkAndSendSummaries(ctx, mockBot, sent, atSummaryHour)

		require.Empty(t, mockBot.SentPhotos)
		require.Equal(t, 0, mockBot.SentMessageCount())
		require.Equal(t, "2026-09-01", sent[100])
	})

	t.Run("photo send failure does not abort the round", func(t *testing.T) {
		tb := newTestBot()
		tb.seedLinkedAccount(100)
		tb.transactions.totals = summaryTotals()
		mockBot := mocks.NewMockBot()
		mockBot.SendPhotoError = context.DeadlineExceeded

		tb.bot.checkAndSendSummaries(ctx, mockBot, make(map[int64]string), atSummaryHour)

		// The chart send failed after rendering succeeded, so nothing else
		// goes out this round. The next day gets a fresh attempt.
		require.Empty(t, mockBot.SentPhotos)
	})
}
