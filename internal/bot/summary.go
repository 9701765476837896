package bot

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-analyze/charts"
	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/shopspring/decimal"
	"gitlab.com/centavo/ingest-bot/internal/logger"
	"gitlab.com/centavo/ingest-bot/internal/repository"
)

const (
	// SummaryCheckInterval is how often the summary loop checks whether to send summaries.
	SummaryCheckInterval = 30 * time.Minute
	// SummaryTimeout is the maximum time a single summary round can take.
	SummaryTimeout = 2 * time.Minute
)

// StartDailySummaryLoop runs a periodic loop that sends each linked account a
// spending summary for the current day at the configured hour.
func (b *Bot) StartDailySummaryLoop(ctx context.Context) {
	if !b.cfg.DailySummaryEnabled {
		logger.Log.Info().Msg("Daily summary is disabled")
		return
	}

	loc, err := time.LoadLocation(b.cfg.SummaryTimezone)
	if err != nil {
		logger.Log.Error().Err(err).Str("timezone", b.cfg.SummaryTimezone).Msg("Failed to load summary timezone, disabling summaries")
		return
	}

	logger.Log.Info().
		Int("hour", b.cfg.SummaryHour).
		Str("timezone", b.cfg.SummaryTimezone).
		Msg("Daily summary loop started")

	sent := make(map[int64]string)
	ticker := time.NewTicker(SummaryCheckInterval)
	defer ticker.Stop()

	b.checkAndSendSummaries(ctx, b.bot, sent, time.Now().In(loc))

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info().Msg("Daily summary loop stopped")
			return
		case <-ticker.C:
			b.checkAndSendSummaries(ctx, b.bot, sent, time.Now().In(loc))
		}
	}
}

// checkAndSendSummaries sends summaries to linked accounts when the local
// hour matches. The sent map tracks which chats already got today's summary.
func (b *Bot) checkAndSendSummaries(ctx context.Context, tg TelegramAPI, sent map[int64]string, now time.Time) {
	if now.Hour() != b.cfg.SummaryHour {
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, SummaryTimeout)
	defer cancel()

	todayStr := now.Format("2006-01-02")
	for chatID, dateStr := range sent {
		if dateStr != todayStr {
			delete(sent, chatID)
		}
	}

	accounts, err := b.accounts.ListLinked(checkCtx)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to list linked accounts for summary")
		return
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOfDay := startOfDay.AddDate(0, 0, 1)

	for _, account := range accounts {
		if account.TelegramChatID == nil {
			continue
		}
		chatID := *account.TelegramChatID
		if sent[chatID] == todayStr {
			continue
		}

		totals, err := b.transactions.SumExpensesByCategory(checkCtx, account.ID, startOfDay, endOfDay)
		if err != nil {
			logger.Log.Error().Err(err).
				Str("account_id", account.ID.String()).
				Msg("Failed to aggregate daily spending")
			continue
		}
		if len(totals) == 0 {
			sent[chatID] = todayStr
			continue
		}

		b.sendDailySummary(checkCtx, tg, chatID, totals, now)
		sent[chatID] = todayStr
	}
}

// sendDailySummary renders the per-category breakdown as a pie chart and
// sends it with a text caption. If chart rendering fails the text still goes.
func (b *Bot) sendDailySummary(ctx context.Context, tg TelegramAPI, chatID int64, totals []repository.CategoryTotal, now time.Time) {
	caption := formatDailySummary(totals, now)

	chartData, err := renderSummaryChart(totals, now)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to render summary chart")
		_, _ = tg.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID:    chatID,
			Text:      caption,
			ParseMode: tgmodels.ParseModeHTML,
		})
		return
	}

	filename := fmt.Sprintf("summary_%s.png", now.Format("2006-01-02"))
	_, err = tg.SendPhoto(ctx, &tgbot.SendPhotoParams{
		ChatID:    chatID,
		Photo:     &tgmodels.InputFileUpload{Filename: filename, Data: bytes.NewReader(chartData)},
		Caption:   caption,
		ParseMode: tgmodels.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send summary photo")
	}
}

// formatDailySummary renders the per-category totals as the summary caption.
func formatDailySummary(totals []repository.CategoryTotal, now time.Time) string {
	grand := decimal.Zero
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 <b>Today's spending</b> (%s)\n\n", now.Format("02 Jan 2006")))
	for _, t := range totals {
		sb.WriteString(fmt.Sprintf("• %s: %s\n", escapeHTML(t.CategoryName), t.Total.StringFixed(2)))
		grand = grand.Add(t.Total)
	}
	sb.WriteString(fmt.Sprintf("\n<b>Total: %s</b>", grand.StringFixed(2)))
	return sb.String()
}

// renderSummaryChart builds a PNG pie chart of today's spending by category.
func renderSummaryChart(totals []repository.CategoryTotal, now time.Time) ([]byte, error) {
	values := make([]float64, len(totals))
	names := make([]string, len(totals))
	for i, t := range totals {
		values[i] = t.Total.InexactFloat64()
		names[i] = t.CategoryName
	}

	p, err := charts.PieRender(
		values,
		charts.TitleOptionFunc(charts.TitleOption{
			Text: fmt.Sprintf("Spending - %s", now.Format("02 Jan 2006")),
		}),
		charts.LegendLabelsOptionFunc(names),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf, nil
}
