package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"gitlab.com/centavo/ingest-bot/internal/gemini"
	"gitlab.com/centavo/ingest-bot/internal/logger"
	"gitlab.com/centavo/ingest-bot/internal/models"
)

// maxDownloadBytes bounds how much of a Telegram file we are willing to read.
const maxDownloadBytes = 20 << 20

// buildConfirmationKeyboard creates the inline keyboard attached to a
// pending receipt summary.
func buildConfirmationKeyboard(receiptID int64) *tgmodels.InlineKeyboardMarkup {
	return &tgmodels.InlineKeyboardMarkup{
		InlineKeyboard: [][]tgmodels.InlineKeyboardButton{
			{
				{Text: "✅ Confirm", CallbackData: EncodeCallbackData(ActionConfirm, receiptID)},
				{Text: "❌ Discard", CallbackData: EncodeCallbackData(ActionDiscard, receiptID)},
			},
		},
	}
}

// handleTextCore ingests a free-text expense message.
func (b *Bot) handleTextCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	chatID := update.Message.Chat.ID

	account := b.resolveSender(ctx, tg, chatID)
	if account == nil {
		return
	}

	categories, ok := b.loadCategories(ctx, tg, chatID, account.ID)
	if !ok {
		return
	}

	candidate, err := b.extractor.ParseText(ctx, update.Message.Text, categories, time.Now())
	if err != nil {
		b.sendExtractionError(ctx, tg, chatID, err)
		return
	}

	b.finishIngest(ctx, tg, update, account, categories, candidate, "", "")
}

// handlePhotoCore ingests a receipt photo: it stores the image and runs
// vision extraction over the stored copy.
func (b *Bot) handlePhotoCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	if update.Message == nil || len(update.Message.Photo) == 0 {
		return
	}
	chatID := update.Message.Chat.ID

	account := b.resolveSender(ctx, tg, chatID)
	if account == nil {
		return
	}

	if b.images == nil {
		_, _ = tg.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID:    chatID,
			Text:      "📷 Receipt photos are not configured. Send the expense as text instead, like <code>Coffee 4.50</code>.",
			ParseMode: tgmodels.ParseModeHTML,
		})
		return
	}

	_, _ = tg.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: chatID,
		Text:   "📷 Processing receipt...",
	})

	largestPhoto := update.Message.Photo[len(update.Message.Photo)-1]

	logger.Log.Debug().
		Str("chat_hash", logger.HashChatID(chatID)).
		Str("file_id", largestPhoto.FileID).
		Int("width", largestPhoto.Width).
		Int("height", largestPhoto.Height).
		Msg("Downloading photo")

	imageBytes, err := b.downloadFile(ctx, tg, largestPhoto.FileID)
	if err != nil {
		logger.Log.Error().Err(err).
			Str("chat_hash", logger.HashChatID(chatID)).
			Msg("Failed to download photo")
		_, _ = tg.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to download photo. Please try again.",
		})
		return
	}

	objectName := fmt.Sprintf("receipts/%s/%s.jpg", account.ID, uuid.NewString())
	imageURL, err := b.images.Upload(ctx, objectName, imageBytes, "image/jpeg")
	if err != nil {
		logger.Log.Error().Err(err).
			Str("object", objectName).
			Msg("Failed to store receipt image")
		_, _ = tg.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to store the receipt image. Please try again.",
		})
		return
	}

	categories, ok := b.loadCategories(ctx, tg, chatID, account.ID)
	if !ok {
		return
	}

	candidate, err := b.extractor.ParseImage(ctx, imageURL, "image/jpeg", categories, time.Now())
	if err != nil {
		b.sendExtractionError(ctx, tg, chatID, err)
		return
	}

	b.finishIngest(ctx, tg, update, account, categories, candidate, imageURL, largestPhoto.FileID)
}

// finishIngest is the shared tail of both ingest paths: it resolves the
// extracted category, persists a pending receipt and asks for confirmation.
func (b *Bot) finishIngest(
	ctx context.Context,
	tg TelegramAPI,
	update *tgmodels.Update,
	account *models.Account,
	categories []models.Category,
	candidate *gemini.Candidate,
	imageURL, fileID string,
) {
	chatID := update.Message.Chat.ID

	category, err := ResolveCategory(candidate.Category, categories)
	if err != nil {
		logger.Log.Info().
			Str("chat_hash", logger.HashChatID(chatID)).
			Str("category", candidate.Category).
			Msg("Extracted category did not match")
		_, _ = tg.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID:    chatID,
			Text:      fmt.Sprintf("❌ I couldn't match this to one of your categories.\n\nYour categories are: %s\n\nTry mentioning one of them in your message.", escapeHTML(strings.Join(CategoryNames(categories), ", "))),
			ParseMode: tgmodels.ParseModeHTML,
		})
		return
	}

	txType := candidate.Type
	if txType == "" {
		txType = category.Type
	}

	receipt := &models.Receipt{
		AccountID:      account.ID,
		CategoryID:     category.ID,
		OccurredOn:     candidate.Date,
		Type:           txType,
		Description:    candidate.Description,
		Amount:         candidate.Amount,
		Status:         models.ReceiptStatusPending,
		ImageURL:       imageURL,
		TelegramFileID: fileID,
		ChatMessageID:  update.Message.ID,
	}
	if err := b.receipts.Create(ctx, receipt); err != nil {
		logger.Log.Error().Err(err).Msg("Failed to create pending receipt")
		_, _ = tg.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to save the receipt. Please try again.",
		})
		return
	}

	logger.Log.Info().
		Int64("receipt_id", receipt.ID).
		Str("account_id", account.ID.String()).
		Str("amount", receipt.Amount.String()).
		Str("category", category.Name).
		Msg("Pending receipt created")

	_, err = tg.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:      chatID,
		Text:        formatReceiptSummary(receipt, category),
		ParseMode:   tgmodels.ParseModeHTML,
		ReplyMarkup: buildConfirmationKeyboard(receipt.ID),
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send receipt confirmation prompt")
	}
}

// formatReceiptSummary renders the pending receipt the user is asked to
// confirm or discard.
func formatReceiptSummary(receipt *models.Receipt, category *models.Category) string {
	typeIcon := "💸"
	if receipt.Type == models.CategoryTypeIncome {
		typeIcon = "💰"
	}
	return fmt.Sprintf(`🧾 <b>Here's what I understood:</b>

%s Amount: %s
📝 Description: %s
📁 Category: %s
📅 Date: %s

Confirm to record it, or discard to drop it.`,
		typeIcon,
		receipt.Amount.StringFixed(2),
		escapeHTML(receipt.Description),
		escapeHTML(category.Name),
		receipt.OccurredOn)
}

// loadCategories fetches the account's active categories, telling the user
// about the two unrecoverable cases (fetch failure, no categories yet).
func (b *Bot) loadCategories(ctx context.Context, tg TelegramAPI, chatID int64, accountID uuid.UUID) ([]models.Category, bool) {
	categories, err := b.categories.ListActive(ctx, accountID)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to fetch categories for ingest")
		_, _ = tg.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to fetch your categories. Please try again.",
		})
		return nil, false
	}
	if len(categories) == 0 {
		_, _ = tg.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID: chatID,
			Text:   "📁 You have no active categories yet. Create some in your dashboard first, then resend the expense.",
		})
		return nil, false
	}
	return categories, true
}

// sendExtractionError maps extraction failures to user-facing messages.
func (b *Bot) sendExtractionError(ctx context.Context, tg TelegramAPI, chatID int64, err error) {
	logger.Log.Error().Err(err).
		Str("chat_hash", logger.HashChatID(chatID)).
		Msg("Extraction failed")

	text := "❌ I couldn't read that. Please try again."
	if errors.Is(err, gemini.ErrIncomplete) {
		text = "❌ I couldn't make out the amount or category. Try something like <code>Coffee 4.50</code>."
	}
	_, _ = tg.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: tgmodels.ParseModeHTML,
	})
}

// downloadFile fetches a file's bytes via the Telegram file API.
func (b *Bot) downloadFile(ctx context.Context, tg TelegramAPI, fileID string) ([]byte, error) {
	file, err := tg.GetFile(ctx, &tgbot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	link := tg.FileDownloadLink(file)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes))
	if err != nil {
		return nil, fmt.Errorf("read file body: %w", err)
	}
	return data, nil
}
