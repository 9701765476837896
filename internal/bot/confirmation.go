package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"gitlab.com/centavo/ingest-bot/internal/logger"
	"gitlab.com/centavo/ingest-bot/internal/models"
	"gitlab.com/centavo/ingest-bot/internal/repository"
)

// handleCallbackCore drives the confirm/discard state machine behind the
// inline keyboard. The callback is acknowledged up front so the client stops
// its spinner no matter which branch we end up in.
func (b *Bot) handleCallbackCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	cb := update.CallbackQuery
	if cb == nil {
		return
	}

	_, _ = tg.AnswerCallbackQuery(ctx, &tgbot.AnswerCallbackQueryParams{
		CallbackQueryID: cb.ID,
	})

	action, receiptID, ok := DecodeCallbackData(cb.Data)
	if !ok {
		logger.Log.Warn().Str("data", cb.Data).Msg("Ignoring unknown callback payload")
		return
	}

	msg := cb.Message.Message
	if msg == nil {
		logger.Log.Warn().Int64("receipt_id", receiptID).Msg("Callback without accessible message")
		return
	}
	chatID := msg.Chat.ID

	account := b.resolveSender(ctx, tg, chatID)
	if account == nil {
		return
	}

	receipt, err := b.receipts.GetByID(ctx, receiptID)
	if err != nil {
		if errors.Is(err, repository.ErrReceiptNotFound) {
			_, _ = tg.EditMessageText(ctx, &tgbot.EditMessageTextParams{
				ChatID:    chatID,
				MessageID: msg.ID,
				Text:      "🗑 This receipt is no longer available.",
			})
			return
		}
		logger.Log.Error().Err(err).Int64("receipt_id", receiptID).Msg("Failed to load receipt")
		_, _ = tg.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID: chatID,
			Text:   msgUnableToProcess,
		})
		return
	}

	if receipt.AccountID != account.ID {
		logger.Log.Warn().
			Int64("receipt_id", receiptID).
			Str("chat_hash", logger.HashChatID(chatID)).
			Msg("Callback for receipt owned by another account")
		return
	}

	switch action {
	case ActionConfirm:
		b.confirmReceipt(ctx, tg, chatID, msg.ID, receipt)
	case ActionDiscard:
		b.discardReceipt(ctx, tg, chatID, msg.ID, receipt)
	}
}

// confirmReceipt moves a pending receipt to approved and materializes the
// ledger transaction. The status flip is a conditional update, so a repeated
// confirm tap can never record the transaction twice.
func (b *Bot) confirmReceipt(ctx context.Context, tg TelegramAPI, chatID int64, messageID int, receipt *models.Receipt) {
	approved, err := b.receipts.Approve(ctx, receipt.ID)
	if err != nil {
		logger.Log.Error().Err(err).Int64("receipt_id", receipt.ID).Msg("Failed to approve receipt")
		_, _ = tg.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to record the transaction. Please try again.",
		})
		return
	}
	if !approved {
		_, _ = tg.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID: chatID,
			Text:   "ℹ️ This receipt has already been processed.",
		})
		return
	}

	categoryName := models.UnknownCategoryName
	if category, err := b.categories.GetByID(ctx, receipt.CategoryID); err == nil {
		categoryName = category.Name
	} else if !errors.Is(err, repository.ErrCategoryNotFound) {
		logger.Log.Error().Err(err).Int64("category_id", receipt.CategoryID).Msg("Failed to load category for confirmation")
	}

	occurredAt, err := time.Parse(models.ReceiptDateLayout, receipt.OccurredOn)
	if err != nil {
		occurredAt = time.Now()
	}

	tx := &models.Transaction{
		AccountID:   receipt.AccountID,
		CategoryID:  receipt.CategoryID,
		Amount:      receipt.Amount,
		Description: receipt.Description,
		OccurredAt:  occurredAt,
		Type:        receipt.Type,
		ImageURL:    receipt.ImageURL,
	}
	if err := b.transactions.Create(ctx, tx); err != nil {
		logger.Log.Error().Err(err).Int64("receipt_id", receipt.ID).Msg("Failed to create transaction for approved receipt")
		_, _ = tg.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ The receipt was approved but recording the transaction failed. Please contact support.",
		})
		return
	}

	logger.Log.Info().
		Int64("receipt_id", receipt.ID).
		Int64("transaction_id", tx.ID).
		Str("amount", tx.Amount.String()).
		Msg("Receipt confirmed")

	_, err = tg.EditMessageText(ctx, &tgbot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text: fmt.Sprintf(`✅ <b>Recorded!</b>

💰 %s - %s (%s)
📅 %s`,
			tx.Amount.StringFixed(2),
			escapeHTML(tx.Description),
			escapeHTML(categoryName),
			tx.OccurredAt.Format("02 Jan 2006")),
		ParseMode: tgmodels.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to edit confirmation message")
	}
}

// discardReceipt drops a pending receipt. Discarding twice is harmless.
func (b *Bot) discardReceipt(ctx context.Context, tg TelegramAPI, chatID int64, messageID int, receipt *models.Receipt) {
	if receipt.Status != models.ReceiptStatusPending {
		_, _ = tg.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID: chatID,
			Text:   "ℹ️ This receipt has already been processed.",
		})
		return
	}

	if err := b.receipts.Delete(ctx, receipt.ID); err != nil {
		logger.Log.Error().Err(err).Int64("receipt_id", receipt.ID).Msg("Failed to discard receipt")
		_, _ = tg.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID: chatID,
			Text:   msgUnableToProcess,
		})
		return
	}

	logger.Log.Info().Int64("receipt_id", receipt.ID).Msg("Receipt discarded")

	_, err := tg.EditMessageText(ctx, &tgbot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      "🗑 Discarded. Nothing was recorded.",
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to edit discard message")
	}
}
