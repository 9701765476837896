package bot

import (
	"context"
	"strings"

	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"gitlab.com/centavo/ingest-bot/internal/logger"
)

const msgUnableToProcess = "❌ Unable to process your message. Please try again."

// handleUpdate is the single entry point for every webhook update.
func (b *Bot) handleUpdate(ctx context.Context, tgBot *tgbot.Bot, update *tgmodels.Update) {
	b.dispatchCore(ctx, tgBot, update)
}

// dispatchCore routes an update by payload shape. Every branch is contained:
// no failure may propagate past this function, since the webhook must answer
// the platform with success regardless to avoid retry storms.
func (b *Bot) dispatchCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Error().Any("panic", r).Msg("Recovered panic in update dispatch")
			if chatID := updateChatID(update); chatID != 0 {
				_, _ = tg.SendMessage(ctx, &tgbot.SendMessageParams{
					ChatID: chatID,
					Text:   msgUnableToProcess,
				})
			}
		}
	}()

	logUpdate(update)

	switch {
	case update.CallbackQuery != nil:
		b.handleCallbackCore(ctx, tg, update)

	case update.Message == nil:
		// Health checks and update types we don't handle.
		return

	case strings.HasPrefix(update.Message.Text, "/start"):
		b.handleStartCore(ctx, tg, update)

	case strings.HasPrefix(update.Message.Text, "/help"):
		b.handleHelpCore(ctx, tg, update)

	case strings.HasPrefix(update.Message.Text, "/categories"):
		b.handleCategoriesCore(ctx, tg, update)

	case update.Message.Text != "":
		b.handleTextCore(ctx, tg, update)

	case len(update.Message.Photo) > 0:
		b.handlePhotoCore(ctx, tg, update)
	}
}

// logUpdate records the inbound update with hashed identifiers.
func logUpdate(update *tgmodels.Update) {
	switch {
	case update.Message != nil:
		msg := update.Message
		event := logger.Log.Info().
			Str("chat_hash", logger.HashChatID(msg.Chat.ID))
		if msg.Text != "" {
			event = event.Str("text", logger.SanitizeText(msg.Text))
		}
		if len(msg.Photo) > 0 {
			event = event.Str("type", "photo")
		}
		event.Msg("Inbound update")

	case update.CallbackQuery != nil:
		logger.Log.Info().
			Str("data", update.CallbackQuery.Data).
			Msg("Callback query")
	}
}

// updateChatID extracts the chat id from the update shapes we handle.
func updateChatID(update *tgmodels.Update) int64 {
	if update == nil {
		return 0
	}
	if update.Message != nil {
		return update.Message.Chat.ID
	}
	if update.CallbackQuery != nil && update.CallbackQuery.Message.Message != nil {
		return update.CallbackQuery.Message.Message.Chat.ID
	}
	return 0
}
