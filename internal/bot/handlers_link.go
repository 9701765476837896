package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbot "github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"gitlab.com/centavo/ingest-bot/internal/logger"
	"gitlab.com/centavo/ingest-bot/internal/models"
	"gitlab.com/centavo/ingest-bot/internal/repository"
)

const msgNotLinked = `🔗 This chat is not connected to an account yet.

Open your dashboard, copy your account code and send:
<code>/start &lt;account-code&gt;</code>`

// extractCommandArgs strips the /command prefix (and optional @botname suffix)
// from a message and returns the remaining trimmed arguments.
func extractCommandArgs(text, command string) string {
	args := strings.TrimSpace(strings.TrimPrefix(text, command))
	if strings.HasPrefix(args, "@") {
		if spaceIdx := strings.Index(args, " "); spaceIdx != -1 {
			args = strings.TrimSpace(args[spaceIdx:])
		} else {
			args = ""
		}
	}
	return args
}

// escapeHTML escapes user-provided text for Telegram HTML parse mode.
func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// handleStartCore handles /start. With an account code argument it binds the
// chat to that account, without one it sends the welcome text.
func (b *Bot) handleStartCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	args := extractCommandArgs(update.Message.Text, "/start")
	if args == "" {
		b.sendWelcome(ctx, tg, chatID)
		return
	}

	accountID, err := uuid.Parse(args)
	if err != nil {
		logger.Log.Debug().
			Str("chat_hash", logger.HashChatID(chatID)).
			Msg("Rejected malformed account code")
		_, _ = tg.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID:    chatID,
			Text:      "❌ That doesn't look like an account code. Copy it from your dashboard and try <code>/start &lt;account-code&gt;</code> again.",
			ParseMode: tgmodels.ParseModeHTML,
		})
		return
	}

	if !b.cfg.AllowRebind {
		if existing, err := b.accounts.GetByTelegramID(ctx, chatID); err == nil && existing.ID != accountID {
			_, _ = tg.SendMessage(ctx, &tgbot.SendMessageParams{
				ChatID: chatID,
				Text:   "❌ This chat is already connected to a different account. Disconnect it from your dashboard first.",
			})
			return
		}
	}

	rebound, err := b.accounts.LinkTelegram(ctx, accountID, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			_, _ = tg.SendMessage(ctx, &tgbot.SendMessageParams{
				ChatID: chatID,
				Text:   "❌ No account matches that code. Double-check it in your dashboard.",
			})
			return
		}
		logger.Log.Error().Err(err).
			Str("chat_hash", logger.HashChatID(chatID)).
			Msg("Failed to link account")
		_, _ = tg.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to connect your account. Please try again.",
		})
		return
	}

	logger.Log.Info().
		Str("account_id", accountID.String()).
		Str("chat_hash", logger.HashChatID(chatID)).
		Bool("rebound", rebound).
		Msg("Linked chat to account")

	text := `✅ <b>Account connected!</b>

Send me an expense like <code>Coffee 4.50</code> or a photo of a receipt and I'll file it for you.`
	if rebound {
		text += "\n\n⚠️ This chat was previously connected to a different account. The old connection has been replaced."
	}
	_, err = tg.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: tgmodels.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /start response")
	}
}

func (b *Bot) sendWelcome(ctx context.Context, tg TelegramAPI, chatID int64) {
	text := `👋 Welcome!

I turn your messages and receipt photos into transactions in your finance tracker.

<b>Getting started:</b>
• Connect your account: <code>/start &lt;account-code&gt;</code>
• Send an expense like: <code>Coffee 4.50</code>
• Or upload a receipt photo

Use /help to see everything I can do.`

	_, err := tg.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: tgmodels.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send welcome response")
	}
}

// handleHelpCore handles the /help command.
func (b *Bot) handleHelpCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}

	text := `📚 <b>How to use this bot</b>

<b>Recording expenses:</b>
• Send a message like <code>Coffee 4.50</code> or <code>Got paid 2500 salary</code>
• Upload a photo of a receipt
• I'll reply with what I understood, then tap ✅ Confirm or ❌ Discard

<b>Commands:</b>
• <code>/start &lt;account-code&gt;</code> - Connect this chat to your account
• <code>/categories</code> - List your active categories
• <code>/help</code> - Show this message

Nothing is recorded until you confirm it.`

	_, err := tg.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:    update.Message.Chat.ID,
		Text:      text,
		ParseMode: tgmodels.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /help response")
	}
}

// handleCategoriesCore handles the /categories command.
func (b *Bot) handleCategoriesCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	account := b.resolveSender(ctx, tg, chatID)
	if account == nil {
		return
	}

	categories, err := b.categories.ListActive(ctx, account.ID)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to list categories")
		_, _ = tg.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Failed to fetch categories. Please try again.",
		})
		return
	}

	if len(categories) == 0 {
		_, _ = tg.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID: chatID,
			Text:   "📁 You have no active categories yet. Create some in your dashboard first.",
		})
		return
	}

	var sb strings.Builder
	sb.WriteString("📁 <b>Your categories</b>\n\n")
	for _, cat := range categories {
		icon := cat.Icon
		if icon == "" {
			icon = "•"
		}
		sb.WriteString(fmt.Sprintf("%s %s (%s)\n", icon, escapeHTML(cat.Name), cat.Type))
	}

	_, err = tg.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:    chatID,
		Text:      sb.String(),
		ParseMode: tgmodels.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send /categories response")
	}
}

// resolveSender maps a chat to its linked account. On an unlinked chat it
// sends the connect prompt and returns nil.
func (b *Bot) resolveSender(ctx context.Context, tg TelegramAPI, chatID int64) *models.Account {
	account, err := b.accounts.GetByTelegramID(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrNotLinked) {
			_, _ = tg.SendMessage(ctx, &tgbot.SendMessageParams{
				ChatID:    chatID,
				Text:      msgNotLinked,
				ParseMode: tgmodels.ParseModeHTML,
			})
			return nil
		}
		logger.Log.Error().Err(err).
			Str("chat_hash", logger.HashChatID(chatID)).
			Msg("Failed to resolve sender")
		_, _ = tg.SendMessage(ctx, &tgbot.SendMessageParams{
			ChatID: chatID,
			Text:   msgUnableToProcess,
		})
		return nil
	}
	return account
}
