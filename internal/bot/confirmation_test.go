package bot

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gitlab.com/centavo/ingest-bot/internal/bot/mocks"
	"gitlab.com/centavo/ingest-bot/internal/models"
)

func seedPendingReceipt(t *testing.T, tb *testBot, account *models.Account) *models.Receipt {
	t.Helper()
	receipt := &models.Receipt{
		AccountID:   account.ID,
		CategoryID:  1,
		OccurredOn:  "2026-09-01",
		Type:        models.CategoryTypeExpense,
		Description: "Coffee",
		Amount:      mustParseDecimal("4.50"),
		Status:      models.ReceiptStatusPending,
	}
	require.NoError(t, tb.receipts.Create(context.Background(), receipt))
	return receipt
}

func TestConfirmReceipt(t *testing.T) {
	ctx := context.Background()

	t.Run("confirm materializes exactly one transaction", func(t *testing.T) {
		tb := newTestBot()
		account := tb.seedLinkedAccount(100)
		receipt := seedPendingReceipt(t, tb, account)
		mockBot := mocks.NewMockBot()

		update := mocks.CallbackQueryUpdate(100, 555, EncodeCallbackData(ActionConfirm, receipt.ID))
		tb.bot.dispatchCore(ctx, mockBot, update)

		require.Len(t, mockBot.AnsweredCallbacks, 1)

		require.Len(t, tb.transactions.created, 1)
		tx := tb.transactions.created[0]
		require.Equal(t, account.ID, tx.AccountID)
		require.Equal(t, receipt.CategoryID, tx.CategoryID)
		require.True(t, tx.Amount.Equal(mustParseDecimal("4.50")))
		require.Equal(t, "Coffee", tx.Description)
		require.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), tx.OccurredAt)

		stored, err := tb.receipts.GetByID(ctx, receipt.ID)
		require.NoError(t, err)
		require.Equal(t, models.ReceiptStatusApproved, stored.Status)

		edited := mockBot.LastEditedMessage()
		require.NotNil(t, edited)
		require.Equal(t, 555, edited.MessageID)
		require.Contains(t, edited.Text, "Recorded")
		require.Nil(t, edited.ReplyMarkup)
	})

	t.Run("second confirm is benign and records nothing", func(t *testing.T) {
		tb := newTestBot()
		account := tb.seedLinkedAccount(100)
		receipt := seedPendingReceipt(t, tb, account)
		mockBot := mocks.NewMockBot()

		update := mocks.CallbackQueryUpdate(100, 555, EncodeCallbackData(ActionConfirm, receipt.ID))
		tb.bot.dispatchCore(ctx, mockBot, update)
		mockBot.Reset()
		tb.bot.dispatchCore(ctx, mockBot, update)

		require.Len(t, tb.transactions.created, 1)
		msg := mockBot.LastSentMessage()
		require.NotNil(t, msg)
		require.Contains(t, msg.Text, "already been processed")
		require.Empty(t, mockBot.EditedMessages)
	})

	t.Run("missing category falls back to placeholder name", func(t *testing.T) {
		tb := newTestBot()
		account := tb.seedLinkedAccount(100)
		receipt := seedPendingReceipt(t, tb, account)
		receipt.CategoryID = 9999
		tb.receipts.receipts[receipt.ID].CategoryID = 9999
		mockBot := mocks.NewMockBot()

		update := mocks.CallbackQueryUpdate(100, 555, EncodeCallbackData(ActionConfirm, receipt.ID))
		tb.bot.dispatchCore(ctx, mockBot, update)

		require.Len(t, tb.transactions.created, 1)
		edited := mockBot.LastEditedMessage()
		require.NotNil(t, edited)
		require.Contains(t, edited.Text, models.UnknownCategoryName)
	})
}

func TestDiscardReceipt(t *testing.T) {
	ctx := context.Background()

	t.Run("discard drops the receipt without recording", func(t *testing.T) {
		tb := newTestBot()
		account := tb.seedLinkedAccount(100)
		receipt := seedPendingReceipt(t, tb, account)
		mockBot := mocks.NewMockBot()

		update := mocks.CallbackQueryUpdate(100, 555, EncodeCallbackData(ActionDiscard, receipt.ID))
		tb.bot.dispatchCore(ctx, mockBot, update)

		require.Empty(t, tb.transactions.created)
		_, err := tb.receipts.GetByID(ctx, receipt.ID)
		require.Error(t, err)

		edited := mockBot.LastEditedMessage()
		require.NotNil(t, edited)
		require.Contains(t, edited.Text, "Discarded")
	})

	t.Run("discard after confirm is benign", func(t *testing.T) {
		tb := newTestBot()
		account := tb.seedLinkedAccount(100)
		receipt := seedPendingReceipt(t, tb, account)
		mockBot := mocks.NewMockBot()

		tb.bot.dispatchCore(ctx, mockBot, mocks.CallbackQueryUpdate(100, 555, EncodeCallbackData(ActionConfirm, receipt.ID)))
		mockBot.Reset()
		tb.bot.dispatchCore(ctx, mockBot, mocks.CallbackQueryUpdate(100, 555, EncodeCallbackData(ActionDiscard, receipt.ID)))

		require.Len(t, tb.transactions.created, 1)
		msg := mockBot.LastSentMessage()
		require.NotNil(t, msg)
		require.Contains(t, msg.Text, "already been processed")
	})
}

func TestCallbackEdgeCases(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown action is ignored after acknowledgement", func(t *testing.T) {
		tb := newTestBot()
		tb.seedLinkedAccount(100)
		mockBot := mocks.NewMockBot()

		tb.bot.dispatchCore(ctx, mockBot, mocks.CallbackQueryUpdate(100, 555, "edit_receipt:1"))

		require.Len(t, mockBot.AnsweredCallbacks, 1)
		require.Equal(t, 0, mockBot.SentMessageCount())
		require.Empty(t, mockBot.EditedMessages)
	})

	t.Run("missing receipt clears the stale prompt", func(t *testing.T) {
		tb := newTestBot()
		tb.seedLinkedAccount(100)
		mockBot := mocks.NewMockBot()

		tb.bot.dispatchCore(ctx, mockBot, mocks.CallbackQueryUpdate(100, 555, EncodeCallbackData(ActionConfirm, 42)))

		edited := mockBot.LastEditedMessage()
		require.NotNil(t, edited)
		require.Contains(t, edited.Text, "no longer available")
		require.Empty(t, tb.transactions.created)
	})

	t.Run("receipt owned by another account is ignored", func(t *testing.T) {
		tb := newTestBot()
		tb.seedLinkedAccount(100)
		other := &models.Account{ID: uuid.New(), Email: "other@example.com"}
		tb.accounts.add(other)
		receipt := seedPendingReceipt(t, tb, other)
		mockBot := mocks.NewMockBot()

		tb.bot.dispatchCore(ctx, mockBot, mocks.CallbackQueryUpdate(100, 555, EncodeCallbackData(ActionConfirm, receipt.ID)))

		require.Empty(t, tb.transactions.created)
		require.Empty(t, mockBot.EditedMessages)

		stored, err := tb.receipts.GetByID(ctx, receipt.ID)
		require.NoError(t, err)
		require.Equal(t, models.ReceiptStatusPending, stored.Status)
	})

	t.Run("callback from unlinked chat prompts to connect", func(t *testing.T) {
		tb := newTestBot()
		mockBot := mocks.NewMockBot()

		tb.bot.dispatchCore(ctx, mockBot, mocks.CallbackQueryUpdate(100, 555, EncodeCallbackData(ActionConfirm, 1)))

		msg := mockBot.LastSentMessage()
		require.NotNil(t, msg)
		require.Contains(t, msg.Text, "not connected")
	})
}
