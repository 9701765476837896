package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gitlab.com/centavo/ingest-bot/internal/database"
	"gitlab.com/centavo/ingest-bot/internal/models"
)

func seedAccountAndCategory(t *testing.T, db database.PGXDB) (*models.Account, *models.Category) {
	t.Helper()
	ctx := context.Background()

	account := &models.Account{ID: uuid.New(), Email: uuid.NewString() + "@example.com", DisplayName: "Receipt Tester"}
	require.NoError(t, NewAccountRepository(db).Create(ctx, account))

	category := &models.Category{
		AccountID: account.ID,
		Name:      "Dining",
		Type:      models.CategoryTypeExpense,
		Nature:    models.CategoryNatureDynamic,
		Active:    true,
	}
	require.NoError(t, NewCategoryRepository(db).Create(ctx, category))

	return account, category
}

func newPendingReceipt(account *models.Account, category *models.Category) *models.Receipt {
	return &models.Receipt{
		AccountID:   account.ID,
		CategoryID:  category.ID,
		OccurredOn:  "2026-09-01",
		Type:        models.CategoryTypeExpense,
		Description: "Coffee",
		Amount:      decimal.RequireFromString("4.50"),
	}
}

func TestReceiptRepository_Create(t *testing.T) {
	tx := database.TestTx(t)
	ctx := context.Background()

	repo := NewReceiptRepository(tx)
	account, category := seedAccountAndCategory(t, tx)

	receipt := newPendingReceipt(account, category)
	require.NoError(t, repo.Create(ctx, receipt))
	require.NotZero(t, receipt.ID)
	require.Equal(t, models.ReceiptStatusPending, receipt.Status)

	fetched, err := repo.GetByID(ctx, receipt.ID)
	require.NoError(t, err)
	require.Equal(t, account.ID, fetched.AccountID)
	require.Equal(t, "2026-09-01", fetched.OccurredOn)
	require.True(t, fetched.Amount.Equal(decimal.RequireFromString("4.50")))
}

func TestReceiptRepository_GetByID_NotFound(t *testing.T) {
	tx := database.TestTx(t)

	repo := NewReceiptRepository(tx)
	_, err := repo.GetByID(context.Background(), 424242)
	require.ErrorIs(t, err, ErrReceiptNotFound)
}

func TestReceiptRepository_Approve(t *testing.T) {
	tx := database.TestTx(t)
	ctx := context.Background()

	repo := NewReceiptRepository(tx)
	account, category := seedAccountAndCategory(t, tx)

	t.Run("approves a pending receipt once", func(t *testing.T) {
		receipt := newPendingReceipt(account, category)
		require.NoError(t, repo.Create(ctx, receipt))

		approved, err := repo.Approve(ctx, receipt.ID)
		require.NoError(t, err)
		require.True(t, approved)

		fetched, err := repo.GetByID(ctx, receipt.ID)
		require.NoError(t, err)
		require.Equal(t, models.ReceiptStatusApproved, fetched.Status)

		approved, err = repo.Approve(ctx, receipt.ID)
		require.NoError(t, err)
		require.False(t, approved)
	})

	t.Run("approving a missing receipt reports false", func(t *testing.T) {
		approved, err := repo.Approve(ctx, 424242)
		require.NoError(t, err)
		require.False(t, approved)
	})
}

func TestReceiptRepository_Delete(t *testing.T) {
	tx := database.TestTx(t)
	ctx := context.Background()

	repo := NewReceiptRepository(tx)
	account, category := seedAccountAndCategory(t, tx)

	receipt := newPendingReceipt(account, category)
	require.NoError(t, repo.Create(ctx, receipt))

	require.NoError(t, repo.Delete(ctx, receipt.ID))
	_, err := repo.GetByID(ctx, receipt.ID)
	require.ErrorIs(t, err, ErrReceiptNotFound)

	// Second delete is a no-op.
	require.NoError(t, repo.Delete(ctx, receipt.ID))
}
