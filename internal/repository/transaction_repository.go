package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gitlab.com/centavo/ingest-bot/internal/database"
	"gitlab.com/centavo/ingest-bot/internal/models"
)

// TransactionRepository handles ledger transaction database operations.
type TransactionRepository struct {
	db database.PGXDB
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db database.PGXDB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create inserts a new ledger transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO transactions (account_id, category_id, amount, description, occurred_at, type, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, tx.AccountID, tx.CategoryID, tx.Amount, tx.Description, tx.OccurredAt, tx.Type, tx.ImageURL,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// ListByAccountAndRange retrieves an account's transactions within a time range,
// newest first.
func (r *TransactionRepository) ListByAccountAndRange(
	ctx context.Context,
	accountID uuid.UUID,
	start, end time.Time,
) ([]models.Transaction, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, account_id, category_id, amount, description, occurred_at, type, image_url, created_at
		FROM transactions
		WHERE account_id = $1 AND occurred_at >= $2 AND occurred_at < $3
		ORDER BY occurred_at DESC, id DESC
	`, accountID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.Transaction
	for rows.Next() {
		var tx models.Transaction
		if err := rows.Scan(&tx.ID, &tx.AccountID, &tx.CategoryID, &tx.Amount,
			&tx.Description, &tx.OccurredAt, &tx.Type, &tx.ImageURL, &tx.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txs, nil
}

// CategoryTotal is a per-category expense aggregate for a time range.
type CategoryTotal struct {
	CategoryID   int64
	CategoryName string
	Total        decimal.Decimal
}

// SumExpensesByCategory aggregates an account's expense transactions per
// category within a time range. Transactions whose category row was deleted
// aggregate under a NULL name; callers substitute a placeholder.
func (r *TransactionRepository) SumExpensesByCategory(
	ctx context.Context,
	accountID uuid.UUID,
	start, end time.Time,
) ([]CategoryTotal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT t.category_id, c.name, COALESCE(SUM(t.amount), 0)
		FROM transactions t
		LEFT JOIN categories c ON t.category_id = c.id
		WHERE t.account_id = $1 AND t.occurred_at >= $2 AND t.occurred_at < $3 AND t.type = $4
		GROUP BY t.category_id, c.name
		ORDER BY 3 DESC
	`, accountID, start, end, models.CategoryTypeExpense)
	if err != nil {
		return nil, fmt.Errorf("failed to sum expenses by category: %w", err)
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var ct CategoryTotal
		var name *string
		if err := rows.Scan(&ct.CategoryID, &name, &ct.Total); err != nil {
			return nil, fmt.Errorf("failed to scan category total: %w", err)
		}
		if name != nil {
			ct.CategoryName = *name
		} else {
			ct.CategoryName = models.UnknownCategoryName
		}
		totals = append(totals, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category totals: %w", err)
	}
	return totals, nil
}
