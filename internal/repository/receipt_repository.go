package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"gitlab.com/centavo/ingest-bot/internal/database"
	"gitlab.com/centavo/ingest-bot/internal/models"
)

// ReceiptRepository handles receipt database operations.
type ReceiptRepository struct {
	db database.PGXDB
}

// NewReceiptRepository creates a new ReceiptRepository.
func NewReceiptRepository(db database.PGXDB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

// Create inserts a new receipt with status pending.
func (r *ReceiptRepository) Create(ctx context.Context, receipt *models.Receipt) error {
	if receipt.Status == "" {
		receipt.Status = models.ReceiptStatusPending
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO receipts (account_id, category_id, occurred_on, type, description, amount, status, image_url, telegram_file_id, chat_message_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`, receipt.AccountID, receipt.CategoryID, receipt.OccurredOn, receipt.Type,
		receipt.Description, receipt.Amount, receipt.Status, receipt.ImageURL,
		receipt.TelegramFileID, receipt.ChatMessageID,
	).Scan(&receipt.ID, &receipt.CreatedAt, &receipt.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create receipt: %w", err)
	}
	return nil
}

// GetByID retrieves a receipt by id. Returns ErrReceiptNotFound when missing.
func (r *ReceiptRepository) GetByID(ctx context.Context, id int64) (*models.Receipt, error) {
	var rec models.Receipt
	err := r.db.QueryRow(ctx, `
		SELECT id, account_id, category_id, occurred_on, type, description, amount, status, image_url, telegram_file_id, chat_message_id, created_at, updated_at
		FROM receipts WHERE id = $1
	`, id).Scan(&rec.ID, &rec.AccountID, &rec.CategoryID, &rec.OccurredOn, &rec.Type,
		&rec.Description, &rec.Amount, &rec.Status, &rec.ImageURL, &rec.TelegramFileID,
		&rec.ChatMessageID, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReceiptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receipt: %w", err)
	}
	return &rec, nil
}

// Approve transitions a receipt from pending to approved. The update is
// conditional on the current status, so a redelivered or repeated callback
// observes approved=false instead of approving twice.
func (r *ReceiptRepository) Approve(ctx context.Context, id int64) (approved bool, err error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE receipts SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3
	`, id, models.ReceiptStatusApproved, models.ReceiptStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to approve receipt: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes a receipt by id. Deleting an already-deleted receipt is a no-op.
func (r *ReceiptRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM receipts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete receipt: %w", err)
	}
	return nil
}
