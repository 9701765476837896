package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"gitlab.com/centavo/ingest-bot/internal/database"
	"gitlab.com/centavo/ingest-bot/internal/models"
)

// AccountRepository handles account database operations.
type AccountRepository struct {
	db database.PGXDB
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(db database.PGXDB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account. Used by the dashboard backend and tests.
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO accounts (id, email, display_name, telegram_chat_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`, account.ID, account.Email, account.DisplayName, account.TelegramChatID,
	).Scan(&account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetByID retrieves an account by its internal id.
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var account models.Account
	err := r.db.QueryRow(ctx, `
		SELECT id, email, display_name, telegram_chat_id, created_at, updated_at
		FROM accounts WHERE id = $1
	`, id).Scan(&account.ID, &account.Email, &account.DisplayName,
		&account.TelegramChatID, &account.CreatedAt, &account.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// GetByTelegramID resolves the account linked to a Telegram chat.
// Returns ErrNotLinked when no account carries the chat id.
func (r *AccountRepository) GetByTelegramID(ctx context.Context, chatID int64) (*models.Account, error) {
	var account models.Account
	err := r.db.QueryRow(ctx, `
		SELECT id, email, display_name, telegram_chat_id, created_at, updated_at
		FROM accounts WHERE telegram_chat_id = $1
	`, chatID).Scan(&account.ID, &account.Email, &account.DisplayName,
		&account.TelegramChatID, &account.CreatedAt, &account.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotLinked
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by telegram id: %w", err)
	}
	return &account, nil
}

// LinkTelegram binds a Telegram chat to an account. The operation is
// idempotent; linking the same pair twice is a no-op. If the chat was bound
// to a different account the old binding is released and rebound=true is
// returned so callers can warn. Returns ErrAccountNotFound when the account
// id does not exist.
func (r *AccountRepository) LinkTelegram(ctx context.Context, accountID uuid.UUID, chatID int64) (rebound bool, err error) {
	released, err := r.db.Exec(ctx, `
		UPDATE accounts SET telegram_chat_id = NULL, updated_at = NOW()
		WHERE telegram_chat_id = $1 AND id <> $2
	`, chatID, accountID)
	if err != nil {
		return false, fmt.Errorf("failed to release previous telegram binding: %w", err)
	}

	linked, err := r.db.Exec(ctx, `
		UPDATE accounts SET telegram_chat_id = $2, updated_at = NOW()
		WHERE id = $1
	`, accountID, chatID)
	if err != nil {
		return false, fmt.Errorf("failed to link telegram chat: %w", err)
	}
	if linked.RowsAffected() == 0 {
		return false, ErrAccountNotFound
	}

	return released.RowsAffected() > 0, nil
}

// ListLinked returns all accounts with a Telegram binding. Used by the daily
// summary job.
func (r *AccountRepository) ListLinked(ctx context.Context) ([]models.Account, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, email, display_name, telegram_chat_id, created_at, updated_at
		FROM accounts WHERE telegram_chat_id IS NOT NULL
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query linked accounts: %w", err)
	}
	defer rows.Close()

	var accounts []models.Account
	for rows.Next() {
		var account models.Account
		if err := rows.Scan(&account.ID, &account.Email, &account.DisplayName,
			&account.TelegramChatID, &account.CreatedAt, &account.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}
