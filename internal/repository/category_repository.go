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

// CategoryRepository handles category database operations.
type CategoryRepository struct {
	db database.PGXDB
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db database.PGXDB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create adds a new category for an account.
func (r *CategoryRepository) Create(ctx context.Context, cat *models.Category) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO categories (account_id, name, type, nature, budget, payment_due_day, icon, color, description, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`, cat.AccountID, cat.Name, cat.Type, cat.Nature, cat.Budget, cat.PaymentDueDay,
		cat.Icon, cat.Color, cat.Description, cat.Active,
	).Scan(&cat.ID, &cat.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// GetByID retrieves a category by id.
func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	var cat models.Category
	err := r.db.QueryRow(ctx, `
		SELECT id, account_id, name, type, nature, budget, payment_due_day, icon, color, description, active, created_at
		FROM categories WHERE id = $1
	`, id).Scan(&cat.ID, &cat.AccountID, &cat.Name, &cat.Type, &cat.Nature, &cat.Budget,
		&cat.PaymentDueDay, &cat.Icon, &cat.Color, &cat.Description, &cat.Active, &cat.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &cat, nil
}

// ListActive retrieves the active categories belonging to an account,
// ordered by name. This is the list extraction grounds its choice on.
func (r *CategoryRepository) ListActive(ctx context.Context, accountID uuid.UUID) ([]models.Category, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, account_id, name, type, nature, budget, payment_due_day, icon, color, description, active, created_at
		FROM categories WHERE account_id = $1 AND active ORDER BY name
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var cat models.Category
		if err := rows.Scan(&cat.ID, &cat.AccountID, &cat.Name, &cat.Type, &cat.Nature, &cat.Budget,
			&cat.PaymentDueDay, &cat.Icon, &cat.Color, &cat.Description, &cat.Active, &cat.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// Delete removes a category by id.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}
