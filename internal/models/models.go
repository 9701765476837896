// Package models defines the domain entities for the finance tracker.
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReceiptDateLayout is the ISO date format receipts carry until confirmation
// converts them into a ledger timestamp.
const ReceiptDateLayout = "2006-01-02"

// UnknownCategoryName is rendered when a referenced category row no longer exists.
const UnknownCategoryName = "Unknown Category"

// Category types.
const (
	CategoryTypeIncome  = "income"
	CategoryTypeExpense = "expense"
)

// Category natures.
const (
	CategoryNatureFixed   = "fixed"
	CategoryNatureDynamic = "dynamic"
)

// Receipt statuses. A receipt only moves forward: pending receipts are either
// approved (and materialized into a transaction) or deleted.
const (
	ReceiptStatusPending  = "pending"
	ReceiptStatusApproved = "approved"
)

// Account is the internal user identity, distinct from the Telegram identity.
// TelegramChatID is set once via the /start linking flow.
type Account struct {
	ID             uuid.UUID
	Email          string
	DisplayName    string
	TelegramChatID *int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Category is a user-owned income/expense classification.
type Category struct {
	ID            int64
	AccountID     uuid.UUID
	Name          string
	Type          string
	Nature        string
	Budget        *decimal.Decimal
	PaymentDueDay *int
	Icon          string
	Color         string
	Description   string
	Active        bool
	CreatedAt     time.Time
}

// Receipt is a pending, LLM-extracted candidate transaction awaiting user
// confirmation. OccurredOn is an ISO date string until approval converts it.
type Receipt struct {
	ID             int64
	AccountID      uuid.UUID
	CategoryID     int64
	OccurredOn     string
	Type           string
	Description    string
	Amount         decimal.Decimal
	Status         string
	ImageURL       string
	TelegramFileID string
	ChatMessageID  int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Transaction is a confirmed ledger entry.
type Transaction struct {
	ID          int64
	AccountID   uuid.UUID
	CategoryID  int64
	Amount      decimal.Decimal
	Description string
	OccurredAt  time.Time
	Type        string
	ImageURL    string
	CreatedAt   time.Time
}
