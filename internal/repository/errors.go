// Package repository provides database access for domain entities.
package repository

import "errors"

// Sentinel errors surfaced to callers. The webhook layer maps these to
// user-facing messages; they never cross the HTTP boundary.
var (
	// ErrAccountNotFound indicates the internal account id does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrNotLinked indicates no account is linked to the Telegram chat.
	ErrNotLinked = errors.New("telegram chat not linked to an account")

	// ErrReceiptNotFound indicates the receipt id does not exist.
	ErrReceiptNotFound = errors.New("receipt not found")

	// ErrCategoryNotFound indicates the category id does not exist.
	ErrCategoryNotFound = errors.New("category not found")
)
