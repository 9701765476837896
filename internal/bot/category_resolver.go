package bot

import (
	"errors"
	"strings"

	"gitlab.com/centavo/ingest-bot/internal/models"
)

// ErrNoMatchingCategory indicates the extracted category name matched none of
// the account's active categories. The pipeline fails closed on this: a
// wrongly-categorized receipt is worse than a dropped one.
var ErrNoMatchingCategory = errors.New("no matching category")

// ResolveCategory finds the account category whose name equals the extracted
// name, ignoring case and surrounding whitespace. Unlike fuzzy matching, only
// exact equality counts; anything else is rejected so the user can rephrase.
func ResolveCategory(name string, categories []models.Category) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNoMatchingCategory
	}

	for i := range categories {
		if strings.EqualFold(categories[i].Name, name) {
			return &categories[i], nil
		}
	}

	return nil, ErrNoMatchingCategory
}

// CategoryNames returns the display names of the given categories, used to
// tell the user which values are valid after a failed resolution.
func CategoryNames(categories []models.Category) []string {
	names := make([]string, len(categories))
	for i, cat := range categories {
		names[i] = cat.Name
	}
	return names
}
