package bot

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/centavo/ingest-bot/internal/models"
)

func TestResolveCategory(t *testing.T) {
	categories := []models.Category{
		{ID: 1, Name: "Dining", Type: models.CategoryTypeExpense},
		{ID: 2, Name: "Groceries", Type: models.CategoryTypeExpense},
		{ID: 3, Name: "Salary", Type: models.CategoryTypeIncome},
	}

	t.Run("exact match", func(t *testing.T) {
		cat, err := ResolveCategory("Dining", categories)
		require.NoError(t, err)
		require.Equal(t, int64(1), cat.ID)
	})

	t.Run("case insensitive", func(t *testing.T) {
		cat, err := ResolveCategory("groceries", categories)
		require.NoError(t, err)
		require.Equal(t, int64(2), cat.ID)
	})

	t.Run("surrounding whitespace", func(t *testing.T) {
		cat, err := ResolveCategory("  Salary  ", categories)
		require.NoError(t, err)
		require.Equal(t, int64(3), cat.ID)
	})

	t.Run("partial names do not match", func(t *testing.T) {
		_, err := ResolveCategory("Dine", categories)
		require.ErrorIs(t, err, ErrNoMatchingCategory)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := ResolveCategory("Travel", categories)
		require.ErrorIs(t, err, ErrNoMatchingCategory)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := ResolveCategory("", categories)
		require.ErrorIs(t, err, ErrNoMatchingCategory)
	})

	t.Run("empty category list", func(t *testing.T) {
		_, err := ResolveCategory("Dining", nil)
		require.ErrorIs(t, err, ErrNoMatchingCategory)
	})
}

func TestCategoryNames(t *testing.T) {
	categories := []models.Category{
		{Name: "Dining"},
		{Name: "Salary"},
	}
	require.Equal(t, []string{"Dining", "Salary"}, CategoryNames(categories))
	require.Empty(t, CategoryNames(nil))
}
