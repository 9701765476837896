package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewGCSStore_RequiresBucket(t *testing.T) {
	store, err := NewGCSStore(context.Background(), "")
	require.Error(t, err)
	require.Nil(t, store)
	require.Contains(t, err.Error(), "bucket is required")
}
