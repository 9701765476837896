package gemini

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("empty API key returns error", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient(context.Background(), "")
		require.Error(t, err)
		require.Nil(t, client)
		require.Contains(t, err.Error(), "API key is required")
	})

	t.Run("non-empty key creates a client", func(t *testing.T) {
		t.Parallel()

		// The key itself is only validated on the first request.
		client, err := NewClient(context.Background(), "test-api-key")
		require.NoError(t, err)
		require.NotNil(t, client)
	})
}

func TestNewClientWithGenerator(t *testing.T) {
	t.Parallel()

	gen := &stubGenerator{response: "{}"}
	client := NewClientWithGenerator(gen)
	require.NotNil(t, client)
	require.Equal(t, ContentGenerator(gen), client.generator)
}
