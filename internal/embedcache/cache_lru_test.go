package embedcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	calls int
	vec   []float32
}

func (c *countingEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	c.calls++
	return c.vec, nil
}

func (c *countingEmbedder) ModelName() string {
	return "test-model"
}

func TestWrapLRUCachesByTextAndTask(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{1, 2, 3}}
	cached := WrapLRU(inner, 16, time.Minute)

	ctx := context.Background()
	got, err := cached.Embed(ctx, "hello", "RETRIEVAL_QUERY")
	require.NoError(t, err)
	require.Equal(t, []float32{1, 2, 3}, got)
	require.Equal(t, 1, inner.calls)

	// Same text and task hits the cache.
	_, err = cached.Embed(ctx, "hello", "RETRIEVAL_QUERY")
	require.NoError(t, err)
	require.Equal(t, 1, inner.calls)

	// Different task type is a different entry.
	_, err = cached.Embed(ctx, "hello", "RETRIEVAL_DOCUMENT")
	require.NoError(t, err)
	require.Equal(t, 2, inner.calls)

	// Different text misses.
	_, err = cached.Embed(ctx, "world", "RETRIEVAL_QUERY")
	require.NoError(t, err)
	require.Equal(t, 3, inner.calls)
}

func TestWrapLRUReturnsCopies(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{1, 2, 3}}
	cached := WrapLRU(inner, 16, time.Minute)

	ctx := context.Background()
	first, err := cached.Embed(ctx, "hello", "RETRIEVAL_QUERY")
	require.NoError(t, err)
	first[0] = 99

	second, err := cached.Embed(ctx, "hello", "RETRIEVAL_QUERY")
	require.NoError(t, err)
	require.Equal(t, float32(1), second[0])
}

func TestWrapLRUDisabled(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{1}}
	require.Equal(t, inner, WrapLRU(inner, 0, time.Minute))
	require.Equal(t, inner, WrapLRU(inner, 16, 0))
}
