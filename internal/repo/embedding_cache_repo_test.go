package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/petwell/petwell/internal/model"
	"github.com/petwell/petwell/internal/repo"
)

func TestEmbeddingCacheRepoRoundTrip(t *testing.T) {
	db, cleanup := openTestDB(t)
	defer cleanup()

	cache := repo.NewEmbeddingCacheRepo(db)
	ctx := context.Background()
	now := time.Now().UnixMilli()

	_, ok, err := cache.Get(ctx, "text-embedding-004", "RETRIEVAL_QUERY", "hash-1")
	require.NoError(t, err)
	require.False(t, ok)

	vec := testVector(3)
	require.NoError(t, cache.Save(ctx, &model.EmbeddingCache{
		ModelName:   "text-embedding-004",
		TaskType:    "RETRIEVAL_QUERY",
		ContentHash: "hash-1",
		Embedding:   vec,
		Ctime:       now,
	}))

	got, ok, err := cache.Get(ctx, "text-embedding-004", "RETRIEVAL_QUERY", "hash-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, vec, got)

	// Task type is part of the key.
	_, ok, err = cache.Get(ctx, "text-embedding-004", "RETRIEVAL_DOCUMENT", "hash-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEmbeddingCacheRepoDeleteBefore(t *testing.T) {
	db, cleanup := openTestDB(t)
	defer cleanup()

	cache := repo.NewEmbeddingCacheRepo(db)
	ctx := context.Background()
	now := time.Now().UnixMilli()

	require.NoError(t, cache.Save(ctx, &model.EmbeddingCache{
		ModelName: "m", TaskType: "t", ContentHash: "old", Embedding: testVector(1), Ctime: now - 1000,
	}))
	require.NoError(t, cache.Save(ctx, &model.EmbeddingCache{
		ModelName: "m", TaskType: "t", ContentHash: "new", Embedding: testVector(2), Ctime: now,
	}))

	deleted, err := cache.DeleteBefore(ctx, now)
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	_, ok, err := cache.Get(ctx, "m", "t", "old")
	require.NoError(t, err)
	require.False(t, ok)
	_, ok, err = cache.Get(ctx, "m", "t", "new")
	require.NoError(t, err)
	require.True(t, ok)
}
