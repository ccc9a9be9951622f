package job

import (
	"context"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/petwell/petwell/internal/repo"
)

// CacheCleanupJob drops embedding cache rows older than the retention
// window so the table does not grow without bound.
type CacheCleanupJob struct {
	cache    *repo.EmbeddingCacheRepo
	keepDays int
}

func NewCacheCleanupJob(cache *repo.EmbeddingCacheRepo, keepDays int) *CacheCleanupJob {
	return &CacheCleanupJob{cache: cache, keepDays: keepDays}
}

func (j *CacheCleanupJob) Name() string {
	return "embedding_cache_cleanup"
}

func (j *CacheCleanupJob) Run(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -j.keepDays).UnixMilli()
	deleted, err := j.cache.DeleteBefore(ctx, cutoff)
	if err != nil {
		return err
	}
	logutil.GetLogger(ctx).Info("embedding cache cleanup finished",
		zap.Int64("deleted", deleted),
		zap.Int("keep_days", j.keepDays))
	return nil
}
