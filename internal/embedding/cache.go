// internal/embedding/cache.go
package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"casematch-workers/internal/casematch"
	"casematch-workers/internal/common/database"
	"casematch-workers/internal/common/logger"
	"casematch-workers/internal/common/metrics"
)

// CachedEmbedder serves repeated texts from Redis. Cache failures fall through
// to the wrapped embedder.
type CachedEmbedder struct {
	inner  casematch.Embedder
	redis  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedEmbedder(inner casematch.Embedder, redis *database.RedisClient, ttl time.Duration, log logger.Logger) *CachedEmbedder {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &CachedEmbedder{inner: inner, redis: redis, ttl: ttl, logger: log}
}

func (c *CachedEmbedder) Model() string {
	return c.inner.Model()
}

// CacheKey is model scoped so a model change never serves stale vectors.
func CacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return "embedding:" + model + ":" + hex.EncodeToString(sum[:])
}

func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := CacheKey(c.inner.Model(), text)

	var cached []float32
	err := c.redis.GetJSON(ctx, key, &cached)
	switch {
	case err == nil && len(cached) > 0:
		metrics.EmbeddingCacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	case err == nil, errors.Is(err, database.ErrCacheMiss):
		metrics.EmbeddingCacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.EmbeddingCacheLookups.WithLabelValues("error").Inc()
		c.logger.Warn("embedding cache read failed", map[string]interface{}{"error": err.Error()})
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := c.redis.SetJSON(ctx, key, vec, c.ttl); err != nil {
		c.logger.Warn("embedding cache write failed", map[string]interface{}{"error": err.Error()})
	}
	return vec, nil
}
