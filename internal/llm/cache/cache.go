package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"docrag/internal/domain"
)

const embeddingPrefix = "emb:"

// Verify interface compliance
var _ domain.LLMClient = (*CachedClient)(nil)

// CachedClient memoizes embeddings in Redis and passes generation through.
// Redis failures degrade to uncached calls.
type CachedClient struct {
	next   domain.LLMClient
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// New wraps next. A zero ttl keeps entries until evicted.
func New(next domain.LLMClient, rdb redis.Cmdable, ttl time.Duration, logger *slog.Logger) *CachedClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedClient{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

// Key returns the cache key of an embedding.
func Key(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return embeddingPrefix + model + ":" + hex.EncodeToString(sum[:])
}

func (c *CachedClient) EmbedText(ctx context.Context, text, model string) ([]float64, error) {
	key := Key(model, text)
	data, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v []float64
		if jerr := json.Unmarshal(data, &v); jerr == nil && len(v) > 0 {
			c.hits.Add(1)
			return v, nil
		}
		c.logger.Warn("discarding unreadable cached embedding", "key", key)
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("embedding cache read failed", "error", err)
	}
	c.misses.Add(1)

	v, err := c.next.EmbedText(ctx, text, model)
	if err != nil {
		return nil, err
	}
	if err := c.store(ctx, key, v); err != nil {
		c.logger.Warn("embedding cache write failed", "error", err)
	}
	return v, nil
}

func (c *CachedClient) store(ctx context.Context, key string, v []float64) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal embedding: %w", err)
	}
	return c.rdb.Set(ctx, key, data, c.ttl).Err()
}

func (c *CachedClient) GenerateResponse(ctx context.Context, prompt, model string) (string, error) {
	return c.next.GenerateResponse(ctx, prompt, model)
}

// Stats returns the number of cache hits and misses so far.
func (c *CachedClient) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
