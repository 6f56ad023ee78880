package enrich

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"enrich-service/internal/common/logging"
)

const cacheKeyPrefix = "enrich:result:"

// ResultCache caches completed enrichments in Redis, keyed by normalized
// subject, so repeat requests for a profile don't burn provider credits.
// A nil *ResultCache is valid and disables caching.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResultCache creates a cache backed by client with the given TTL.
func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ResultCache{client: client, ttl: ttl}
}

// Get returns the cached result for a normalized subject, if present.
// Cache failures are logged and reported as misses.
func (c *ResultCache) Get(ctx context.Context, subject string) (*Result, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, cacheKeyPrefix+subject).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logging.Warn("Result cache read failed", logging.String("subject", subject), logging.Err(err))
		return nil, false
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		logging.Warn("Result cache entry corrupt", logging.String("subject", subject), logging.Err(err))
		return nil, false
	}
	return &result, true
}

// Set stores a result under a normalized subject. Best-effort; failures
// are logged and swallowed.
func (c *ResultCache) Set(ctx context.Context, subject string, result *Result) {
	if c == nil || c.client == nil || result == nil {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		logging.Warn("Result cache encode failed", logging.String("subject", subject), logging.Err(err))
		return
	}

	if err := c.client.Set(ctx, cacheKeyPrefix+subject, data, c.ttl).Err(); err != nil {
		logging.Warn("Result cache write failed", logging.String("subject", subject), logging.Err(err))
	}
}
