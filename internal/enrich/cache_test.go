package enrich

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*ResultCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewResultCache(client, time.Hour), mr
}

func TestResultCache_SetAndGet(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	result := &Result{
		AttemptID:  "attempt-1",
		Subject:    "linkedin.com/in/janedoe",
		FullName:   "Jane Doe",
		Email:      "jane@x.com",
		EnrichedAt: time.Now().Truncate(time.Second),
	}

	cache.Set(ctx, result.Subject, result)

	cached, ok := cache.Get(ctx, result.Subject)
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", cached.FullName)
	assert.Equal(t, "jane@x.com", cached.Email)
}

func TestResultCache_Miss(t *testing.T) {
	cache, _ := newTestCache(t)

	_, ok := cache.Get(context.Background(), "linkedin.com/in/nobody")
	assert.False(t, ok)
}

func TestResultCache_TTLExpiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, "subject", &Result{FullName: "Jane Doe"})

	mr.FastForward(2 * time.Hour)

	_, ok := cache.Get(ctx, "subject")
	assert.False(t, ok)
}

func TestResultCache_NilCacheIsSafe(t *testing.T) {
	var cache *ResultCache
	ctx := context.Background()

	cache.Set(ctx, "subject", &Result{})
	_, ok := cache.Get(ctx, "subject")
	assert.False(t, ok)
}

func TestResultCache_CorruptEntryIsAMiss(t *testing.T) {
	cache, mr := newTestCache(t)

	require.NoError(t, mr.Set(cacheKeyPrefix+"subject", "not json"))

	_, ok := cache.Get(context.Background(), "subject")
	assert.False(t, ok)
}
