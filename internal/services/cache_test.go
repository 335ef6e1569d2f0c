package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryCacheForTest(ttl time.Duration) CacheServiceInterface {
	return NewCacheService(nil, ttl, testLogger())
}

func TestCacheKeyPrefix(t *testing.T) {
	assert.Equal(t, "nfce:"+testFetchKey, CacheKey(testFetchKey))
}

func TestCacheSetGetMemoryFallback(t *testing.T) {
	cache := memoryCacheForTest(time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, CacheKey(testFetchKey), `[{"name":"Arroz"}]`))

	value, err := cache.Get(ctx, CacheKey(testFetchKey))
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"Arroz"}]`, value)
}

func TestCacheGetMiss(t *testing.T) {
	cache := memoryCacheForTest(time.Minute)

	_, err := cache.Get(context.Background(), CacheKey("missing"))
	assert.Error(t, err)
}

func TestCacheExpiration(t *testing.T) {
	cache := memoryCacheForTest(-time.Second)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, CacheKey(testFetchKey), "value"))

	_, err := cache.Get(ctx, CacheKey(testFetchKey))
	assert.Error(t, err, "expired entries must not be served")
}

func TestCacheDelete(t *testing.T) {
	cache := memoryCacheForTest(time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, CacheKey(testFetchKey), "value"))
	require.NoError(t, cache.Delete(ctx, CacheKey(testFetchKey)))

	_, err := cache.Get(ctx, CacheKey(testFetchKey))
	assert.Error(t, err)
}

func TestCacheClear(t *testing.T) {
	cache := memoryCacheForTest(time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, CacheKey("key1"), "a"))
	require.NoError(t, cache.Set(ctx, CacheKey("key2"), "b"))
	require.NoError(t, cache.Clear(ctx))

	stats, err := cache.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats["memory_entries"])
}

func TestCacheHealthWithoutRedis(t *testing.T) {
	cache := memoryCacheForTest(time.Minute)

	health := cache.Health()
	assert.Equal(t, "degraded", health["status"])
	assert.Equal(t, "memory", health["backend"])
}
