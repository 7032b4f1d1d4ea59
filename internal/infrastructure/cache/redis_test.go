package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/furnilens/backend/internal/domain"
)

// redisTestCache connects to REDIS_URL and skips when it is unset
func redisTestCache(t *testing.T) *RedisCache {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	cache, err := NewRedisCache(context.Background(), RedisConfig{URL: url, Prefix: "furnilens-test:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func TestNewRedisCache_InvalidURL(t *testing.T) {
	_, err := NewRedisCache(context.Background(), RedisConfig{URL: "not a url"})
	assert.Error(t, err)
}

func TestNewRedisCache_DefaultPrefix(t *testing.T) {
	c := newRedisCache(nil, "")
	assert.Equal(t, defaultKeyPrefix, c.prefix)
}

func TestRedisCache_RoundTrip(t *testing.T) {
	cache := redisTestCache(t)
	ctx := context.Background()
	key := "session:round-trip"
	t.Cleanup(func() { _ = cache.Delete(ctx, key) })

	_, err := cache.Get(ctx, key)
	assert.True(t, errors.Is(err, domain.ErrCacheMiss))

	require.NoError(t, cache.Set(ctx, key, []byte(`{"session_id":"round-trip"}`), time.Minute))

	got, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"session_id":"round-trip"}`, string(got))

	exists, err := cache.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, cache.Delete(ctx, key))
	exists, err = cache.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRedisCache_Expiry(t *testing.T) {
	cache := redisTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "search:expiring", []byte("x"), 50*time.Millisecond))
	time.Sleep(150 * time.Millisecond)

	_, err := cache.Get(ctx, "search:expiring")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}
