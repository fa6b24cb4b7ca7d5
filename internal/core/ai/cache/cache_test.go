package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"recipe-bot/internal/infrastructure/config"
	"recipe-bot/internal/pkg/common"
)

func testConfig(size int) config.CacheConfig {
	return config.CacheConfig{Enabled: true, MaxSize: size, TTL: time.Minute, CleanupInterval: time.Hour}
}

func TestManagerSetGet(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	m := NewManager(testConfig(10))
	defer m.Close()
	ctx := context.Background()

	_, err := m.Get(ctx, "prompt")
	assert.True(t, errors.Is(err, common.ErrCacheMiss))

	require.NoError(t, m.Set(ctx, "prompt", "Title: Soup"))
	val, err := m.Get(ctx, "prompt")
	require.NoError(t, err)
	assert.Equal(t, "Title: Soup", val)

	stats := m.GetStats()
	assert.Equal(t, int64(1), stats["hits"])
	assert.Equal(t, int64(1), stats["misses"])
}

func TestManagerExpiry(t *testing.T) {
	m := NewManager(testConfig(10))
	defer m.Close()
	ctx := context.Background()

	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "prompt", "value"))
	now = now.Add(2 * time.Minute)

	_, err := m.Get(ctx, "prompt")
	assert.True(t, errors.Is(err, common.ErrCacheMiss))
	assert.Equal(t, 0, m.GetStats()["size"])
}

func TestManagerEvictsLeastUsed(t *testing.T) {
	m := NewManager(testConfig(2))
	defer m.Close()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, "a", "1"))
	require.NoError(t, m.Set(ctx, "b", "2"))
	_, err := m.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "c", "3"))

	_, err = m.Get(ctx, "b")
	assert.True(t, errors.Is(err, common.ErrCacheMiss))
	val, err := m.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "1", val)
}

func TestManagerDisabled(t *testing.T) {
	m := NewManager(config.CacheConfig{Enabled: false})
	defer m.Close()

	assert.NoError(t, m.Set(context.Background(), "p", "v"))
	_, err := m.Get(context.Background(), "p")
	assert.True(t, errors.Is(err, common.ErrCacheDisabled))
}

func TestManagerCloseStopsCleanup(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	m := NewManager(config.CacheConfig{Enabled: true, MaxSize: 1, TTL: time.Second, CleanupInterval: time.Millisecond})
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
}

func TestRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	c := NewRedisCache(client, time.Minute)
	ctx := context.Background()

	_, err := c.Get(ctx, "prompt")
	assert.True(t, errors.Is(err, common.ErrCacheMiss))

	require.NoError(t, c.Set(ctx, "prompt", "Title: Curry"))
	val, err := c.Get(ctx, "prompt")
	require.NoError(t, err)
	assert.Equal(t, "Title: Curry", val)

	mr.FastForward(2 * time.Minute)
	_, err = c.Get(ctx, "prompt")
	assert.True(t, errors.Is(err, common.ErrCacheMiss))
}
