package cache

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisCache(client, "package_list", time.Hour), s
}

func TestRedisCacheSetGet(t *testing.T) {
	c, _ := newRedisCache(t)
	ctx := context.Background()

	got, err := c.Get(ctx, "page=1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, "page=1", []byte(`{"total":3}`)))

	got, err = c.Get(ctx, "page=1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"total":3}`), got)
}

func TestRedisCacheInvalidate(t *testing.T) {
	c, _ := newRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "page=1", []byte("a")))
	require.NoError(t, c.Set(ctx, "page=2&type=WEEKEND", []byte("b")))

	require.NoError(t, c.Invalidate(ctx))

	for _, key := range []string{"page=1", "page=2&type=WEEKEND"} {
		got, err := c.Get(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, got, "key %s should be gone after invalidation", key)
	}

	// The cache keeps working on the new generation.
	require.NoError(t, c.Set(ctx, "page=1", []byte("fresh")))
	got, err := c.Get(ctx, "page=1")
	require.NoError(t, err)
	assert.Equal(t, []byte("fresh"), got)
}

func TestRedisCacheTTL(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(s.Close)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })

	c := NewRedisCache(client, "package_list", time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "page=1", []byte("a")))
	s.FastForward(2 * time.Minute)

	got, err := c.Get(ctx, "page=1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(50 * time.Millisecond)
	ctx := context.Background()

	got, err := c.Get(ctx, "page=1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, "page=1", []byte("a")))
	got, err = c.Get(ctx, "page=1")
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), got)

	require.NoError(t, c.Invalidate(ctx))
	got, err = c.Get(ctx, "page=1")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, "page=2", []byte("b")))
	time.Sleep(80 * time.Millisecond)
	got, err = c.Get(ctx, "page=2")
	require.NoError(t, err)
	assert.Nil(t, got, "entry should expire after TTL")
}

type failingCache struct {
	err error
}

func (f *failingCache) Get(ctx context.Context, key string) ([]byte, error) { return nil, f.err }
func (f *failingCache) Set(ctx context.Context, key string, data []byte) error {
	return f.err
}
func (f *failingCache) Invalidate(ctx context.Context) error { return f.err }

func TestFailoverCacheTripsToFallback(t *testing.T) {
	logger := zerolog.New(io.Discard)
	fallback := NewMemoryCache(time.Hour)
	c := NewFailoverCache(&failingCache{err: errors.New("connection refused")}, fallback, &logger)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "page=1", []byte("a")))

	got, err := c.Get(ctx, "page=1")
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), got)

	require.NoError(t, c.Invalidate(ctx))
	got, err = c.Get(ctx, "page=1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFailoverCachePrefersPrimary(t *testing.T) {
	logger := zerolog.New(io.Discard)
	primary, _ := newRedisCache(t)
	fallback := NewMemoryCache(time.Hour)
	c := NewFailoverCache(primary, fallback, &logger)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "page=1", []byte("a")))

	// The write landed on the primary, not the fallback.
	fromPrimary, err := primary.Get(ctx, "page=1")
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), fromPrimary)

	fromFallback, err := fallback.Get(ctx, "page=1")
	require.NoError(t, err)
	assert.Nil(t, fromFallback)
}
