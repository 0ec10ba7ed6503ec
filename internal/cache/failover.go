package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// FailoverCache serves from primary (redis) and trips to the fallback
// (memory) when the primary errors; the primary is retried after a cooldown.
type FailoverCache struct {
	primary   Cache
	fallback  Cache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64 // unix nanos
}

const recoveryInterval = time.Minute

func NewFailoverCache(primary, fallback Cache, logger *zerolog.Logger) *FailoverCache {
	return &FailoverCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (c *FailoverCache) Get(ctx context.Context, key string) ([]byte, error) {
	if !c.isDown.Load() {
		data, err := c.primary.Get(ctx, key)
		if err == nil {
			return data, nil
		}
		c.trip(err)
	}

	if c.shouldRetryPrimary() {
		data, err := c.primary.Get(ctx, key)
		if err == nil {
			c.isDown.Store(false)
			return data, nil
		}
		c.lastCheck.Store(time.Now().UnixNano())
	}

	return c.fallback.Get(ctx, key)
}

func (c *FailoverCache) Set(ctx context.Context, key string, data []byte) error {
	if !c.isDown.Load() {
		err := c.primary.Set(ctx, key, data)
		if err == nil {
			return nil
		}
		c.trip(err)
	}
	return c.fallback.Set(ctx, key, data)
}

// Invalidate always hits both sides: a write must never leave a stale page in
// whichever cache the next read lands on. A primary failure trips the breaker
// instead of failing the caller's write; entries the primary kept across the
// outage age out within the bounded TTL.
func (c *FailoverCache) Invalidate(ctx context.Context) error {
	if err := c.fallback.Invalidate(ctx); err != nil {
		return err
	}

	if err := c.primary.Invalidate(ctx); err != nil && !c.isDown.Load() {
		c.trip(err)
	}
	return nil
}

func (c *FailoverCache) trip(err error) {
	c.logger.Error().Err(err).Msg("primary cache failed, falling back to memory")
	c.isDown.Store(true)
	c.lastCheck.Store(time.Now().UnixNano())
}

func (c *FailoverCache) shouldRetryPrimary() bool {
	return c.isDown.Load() && time.Since(time.Unix(0, c.lastCheck.Load())) > recoveryInterval
}
