package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type memoryEntry struct {
	data       []byte
	generation uint64
	expiresAt  time.Time
}

// MemoryCache is a process-local TTL cache. It backs tests and serves as the
// failover target when redis is unreachable.
type MemoryCache struct {
	entries    sync.Map
	generation atomic.Uint64
	ttl        time.Duration
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{ttl: ttl}
}

func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, ok := c.entries.Load(key)
	if !ok {
		return nil, nil
	}

	entry := val.(*memoryEntry)
	if entry.generation != c.generation.Load() || time.Now().After(entry.expiresAt) {
		c.entries.Delete(key)
		return nil, nil
	}
	return entry.data, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, data []byte) error {
	c.entries.Store(key, &memoryEntry{
		data:       data,
		generation: c.generation.Load(),
		expiresAt:  time.Now().Add(c.ttl),
	})
	return nil
}

// Invalidate drops every entry by bumping the generation; stale entries are
// evicted lazily on the next Get.
func (c *MemoryCache) Invalidate(ctx context.Context) error {
	c.generation.Add(1)
	return nil
}
