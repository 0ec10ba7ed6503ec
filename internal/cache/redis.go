package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/Kisangi1/The-SOL-NEW/internal/config"

	"github.com/redis/go-redis/v9"
)

// Cache is the read-through cache capability for public package listings.
// Invalidate drops everything: any package write must not leave stale pages.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error) // nil on miss
	Set(ctx context.Context, key string, data []byte) error
	Invalidate(ctx context.Context) error
}

// RedisCache namespaces entries under a generation counter, so wholesale
// invalidation is a single INCR instead of a SCAN over the keyspace.
type RedisCache struct {
	client *redis.Client
	prefix string
	genKey string
	ttl    time.Duration
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: prefix,
		genKey: prefix + ":gen",
		ttl:    ttl,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}

	gen, err := c.generation(ctx)
	if err != nil {
		return nil, err
	}

	val, err := c.client.Get(ctx, c.entryKey(gen, key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache entry: %w", err)
	}
	return val, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, data []byte) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	gen, err := c.generation(ctx)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, c.entryKey(gen, key), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache entry: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	if err := c.client.Incr(ctx, c.genKey).Err(); err != nil {
		return fmt.Errorf("failed to bump cache generation: %w", err)
	}
	return nil
}

func (c *RedisCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.genKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read cache generation: %w", err)
	}
	return gen, nil
}

func (c *RedisCache) entryKey(gen int64, key string) string {
	return fmt.Sprintf("%s:%d:%s", c.prefix, gen, key)
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
