package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures a RedisCache.
type RedisConfig struct {
	Client *redis.Client
	// Prefix is prepended to every key, e.g. "floorcad:cache:".
	Prefix string
}

// Validate checks that the configuration is usable.
func (c *RedisConfig) Validate() error {
	if c == nil {
		return errors.New("redis cache config is required")
	}
	if c.Client == nil {
		return errors.New("redis client is required")
	}
	return nil
}

// RedisCache stores entries in Redis with native expiry.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache returns a cache backed by cfg.Client. The client is owned by
// the caller; Close does not close it.
func NewRedisCache(cfg *RedisConfig) (*RedisCache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &RedisCache{client: cfg.Client, prefix: cfg.Prefix}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, Retryable(fmt.Errorf("%w: redis get: %v", ErrUnavailable, err))
	}
	return data, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.prefix+key, data, ttl).Err(); err != nil {
		return Retryable(fmt.Errorf("%w: redis set: %v", ErrUnavailable, err))
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return Retryable(fmt.Errorf("%w: redis del: %v", ErrUnavailable, err))
	}
	return nil
}

func (c *RedisCache) Close() error { return nil }

var _ Cache = (*RedisCache)(nil)
