package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gatetrack/backend/internal/application/invoiceview"
	"github.com/gatetrack/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// RedisViewCache implements the read-view cache on Redis. Suitable for
// deployments with more than one backend instance, where the views must be
// invalidated across processes.
type RedisViewCache struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisViewCache creates a Redis-backed view cache and verifies the
// connection before returning
func NewRedisViewCache(cfg config.RedisConfig) (*RedisViewCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisViewCache{client: client, keyPrefix: "gatetrack:"}, nil
}

// NewRedisViewCacheWithClient wraps an existing client. Useful for tests and
// for sharing one client across components.
func NewRedisViewCacheWithClient(client *redis.Client, keyPrefix string) *RedisViewCache {
	if keyPrefix == "" {
		keyPrefix = "gatetrack:"
	}
	return &RedisViewCache{client: client, keyPrefix: keyPrefix}
}

// Get reads a cached view into dest. Returns false on a miss.
func (c *RedisViewCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	payload, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to read cached view: %w", err)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("failed to decode cached view: %w", err)
	}
	return true, nil
}

// Set stores a view snapshot with the given TTL
func (c *RedisViewCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode view for caching: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache view: %w", err)
	}
	return nil
}

// Delete drops the given view keys
func (c *RedisViewCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, key := range keys {
		prefixed[i] = c.keyPrefix + key
	}
	if err := c.client.Del(ctx, prefixed...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached views: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (c *RedisViewCache) Close() error {
	return c.client.Close()
}

// Ensure RedisViewCache implements invoiceview.ViewCache
var _ invoiceview.ViewCache = (*RedisViewCache)(nil)
