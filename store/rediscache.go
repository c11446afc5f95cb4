package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/itsneelabh/voyager-core/resilience"
)

// RedisCache is a shared, process-external Cache backed by go-redis/v9,
// used when multiple executor instances must share tool-result cache
// state across processes.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache wraps an existing go-redis client. prefix namespaces
// keys to avoid collisions with other consumers of the same Redis
// instance.
func NewRedisCache(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) key(key string) string { return fmt.Sprintf("%stoolcache:%s", c.prefix, key) }

func (c *RedisCache) Get(ctx context.Context, key string) (resilience.CacheEntry, bool, error) {
	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err == redis.Nil {
		return resilience.CacheEntry{}, false, nil
	}
	if err != nil {
		return resilience.CacheEntry{}, false, err
	}
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return resilience.CacheEntry{}, false, err
	}
	return resilience.CacheEntry{Data: data}, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, entry resilience.CacheEntry, ttlSeconds int) error {
	raw, err := json.Marshal(entry.Data)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(key), raw, time.Duration(ttlSeconds)*time.Second).Err()
}

var _ resilience.Cache = (*RedisCache)(nil)
