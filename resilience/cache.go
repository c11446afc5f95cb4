package resilience

import "context"

// CacheEntry is a stored tool result. It carries no expiry of its own;
// the TTL is passed to Cache.Set and enforced by the implementation.
type CacheEntry struct {
	Data interface{}
}

// Cache is the narrow contract the executor uses for result caching,
// satisfied by both an in-process map and a Redis-backed store.
type Cache interface {
	Get(ctx context.Context, key string) (CacheEntry, bool, error)
	Set(ctx context.Context, key string, entry CacheEntry, ttlSeconds int) error
}
