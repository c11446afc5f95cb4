// Package store provides the Cache and RunStore implementations the
// core consumes through narrow interfaces: an in-memory default for
// tests and single-process deployments, and a Redis-backed
// implementation (via go-redis/v9) for shared/multi-process use.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/itsneelabh/voyager-core/resilience"
)

type memEntry struct {
	entry  resilience.CacheEntry
	expiry time.Time
}

// MemCache is an in-process, concurrency-safe Cache with per-entry
// TTL, lazily evicted on read.
type MemCache struct {
	mu      sync.Mutex
	entries map[string]memEntry
	now     func() time.Time
}

// NewMemCache builds an empty MemCache using the real clock.
func NewMemCache() *MemCache {
	return &MemCache{entries: map[string]memEntry{}, now: time.Now}
}

func (c *MemCache) Get(ctx context.Context, key string) (resilience.CacheEntry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return resilience.CacheEntry{}, false, nil
	}
	if c.now().After(e.expiry) {
		delete(c.entries, key)
		return resilience.CacheEntry{}, false, nil
	}
	return e.entry, true, nil
}

func (c *MemCache) Set(ctx context.Context, key string, entry resilience.CacheEntry, ttlSeconds int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memEntry{entry: entry, expiry: c.now().Add(time.Duration(ttlSeconds) * time.Second)}
	return nil
}

var _ resilience.Cache = (*MemCache)(nil)
