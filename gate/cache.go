package gate

import (
	"context"
	"sync"
	"time"
)

// LookupFunc fetches the current value for a subject, typically from storage.
type LookupFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

// CachedLookup wraps a LookupFunc with TTL-based caching so per-request
// checks do not hit the database every time. Errors are never cached.
type CachedLookup[K comparable, V any] struct {
	inner LookupFunc[K, V]
	ttl   time.Duration
	now   func() time.Time

	mu        sync.RWMutex
	cache     map[K]cacheEntry[V]
	nextSweep time.Time
}

type cacheEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// NewCachedLookup wraps inner. A ttl <= 0 disables caching.
func NewCachedLookup[K comparable, V any](inner LookupFunc[K, V], ttl time.Duration) *CachedLookup[K, V] {
	return &CachedLookup[K, V]{
		inner: inner,
		ttl:   ttl,
		now:   time.Now,
		cache: make(map[K]cacheEntry[V]),
	}
}

// Get returns the cached value for key, fetching it when missing or expired.
func (c *CachedLookup[K, V]) Get(ctx context.Context, key K) (V, error) {
	if c.ttl <= 0 {
		return c.inner(ctx, key)
	}

	c.mu.RLock()
	entry, ok := c.cache[key]
	c.mu.RUnlock()
	if ok && c.now().Before(entry.expiresAt) {
		return entry.value, nil
	}

	value, err := c.inner(ctx, key)
	if err != nil {
		return value, err
	}

	now := c.now()
	c.mu.Lock()
	c.cache[key] = cacheEntry[V]{value: value, expiresAt: now.Add(c.ttl)}
	if now.After(c.nextSweep) {
		c.sweep(now)
	}
	c.mu.Unlock()
	return value, nil
}

// sweep drops expired entries, at most once per ttl. Callers hold mu.
func (c *CachedLookup[K, V]) sweep(now time.Time) {
	for k, e := range c.cache {
		if !now.Before(e.expiresAt) {
			delete(c.cache, k)
		}
	}
	c.nextSweep = now.Add(c.ttl)
}
