// Package cache is a small TTL cache used to absorb repeated reads of
// slow-moving data (movers lists, sector tables, market hours) without
// re-spending upstream quota.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	expiresAt time.Time
	value     V
}

// Cache maps string keys to values for a TTL. The zero TTL disables
// caching entirely; every Get misses.
type Cache[V any] struct {
	ttl      time.Duration
	maxItems int

	mu    sync.RWMutex
	items map[string]entry[V]
}

// New creates a cache. maxItems caps the entry count best-effort;
// zero means unbounded.
func New[V any](ttl time.Duration, maxItems int) *Cache[V] {
	return &Cache[V]{ttl: ttl, maxItems: maxItems, items: map[string]entry[V]{}}
}

// Get returns the cached value for key if it has not expired.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	if c == nil || c.ttl <= 0 {
		return zero, false
	}
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(e.expiresAt) {
		return zero, false
	}
	return e.value, true
}

// Set stores value under key for the cache TTL.
func (c *Cache[V]) Set(key string, value V) {
	if c == nil || c.ttl <= 0 {
		return
	}
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = entry[V]{expiresAt: now.Add(c.ttl), value: value}
	if c.maxItems <= 0 || len(c.items) <= c.maxItems {
		return
	}
	// Evict expired entries first, then arbitrary ones until under cap.
	for k, e := range c.items {
		if now.After(e.expiresAt) {
			delete(c.items, k)
		}
		if len(c.items) <= c.maxItems {
			return
		}
	}
	for k := range c.items {
		if len(c.items) <= c.maxItems {
			return
		}
		delete(c.items, k)
	}
}
