// Package cache provides a thread-safe cache with per-entry expiration,
// used to memoize repeated search queries.
package cache

import (
	"sync"
	"time"
)

// TTLCache is a thread-safe cache whose entries expire individually.
// A capacity bound keeps memory flat under many distinct keys; when
// full, an expired or arbitrary entry is evicted on insert.
type TTLCache[K comparable, V any] struct {
	mu       sync.RWMutex
	data     map[K]entry[V]
	ttl      time.Duration
	capacity int
}

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// New creates a TTLCache with the given entry lifetime and capacity.
// A capacity of zero or less means unbounded.
func New[K comparable, V any](ttl time.Duration, capacity int) *TTLCache[K, V] {
	return &TTLCache[K, V]{
		data:     make(map[K]entry[V]),
		ttl:      ttl,
		capacity: capacity,
	}
}

// Get retrieves a value. Returns ok=false when the key is absent or
// its entry has expired; expired entries are removed lazily.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()

	if !ok {
		var zero V
		return zero, false
	}
	if time.Since(e.storedAt) >= c.ttl {
		c.mu.Lock()
		// Recheck: a concurrent Set may have refreshed the entry.
		if cur, still := c.data[key]; still && time.Since(cur.storedAt) >= c.ttl {
			delete(c.data, key)
		}
		c.mu.Unlock()
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores a value, evicting one entry if the cache is at capacity.
func (c *TTLCache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capacity > 0 && len(c.data) >= c.capacity {
		if _, exists := c.data[key]; !exists {
			c.evictLocked()
		}
	}
	c.data[key] = entry[V]{value: value, storedAt: time.Now()}
}

// evictLocked removes an expired entry if one exists, otherwise an
// arbitrary one. Must be called with the write lock held.
func (c *TTLCache[K, V]) evictLocked() {
	for k, e := range c.data {
		if time.Since(e.storedAt) >= c.ttl {
			delete(c.data, k)
			return
		}
	}
	for k := range c.data {
		delete(c.data, k)
		return
	}
}

// Invalidate clears all cached data.
func (c *TTLCache[K, V]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[K]entry[V])
}

// Len returns the number of entries, including not-yet-collected
// expired ones.
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
