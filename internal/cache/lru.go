// Package cache provides a small thread-safe LRU used to memoise snapshots
// and geocoding lookups.
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// LRU is a fixed-capacity, least-recently-used cache. The zero value is a
// disabled cache; create a usable one with New.
type LRU[K comparable, V any] struct {
	entries *lru.Cache[K, V] // nil when caching is disabled
}

// New returns an LRU holding at most maxEntries values. A non-positive
// maxEntries disables caching: Put is a no-op and Get always misses.
func New[K comparable, V any](maxEntries int) *LRU[K, V] {
	if maxEntries <= 0 {
		return &LRU[K, V]{}
	}
	// lru.New only fails for a non-positive size.
	entries, _ := lru.New[K, V](maxEntries)
	return &LRU[K, V]{entries: entries}
}

// Get returns the value for key and marks it most recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	if c.entries == nil {
		var zero V
		return zero, false
	}
	return c.entries.Get(key)
}

// Put stores value under key, evicting the least recently used entry when
// the cache is full.
func (c *LRU[K, V]) Put(key K, value V) {
	if c.entries == nil {
		return
	}
	c.entries.Add(key, value)
}

// Len reports the number of cached entries.
func (c *LRU[K, V]) Len() int {
	if c.entries == nil {
		return 0
	}
	return c.entries.Len()
}

// Purge drops every entry.
func (c *LRU[K, V]) Purge() {
	if c.entries != nil {
		c.entries.Purge()
	}
}
