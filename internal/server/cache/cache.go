// Package cache provides a typed TTL cache for the HTTP server on top of
// patrickmn/go-cache.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache wraps go-cache with typed values.
type Cache[V any] struct {
	store *gocache.Cache
}

// New creates a cache. defaultTTL is the expiry of entries set without an
// explicit TTL; cleanupInterval is how often expired entries are purged.
func New[V any](defaultTTL, cleanupInterval time.Duration) *Cache[V] {
	return &Cache[V]{
		store: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves a live value.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	v, ok := c.store.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(V)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Set stores a value with the default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.store.SetDefault(key, value)
}

// SetWithTTL stores a value with a custom TTL.
func (c *Cache[V]) SetWithTTL(key string, value V, ttl time.Duration) {
	c.store.Set(key, value, ttl)
}

// Delete removes a value, expired or not, and fires the eviction callback
// when one was present.
func (c *Cache[V]) Delete(key string) {
	c.store.Delete(key)
}

// OnEvicted sets a callback for entries that expire or are deleted.
// Clear does not trigger it.
func (c *Cache[V]) OnEvicted(fn func(key string, value V)) {
	c.store.OnEvicted(func(key string, v any) {
		if typed, ok := v.(V); ok {
			fn(key, typed)
		}
	})
}

// Items returns a snapshot of the live entries.
func (c *Cache[V]) Items() map[string]V {
	items := c.store.Items()
	out := make(map[string]V, len(items))
	for k, item := range items {
		if typed, ok := item.Object.(V); ok {
			out[k] = typed
		}
	}
	return out
}

// Clear removes all items without eviction callbacks.
func (c *Cache[V]) Clear() {
	c.store.Flush()
}

// ItemCount returns the number of items, including expired ones not yet
// purged.
func (c *Cache[V]) ItemCount() int {
	return c.store.ItemCount()
}

// Stats returns cache statistics.
type Stats struct {
	ItemCount int `json:"item_count"`
}

// GetStats returns current cache statistics.
func (c *Cache[V]) GetStats() Stats {
	return Stats{
		ItemCount: c.store.ItemCount(),
	}
}
