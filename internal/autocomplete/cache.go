// Package autocomplete provides suggestion sources for the filter engine and
// the wrappers that compose them: debounced and cancellable async fetches,
// stale-while-revalidate caching, pagination and fan-out.
package autocomplete

import "github.com/puzpuzpuz/xsync/v3"

// Cache is a concurrency-safe keyed store owned by one autocompleter
// instance. Instances never share a cache.
type Cache[V any] struct {
	entries *xsync.MapOf[string, V]
}

// NewCache creates an empty cache.
func NewCache[V any]() *Cache[V] {
	return &Cache[V]{entries: xsync.NewMapOf[string, V]()}
}

// Get fetches the value stored under key.
func (c *Cache[V]) Get(key string) (V, bool) {
	return c.entries.Load(key)
}

// Put stores value under key, replacing any previous entry.
func (c *Cache[V]) Put(key string, value V) {
	c.entries.Store(key, value)
}

// Delete removes key.
func (c *Cache[V]) Delete(key string) {
	c.entries.Delete(key)
}

// Clear removes every entry.
func (c *Cache[V]) Clear() {
	c.entries.Clear()
}

// Len reports the number of entries.
func (c *Cache[V]) Len() int {
	return c.entries.Size()
}
