package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/clinstack/dashboard-analytics/internal/domain/providers"
)

// LRUAdapter implements the CacheProvider interface with a fixed-capacity
// least-recently-used store. A capacity of zero or less disables caching:
// every Get is a miss and Set is a no-op, which keeps misconfiguration
// non-fatal.
type LRUAdapter[K comparable, V any] struct {
	store *lru.Cache[K, V]
}

// NewLRUAdapter creates a new bounded LRU cache adapter.
func NewLRUAdapter[K comparable, V any](capacity int) providers.CacheProvider[K, V] {
	if capacity <= 0 {
		return &LRUAdapter[K, V]{}
	}
	// lru.New only errors on a non-positive size, which is handled above.
	store, _ := lru.New[K, V](capacity)
	return &LRUAdapter[K, V]{store: store}
}

// Get retrieves a value, promoting the key to most-recently-used on a hit.
func (a *LRUAdapter[K, V]) Get(key K) (V, bool) {
	if a.store == nil {
		var zero V
		return zero, false
	}
	return a.store.Get(key)
}

// Set stores a value, evicting the least-recently-used entry if at capacity.
// Setting an existing key updates its value and promotes it.
func (a *LRUAdapter[K, V]) Set(key K, value V) {
	if a.store == nil {
		return
	}
	a.store.Add(key, value)
}

// Clear removes all entries.
func (a *LRUAdapter[K, V]) Clear() {
	if a.store == nil {
		return
	}
	a.store.Purge()
}

// Len returns the number of entries currently cached.
func (a *LRUAdapter[K, V]) Len() int {
	if a.store == nil {
		return 0
	}
	return a.store.Len()
}
