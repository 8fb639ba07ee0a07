package providers

// CacheProvider defines the interface for the in-process bounded caches that
// sit in front of the engine's memoized steps. Implementations must be safe
// for concurrent use and must never be treated as a source of truth: every
// cached value is re-derivable from the raw records.
type CacheProvider[K comparable, V any] interface {
	// Get retrieves a value, promoting the key on a hit. The second return
	// is false when the key is absent; a miss is never an error.
	Get(key K) (V, bool)

	// Set stores a value, evicting the least-recently-used entry first when
	// the cache is at capacity.
	Set(key K, value V)

	// Clear removes all entries.
	Clear()

	// Len returns the number of entries currently cached.
	Len() int
}
