// Package cache provides the memoization tiers shared by symbol and price lookups.
//
// The in-process Memory tier is always present and never evicts. An optional
// Redis tier lets several processes share lookups; Tiered composes them.
package cache

import "context"

// Cache is a string-keyed store of values of type V.
// Implementations must be safe for concurrent use. Concurrent writers of
// the same key race; the last write wins.
type Cache[V any] interface {
	// Get returns the cached value and true, or the zero value and false on a miss.
	Get(ctx context.Context, key string) (V, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value V) error
}
