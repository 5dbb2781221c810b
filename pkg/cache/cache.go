// Package cache provides byte-level caching for computed workbook results.
//
// # Backends
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: one JSON entry file per key, for the CLI
//   - [RedisCache]: shared cache for the HTTP server
//
// # Keys
//
// Keys are derived from the content hash of a workbook (see [Hash]) by a
// [Keyer], so any edit to a workbook changes every key derived from it and
// stale entries are never read back. [ScopedKeyer] prefixes keys to share
// one backend between tenants.
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.GraphKey(wbHash, cache.GraphKeyOpts{Format: "svg"})
//	if data, hit, _ := c.Get(ctx, key); hit {
//	    return data, nil
//	}
package cache

import (
	"context"
	"time"
)

// Default time-to-live values for cached entries.
const (
	TTLValues = 24 * time.Hour
	TTLGraph  = 7 * 24 * time.Hour
)

// Cache stores opaque byte slices under string keys.
//
// Implementations must be safe for concurrent use. A miss is reported as
// (nil, false, nil); errors are reserved for backend failures.
type Cache interface {
	// Get returns the data stored under key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
