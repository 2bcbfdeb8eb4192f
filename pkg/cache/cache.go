// Package cache stores rendered graph artifacts.
//
// Rendering DOT to SVG or PNG runs the Graphviz layout engine, which is by
// far the slowest step of a rescan. Artifacts are keyed by the hash of the
// DOT text they were produced from, so an unchanged solution re-renders
// from cache.
//
// Backends:
//   - [FileCache]: entries under the user cache directory (CLI default)
//   - [RedisCache]: shared cache for the serve command
//   - [NullCache]: caching disabled
//
// [Instrument] wraps any backend to report hits and misses through
// observability.Cache().
package cache

import (
	"context"
	"time"
)

// Default TTLs.
const (
	// TTLArtifact is how long rendered images are kept.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key-value store with expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	// Expired entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by backends that can drop all of their entries.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

var (
	_ Clearer = (*FileCache)(nil)
	_ Clearer = (*RedisCache)(nil)
)
