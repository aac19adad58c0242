// Package cache stores computed layouts and rendered artifacts between runs.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache] for
// the server when several instances share results, and [NullCache] when
// caching is disabled. Keys are produced by a [Keyer] so the same inputs map
// to the same entry regardless of backend.
package cache

import (
	"context"
	"time"
)

// Default lifetimes for cached entries.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the stored bytes and whether the key was present.
	// A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}
