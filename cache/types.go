// Package cache stores API responses between requests. Values are raw bytes;
// use Marshal and Unmarshal, or GetOrLoad, to cache typed values.
package cache

import (
	"context"
	"time"
)

// Cache is a key/value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns ErrNotFound if the key doesn't exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set overwrites any existing value. A ttl of 0 stores the value without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete is a no-op for missing keys.
	Delete(ctx context.Context, key string) error

	// Health reports whether the backend is reachable
	Health(ctx context.Context) error

	// Close releases the backend. Further calls return ErrClosed.
	Close() error
}
