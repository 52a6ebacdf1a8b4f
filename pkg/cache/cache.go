// Package cache provides byte-level caching for fsdcheck.
//
// Two things are cached: check reports, keyed by the graph and policy hashes
// that produced them, and rendered artifacts, keyed by the collapsed view and
// render options. The CLI uses a [FileCache] under the XDG cache directory;
// the HTTP server can share a [RedisCache] between replicas.
//
// Keys are built by a [Keyer] so that all entry points agree on them.
package cache

import (
	"context"
	"time"
)

// TTLs per entry type. Reports are cheap to recompute but are looked up by
// ID from the server, so they live longer than artifacts.
const (
	TTLReport   = 7 * 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache stores opaque byte values by key.
//
// Get reports a miss as (nil, false, nil); errors are reserved for backend
// failures. A ttl of zero means no expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
