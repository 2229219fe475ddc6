// Package store persists layout snapshots.
//
// A [Store] is a flat key/value space of opaque blobs. The layout engine never
// talks to a store directly: screens serialize their tree with layout.Marshal
// and save it under a key produced by a [Keyer].
//
// Backends:
//   - [FileStore]: JSON files under a directory, for the CLI
//   - [SQLiteStore]: a single SQLite database file
//   - [RedisStore]: shared storage for multi-instance servers
//   - [MongoStore]: a MongoDB collection
//   - [MemoryStore]: process memory, for a single short-lived server
//   - [NullStore]: stores nothing, for tests and ephemeral sessions
//
// Use [Open] to construct a backend from a [Config].
package store

import (
	"context"
	"time"
)

// Store is a key/value store for layout snapshots.
//
// Get reports a miss as (nil, false, nil). A ttl of zero never expires.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// List returns the stored keys beginning with prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// entry wraps stored data with metadata. It is the on-disk format of the
// file backend.
type entry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

func (e entry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

func expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}
