package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCacheMiss indicates the entry was never written or has expired.
	// Callers cannot tell the two apart.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidTTL is returned by Set for a non-positive TTL.
	ErrInvalidTTL = errors.New("cache ttl must be positive")
)

// Store holds raw response bodies keyed by (silo, key).
//
// Contract:
//   - Get returns ErrCacheMiss for both absent and expired entries.
//   - Set is an upsert; ttl is relative to the call.
//   - Purge removes every entry of one silo and never touches another.
//     Purging an empty silo is not an error.
//   - Implementations are safe for concurrent use. No locking spans
//     several calls; concurrent Sets on one key are last-writer-wins.
type Store interface {
	Get(ctx context.Context, silo, key string) ([]byte, error)
	Set(ctx context.Context, silo, key string, value []byte, ttl time.Duration) error
	Purge(ctx context.Context, silo string) error
}
