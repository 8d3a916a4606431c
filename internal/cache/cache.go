// Package cache stores the day's parsed calendar so the upstream platform
// is contacted once per day, not once per request.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-blob store with per-key expiry. Get reports a miss with
// the second return value; expired entries are misses.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
