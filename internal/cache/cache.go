// Package cache provides the non-authoritative caching layer.
//
// CONSISTENCY MODEL:
// The cache is an optimization, never a source of truth. Every entry is a
// derived projection of the relational store (or the blob store), kept
// tolerable through explicit invalidation by writers plus a coarse TTL
// backstop on list-shaped entries. Two rules follow from that:
//
//  1. A cache MISS is always safe: callers fall back to the store.
//  2. A cache FAILURE is never user-visible: the generic helpers below
//     treat any cache error as a miss and any failed write as a no-op.
//
// Mutating operations must write/invalidate the authoritative store FIRST
// and touch the cache only afterwards, bounding the window in which a stale
// entry can be read back past a concurrent writer's invalidation.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Cache is the narrow key/value contract every backend implements.
// Get returns (value, present, error); absence is not an error.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	SetTTL(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Lookup reads and JSON-decodes a cached value. Any cache error or decode
// failure is reported as a miss; the caller falls back to the store.
func Lookup[T any](ctx context.Context, c Cache, key string) (T, bool) {
	var v T
	raw, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return v, false
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return v, false
	}
	return v, true
}

// Store JSON-encodes and writes a value, best effort. ttl <= 0 means no
// expiry (entity entries rely purely on explicit invalidation).
func Store[T any](ctx context.Context, c Cache, key string, v T, ttl time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if ttl > 0 {
		_ = c.SetTTL(ctx, key, string(raw), ttl)
		return
	}
	_ = c.Set(ctx, key, string(raw))
}

// Invalidate removes entries, best effort. Writers call this after the
// authoritative store has already been mutated.
func Invalidate(ctx context.Context, c Cache, keys ...string) {
	if len(keys) == 0 {
		return
	}
	_ = c.Delete(ctx, keys...)
}

// GetOrLoad is the read-through primitive: return the cached value if
// present, otherwise load from the authoritative source and populate the
// cache on the way out. A load error is returned as-is and nothing is
// cached; negative results are never stored.
//
// Population may race with a concurrent delete of the same id; the stale
// entry that can result lives only until the next explicit invalidation or
// TTL expiry. That bounded staleness is accepted by design.
func GetOrLoad[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if v, ok := Lookup[T](ctx, c, key); ok {
		return v, nil
	}
	v, err := load(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	Store(ctx, c, key, v, ttl)
	return v, nil
}
