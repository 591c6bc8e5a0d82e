// Package cache stores rendered listing payloads per logical page so that a
// write can mark a page stale with Invalidate.
//
// A page (path) holds one entry per viewer variant; invalidating the path
// drops every variant at once and bumps the path's generation. A payload
// built from a read that started before the invalidation carries the old
// generation and is refused by Set.
package cache

import (
	"context"
	"time"
)

// Entry is the result of a lookup. Generation is the page generation seen by
// the lookup and must be handed back to Set on a miss.
type Entry struct {
	Data       []byte
	Found      bool
	Generation uint64
}

// Listing is a cache of rendered listing pages.
type Listing interface {
	// Get returns the cached payload for path and variant.
	Get(ctx context.Context, path, variant string) (Entry, error)
	// Set stores a payload built after a lookup that saw generation. It
	// reports false without storing when path was invalidated since.
	Set(ctx context.Context, path, variant string, generation uint64, data []byte) (bool, error)
	// Invalidate drops every variant of the given paths.
	Invalidate(ctx context.Context, paths ...string) error
	Close() error
}

// DefaultTTL applies when a cache is created with a non-positive TTL.
const DefaultTTL = time.Minute
