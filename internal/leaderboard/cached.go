package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mahectf/ctfboard/internal/cache"
)

// ListingPath is the cache page holding the ranked entries.
const ListingPath = "/leaderboard"

// the ranking is the same for every viewer; per-viewer flags are applied by
// Arrange after the read.
const listingVariant = "all"

// CachedRepository is a read-through cache in front of a Repository.
type CachedRepository struct {
	repo     Repository
	listings cache.Listing
	logger   *slog.Logger
}

// NewCachedRepository wraps repo with listings.
func NewCachedRepository(repo Repository, listings cache.Listing, logger *slog.Logger) *CachedRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedRepository{repo: repo, listings: listings, logger: logger}
}

// List returns the cached ranking, loading it from the repository on a miss.
// Cache failures degrade to a direct read.
func (c *CachedRepository) List(ctx context.Context) ([]Entry, error) {
	entry, err := c.listings.Get(ctx, ListingPath, listingVariant)
	if err != nil {
		c.logger.Warn("leaderboard cache read failed", "error", err)
		return c.repo.List(ctx)
	}
	if entry.Found {
		var entries []Entry
		if err := json.Unmarshal(entry.Data, &entries); err == nil {
			return entries, nil
		}
		c.logger.Warn("discarding malformed leaderboard cache entry")
	}

	return c.load(ctx, entry.Generation)
}

// Refresh reloads the ranking and stores it in the cache unless the page is
// invalidated while the reload runs.
func (c *CachedRepository) Refresh(ctx context.Context) ([]Entry, error) {
	entry, err := c.listings.Get(ctx, ListingPath, listingVariant)
	if err != nil {
		c.logger.Warn("leaderboard cache read failed", "error", err)
		return c.repo.List(ctx)
	}
	return c.load(ctx, entry.Generation)
}

func (c *CachedRepository) load(ctx context.Context, generation uint64) ([]Entry, error) {
	entries, err := c.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encoding leaderboard: %w", err)
	}
	if _, err := c.listings.Set(ctx, ListingPath, listingVariant, generation, data); err != nil {
		c.logger.Warn("leaderboard cache write failed", "error", err)
	}

	return entries, nil
}
