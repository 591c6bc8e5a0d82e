package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mahectf/ctfboard/internal/cache"
)

// cachedListing returns the encoded listing for path and variant, building
// it with load on a miss. A nil or failing cache degrades to load. The write
// back is refused when path was invalidated while load ran.
func cachedListing(ctx context.Context, listings cache.Listing, path, variant string, load func(context.Context) (any, error)) ([]byte, error) {
	var entry cache.Entry
	cacheable := listings != nil
	if cacheable {
		var err error
		entry, err = listings.Get(ctx, path, variant)
		if err != nil {
			slog.Warn("listing cache read failed", "path", path, "error", err)
			cacheable = false
		} else if entry.Found {
			return entry.Data, nil
		}
	}

	v, err := load(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding listing %s: %w", path, err)
	}

	if cacheable {
		stored, err := listings.Set(ctx, path, variant, entry.Generation, data)
		if err != nil {
			slog.Warn("listing cache write failed", "path", path, "error", err)
		} else if !stored {
			slog.Debug("listing invalidated during load, not cached", "path", path)
		}
	}

	return data, nil
}
