// Package refresher keeps the cached leaderboard warm between solves.
package refresher

import (
	"context"
	"log/slog"
	"time"
)

// Loader reloads a cached listing.
type Loader interface {
	Refresh(ctx context.Context) error
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) error

// Refresh calls f.
func (f LoaderFunc) Refresh(ctx context.Context) error {
	return f(ctx)
}

// Refresher periodically reloads a listing.
type Refresher struct {
	name     string
	loader   Loader
	interval time.Duration
}

// New creates a new Refresher.
func New(name string, loader Loader, interval time.Duration) *Refresher {
	return &Refresher{
		name:     name,
		loader:   loader,
		interval: interval,
	}
}

// Start warms the listing once and then on every tick. It blocks until ctx
// is cancelled.
func (r *Refresher) Start(ctx context.Context) {
	slog.Info("refresher started", "listing", r.name, "interval", r.interval.String())
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("refresher stopped", "listing", r.name)
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := r.loader.Refresh(ctx); err != nil {
		slog.Warn("refresher: failed to reload listing", "listing", r.name, "error", err)
		return
	}
	slog.Debug("refresher: listing reloaded", "listing", r.name, "duration", time.Since(start).String())
}
