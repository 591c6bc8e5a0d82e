package leaderboard_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahectf/ctfboard/internal/cache"
	"github.com/mahectf/ctfboard/internal/leaderboard"
)

type countingRepo struct {
	entries []leaderboard.Entry
	err     error
	calls   int
}

func (r *countingRepo) List(context.Context) ([]leaderboard.Entry, error) {
	r.calls++
	return r.entries, r.err
}

func TestCachedRepository_ReadThrough(t *testing.T) {
	repo := &countingRepo{entries: []leaderboard.Entry{{TeamID: 1, TeamName: "a", Score: 10, Rank: 1}}}
	cached := leaderboard.NewCachedRepository(repo, cache.NewMemory(time.Minute), nil)
	ctx := context.Background()

	first, err := cached.List(ctx)
	require.NoError(t, err)
	second, err := cached.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, repo.entries, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, repo.calls)
}

func TestCachedRepository_InvalidationReloads(t *testing.T) {
	repo := &countingRepo{entries: []leaderboard.Entry{{TeamID: 1, TeamName: "a", Rank: 1}}}
	listings := cache.NewMemory(time.Minute)
	cached := leaderboard.NewCachedRepository(repo, listings, nil)
	ctx := context.Background()

	_, err := cached.List(ctx)
	require.NoError(t, err)
	require.NoError(t, listings.Invalidate(ctx, leaderboard.ListingPath))

	repo.entries = []leaderboard.Entry{{TeamID: 2, TeamName: "b", Rank: 1}}
	got, err := cached.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), got[0].TeamID)
	assert.Equal(t, 2, repo.calls)
}

func TestCachedRepository_RepositoryError(t *testing.T) {
	repo := &countingRepo{err: errors.New("db down")}
	cached := leaderboard.NewCachedRepository(repo, cache.NewMemory(time.Minute), nil)

	_, err := cached.List(context.Background())

	assert.Error(t, err)
}

type blockingRepo struct {
	entries []leaderboard.Entry
	loading chan struct{}
	release chan struct{}
}

func (r *blockingRepo) List(context.Context) ([]leaderboard.Entry, error) {
	close(r.loading)
	<-r.release
	return r.entries, nil
}

func TestCachedRepository_RefreshDoesNotUndoInvalidation(t *testing.T) {
	repo := &blockingRepo{
		entries: []leaderboard.Entry{{TeamID: 1, TeamName: "a", Rank: 1}},
		loading: make(chan struct{}),
		release: make(chan struct{}),
	}
	listings := cache.NewMemory(time.Minute)
	cached := leaderboard.NewCachedRepository(repo, listings, nil)
	ctx := context.Background()

	done := make(chan error)
	go func() {
		_, err := cached.Refresh(ctx)
		done <- err
	}()

	<-repo.loading
	require.NoError(t, listings.Invalidate(ctx, leaderboard.ListingPath))
	close(repo.release)
	require.NoError(t, <-done)

	entry, err := listings.Get(ctx, leaderboard.ListingPath, "all")
	require.NoError(t, err)
	assert.False(t, entry.Found)
}
