package handler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahectf/ctfboard/internal/cache"
)

func TestCachedListing_InvalidateDuringLoadIsNotOverwritten(t *testing.T) {
	listings := cache.NewMemory(time.Minute)
	ctx := context.Background()

	loading := make(chan struct{})
	release := make(chan struct{})
	done := make(chan []byte)

	go func() {
		data, err := cachedListing(ctx, listings, "/challenges/web", "team:1", func(context.Context) (any, error) {
			close(loading)
			<-release
			return map[string]bool{"solved": false}, nil
		})
		assert.NoError(t, err)
		done <- data
	}()

	<-loading
	require.NoError(t, listings.Invalidate(ctx, "/challenges/web"))
	close(release)

	assert.JSONEq(t, `{"solved":false}`, string(<-done), "the in-flight caller still gets its data")

	entry, err := listings.Get(ctx, "/challenges/web", "team:1")
	require.NoError(t, err)
	assert.False(t, entry.Found, "pre-invalidation listing must not be cached")

	data, err := cachedListing(ctx, listings, "/challenges/web", "team:1", func(context.Context) (any, error) {
		return map[string]bool{"solved": true}, nil
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"solved":true}`, string(data))

	entry, err = listings.Get(ctx, "/challenges/web", "team:1")
	require.NoError(t, err)
	assert.True(t, entry.Found)
	assert.JSONEq(t, `{"solved":true}`, string(entry.Data))
}

func TestCachedListing_ServesHit(t *testing.T) {
	listings := cache.NewMemory(time.Minute)
	ctx := context.Background()
	calls := 0
	load := func(context.Context) (any, error) {
		calls++
		return []int{1}, nil
	}

	_, err := cachedListing(ctx, listings, "/challenges", "team:1", load)
	require.NoError(t, err)
	data, err := cachedListing(ctx, listings, "/challenges", "team:1", load)
	require.NoError(t, err)

	assert.JSONEq(t, `[1]`, string(data))
	assert.Equal(t, 1, calls)
}

func TestCachedListing_NilCache(t *testing.T) {
	data, err := cachedListing(context.Background(), nil, "/challenges", "team:1", func(context.Context) (any, error) {
		return []int{2}, nil
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[2]`, string(data))
}
