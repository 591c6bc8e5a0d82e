package saga_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahectf/ctfboard/internal/saga"
)

func TestPush_GroupsConsecutiveStages(t *testing.T) {
	l := saga.New(nil)
	noop := func(context.Context) error { return nil }

	l.Push("accounts", "a", noop)
	l.Push("accounts", "b", noop)
	l.Push("team", "t", noop)

	assert.Equal(t, 3, l.Len())
}

func TestUnwind_Empty(t *testing.T) {
	report := saga.New(nil).Unwind(context.Background())
	assert.Equal(t, 0, report.Attempted())
	assert.Equal(t, 0, report.Failed())
}

func TestUnwind_ReverseStageOrder(t *testing.T) {
	l := saga.New(nil)
	var mu sync.Mutex
	var order []string
	record := func(name string) saga.Compensator {
		return func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		}
	}

	l.Push("accounts", "a1", record("accounts"))
	l.Push("accounts", "a2", record("accounts"))
	l.Push("team", "t", record("team"))

	report := l.Unwind(context.Background())

	require.Len(t, order, 3)
	assert.Equal(t, "team", order[0])
	assert.Equal(t, []string{"accounts", "accounts"}, order[1:])
	assert.Equal(t, 3, report.Attempted())
	assert.Equal(t, 0, report.Failed())
}

func TestUnwind_FailureDoesNotBlockOthers(t *testing.T) {
	l := saga.New(nil)
	var calls atomic.Int32

	for _, label := range []string{"a", "b", "c", "d"} {
		l.Push("accounts", label, func(context.Context) error {
			calls.Add(1)
			if label == "b" {
				return errors.New("delete failed")
			}
			return nil
		})
	}

	report := l.Unwind(context.Background())

	assert.Equal(t, int32(4), calls.Load())
	assert.Equal(t, 4, report.Attempted())
	assert.Equal(t, 1, report.Failed())
	for _, o := range report.Outcomes {
		if o.Label == "b" {
			assert.Error(t, o.Err)
		} else {
			assert.NoError(t, o.Err)
		}
	}
}

func TestUnwind_RunsStageConcurrently(t *testing.T) {
	l := saga.New(nil)
	release := make(chan struct{})
	var started sync.WaitGroup
	started.Add(3)

	for _, label := range []string{"a", "b", "c"} {
		l.Push("accounts", label, func(context.Context) error {
			started.Done()
			<-release
			return nil
		})
	}

	done := make(chan saga.Report)
	go func() { done <- l.Unwind(context.Background()) }()

	allStarted := make(chan struct{})
	go func() {
		started.Wait()
		close(allStarted)
	}()

	select {
	case <-allStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("compensators in one stage did not run concurrently")
	}
	close(release)

	report := <-done
	assert.Equal(t, 3, report.Attempted())
}

func TestUnwind_RecoversPanics(t *testing.T) {
	l := saga.New(nil)
	var ran atomic.Bool
	l.Push("accounts", "boom", func(context.Context) error { panic("kaboom") })
	l.Push("accounts", "ok", func(context.Context) error {
		ran.Store(true)
		return nil
	})

	report := l.Unwind(context.Background())

	assert.True(t, ran.Load())
	assert.Equal(t, 1, report.Failed())
}

func TestUnwind_IgnoresCancelledContext(t *testing.T) {
	l := saga.New(nil)
	l.Push("accounts", "a", func(ctx context.Context) error { return ctx.Err() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := l.Unwind(ctx)
	assert.Equal(t, 0, report.Failed())
}

func TestUnwind_OnlyOnce(t *testing.T) {
	l := saga.New(nil)
	var calls atomic.Int32
	l.Push("accounts", "a", func(context.Context) error {
		calls.Add(1)
		return nil
	})

	l.Unwind(context.Background())
	second := l.Unwind(context.Background())

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 0, second.Attempted())
}
