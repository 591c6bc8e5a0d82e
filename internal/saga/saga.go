// Package saga keeps an ordered undo-log for multi-step operations against
// backends that offer no multi-resource transaction.
//
// Compensators are grouped into stages. Unwind walks the stages in reverse
// order; the compensators inside one stage run concurrently and every one is
// attempted regardless of how the others fare.
package saga

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// Compensator semantically undoes one successful step.
type Compensator func(ctx context.Context) error

// Outcome records how a single compensator finished.
type Outcome struct {
	Stage string
	Label string
	Err   error
}

// Report summarises an Unwind.
type Report struct {
	Outcomes []Outcome
}

// Attempted is the number of compensators that ran.
func (r Report) Attempted() int {
	return len(r.Outcomes)
}

// Failed is the number of compensators that returned an error.
func (r Report) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

type action struct {
	label string
	fn    Compensator
}

type stage struct {
	name    string
	actions []action
}

// Log is an undo-log. It is not safe for concurrent Push calls.
type Log struct {
	logger *slog.Logger
	stages []*stage
	done   bool
}

// New creates an empty Log. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

// Push records a compensator. Consecutive pushes with the same stage name
// join that stage; any other name opens a new stage.
func (l *Log) Push(stageName, label string, fn Compensator) {
	if n := len(l.stages); n > 0 && l.stages[n-1].name == stageName {
		l.stages[n-1].actions = append(l.stages[n-1].actions, action{label: label, fn: fn})
		return
	}
	l.stages = append(l.stages, &stage{name: stageName, actions: []action{{label: label, fn: fn}}})
}

// Len returns the number of recorded compensators.
func (l *Log) Len() int {
	n := 0
	for _, s := range l.stages {
		n += len(s.actions)
	}
	return n
}

// Unwind runs every compensator, newest stage first, and reports the outcomes.
// Failures are logged and reported, never returned. Cancellation of ctx does
// not stop the unwind. A Log unwinds at most once.
func (l *Log) Unwind(ctx context.Context) Report {
	var report Report
	if l.done {
		return report
	}
	l.done = true

	ctx = context.WithoutCancel(ctx)

	for i := len(l.stages) - 1; i >= 0; i-- {
		s := l.stages[i]
		report.Outcomes = append(report.Outcomes, l.unwindStage(ctx, s)...)
	}

	return report
}

func (l *Log) unwindStage(ctx context.Context, s *stage) []Outcome {
	outcomes := make([]Outcome, len(s.actions))
	var mu sync.Mutex

	p := pool.New().WithMaxGoroutines(len(s.actions))
	for i, a := range s.actions {
		p.Go(func() {
			err := runCompensator(ctx, a.fn)

			mu.Lock()
			outcomes[i] = Outcome{Stage: s.name, Label: a.label, Err: err}
			mu.Unlock()

			if err != nil {
				l.logger.Error("compensation failed", "stage", s.name, "target", a.label, "error", err)
				return
			}
			l.logger.Info("compensation succeeded", "stage", s.name, "target", a.label)
		})
	}
	p.Wait()

	return outcomes
}

// runCompensator turns a panicking compensator into an error so one bad
// compensator cannot abort the rest of its stage.
func runCompensator(ctx context.Context, fn Compensator) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return fn(ctx)
}

// PanicError wraps a value recovered from a panicking compensator.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return "compensator panicked"
}
