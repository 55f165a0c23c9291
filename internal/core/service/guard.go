package service

import (
	"context"
	"time"
)

// Outcome classifies how a guarded operation ended.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeTimedOut
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeTimedOut:
		return "timed_out"
	default:
		return "failed"
	}
}

// Result carries the three-way outcome of a guarded operation. Callers treat
// TimedOut and Failed identically (degrade) but the two stay distinguishable
// for logging and metrics.
type Result[T any] struct {
	Value   T
	Outcome Outcome
	Err     error
}

// OK reports whether the operation completed in time without error.
func (r Result[T]) OK() bool {
	return r.Outcome == OutcomeOK
}

// Guard races op against a deadline. If the deadline fires first the op is
// abandoned (it may still finish in the background; its result is discarded)
// and an unavailable sentinel is returned instead of a propagated error. This
// is the mechanism that keeps the dispatcher answering while the backing
// store is degraded.
func Guard[T any](ctx context.Context, timeout time.Duration, op func(context.Context) (T, error)) Result[T] {
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Buffered so a late completion never leaks the goroutine.
	done := make(chan Result[T], 1)
	go func() {
		v, err := op(opCtx)
		if err != nil {
			done <- Result[T]{Outcome: OutcomeFailed, Err: err}
			return
		}
		done <- Result[T]{Value: v, Outcome: OutcomeOK}
	}()

	select {
	case r := <-done:
		return r
	case <-opCtx.Done():
		return Result[T]{Outcome: OutcomeTimedOut, Err: opCtx.Err()}
	}
}
