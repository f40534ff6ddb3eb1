package effect

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/load28/effect-react/pkg/result"
)

// OutcomeKind identifies the terminal event of one computation run.
type OutcomeKind int

const (
	// OutcomeSuccess is a run that produced a value.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeFailure is a run that reported a genuine error.
	OutcomeFailure
	// OutcomeInterrupted is a run that ended because its context was
	// cancelled. Interruption is not an application error.
	OutcomeInterrupted
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeInterrupted:
		return "interrupted"
	default:
		return "failure"
	}
}

// Outcome is the terminal event reported exactly once per computation run.
type Outcome[A any] struct {
	kind  OutcomeKind
	value A
	err   error
}

// Complete classifies a run's return values. A run is Interrupted only when
// the task's own context was cancelled and the error wraps the cancellation;
// an error that happens to wrap context.Canceled while the task context is
// intact is still a genuine Failure.
func Complete[A any](ctx context.Context, value A, err error) Outcome[A] {
	if err == nil {
		return Outcome[A]{kind: OutcomeSuccess, value: value}
	}
	if ctx != nil && ctx.Err() != nil && stderrors.Is(err, context.Canceled) {
		return Outcome[A]{kind: OutcomeInterrupted, err: err}
	}
	return Outcome[A]{kind: OutcomeFailure, err: err}
}

// Kind returns the terminal event kind.
func (o Outcome[A]) Kind() OutcomeKind { return o.kind }

// Value returns the produced value and whether the run succeeded.
func (o Outcome[A]) Value() (A, bool) {
	return o.value, o.kind == OutcomeSuccess
}

// Err returns the error and whether the run genuinely failed.
func (o Outcome[A]) Err() (error, bool) {
	return o.err, o.kind == OutcomeFailure
}

// Interrupted reports whether the run was cancelled.
func (o Outcome[A]) Interrupted() bool { return o.kind == OutcomeInterrupted }

// Project maps the terminal event onto a store update. Success and Failure
// project the matching Result; an interrupted run projects nothing, leaving
// the prior store value untouched, so routine cancellation never flickers the
// host into an error state.
func (o Outcome[A]) Project() (result.Result[A], bool) {
	switch o.kind {
	case OutcomeSuccess:
		return result.Success(o.value), true
	case OutcomeFailure:
		return result.Fail[A](o.err), true
	default:
		return result.Result[A]{}, false
	}
}

func (o Outcome[A]) String() string {
	switch o.kind {
	case OutcomeSuccess:
		return fmt.Sprintf("Success(%v)", o.value)
	case OutcomeFailure:
		return fmt.Sprintf("Failure(%v)", o.err)
	default:
		return "Interrupted"
	}
}
