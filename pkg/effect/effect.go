// Package effect defines the cancellable computation consumed by the bridge.
//
// An Effect is an explicit capability wrapper: a value is a runnable,
// cancellable computation exactly when it was created through Async or Sync,
// decided once at the API boundary rather than inferred from its shape. The
// Sync constructor additionally marks the computation as resolving without
// suspending, which lets the runner skip the Loading projection for it.
package effect

import (
	"context"
	stderrors "errors"

	"github.com/load28/effect-react/pkg/scope"
)

// ErrNoComputation is the failure produced by running a zero Effect.
var ErrNoComputation = stderrors.New("effect: no computation")

// Fn is the computation signature: it runs under the task's context and
// resolves services through the injector. Returning ctx.Err() after an
// interrupt request classifies the run as Interrupted.
type Fn[A any] func(ctx context.Context, in *scope.Injector) (A, error)

// Effect wraps one computation. The zero value is invalid and fails with
// ErrNoComputation when run.
type Effect[A any] struct {
	run  Fn[A]
	sync bool
}

// Async wraps a computation that may suspend (I/O, timers, channel waits).
// The runner projects Loading before executing it.
func Async[A any](fn Fn[A]) Effect[A] {
	return Effect[A]{run: fn}
}

// Sync wraps a computation known to resolve without suspending. The runner
// executes it inline and projects its terminal result directly, so the host
// never observes a Loading flash for instantaneous work.
func Sync[A any](fn Fn[A]) Effect[A] {
	return Effect[A]{run: fn, sync: true}
}

// IsSync reports whether the computation was declared non-suspending.
func (e Effect[A]) IsSync() bool { return e.sync }

// Run executes the computation.
func (e Effect[A]) Run(ctx context.Context, in *scope.Injector) (A, error) {
	if e.run == nil {
		var zero A
		return zero, ErrNoComputation
	}
	return e.run(ctx, in)
}
