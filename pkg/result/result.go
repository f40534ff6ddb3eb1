// Package result provides the tri-state outcome wrapper exposed to the host.
//
// A Result is always in exactly one of three states: Loading, Success, or
// Failure. It is the value type carried by a slot's store; the host reads it
// synchronously and branches on the state to render a spinner, data, or an
// error. Results are immutable values; state transitions happen by replacing
// the stored Result wholesale.
package result

import (
	"fmt"
	"reflect"
)

// State identifies which of the three result states holds.
type State int

const (
	// StateLoading indicates the computation has not produced a value yet.
	StateLoading State = iota
	// StateSuccess indicates the computation produced a value.
	StateSuccess
	// StateFailure indicates the computation reported an error.
	StateFailure
)

func (s State) String() string {
	switch s {
	case StateSuccess:
		return "success"
	case StateFailure:
		return "failure"
	default:
		return "loading"
	}
}

// Result holds a Loading, Success, or Failure outcome.
// The zero value is Loading.
type Result[A any] struct {
	state State
	value A
	err   error
}

// Loading returns a Result in the Loading state.
func Loading[A any]() Result[A] {
	return Result[A]{}
}

// Success returns a Result holding the given value.
func Success[A any](value A) Result[A] {
	return Result[A]{state: StateSuccess, value: value}
}

// Fail returns a Result holding the given error.
func Fail[A any](err error) Result[A] {
	return Result[A]{state: StateFailure, err: err}
}

// State returns the current state.
func (r Result[A]) State() State { return r.state }

// IsLoading reports whether the result is Loading.
func (r Result[A]) IsLoading() bool { return r.state == StateLoading }

// IsSuccess reports whether the result is Success.
func (r Result[A]) IsSuccess() bool { return r.state == StateSuccess }

// IsFailure reports whether the result is Failure.
func (r Result[A]) IsFailure() bool { return r.state == StateFailure }

// Value returns the success value and whether the result is Success.
func (r Result[A]) Value() (A, bool) {
	return r.value, r.state == StateSuccess
}

// Err returns the failure error and whether the result is Failure.
func (r Result[A]) Err() (error, bool) {
	return r.err, r.state == StateFailure
}

// OrElse returns the success value, or fallback when the result is not Success.
func (r Result[A]) OrElse(fallback A) A {
	if r.state == StateSuccess {
		return r.value
	}
	return fallback
}

func (r Result[A]) String() string {
	switch r.state {
	case StateSuccess:
		return fmt.Sprintf("Success(%v)", r.value)
	case StateFailure:
		return fmt.Sprintf("Failure(%v)", r.err)
	default:
		return "Loading"
	}
}

// Equal reports whether two results are indistinguishable: same state and,
// for Success, the same value by interface equality; for Failure, the same
// error value. Values with non-comparable dynamic types are never equal.
// Stores use this to suppress redundant notifications.
func Equal[A any](a, b Result[A]) bool {
	if a.state != b.state {
		return false
	}
	switch a.state {
	case StateSuccess:
		return sameValue(any(a.value), any(b.value))
	case StateFailure:
		return a.err == b.err
	default:
		return true
	}
}

// sameValue compares two values by interface equality, treating
// non-comparable dynamic types as never equal.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if !reflect.TypeOf(a).Comparable() {
		return false
	}
	return a == b
}
