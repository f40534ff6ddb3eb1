// Package errors provides structured error handling for the effect bridge.
package errors

import (
	"fmt"
	"time"
)

// Kind identifies the category of an error.
type Kind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown Kind = iota
	// KindComputation indicates a failure reported by a computation itself.
	KindComputation
	// KindMissingService indicates a resolution of an unregistered service.
	KindMissingService
	// KindDisposal indicates a failure while finalizing scope resources.
	KindDisposal
	// KindListener indicates a failure inside a store listener callback.
	KindListener
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k Kind) String() string {
	switch k {
	case KindComputation:
		return "computation"
	case KindMissingService:
		return "missing-service"
	case KindDisposal:
		return "disposal"
	case KindListener:
		return "listener"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// EffectError represents a structured error in the effect bridge.
type EffectError struct {
	// Op is the operation that failed (e.g., "runner.Start").
	Op string
	// Kind categorizes the error.
	Kind Kind
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *EffectError) Error() string {
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *EffectError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "store.Set").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// MissingServiceError reports a resolution of a service identity that is
// absent from a scope's merged instance set. It is a programmer error: it
// surfaces as a Failure on the computation that attempted the resolution,
// never as a crash of the host loop.
type MissingServiceError struct {
	// Key is the service identity that failed to resolve.
	Key any
}

func (e *MissingServiceError) Error() string {
	return fmt.Sprintf("no service registered for %v", e.Key)
}

// ErrorHandler receives errors reported by the effect bridge.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *EffectError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
