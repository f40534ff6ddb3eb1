// Package store provides a minimal observable value cell.
//
// A Store bridges asynchronous updates into tear-free synchronous reads: the
// host reads the current value with Snapshot and re-renders when a subscribed
// listener fires. The (Snapshot, Subscribe) pair is the external-store
// contract a host integrates with.
//
// Stores are safe for concurrent use, but the intended model is a single
// cooperative host thread: updates produced on background goroutines are
// marshalled onto the host loop before reaching the store.
package store

import (
	"reflect"
	"sync"

	"github.com/load28/effect-react/pkg/errors"
)

// Store holds a value and notifies listeners when it changes.
type Store[T any] struct {
	mu        sync.Mutex
	value     T
	equals    func(old, next T) bool
	listeners []*listener
}

type listener struct {
	fn      func()
	removed bool
}

// Option configures a Store.
type Option[T any] func(*Store[T])

// WithEquals overrides the equality function used to suppress redundant
// notifications. The default compares values by interface equality and treats
// non-comparable dynamic types as never equal.
func WithEquals[T any](equals func(old, next T) bool) Option[T] {
	return func(s *Store[T]) {
		s.equals = equals
	}
}

// New creates a Store holding the given initial value.
func New[T any](initial T, opts ...Option[T]) *Store[T] {
	s := &Store[T]{value: initial}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the current value. It is pure and never tears: the value
// returned is one that was fully written by a single Set call.
func (s *Store[T]) Snapshot() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Set replaces the value and synchronously notifies every listener registered
// at the start of the call, in registration order. Setting a value equal to
// the current one is a no-op. Listeners added or removed during the
// notification pass do not affect the current pass.
func (s *Store[T]) Set(value T) {
	s.mu.Lock()
	if s.equal(s.value, value) {
		s.mu.Unlock()
		return
	}
	s.value = value
	// Stable snapshot: listeners added or removed while the pass runs do
	// not affect the current pass.
	pass := make([]*listener, len(s.listeners))
	copy(pass, s.listeners)
	s.mu.Unlock()

	for _, l := range pass {
		s.invoke(l)
	}
}

// invoke runs a listener with panic recovery: a misbehaving listener must
// never crash the host loop or starve later listeners in the pass.
func (s *Store[T]) invoke(l *listener) {
	defer errors.Recover("store.Set")
	l.fn()
}

// Subscribe registers a listener and returns its unsubscribe function.
// Both are safe to call from within a listener callback, and unsubscribing
// twice is a no-op.
func (s *Store[T]) Subscribe(fn func()) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	l := &listener{fn: fn}
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if l.removed {
			return
		}
		l.removed = true
		for i, cur := range s.listeners {
			if cur == l {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				break
			}
		}
	}
}

// ListenerCount returns the number of registered listeners.
func (s *Store[T]) ListenerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

func (s *Store[T]) equal(old, next T) bool {
	if s.equals != nil {
		return s.equals(old, next)
	}
	a, b := any(old), any(next)
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if !reflect.TypeOf(a).Comparable() {
		return false
	}
	return a == b
}
