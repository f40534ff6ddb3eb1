// Package hooks provides the named host-facing operations: auto-run
// computations, writable state, manual triggers, a sync/async hybrid reducer,
// and per-instance scopes. Each is a thin composition over a slot, its store,
// and a runtime scope.
//
// Call a Use function once when the host instance initializes (the InitState
// phase of a drift-style host), keep the returned handle in the instance
// state, and read it during render through Snapshot. The hook wires store
// changes to the handle's invalidate callback, so changes schedule a
// re-render, and registers all cleanup on the handle for teardown.
package hooks

import (
	"sync"

	"github.com/load28/effect-react/pkg/effect"
	"github.com/load28/effect-react/pkg/host"
	"github.com/load28/effect-react/pkg/result"
	"github.com/load28/effect-react/pkg/runner"
	"github.com/load28/effect-react/pkg/scope"
)

// bindInvalidate re-renders the owning instance whenever the slot changes.
func bindInvalidate[A any](h *host.Handle, slot *runner.Slot[A]) {
	unsubscribe := slot.Subscribe(h.Invalidate)
	h.OnDetach(unsubscribe)
}

// EffectValue is a read-only slot that runs its computation on mount.
type EffectValue[A any] struct {
	slot *runner.Slot[A]
	sc   *scope.Scope
	eff  effect.Effect[A]
}

// UseEffectValue starts the computation immediately and returns the read-only
// view. Refresh re-runs it, superseding the in-flight run.
func UseEffectValue[A any](h *host.Handle, sc *scope.Scope, eff effect.Effect[A]) *EffectValue[A] {
	slot := runner.NewSlot[A](h)
	bindInvalidate(h, slot)
	v := &EffectValue[A]{slot: slot, sc: sc, eff: eff}
	slot.Start(sc, eff)
	return v
}

// Snapshot returns the current result.
func (v *EffectValue[A]) Snapshot() result.Result[A] { return v.slot.Snapshot() }

// Subscribe registers a change listener.
func (v *EffectValue[A]) Subscribe(fn func()) (unsubscribe func()) {
	return v.slot.Subscribe(fn)
}

// Refresh re-evaluates the computation (dependency change, explicit reload).
func (v *EffectValue[A]) Refresh() *runner.Task {
	return v.slot.Start(v.sc, v.eff)
}

// EffectState is a writable slot: plain state with a setter that can also be
// driven by computations.
type EffectState[A any] struct {
	slot *runner.Slot[A]
	sc   *scope.Scope
}

// UseEffectState creates writable state holding initial. The store starts in
// Success, never Loading.
func UseEffectState[A any](h *host.Handle, sc *scope.Scope, initial A) *EffectState[A] {
	slot := runner.NewValueSlot(h, initial)
	bindInvalidate(h, slot)
	return &EffectState[A]{slot: slot, sc: sc}
}

// Snapshot returns the current result.
func (s *EffectState[A]) Snapshot() result.Result[A] { return s.slot.Snapshot() }

// Subscribe registers a change listener.
func (s *EffectState[A]) Subscribe(fn func()) (unsubscribe func()) {
	return s.slot.Subscribe(fn)
}

// Set writes a plain value, superseding any in-flight computation.
func (s *EffectState[A]) Set(value A) { s.slot.Set(value) }

// Update transforms the current success value; when the slot is not in
// Success, the zero value is transformed instead.
func (s *EffectState[A]) Update(transform func(A) A) {
	var zero A
	s.slot.Set(transform(s.slot.Snapshot().OrElse(zero)))
}

// Run drives the state from a computation, superseding any in-flight run.
func (s *EffectState[A]) Run(eff effect.Effect[A]) *runner.Task {
	return s.slot.Start(s.sc, eff)
}

// EffectCallback is a manually triggered computation with a loading flag.
type EffectCallback[A any] struct {
	slot *runner.Slot[A]
	sc   *scope.Scope
	eff  effect.Effect[A]
}

// UseEffectCallback wires the computation without running it; Call triggers
// it. InFlight is the loading flag for the trigger.
func UseEffectCallback[A any](h *host.Handle, sc *scope.Scope, eff effect.Effect[A]) *EffectCallback[A] {
	slot := runner.NewSlot[A](h)
	bindInvalidate(h, slot)
	return &EffectCallback[A]{slot: slot, sc: sc, eff: eff}
}

// Call starts the computation, superseding a previous trigger still in
// flight.
func (c *EffectCallback[A]) Call() *runner.Task {
	return c.slot.Start(c.sc, c.eff)
}

// InFlight reports whether a triggered run has not settled yet.
func (c *EffectCallback[A]) InFlight() bool { return c.slot.InFlight() }

// Snapshot returns the current result.
func (c *EffectCallback[A]) Snapshot() result.Result[A] { return c.slot.Snapshot() }

// Subscribe registers a change listener.
func (c *EffectCallback[A]) Subscribe(fn func()) (unsubscribe func()) {
	return c.slot.Subscribe(fn)
}

// Reduction is the outcome of one reducer step: either an immediate next
// state or a computation producing it.
type Reduction[S any] struct {
	value    S
	eff      effect.Effect[S]
	deferred bool
}

// Pure is an immediate next state. It applies synchronously and never shows
// Loading.
func Pure[S any](value S) Reduction[S] {
	return Reduction[S]{value: value}
}

// Async defers the next state to a computation. The store shows Loading while
// it runs.
func Async[S any](eff effect.Effect[S]) Reduction[S] {
	return Reduction[S]{eff: eff, deferred: true}
}

// EffectReducer is a sync/async hybrid reducer over a writable slot.
type EffectReducer[S, Act any] struct {
	slot   *runner.Slot[S]
	sc     *scope.Scope
	reduce func(S, Act) Reduction[S]

	mu    sync.Mutex
	state S
}

// UseEffectReducer creates reducer-driven state. Dispatching an action feeds
// the last settled state to reduce; a Pure reduction applies immediately, an
// Async reduction runs as a computation with the usual supersession rules.
func UseEffectReducer[S, Act any](
	h *host.Handle,
	sc *scope.Scope,
	initial S,
	reduce func(S, Act) Reduction[S],
) *EffectReducer[S, Act] {
	slot := runner.NewValueSlot(h, initial)
	bindInvalidate(h, slot)
	r := &EffectReducer[S, Act]{slot: slot, sc: sc, reduce: reduce, state: initial}
	unsubscribe := slot.Subscribe(func() {
		if value, ok := slot.Snapshot().Value(); ok {
			r.mu.Lock()
			r.state = value
			r.mu.Unlock()
		}
	})
	h.OnDetach(unsubscribe)
	return r
}

// Dispatch applies an action.
func (r *EffectReducer[S, Act]) Dispatch(action Act) {
	r.mu.Lock()
	current := r.state
	r.mu.Unlock()

	reduction := r.reduce(current, action)
	if reduction.deferred {
		r.slot.Start(r.sc, reduction.eff)
		return
	}
	r.slot.Set(reduction.value)
}

// Snapshot returns the current result.
func (r *EffectReducer[S, Act]) Snapshot() result.Result[S] { return r.slot.Snapshot() }

// Subscribe registers a change listener.
func (r *EffectReducer[S, Act]) Subscribe(fn func()) (unsubscribe func()) {
	return r.slot.Subscribe(fn)
}
