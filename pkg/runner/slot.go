package runner

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/load28/effect-react/pkg/effect"
	"github.com/load28/effect-react/pkg/errors"
	"github.com/load28/effect-react/pkg/host"
	"github.com/load28/effect-react/pkg/result"
	"github.com/load28/effect-react/pkg/scope"
	"github.com/load28/effect-react/pkg/store"
)

// Slot binds one result store to at most one active task, scoped to a single
// host instance. Create slots once per hook call-site; they register their
// own teardown on the handle.
type Slot[A any] struct {
	handle *host.Handle
	store  *store.Store[result.Result[A]]

	mu       sync.Mutex
	active   *Task
	detached bool
}

// NewSlot creates a slot whose store starts in the Loading state.
func NewSlot[A any](h *host.Handle) *Slot[A] {
	return newSlot(h, result.Loading[A]())
}

// NewValueSlot creates a slot whose store starts holding the given value.
// Used by writable slots so the host never observes a Loading flash for
// plain state.
func NewValueSlot[A any](h *host.Handle, initial A) *Slot[A] {
	return newSlot(h, result.Success(initial))
}

func newSlot[A any](h *host.Handle, initial result.Result[A]) *Slot[A] {
	s := &Slot[A]{
		handle: h,
		store:  store.New(initial, store.WithEquals(result.Equal[A])),
	}
	h.OnDetach(s.teardown)
	return s
}

// Snapshot returns the slot's current result. Pure and tear-free.
func (s *Slot[A]) Snapshot() result.Result[A] {
	return s.store.Snapshot()
}

// Subscribe registers a change listener on the slot's store.
func (s *Slot[A]) Subscribe(fn func()) (unsubscribe func()) {
	return s.store.Subscribe(fn)
}

// Active returns the currently active task, or nil.
func (s *Slot[A]) Active() *Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// InFlight reports whether a computation is currently running for the slot.
func (s *Slot[A]) InFlight() bool {
	return s.Active() != nil
}

// Start begins executing the computation against the given scope, superseding
// any in-flight task for the slot. The previous task is interrupted
// best-effort, without blocking.
//
// Async computations project Loading into the store before execution begins,
// so the host's next read observes it. Sync computations run inline and
// project their terminal result directly; the store never shows Loading for
// them. Returns nil after teardown.
func (s *Slot[A]) Start(sc *scope.Scope, eff effect.Effect[A]) *Task {
	s.mu.Lock()
	if s.detached {
		s.mu.Unlock()
		return nil
	}
	if prev := s.active; prev != nil {
		prev.Interrupt()
	}

	base := context.Background()
	var in *scope.Injector
	if sc != nil {
		base = sc.Context()
		in = sc.Injector()
	}
	ctx, cancel := context.WithCancel(base)
	task := &Task{id: uuid.New(), ctx: ctx, cancel: cancel, done: make(chan struct{})}
	s.active = task
	s.mu.Unlock()

	if eff.IsSync() {
		value, err := runGuarded(ctx, in, eff)
		outcome := effect.Complete(ctx, value, err)
		cancel()
		close(task.done)
		s.settle(task, outcome)
		return task
	}

	s.store.Set(result.Loading[A]())
	go func() {
		defer close(task.done)
		value, err := runGuarded(ctx, in, eff)
		outcome := effect.Complete(ctx, value, err)
		cancel()
		s.handle.Loop().Dispatch(func() {
			s.settle(task, outcome)
		})
	}()
	return task
}

// Set writes a plain value into the slot, jumping straight to Success. A
// plain write also supersedes an in-flight computation: the task is
// interrupted and its eventual outcome discarded, so the last write wins
// uniformly whether it came from Start or Set. No-op after teardown.
func (s *Slot[A]) Set(value A) {
	s.mu.Lock()
	if s.detached {
		s.mu.Unlock()
		return
	}
	if prev := s.active; prev != nil {
		prev.Interrupt()
		s.active = nil
	}
	s.mu.Unlock()

	s.store.Set(result.Success(value))
}

// settle applies a task's terminal outcome. Runs on the host loop (or inline
// for sync computations). Outcomes of superseded tasks are dropped entirely.
func (s *Slot[A]) settle(task *Task, outcome effect.Outcome[A]) {
	s.mu.Lock()
	if s.active != task {
		s.mu.Unlock()
		return
	}
	s.active = nil
	s.mu.Unlock()

	if err, failed := outcome.Err(); failed {
		kind := errors.KindComputation
		var missing *errors.MissingServiceError
		if stderrors.As(err, &missing) {
			kind = errors.KindMissingService
		}
		errors.Report(&errors.EffectError{
			Op:   "runner.settle",
			Kind: kind,
			Err:  err,
		})
	}
	if projected, ok := outcome.Project(); ok {
		s.store.Set(projected)
	}
}

// teardown interrupts the active task and marks the slot dead. Registered on
// the handle at construction; after it runs, the staleness check in settle
// rejects every late completion, so the store can never change again.
func (s *Slot[A]) teardown() {
	s.mu.Lock()
	s.detached = true
	if task := s.active; task != nil {
		task.Interrupt()
		s.active = nil
	}
	s.mu.Unlock()
}

// runGuarded executes the computation with panic recovery. A panicking
// computation settles as a Failure carrying the panic, never crashing the
// host loop.
func runGuarded[A any](ctx context.Context, in *scope.Injector, eff effect.Effect[A]) (value A, err error) {
	defer func() {
		if r := recover(); r != nil {
			pe := &errors.PanicError{
				Op:         "runner.Start",
				Value:      r,
				StackTrace: errors.CaptureStack(),
				Timestamp:  time.Now(),
			}
			errors.ReportPanic(pe)
			err = pe
		}
	}()
	return eff.Run(ctx, in)
}
