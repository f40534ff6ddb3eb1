package runner

import (
	"context"

	"github.com/google/uuid"
)

// Task is an opaque handle identifying one invocation of a computation.
// Each Start call produces a distinct task.
type Task struct {
	id     uuid.UUID
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// ID returns the task's unique identity.
func (t *Task) ID() uuid.UUID { return t.id }

// Context is the task's execution context. It is cancelled by Interrupt, by
// the owning scope rebuilding, or by host teardown; computations derive any
// child work from it so cancellation reaches the whole subtree.
func (t *Task) Context() context.Context { return t.ctx }

// Interrupt requests cancellation of the task and everything spawned under
// its context. Best-effort: it never blocks waiting for the task to stop.
func (t *Task) Interrupt() {
	t.cancel()
}

// Done is closed once the task's computation has returned and released its
// resources.
func (t *Task) Done() <-chan struct{} { return t.done }
