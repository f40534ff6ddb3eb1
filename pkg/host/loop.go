// Package host integrates the bridge with a render-driven host: a
// cooperative serial loop standing in for the host's render thread, and a
// per-instance Handle carrying teardown and invalidation.
package host

import (
	"sync"

	"github.com/load28/effect-react/pkg/errors"
	"github.com/load28/effect-react/pkg/scope"
)

// Loop is a cooperative serial executor modeling the single thread shared
// with the host's render loop. Background goroutines hand completions to the
// loop with Dispatch; the host drains the loop with Flush between renders.
// Everything the bridge mutates (active tasks, scope caches) runs on the
// loop, so reads from the host side never tear.
type Loop struct {
	mu     sync.Mutex
	macro  []func()
	micro  []func()
	keeper *scope.Keeper

	// OnWake is called when work is scheduled onto an empty loop,
	// signalling the host that a flush is needed. Useful for hosts that
	// render on demand rather than on a fixed frame cadence.
	OnWake func()
}

// NewLoop creates an empty loop with its own scope keeper.
func NewLoop() *Loop {
	return &Loop{keeper: scope.NewKeeper()}
}

// Keeper returns the loop's scope keeper, shared by every scope cache
// attached to this loop.
func (l *Loop) Keeper() *scope.Keeper { return l.keeper }

// Dispatch enqueues fn to run on the loop. Safe to call from any goroutine.
func (l *Loop) Dispatch(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	wake := len(l.macro) == 0 && len(l.micro) == 0
	l.macro = append(l.macro, fn)
	onWake := l.OnWake
	l.mu.Unlock()

	if wake && onWake != nil {
		onWake()
	}
}

// Microtask enqueues fn to run before the next queued Dispatch callback.
// Microtasks model the deferred-but-still-soon boundary used for scope
// disposal: after the current synchronous phase, before the next macrotask.
func (l *Loop) Microtask(fn func()) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	wake := len(l.macro) == 0 && len(l.micro) == 0
	l.micro = append(l.micro, fn)
	onWake := l.OnWake
	l.mu.Unlock()

	if wake && onWake != nil {
		onWake()
	}
}

// Flush runs queued work until both queues are empty. Microtasks drain before
// each macrotask and after the last one. Call from the host thread.
func (l *Loop) Flush() {
	for {
		if fn := l.pop(&l.micro); fn != nil {
			l.invoke(fn)
			continue
		}
		fn := l.pop(&l.macro)
		if fn == nil {
			return
		}
		l.invoke(fn)
	}
}

// FlushMicrotasks drains only the microtask queue.
func (l *Loop) FlushMicrotasks() {
	for {
		fn := l.pop(&l.micro)
		if fn == nil {
			return
		}
		l.invoke(fn)
	}
}

// Pending reports whether the loop has queued work.
func (l *Loop) Pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.macro) > 0 || len(l.micro) > 0
}

func (l *Loop) pop(queue *[]func()) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(*queue) == 0 {
		return nil
	}
	fn := (*queue)[0]
	*queue = (*queue)[1:]
	return fn
}

// invoke runs queued work with panic recovery; a panicking callback must not
// take down the host loop.
func (l *Loop) invoke(fn func()) {
	defer errors.Recover("host.Flush")
	fn()
}
