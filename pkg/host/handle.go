package host

import "sync"

// Handle binds bridge state to one host instance (one component instance, in
// UI terms). Slots and scope caches register cleanup on the handle; the host
// calls Detach exactly once when the instance permanently leaves the tree.
type Handle struct {
	loop *Loop

	mu         sync.Mutex
	disposers  []func()
	detached   bool
	invalidate func()
}

// NewHandle creates a handle attached to the given loop.
func NewHandle(loop *Loop) *Handle {
	return &Handle{loop: loop}
}

// Loop returns the loop the handle's instance renders on.
func (h *Handle) Loop() *Loop { return h.loop }

// SetInvalidate registers the host's re-render request callback (the
// mark-needs-build of the host framework). Hook subscriptions call it when a
// slot's store changes.
func (h *Handle) SetInvalidate(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.invalidate = fn
}

// Invalidate requests a re-render of the owning instance.
// No-op after detach.
func (h *Handle) Invalidate() {
	h.mu.Lock()
	fn := h.invalidate
	detached := h.detached
	h.mu.Unlock()
	if detached || fn == nil {
		return
	}
	fn()
}

// OnDetach registers a cleanup function to run when the instance detaches.
// Returns a function that unregisters the cleanup. Registering on an already
// detached handle runs the cleanup immediately.
func (h *Handle) OnDetach(cleanup func()) (remove func()) {
	if cleanup == nil {
		return func() {}
	}

	h.mu.Lock()
	if h.detached {
		h.mu.Unlock()
		cleanup()
		return func() {}
	}
	index := len(h.disposers)
	h.disposers = append(h.disposers, cleanup)
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if index < len(h.disposers) {
			h.disposers[index] = nil
		}
	}
}

// Detach runs the registered cleanups in reverse registration order,
// synchronously within the teardown step. Idempotent.
func (h *Handle) Detach() {
	h.mu.Lock()
	if h.detached {
		h.mu.Unlock()
		return
	}
	h.detached = true
	disposers := h.disposers
	h.disposers = nil
	h.mu.Unlock()

	for i := len(disposers) - 1; i >= 0; i-- {
		if disposers[i] != nil {
			disposers[i]()
		}
	}
}

// IsDetached reports whether the instance has permanently detached.
func (h *Handle) IsDetached() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.detached
}
