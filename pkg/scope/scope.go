package scope

import (
	"context"
	"sync"

	"github.com/load28/effect-react/pkg/errors"
)

// Scope is a live, merged set of service instances visible to the
// computations of one host subtree.
type Scope struct {
	parent    *Scope
	desc      Descriptor
	instances map[any]any

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	finalizers []func() error
	finalized  bool
}

// Build constructs a scope from a descriptor, merging over the parent's live
// instances when parent is non-nil. Parent-only identities keep the exact
// parent object reference; identities declared by the descriptor win.
func Build(parent *Scope, desc Descriptor) (*Scope, error) {
	reg := NewRegistry()
	if desc != nil {
		if err := desc.BuildServices(reg); err != nil {
			// Release whatever was acquired before the failure.
			runFinalizers(reg.finalizers)
			return nil, err
		}
	}

	size := len(reg.order)
	if parent != nil {
		size += len(parent.instances)
	}
	merged := make(map[any]any, size)
	if parent != nil {
		for key, instance := range parent.instances {
			merged[key] = instance
		}
	}
	for _, key := range reg.order {
		merged[key] = reg.instances[key]
	}

	base := context.Background()
	if parent != nil {
		base = parent.Context()
	}
	ctx, cancel := context.WithCancel(base)

	return &Scope{
		parent:     parent,
		desc:       desc,
		instances:  merged,
		ctx:        ctx,
		cancel:     cancel,
		finalizers: reg.finalizers,
	}, nil
}

// Parent returns the parent scope, or nil for a root scope.
func (s *Scope) Parent() *Scope { return s.parent }

// Descriptor returns the descriptor the scope was built from.
func (s *Scope) Descriptor() Descriptor { return s.desc }

// Context is cancelled when the scope is disposed or rebuilt, or when an
// ancestor scope is. Computations resolved against the scope derive their
// task contexts from it, so a rebuild interrupts every in-flight computation
// that still holds the stale instances.
func (s *Scope) Context() context.Context { return s.ctx }

// Alive reports whether the scope can still serve resolutions.
func (s *Scope) Alive() bool { return s.ctx.Err() == nil }

// Injector returns the read-only resolution view handed to computations.
func (s *Scope) Injector() *Injector {
	return &Injector{sc: s}
}

// finalize cancels the scope and releases the resources built by this scope's
// own descriptor, in reverse registration order. Parent instances are never
// finalized here; they belong to the parent. Idempotent.
func (s *Scope) finalize() {
	s.mu.Lock()
	if s.finalized {
		s.mu.Unlock()
		return
	}
	s.finalized = true
	fins := s.finalizers
	s.finalizers = nil
	s.mu.Unlock()

	s.cancel()
	runFinalizers(fins)
}

func runFinalizers(fins []func() error) {
	for i := len(fins) - 1; i >= 0; i-- {
		if err := fins[i](); err != nil {
			errors.Report(&errors.EffectError{
				Op:   "scope.finalize",
				Kind: errors.KindDisposal,
				Err:  err,
			})
		}
	}
}

// Injector resolves service identities against one scope's merged instances.
// The view is read-only: only scope construction replaces the instance set.
type Injector struct {
	sc *Scope
}

// Resolve returns the instance registered under key. Resolving an identity
// absent from the merged set returns *errors.MissingServiceError; the runner
// surfaces it as a Failure on the requesting computation.
func (in *Injector) Resolve(key any) (any, error) {
	if in == nil || in.sc == nil {
		return nil, &errors.MissingServiceError{Key: key}
	}
	if instance, ok := in.sc.instances[key]; ok {
		return instance, nil
	}
	return nil, &errors.MissingServiceError{Key: key}
}
