package scope_test

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/load28/effect-react/pkg/errors"
	"github.com/load28/effect-react/pkg/scope"
)

// microQueue is a minimal Scheduler capturing deferred disposals so tests can
// run them at a chosen point.
type microQueue struct {
	fns []func()
}

func (q *microQueue) Microtask(fn func()) {
	q.fns = append(q.fns, fn)
}

func (q *microQueue) flush() {
	for len(q.fns) > 0 {
		fn := q.fns[0]
		q.fns = q.fns[1:]
		fn()
	}
}

type service struct {
	name string
}

func TestBuildAndResolve(t *testing.T) {
	tag := scope.NewTag[*service]("svc")
	instance := &service{name: "root"}
	sc, err := scope.Build(nil, scope.NewDescriptor(scope.Supply(tag, instance)))
	require.NoError(t, err)

	got, err := tag.Resolve(sc.Injector())
	require.NoError(t, err)
	require.Same(t, instance, got)
}

func TestResolveMissingServiceReturnsError(t *testing.T) {
	tag := scope.NewTag[*service]("svc")
	sc, err := scope.Build(nil, scope.NewDescriptor())
	require.NoError(t, err)

	_, err = tag.Resolve(sc.Injector())
	var missing *errors.MissingServiceError
	require.ErrorAs(t, err, &missing)
	require.Same(t, tag, missing.Key)
}

func TestParentInstanceCarriedByReference(t *testing.T) {
	shared := scope.NewTag[*service]("shared")
	other := scope.NewTag[*service]("other")
	instance := &service{name: "parent"}

	parent, err := scope.Build(nil, scope.NewDescriptor(scope.Supply(shared, instance)))
	require.NoError(t, err)

	child, err := scope.Build(parent, scope.NewDescriptor(scope.Supply(other, &service{name: "child"})))
	require.NoError(t, err)

	fromParent, err := shared.Resolve(parent.Injector())
	require.NoError(t, err)
	fromChild, err := shared.Resolve(child.Injector())
	require.NoError(t, err)
	require.Same(t, fromParent, fromChild)
}

func TestChildOverrideShadowsParent(t *testing.T) {
	tag := scope.NewTag[*service]("svc")
	parentInstance := &service{name: "parent"}
	childInstance := &service{name: "child"}

	parent, err := scope.Build(nil, scope.NewDescriptor(scope.Supply(tag, parentInstance)))
	require.NoError(t, err)
	child, err := scope.Build(parent, scope.NewDescriptor(scope.Supply(tag, childInstance)))
	require.NoError(t, err)
	sibling, err := scope.Build(parent, scope.NewDescriptor())
	require.NoError(t, err)

	got, err := tag.Resolve(child.Injector())
	require.NoError(t, err)
	require.Same(t, childInstance, got)

	got, err = tag.Resolve(parent.Injector())
	require.NoError(t, err)
	require.Same(t, parentInstance, got)

	got, err = tag.Resolve(sibling.Injector())
	require.NoError(t, err)
	require.Same(t, parentInstance, got)
}

func TestMismatchedInstanceTypeResolvesAsMissing(t *testing.T) {
	tag := scope.NewTag[*service]("svc")

	// Register a raw string under the typed tag.
	desc := scope.NewDescriptor(func(reg *scope.Registry) error {
		reg.Register(tag, "not a service")
		return nil
	})
	sc, err := scope.Build(nil, desc)
	require.NoError(t, err)

	_, err = tag.Resolve(sc.Injector())
	var missing *errors.MissingServiceError
	require.ErrorAs(t, err, &missing)
}

func TestBuildErrorReleasesPartialResources(t *testing.T) {
	tag := scope.NewTag[*service]("svc")
	released := false
	boom := stderrors.New("provider boom")

	desc := scope.NewDescriptor(
		scope.Provide(tag, func(reg *scope.Registry) (*service, error) {
			reg.OnFinalize(func() error {
				released = true
				return nil
			})
			return &service{name: "partial"}, nil
		}),
		func(reg *scope.Registry) error { return boom },
	)

	_, err := scope.Build(nil, desc)
	require.ErrorIs(t, err, boom)
	require.True(t, released, "resources acquired before the failure must be released")
}

func TestCacheReturnsSameScopeForStableInputs(t *testing.T) {
	sched := &microQueue{}
	cache := scope.NewCache(sched, scope.NewKeeper())
	desc := scope.NewDescriptor(scope.Supply(scope.NewTag[int]("n"), 1))

	s1, err := cache.Get(nil, desc)
	require.NoError(t, err)
	s2, err := cache.Get(nil, desc)
	require.NoError(t, err)
	require.Same(t, s1, s2)
}

func TestDescriptorChurnForcesRebuild(t *testing.T) {
	sched := &microQueue{}
	cache := scope.NewCache(sched, scope.NewKeeper())
	tag := scope.NewTag[*service]("svc")

	build := func() scope.Descriptor {
		return scope.NewDescriptor(scope.Provide(tag, func(reg *scope.Registry) (*service, error) {
			return &service{name: "fresh"}, nil
		}))
	}

	s1, err := cache.Get(nil, build())
	require.NoError(t, err)
	first, err := tag.Resolve(s1.Injector())
	require.NoError(t, err)

	// Structurally identical, referentially new descriptor.
	s2, err := cache.Get(nil, build())
	require.NoError(t, err)
	require.NotSame(t, s1, s2)

	second, err := tag.Resolve(s2.Injector())
	require.NoError(t, err)
	require.NotSame(t, first, second)

	// The stale scope's context is cancelled so in-flight work resolved
	// against it is interrupted.
	require.False(t, s1.Alive())
	require.Error(t, s1.Context().Err())
}

func TestParentRebuildForcesChildRebuild(t *testing.T) {
	sched := &microQueue{}
	keeper := scope.NewKeeper()
	parentCache := scope.NewCache(sched, keeper)
	childCache := scope.NewCache(sched, keeper)

	parentDesc := scope.NewDescriptor(scope.Supply(scope.NewTag[int]("n"), 1))
	childDesc := scope.NewDescriptor()

	p1, err := parentCache.Get(nil, parentDesc)
	require.NoError(t, err)
	c1, err := childCache.Get(p1, childDesc)
	require.NoError(t, err)

	// Parent churn produces a new parent scope.
	p2, err := parentCache.Get(nil, scope.NewDescriptor(scope.Supply(scope.NewTag[int]("n"), 1)))
	require.NoError(t, err)
	require.NotSame(t, p1, p2)

	c2, err := childCache.Get(p2, childDesc)
	require.NoError(t, err)
	require.NotSame(t, c1, c2)
	require.False(t, c1.Alive())
}

func TestReleaseDefersDisposal(t *testing.T) {
	sched := &microQueue{}
	cache := scope.NewCache(sched, scope.NewKeeper())
	tag := scope.NewTag[*service]("svc")
	finalized := false

	desc := scope.NewDescriptor(scope.Provide(tag, func(reg *scope.Registry) (*service, error) {
		reg.OnFinalize(func() error {
			finalized = true
			return nil
		})
		return &service{name: "held"}, nil
	}))

	sc, err := cache.Get(nil, desc)
	require.NoError(t, err)

	cache.Release()
	require.False(t, finalized, "disposal must be deferred past the synchronous phase")
	require.True(t, sc.Alive())

	sched.flush()
	require.True(t, finalized)
	require.False(t, sc.Alive())

	_, err = cache.Get(nil, desc)
	require.ErrorIs(t, err, scope.ErrReleased)
}

func TestDoubleAttachSkipsDisposal(t *testing.T) {
	sched := &microQueue{}
	keeper := scope.NewKeeper()
	tag := scope.NewTag[*service]("svc")
	finalized := false

	desc := scope.NewDescriptor(scope.Provide(tag, func(reg *scope.Registry) (*service, error) {
		reg.OnFinalize(func() error {
			finalized = true
			return nil
		})
		return &service{name: "probe"}, nil
	}))

	first := scope.NewCache(sched, keeper)
	s1, err := first.Get(nil, desc)
	require.NoError(t, err)
	instance, err := tag.Resolve(s1.Injector())
	require.NoError(t, err)

	// Detach and immediately re-attach within the same synchronous phase.
	first.Release()
	replacement := scope.NewCache(sched, keeper)
	s2, err := replacement.Get(nil, desc)
	require.NoError(t, err)
	require.Same(t, s1, s2)

	sched.flush()
	require.False(t, finalized, "reclaimed scope must not be disposed")
	require.True(t, s2.Alive())

	again, err := tag.Resolve(s2.Injector())
	require.NoError(t, err)
	require.Same(t, instance, again)
}

func TestFinalizersRunInReverseOrder(t *testing.T) {
	sched := &microQueue{}
	cache := scope.NewCache(sched, scope.NewKeeper())
	var order []string

	desc := scope.NewDescriptor(func(reg *scope.Registry) error {
		reg.OnFinalize(func() error {
			order = append(order, "first")
			return nil
		})
		reg.OnFinalize(func() error {
			order = append(order, "second")
			return nil
		})
		return nil
	})

	_, err := cache.Get(nil, desc)
	require.NoError(t, err)
	cache.Release()
	sched.flush()

	require.Equal(t, []string{"second", "first"}, order)
}

func TestChildReleaseDoesNotFinalizeParentInstances(t *testing.T) {
	sched := &microQueue{}
	keeper := scope.NewKeeper()
	tag := scope.NewTag[*service]("svc")
	parentFinalized := false

	parentDesc := scope.NewDescriptor(scope.Provide(tag, func(reg *scope.Registry) (*service, error) {
		reg.OnFinalize(func() error {
			parentFinalized = true
			return nil
		})
		return &service{name: "parent"}, nil
	}))

	parent, err := scope.Build(nil, parentDesc)
	require.NoError(t, err)

	childCache := scope.NewCache(sched, keeper)
	_, err = childCache.Get(parent, scope.NewDescriptor())
	require.NoError(t, err)

	childCache.Release()
	sched.flush()

	require.False(t, parentFinalized, "child disposal must not release parent-owned instances")
	require.True(t, parent.Alive())
}
