package scope

import (
	stderrors "errors"
	"reflect"
	"sync"
)

// ErrReleased is returned by Cache.Get after the owning host instance has
// permanently detached.
var ErrReleased = stderrors.New("scope: cache released")

// Scheduler defers work past the current synchronous phase, to a
// microtask-equivalent boundary.
type Scheduler interface {
	Microtask(fn func())
}

type keeperKey struct {
	desc   Descriptor
	parent *Scope
}

// Keeper holds scopes between detach and their deferred disposal so that an
// indistinguishable replacement cache can reclaim them. One keeper is shared
// per host loop.
type Keeper struct {
	mu     sync.Mutex
	parked map[keeperKey]*Scope
}

// NewKeeper creates an empty keeper.
func NewKeeper() *Keeper {
	return &Keeper{parked: make(map[keeperKey]*Scope)}
}

// park stores a scope awaiting disposal and returns any scope it displaced.
func (k *Keeper) park(key keeperKey, sc *Scope) (displaced *Scope) {
	k.mu.Lock()
	defer k.mu.Unlock()
	displaced = k.parked[key]
	k.parked[key] = sc
	return displaced
}

// claim removes and returns the scope parked under key, if any.
func (k *Keeper) claim(key keeperKey) *Scope {
	k.mu.Lock()
	defer k.mu.Unlock()
	sc := k.parked[key]
	if sc != nil {
		delete(k.parked, key)
	}
	return sc
}

// take removes the parked scope only if it is still the given one. It reports
// whether the caller now owns disposal of sc.
func (k *Keeper) take(key keeperKey, sc *Scope) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.parked[key] == sc {
		delete(k.parked, key)
		return true
	}
	return false
}

// Cache builds and retains the scope for one host instance.
//
// Get returns the cached scope as long as the descriptor reference and parent
// are unchanged and the scope is alive. A fresh descriptor reference, a new
// parent scope, or a dead parent context forces a rebuild; the stale scope is
// finalized immediately, interrupting in-flight computations resolved against
// it. This is an explicit contract: descriptors rebuilt on every evaluation
// deterministically rebuild the scope each time.
type Cache struct {
	sched  Scheduler
	keeper *Keeper

	mu       sync.Mutex
	scope    *Scope
	parent   *Scope
	desc     Descriptor
	released bool
}

// NewCache creates a cache scheduling deferred disposal on sched and
// coordinating supersession through keeper. keeper may be nil, in which case
// replacement scopes are never reclaimed and disposal always proceeds.
func NewCache(sched Scheduler, keeper *Keeper) *Cache {
	return &Cache{sched: sched, keeper: keeper}
}

// Get returns the scope for the given parent and descriptor, building or
// rebuilding it as needed.
func (c *Cache) Get(parent *Scope, desc Descriptor) (*Scope, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return nil, ErrReleased
	}

	if c.scope != nil && c.parent == parent && sameDescriptor(c.desc, desc) && c.scope.Alive() {
		return c.scope, nil
	}

	if c.scope != nil {
		c.scope.finalize()
		c.scope = nil
	}

	if c.keeper != nil {
		if key, ok := keyFor(desc, parent); ok {
			if sc := c.keeper.claim(key); sc != nil && sc.Alive() {
				c.scope, c.parent, c.desc = sc, parent, desc
				return sc, nil
			}
		}
	}

	sc, err := Build(parent, desc)
	if err != nil {
		return nil, err
	}
	c.scope, c.parent, c.desc = sc, parent, desc
	return sc, nil
}

// Release schedules disposal of the cached scope after the current
// synchronous phase. If an indistinguishable replacement (same descriptor
// reference, same parent) claims the scope before the deferred disposal runs,
// disposal is skipped and the replacement keeps the live instances.
func (c *Cache) Release() {
	c.mu.Lock()
	if c.released {
		c.mu.Unlock()
		return
	}
	c.released = true
	sc, parent, desc := c.scope, c.parent, c.desc
	c.scope = nil
	c.mu.Unlock()

	if sc == nil {
		return
	}

	key, ok := keyFor(desc, parent)
	if !ok || c.keeper == nil {
		c.sched.Microtask(sc.finalize)
		return
	}

	if displaced := c.keeper.park(key, sc); displaced != nil && displaced != sc {
		// A previously parked scope can no longer be reclaimed under this
		// key; its own deferred disposal will skip, so dispose it here.
		displaced.finalize()
	}
	c.sched.Microtask(func() {
		if c.keeper.take(key, sc) {
			sc.finalize()
		}
	})
}

func sameDescriptor(a, b Descriptor) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if !reflect.TypeOf(a).Comparable() {
		return false
	}
	return a == b
}

// keyFor builds a keeper key; descriptors with non-comparable dynamic types
// cannot be matched against a replacement and report ok=false.
func keyFor(desc Descriptor, parent *Scope) (keeperKey, bool) {
	if desc != nil && !reflect.TypeOf(desc).Comparable() {
		return keeperKey{}, false
	}
	return keeperKey{desc: desc, parent: parent}, true
}
