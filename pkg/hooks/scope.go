package hooks

import (
	"sync"

	"github.com/load28/effect-react/pkg/host"
	"github.com/load28/effect-react/pkg/scope"
)

// ScopeRef caches the runtime scope for one host instance. The scope is
// built lazily on first use and rebuilt only when the descriptor reference or
// parent changes; detach schedules deferred disposal through the loop's
// keeper, so an immediate re-attach with an identical descriptor reclaims the
// same live instances.
type ScopeRef struct {
	cache *scope.Cache

	mu     sync.Mutex
	parent *scope.Scope
	desc   scope.Descriptor
}

// UseScope binds a scope to the host instance. There is no process-wide
// default scope: every computation resolves against a scope reached through
// an explicit ScopeRef at its position in the host tree.
func UseScope(h *host.Handle, parent *scope.Scope, desc scope.Descriptor) *ScopeRef {
	loop := h.Loop()
	cache := scope.NewCache(loop, loop.Keeper())
	h.OnDetach(cache.Release)
	return &ScopeRef{cache: cache, parent: parent, desc: desc}
}

// Scope returns the live scope, building or rebuilding as needed.
func (s *ScopeRef) Scope() (*scope.Scope, error) {
	s.mu.Lock()
	parent, desc := s.parent, s.desc
	s.mu.Unlock()
	return s.cache.Get(parent, desc)
}

// Update records new inputs (host-driven dependency change). The next Scope
// call rebuilds if either reference actually changed.
func (s *ScopeRef) Update(parent *scope.Scope, desc scope.Descriptor) {
	s.mu.Lock()
	s.parent, s.desc = parent, desc
	s.mu.Unlock()
}
