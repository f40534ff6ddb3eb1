// Package scope provides hierarchical composition of service descriptors
// into live, cached instance sets.
//
// A Scope merges the instances declared by its own descriptor over the
// instances of its parent. Identities declared only by the parent are carried
// through by the same object reference, so two subtrees resolving the same
// service observe the same live instance, not independently built copies.
// Identities declared by both are won by the child.
//
// Scopes are cached per host instance by a Cache: the merged instance set is
// rebuilt only when the descriptor reference changes or the parent scope is
// rebuilt. A rebuild cancels the scope's context, which interrupts every
// in-flight computation resolved against the stale instances.
//
// Disposal is deferred past the current synchronous phase. If an
// indistinguishable replacement scope (same descriptor reference, same
// parent) is claimed before the deferred disposal runs, disposal is skipped
// and the replacement continues using the surviving instances. This absorbs
// hosts that tear down and immediately re-attach an instance as a
// correctness probe.
package scope
