// Package runner manages the lifecycle of in-flight computations per slot.
//
// A Slot pairs one observable store with at most one active Task. Starting a
// computation interrupts the slot's previous task and records the new one as
// active; when a task's terminal outcome arrives on the host loop it is
// applied only if that task is still the active one. A superseded task's
// outcome is discarded entirely, so the store's terminal value after any
// interleaving of starts equals the outcome of the most recently started
// task that was not itself superseded, independent of completion order.
//
// Cancellation is cooperative and structured: each task owns a context
// derived from its scope, and sub-computations spawned from that context are
// cancelled with it. Interrupt requests never block.
//
// Teardown is bound to the host instance: detaching the owning handle
// interrupts every active task synchronously and clears it, so no store
// update can occur for those slots afterwards, even when a cancelled task's
// completion arrives later.
package runner
