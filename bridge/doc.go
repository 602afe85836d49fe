// Package bridge carries host values across the Starlark boundary.
//
// # Handles
//
// A [Handle] wraps a host entity as an opaque Starlark value. Scripts can
// hold a handle, pass it around, and hand it back to built-ins, but cannot
// inspect or mutate the entity behind it. Host code recovers the entity by
// downcasting against the type tag the handle was wrapped with:
//
//	h := bridge.Wrap("EnvironmentContext", ctx)
//
//	ref, err := h.DowncastRef("EnvironmentContext") // shared, read-only
//	mut, err := h.DowncastMut("EnvironmentContext") // exclusive
//
// Views follow single-writer discipline: any number of shared views may be
// outstanding at once, or exactly one exclusive view, never both. A
// conflicting downcast fails immediately with [ErrBorrowConflict] instead of
// blocking; a conflict means host code is holding a view across a call that
// needs another one, which is a bug to fix, not a condition to wait out.
//
// # Published attributes
//
// [TypeAttrs] is a second lookup surface, keyed by type tag and name, that
// built-ins use to find their collaborators without trusting script globals
// (scripts are free to rebind any global). One TypeAttrs instance belongs to
// one environment; [Attach] ties it to the evaluating thread and [Resolve]
// reads it back inside a built-in. Nothing here is process-global, so
// concurrent environments never observe each other's state.
//
// # Assembly
//
// [BindAll] applies an ordered list of [Binding] declarations to a globals
// dict and a TypeAttrs surface in one pass, so the environment's final shape
// can be read off a single list.
package bridge
