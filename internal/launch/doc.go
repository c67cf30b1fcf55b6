// Package launch provides Launcher, an object that owns at most one background
// worker goroutine and joins it when closed.
//
// Ownership boundary:
// - the worker slot (empty or exactly one attached worker)
//
// - deadline capture at spawn time
//
// - join-on-close
//
// Lifecycle:
// - Empty -> Occupied via Spawn (repeat calls are no-ops while attached)
//
// - Occupied -> Empty via Close (blocks until the worker returns)
package launch
