// Package graph provides a unified facade over the two stores that make up a
// live document: the component topology and the state-variable slots.
//
// # Why Graph Package Exists
//
// The resolution engine needs to move between structure and state all the
// time: a definition reads a slot, discovers the component it belongs to,
// follows a child edge and reads another slot. The Graph interface gives it
// one API for both, and keeps the dependency-edge bookkeeping in one place so
// the reverse index can never drift from the forward one.
//
// # Architecture: The Facade Pattern
//
//	┌─────────────────────────────────────┐
//	│           Graph Facade              │
//	│  (components, slots, dependency     │
//	│   edges, invalidation)              │
//	└──────────┬────────────┬─────────────┘
//	           │            │
//	           ▼            ▼
//	  ┌────────────┐  ┌────────────┐
//	  │  Topology  │  │   Slot     │
//	  │   Store    │  │   Store    │
//	  │ (Structure)│  │  (Values)  │
//	  └────────────┘  └────────────┘
//
// **Topology Store** (topologystore.Store): component instances, ownership,
// scopes and addresses. Changes when replacement groups are created or
// destroyed.
//
// **Slot Store** (nodestore.Store): memoized values, statuses and recorded
// dependencies. Changes on every read of a stale slot and on every write.
//
// # Edges
//
// ReplaceDeps is the only way edges are written. It swaps the complete
// dependency set of a slot, removing the slot from the reverse index of every
// dependency it no longer reads. Invalidate walks the reverse index.
//
// # Thread-Safety
//
// A Graph belongs to one document session and is not safe for concurrent use.
// The session serializes all access.
package graph
