// Package nodestore defines the interface for storing state-variable slots:
// the memoized value, status and dependency edges of every state variable
// instance in a document.
//
// # Why Node Store Exists
//
// The node store isolates **mutable evaluation state** from the **document
// structure** managed by topologystore. The resolution engine is the only
// writer; it reads and rewrites slots while pulling values, and the session
// snapshot reads them back.
//
// # Keys
//
// A slot is keyed by component, variable name and index. Scalar variables
// and whole arrays use Whole; an array's size lives at Size; array elements
// use their non-negative index. Dependencies between slots are plain key
// pairs, so cycles are representable and detected by the engine.
package nodestore

import (
	"fmt"

	"github.com/specialistvlad/reactidoc/internal/topologystore"
	"github.com/zclconf/go-cty/cty"
)

const (
	// Whole addresses a scalar variable or an entire array.
	Whole = -1
	// Size addresses the size of an array variable.
	Size = -2
)

// Key identifies one slot.
type Key struct {
	Component topologystore.ID
	Var       string
	Index     int
}

// Element returns the key of element i of the same variable.
func (k Key) Element(i int) Key { return Key{Component: k.Component, Var: k.Var, Index: i} }

// WholeKey returns the key of the whole variable.
func (k Key) WholeKey() Key { return Key{Component: k.Component, Var: k.Var, Index: Whole} }

func (k Key) String() string {
	switch k.Index {
	case Whole:
		return fmt.Sprintf("#%d.%s", k.Component, k.Var)
	case Size:
		return fmt.Sprintf("#%d.%s.size", k.Component, k.Var)
	}
	return fmt.Sprintf("#%d.%s[%d]", k.Component, k.Var, k.Index)
}

// Status is the evaluation state of a slot. The zero value is Stale so a
// freshly created slot is computed on first read.
type Status int

const (
	StatusStale Status = iota
	StatusResolving
	StatusFresh
)

func (s Status) String() string {
	switch s {
	case StatusStale:
		return "stale"
	case StatusResolving:
		return "resolving"
	case StatusFresh:
		return "fresh"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Slot is the stored state of one variable instance.
type Slot struct {
	Status Status
	Value  cty.Value

	// Set marks an essential value written by an action or a seed. A set
	// slot ignores its definition until reset.
	Set bool

	// Cyclic marks a slot found on a dependency cycle. Its value is the
	// placeholder until it is invalidated again.
	Cyclic bool

	// Deps is exactly what the last evaluation read.
	Deps []Key
	// Dependents is the reverse index of Deps across all slots.
	Dependents map[Key]struct{}
}

// Store is the interface for the slot table.
//
// Implementations are not required to be safe for concurrent use: a
// document session serializes every call.
type Store interface {
	// Get returns the slot at k, if it exists.
	Get(k Key) (*Slot, bool)

	// Ensure returns the slot at k, creating a stale one when missing.
	Ensure(k Key) *Slot

	// Delete removes the slot at k. Edges pointing at it are the caller's
	// responsibility.
	Delete(k Key)

	// KeysOf returns every slot key owned by a component.
	KeysOf(c topologystore.ID) []Key

	// Len returns the number of slots.
	Len() int
}
