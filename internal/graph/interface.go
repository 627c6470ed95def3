package graph

import (
	"context"

	"github.com/specialistvlad/reactidoc/internal/nodestore"
	"github.com/specialistvlad/reactidoc/internal/topologystore"
)

// Graph is the facade used by the resolution and expansion engines.
type Graph interface {
	// Topology exposes the component store for structural changes.
	Topology() topologystore.Store

	// Component looks up a live component.
	Component(id topologystore.ID) (*topologystore.Component, bool)

	// Slot returns an existing slot.
	Slot(k nodestore.Key) (*nodestore.Slot, bool)

	// EnsureSlot returns the slot at k, creating a stale one when missing.
	EnsureSlot(k nodestore.Key) *nodestore.Slot

	// SlotsOf lists the slot keys of one component.
	SlotsOf(id topologystore.ID) []nodestore.Key

	// ReplaceDeps sets the dependency set of k to exactly deps.
	// Duplicate keys in deps are collapsed.
	ReplaceDeps(k nodestore.Key, deps []nodestore.Key)

	// Invalidate marks every transitive dependent of the given keys stale.
	// The keys themselves are left alone. It returns the slots it changed.
	Invalidate(ctx context.Context, keys ...nodestore.Key) []nodestore.Key

	// DropComponent removes all slots of a component, invalidating whatever
	// read them.
	DropComponent(ctx context.Context, id topologystore.ID) []nodestore.Key
}
