package graph

import (
	"context"

	"github.com/specialistvlad/reactidoc/internal/ctxlog"
	"github.com/specialistvlad/reactidoc/internal/nodestore"
	"github.com/specialistvlad/reactidoc/internal/topologystore"
)

// Manager composes a topology store and a slot store.
type Manager struct {
	topology topologystore.Store
	slots    nodestore.Store
}

// New creates a new graph manager.
func New(ts topologystore.Store, ns nodestore.Store) Graph {
	return &Manager{topology: ts, slots: ns}
}

func (m *Manager) Topology() topologystore.Store { return m.topology }

func (m *Manager) Component(id topologystore.ID) (*topologystore.Component, bool) {
	return m.topology.Get(id)
}

func (m *Manager) Slot(k nodestore.Key) (*nodestore.Slot, bool) {
	return m.slots.Get(k)
}

func (m *Manager) EnsureSlot(k nodestore.Key) *nodestore.Slot {
	return m.slots.Ensure(k)
}

func (m *Manager) SlotsOf(id topologystore.ID) []nodestore.Key {
	return m.slots.KeysOf(id)
}

func (m *Manager) ReplaceDeps(k nodestore.Key, deps []nodestore.Key) {
	slot := m.slots.Ensure(k)
	for _, old := range slot.Deps {
		if dep, ok := m.slots.Get(old); ok {
			delete(dep.Dependents, k)
		}
	}

	seen := make(map[nodestore.Key]struct{}, len(deps))
	unique := make([]nodestore.Key, 0, len(deps))
	for _, d := range deps {
		if _, dup := seen[d]; dup {
			continue
		}
		// Slots of destroyed components are not linked.
		if _, alive := m.topology.Get(d.Component); !alive {
			continue
		}
		seen[d] = struct{}{}
		unique = append(unique, d)
		m.slots.Ensure(d).Dependents[k] = struct{}{}
	}
	slot.Deps = unique
}

func (m *Manager) Invalidate(ctx context.Context, keys ...nodestore.Key) []nodestore.Key {
	var changed []nodestore.Key
	stack := make([]nodestore.Key, 0, len(keys))
	for _, k := range keys {
		if slot, ok := m.slots.Get(k); ok {
			stack = appendDependents(stack, slot)
		}
	}

	for len(stack) > 0 {
		k := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		slot, ok := m.slots.Get(k)
		if !ok {
			continue
		}
		// A stale slot already had its dependents invalidated; a resolving
		// one records its dependencies when it finishes.
		if slot.Status != nodestore.StatusFresh {
			continue
		}
		slot.Status = nodestore.StatusStale
		slot.Cyclic = false
		changed = append(changed, k)
		stack = appendDependents(stack, slot)
	}

	if len(changed) > 0 {
		ctxlog.FromContext(ctx).Debug("Invalidated state variables.", "roots", len(keys), "count", len(changed))
	}
	return changed
}

func (m *Manager) DropComponent(ctx context.Context, id topologystore.ID) []nodestore.Key {
	keys := m.slots.KeysOf(id)
	changed := m.Invalidate(ctx, keys...)
	for _, k := range keys {
		slot, _ := m.slots.Get(k)
		for _, d := range slot.Deps {
			if dep, ok := m.slots.Get(d); ok {
				delete(dep.Dependents, k)
			}
		}
		m.slots.Delete(k)
	}
	return changed
}

func appendDependents(stack []nodestore.Key, slot *nodestore.Slot) []nodestore.Key {
	for d := range slot.Dependents {
		stack = append(stack, d)
	}
	return stack
}
