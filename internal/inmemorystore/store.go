// Package inmemorystore provides an ephemeral, in-memory implementation of
// the nodestore.Store interface.
//
// Slots are grouped per component so that destroying a replacement group
// can drop all of a component's slots without scanning the table.
package inmemorystore

import (
	"sort"

	"github.com/specialistvlad/reactidoc/internal/nodestore"
	"github.com/specialistvlad/reactidoc/internal/topologystore"
)

// Store is an in-memory implementation of nodestore.Store.
type Store struct {
	byComp map[topologystore.ID]map[nodestore.Key]*nodestore.Slot
	count  int
}

// New creates a new, empty slot store.
func New() nodestore.Store {
	return &Store{byComp: make(map[topologystore.ID]map[nodestore.Key]*nodestore.Slot)}
}

// Get retrieves a slot.
func (s *Store) Get(k nodestore.Key) (*nodestore.Slot, bool) {
	slot, ok := s.byComp[k.Component][k]
	return slot, ok
}

// Ensure retrieves a slot, creating it stale when absent.
func (s *Store) Ensure(k nodestore.Key) *nodestore.Slot {
	slots, ok := s.byComp[k.Component]
	if !ok {
		slots = make(map[nodestore.Key]*nodestore.Slot)
		s.byComp[k.Component] = slots
	}
	slot, ok := slots[k]
	if !ok {
		slot = &nodestore.Slot{Dependents: make(map[nodestore.Key]struct{})}
		slots[k] = slot
		s.count++
	}
	return slot
}

// Delete removes a slot.
func (s *Store) Delete(k nodestore.Key) {
	slots, ok := s.byComp[k.Component]
	if !ok {
		return
	}
	if _, ok := slots[k]; ok {
		delete(slots, k)
		s.count--
	}
	if len(slots) == 0 {
		delete(s.byComp, k.Component)
	}
}

// KeysOf lists a component's slots in a stable order.
func (s *Store) KeysOf(c topologystore.ID) []nodestore.Key {
	slots := s.byComp[c]
	keys := make([]nodestore.Key, 0, len(slots))
	for k := range slots {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Var != keys[j].Var {
			return keys[i].Var < keys[j].Var
		}
		return keys[i].Index < keys[j].Index
	})
	return keys
}

// Len returns the number of stored slots.
func (s *Store) Len() int {
	return s.count
}
