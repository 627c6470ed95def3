// Package inmemorytopology provides a simple, in-memory implementation of
// the topologystore.Store interface.
package inmemorytopology

import (
	"fmt"
	"sort"
	"sync"

	"github.com/specialistvlad/reactidoc/internal/topologystore"
)

type scope struct {
	parent topologystore.ScopeID
	names  map[string]topologystore.ID
}

// Store implements topologystore.Store with maps. The mutex keeps the
// snapshot readers used by the host relay consistent with the session.
type Store struct {
	mu     sync.RWMutex
	nextID topologystore.ID
	comps  map[topologystore.ID]*topologystore.Component
	byAddr map[string]topologystore.ID
	scopes map[topologystore.ScopeID]*scope
	root   topologystore.ID
}

// New creates an empty arena containing only the root scope.
func New() topologystore.Store {
	return &Store{
		comps:  make(map[topologystore.ID]*topologystore.Component),
		byAddr: make(map[string]topologystore.ID),
		scopes: map[topologystore.ScopeID]*scope{
			topologystore.RootScope: {names: map[string]topologystore.ID{}},
		},
	}
}

// Create adds a new component to the arena.
func (s *Store) Create(spec topologystore.NewComponent) (*topologystore.Component, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := spec.Addr.String()
	if _, exists := s.byAddr[key]; exists {
		return nil, fmt.Errorf("component address '%s' already in use", key)
	}
	sc, ok := s.scopes[spec.Scope]
	if !ok {
		return nil, fmt.Errorf("scope %d not found", spec.Scope)
	}
	var parent *topologystore.Component
	if spec.Parent != topologystore.NoID {
		if parent, ok = s.comps[spec.Parent]; !ok {
			return nil, fmt.Errorf("parent component %d not found", spec.Parent)
		}
	} else if s.root != topologystore.NoID {
		return nil, fmt.Errorf("document already has a root component")
	}

	s.nextID++
	c := &topologystore.Component{
		ID:       s.nextID,
		Type:     spec.Type,
		Name:     spec.Name,
		Addr:     spec.Addr,
		Template: spec.Template,
		Parent:   spec.Parent,
		Owner:    spec.Owner,
		Scope:    spec.Scope,
		Iter:     spec.Iter,
		Seeds:    spec.Seeds,
	}
	s.comps[c.ID] = c
	s.byAddr[key] = c.ID
	sc.names[c.Name] = c.ID

	if parent == nil {
		s.root = c.ID
	} else if spec.Owner == parent.Owner || spec.Owner == topologystore.NoID {
		// Only statically nested children are listed; instances created by
		// a construct are published through its state instead.
		parent.Children = append(parent.Children, c.ID)
	}
	return c, nil
}

// Destroy removes a component and its owned descendants.
func (s *Store) Destroy(id, owner topologystore.ID) ([]topologystore.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comps[id]
	if !ok {
		return nil, fmt.Errorf("component %d not found", id)
	}
	if c.Owner != owner {
		return nil, fmt.Errorf("component '%s' is owned by %d, not %d", c.Addr.String(), c.Owner, owner)
	}

	var removed []topologystore.ID
	var remove func(c *topologystore.Component)
	remove = func(c *topologystore.Component) {
		for _, child := range s.childrenOf(c.ID) {
			remove(child)
		}
		delete(s.comps, c.ID)
		delete(s.byAddr, c.Addr.String())
		if sc := s.scopes[c.Scope]; sc != nil && sc.names[c.Name] == c.ID {
			delete(sc.names, c.Name)
		}
		removed = append(removed, c.ID)
	}
	remove(c)

	if parent, ok := s.comps[c.Parent]; ok {
		kept := parent.Children[:0]
		for _, ch := range parent.Children {
			if ch != id {
				kept = append(kept, ch)
			}
		}
		parent.Children = kept
	}
	if s.root == id {
		s.root = topologystore.NoID
	}
	return removed, nil
}

// childrenOf returns every live component whose parent is id, static or
// instantiated. Callers hold the lock.
func (s *Store) childrenOf(id topologystore.ID) []*topologystore.Component {
	var out []*topologystore.Component
	for _, c := range s.comps {
		if c.Parent == id {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

// Get retrieves a component by ID.
func (s *Store) Get(id topologystore.ID) (*topologystore.Component, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.comps[id]
	return c, ok
}

// ByAddress retrieves a component by its canonical address.
func (s *Store) ByAddress(addr string) (*topologystore.Component, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byAddr[addr]
	if !ok {
		return nil, false
	}
	return s.comps[id], true
}

// Root returns the document root.
func (s *Store) Root() *topologystore.Component {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.comps[s.root]
}

// All returns all components ordered by ID.
func (s *Store) All() []*topologystore.Component {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*topologystore.Component, 0, len(s.comps))
	for _, c := range s.comps {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SetHidden updates the hidden flag on a single component.
func (s *Store) SetHidden(id topologystore.ID, hidden bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.comps[id]; ok {
		c.Hidden = hidden
	}
}

// Visible reports whether neither id nor any of its ancestors is hidden.
func (s *Store) Visible(id topologystore.ID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id != topologystore.NoID {
		c, ok := s.comps[id]
		if !ok || c.Hidden {
			return false
		}
		id = c.Parent
	}
	return true
}

// NewScope opens a scope nested in parent.
func (s *Store) NewScope(parent topologystore.ScopeID) topologystore.ScopeID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := topologystore.ScopeID(len(s.scopes) + 1)
	s.scopes[id] = &scope{parent: parent, names: map[string]topologystore.ID{}}
	return id
}

// Resolve looks name up from scope outward.
func (s *Store) Resolve(from topologystore.ScopeID, name string) (topologystore.ID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id := from; id != 0; {
		sc, ok := s.scopes[id]
		if !ok {
			return topologystore.NoID, false
		}
		if c, ok := sc.names[name]; ok {
			return c, true
		}
		id = sc.parent
	}
	return topologystore.NoID, false
}
