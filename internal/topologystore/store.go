// Package topologystore defines the interface for the component node store:
// the flat, id-indexed arena holding every component instance of one
// document, its parent and child links, its owner and its naming scope.
//
// # Why Topology Store Exists
//
// The topology store isolates the **structure** of a document (which
// components exist and how they nest) from the **state** of their variables,
// managed by nodestore. Components reference each other by ID only, so the
// graph of references may contain cycles without any component owning
// another through a pointer.
//
// # Ownership
//
// Every component except the root has exactly one owner: NoID for the static
// tree, or the ID of the replacement construct that instantiated it. Only the
// owner may destroy a component, and destroying a component destroys every
// descendant it owns.
//
// # Scopes
//
// Names resolve through scopes. The static tree shares the root scope; each
// replacement group opens a child scope, so sibling instances created by the
// same group see each other first and the rest of the document second.
package topologystore

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/reactidoc/internal/config"
	"github.com/specialistvlad/reactidoc/internal/nodeid"
	"github.com/zclconf/go-cty/cty"
)

// ID is the stable identity of a component instance. IDs are never reused
// within a session.
type ID int

// NoID is the zero ID. It marks "no parent" and "owned by the static tree".
const NoID ID = 0

// ScopeID identifies a naming scope.
type ScopeID int

// RootScope is the scope shared by the static tree.
const RootScope ScopeID = 1

// Seed is one essential value to install on a freshly created component.
type Seed struct {
	Var   string
	Index int
	Value cty.Value
}

// SeedSet maps component addresses, relative to Base, to the values their
// essential variables start with. Copies use it to start equal to their
// source.
type SeedSet struct {
	Base   nodeid.Address
	Values map[string][]Seed
}

// Lookup returns the seeds for addr, if any.
func (s *SeedSet) Lookup(addr nodeid.Address) []Seed {
	if s == nil {
		return nil
	}
	rel, ok := addr.Rel(s.Base)
	if !ok {
		return nil
	}
	return s.Values[rel]
}

// Component is one instance in the arena.
type Component struct {
	ID       ID
	Type     string
	Name     string
	Addr     nodeid.Address
	Template *config.Component

	Parent   ID
	Children []ID // statically instantiated children, in document order
	Owner    ID
	Scope    ScopeID

	// Hidden is set on the members of a retained but inactive replacement
	// group. It is not propagated to their descendants.
	Hidden bool

	// Iter holds the iteration bindings (count, each) visible to attribute
	// expressions.
	Iter map[string]cty.Value

	// Seeds is inherited by everything created beneath this component.
	Seeds *SeedSet
}

// Attr returns the template attribute expression, if present.
func (c *Component) Attr(name string) (hcl.Expression, bool) {
	if c.Template == nil {
		return nil, false
	}
	return c.Template.Attr(name)
}

// Range returns the source span of the component's definition.
func (c *Component) Range() hcl.Range {
	if c.Template == nil {
		return hcl.Range{}
	}
	return c.Template.DefRange
}

// NewComponent describes a component to create.
type NewComponent struct {
	Type     string
	Name     string
	Addr     nodeid.Address
	Template *config.Component
	Parent   ID
	Owner    ID
	Scope    ScopeID
	Iter     map[string]cty.Value
	Seeds    *SeedSet
}

// Store is the interface for the component arena.
//
// Implementations are not required to be safe for concurrent use: a
// document session serializes every call.
type Store interface {
	// Create adds a component, links it under its parent, registers its
	// address and binds its name in its scope.
	Create(spec NewComponent) (*Component, error)

	// Destroy removes id and every descendant. owner must match the
	// component's recorded owner. It returns the IDs removed, deepest first.
	Destroy(id ID, owner ID) ([]ID, error)

	// Get returns a component by ID.
	Get(id ID) (*Component, bool)

	// ByAddress returns the component registered at addr.
	ByAddress(addr string) (*Component, bool)

	// Root returns the document root, or nil before it is created.
	Root() *Component

	// All returns every live component ordered by ID.
	All() []*Component

	// SetHidden marks a single component hidden or visible. Descendants
	// inherit the effect without being modified, see Visible.
	SetHidden(id ID, hidden bool)

	// Visible reports whether id and all its ancestors are not hidden.
	Visible(id ID) bool

	// NewScope opens a child scope.
	NewScope(parent ScopeID) ScopeID

	// Resolve finds the component bound to name, searching from scope
	// outward to the root scope.
	Resolve(scope ScopeID, name string) (ID, bool)
}
