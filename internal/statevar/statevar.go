package statevar

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/reactidoc/internal/expand"
	"github.com/specialistvlad/reactidoc/internal/topologystore"
	"github.com/specialistvlad/reactidoc/internal/value"
	"github.com/specialistvlad/reactidoc/internal/variant"
	"github.com/zclconf/go-cty/cty"
)

// DefaultVar is the variable a bare component reference reads.
const DefaultVar = "value"

// Shape is the declared shape of a variable.
type Shape int

const (
	Scalar Shape = iota
	Array
)

// Def defines one state variable.
type Def struct {
	Name  string
	Shape Shape
	Type  cty.Type

	// Essential variables may be written by actions and seeds. Their
	// definition supplies the value used until the first write.
	Essential bool

	// Hidden variables are left out of snapshots.
	Hidden bool

	// Define computes a scalar, or the whole value of an array. For arrays
	// it may be nil, in which case the whole value is the tuple of elements.
	Define func(r Reader) cty.Value

	// Size and Element define an array.
	Size    func(r Reader) int
	Element func(r Reader, i int) cty.Value

	// Placeholder is substituted when the variable cannot be computed,
	// for example on a dependency cycle. Defaults to the null of Type, or
	// NaN for numbers.
	Placeholder cty.Value
}

// PlaceholderValue returns the value used for a structural failure.
func (d *Def) PlaceholderValue() cty.Value {
	if d.Placeholder != cty.NilVal {
		return d.Placeholder
	}
	if d.Type == cty.NilType {
		return cty.NullVal(cty.DynamicPseudoType)
	}
	if d.Type.Equals(cty.Number) {
		return value.NaN
	}
	return cty.NullVal(d.Type)
}

// Fragment is a reusable group of definitions.
type Fragment []*Def

// Action is a named external operation on a component.
type Action func(w Writer, args cty.Value) error

// Type is the definition table of one component type.
type Type struct {
	Name string

	// Template types instantiate their configured children themselves,
	// through replacement groups, instead of statically.
	Template bool

	// Default is the variable read by a bare reference.
	Default string

	Defs    map[string]*Def
	Order   []string
	Actions map[string]Action
}

// NewType builds a type from fragments.
func NewType(name string, fragments ...Fragment) *Type {
	t := &Type{Name: name, Default: DefaultVar, Defs: map[string]*Def{}, Actions: map[string]Action{}}
	for _, f := range fragments {
		for _, d := range f {
			if _, seen := t.Defs[d.Name]; !seen {
				t.Order = append(t.Order, d.Name)
			}
			t.Defs[d.Name] = d
		}
	}
	return t
}

// WithAction registers an action and returns t.
func (t *Type) WithAction(name string, a Action) *Type {
	t.Actions[name] = a
	return t
}

// AsTemplate marks t as a template type and returns it.
func (t *Type) AsTemplate() *Type {
	t.Template = true
	return t
}

// Def returns the definition of a variable.
func (t *Type) Def(name string) (*Def, bool) {
	d, ok := t.Defs[name]
	return d, ok
}

// Validate checks that every definition is complete.
func (t *Type) Validate() error {
	for _, name := range t.Order {
		d := t.Defs[name]
		switch d.Shape {
		case Scalar:
			if d.Define == nil {
				return fmt.Errorf("type '%s': scalar variable '%s' has no definition", t.Name, name)
			}
		case Array:
			if d.Size == nil || d.Element == nil {
				return fmt.Errorf("type '%s': array variable '%s' needs both a size and an element definition", t.Name, name)
			}
		default:
			return fmt.Errorf("type '%s': variable '%s' has unknown shape %d", t.Name, name, d.Shape)
		}
	}
	if t.Default != "" {
		if _, ok := t.Defs[t.Default]; !ok && len(t.Defs) > 0 {
			return fmt.Errorf("type '%s': default variable '%s' is not defined", t.Name, t.Default)
		}
	}
	return nil
}

// Reader is the view of the document a definition evaluates against. Every
// read is recorded as a dependency of the variable being computed unless it
// happens inside Untracked.
type Reader interface {
	Context() context.Context

	// Self is the component owning the variable being computed.
	Self() *topologystore.Component

	// Component looks up a live component.
	Component(id topologystore.ID) (*topologystore.Component, bool)

	// Resolve finds a component by name from Self's scope.
	Resolve(name string) (*topologystore.Component, bool)

	// Read returns a variable of Self.
	Read(name string) cty.Value
	// ReadOf returns a variable of another component.
	ReadOf(id topologystore.ID, name string) cty.Value
	// ReadIndex returns one element of an array variable.
	ReadIndex(id topologystore.ID, name string, i int) cty.Value
	// ReadSize returns the size of an array variable.
	ReadSize(id topologystore.ID, name string) int
	// Has reports whether the component's type declares the variable.
	Has(id topologystore.ID, name string) bool
	// TypeOf returns the definition table of a component. Components of
	// unknown types get an empty table.
	TypeOf(id topologystore.ID) *Type

	// Attr evaluates an attribute of Self.
	Attr(name string) (cty.Value, bool)
	// AttrOr evaluates an attribute of Self, or returns def.
	AttrOr(name string, def cty.Value) cty.Value
	// Expr returns the unevaluated attribute.
	Expr(name string) (hcl.Expression, bool)
	// Eval evaluates any expression in Self's scope.
	Eval(expr hcl.Expression) cty.Value
	// Target resolves an attribute written as a bare component name.
	Target(attr string) (*topologystore.Component, bool)

	// ActiveChildren lists the children of id that currently take part in
	// the document: visible static children, each replacement construct
	// followed by its active instances.
	ActiveChildren(id topologystore.ID) []*topologystore.Component
	// Instances lists the active instances of a replacement construct.
	Instances(id topologystore.ID) []*topologystore.Component

	// Expand publishes the replacement groups of Self.
	Expand(kind string, specs []expand.Spec) []*topologystore.Component

	// Variant returns the document's sampler.
	Variant() *variant.Sampler

	// Report adds a diagnostic, deduplicated.
	Report(d *hcl.Diagnostic)

	// Untracked runs fn with a reader whose reads are not recorded.
	Untracked(fn func(r Reader))
}

// Writer is the view given to actions. Reads are never recorded.
type Writer interface {
	Reader

	// Set writes an essential scalar of Self.
	Set(name string, v cty.Value)
	// SetIndex writes one element of an essential array of Self.
	SetIndex(name string, i int, v cty.Value)
	// Reset returns an essential variable of Self to its definition.
	Reset(name string)
}
