package config

import (
	"github.com/hashicorp/hcl/v2"
)

// DefaultRootName names the implicit root when a file has no document block.
const DefaultRootName = "doc"

// Document is the unified representation of one loaded document.
type Document struct {
	Root    *Component
	Variant *Variant

	// Diagnostics holds the non-fatal problems found while loading, such as
	// ignored name parts. Fatal problems are returned as errors instead.
	Diagnostics hcl.Diagnostics
}

// Variant carries the document-level randomization settings. Either may be
// overridden by the host at session start.
type Variant struct {
	Index               int
	Seed                string
	MaxExcludedFraction float64
	Range               hcl.Range
}

// Component is one node of the static tree.
type Component struct {
	Type       string
	Name       string
	Label      string
	Attributes map[string]*Attribute
	Children   []*Component

	DefRange hcl.Range
	Range    hcl.Range
}

// Attribute is an unevaluated attribute expression.
type Attribute struct {
	Name  string
	Expr  hcl.Expression
	Range hcl.Range
}

// Attr returns the attribute's expression, if present.
func (c *Component) Attr(name string) (hcl.Expression, bool) {
	a, ok := c.Attributes[name]
	if !ok {
		return nil, false
	}
	return a.Expr, true
}

// Walk visits c and its descendants depth-first, parents before children.
func (c *Component) Walk(fn func(*Component)) {
	fn(c)
	for _, ch := range c.Children {
		ch.Walk(fn)
	}
}

// Find returns the first descendant (or c itself) with the given name.
func (c *Component) Find(name string) *Component {
	if c.Name == name {
		return c
	}
	for _, ch := range c.Children {
		if found := ch.Find(name); found != nil {
			return found
		}
	}
	return nil
}
