// Package exprref collects and classifies the references made by attribute
// expressions.
package exprref

import (
	"sync"

	"github.com/hashicorp/hcl/v2"
)

// Container is a thread-safe helper that gathers HCL expressions and provides
// analysis results, such as component references and function calls.
type Container struct {
	analyzeOnce sync.Once

	mu          sync.RWMutex
	expressions []hcl.Expression

	references      []hcl.Traversal
	refs            []Ref
	calledFunctions []string
}

// NewContainer creates a new, empty expression container.
func NewContainer(exprs ...hcl.Expression) *Container {
	c := &Container{}
	c.Add(exprs...)
	return c
}

// Add adds one or more expressions to the container for analysis.
// It safely ignores any nil expressions.
func (c *Container) Add(exprs ...hcl.Expression) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Analysis runs again on the next getter call.
	c.analyzeOnce = sync.Once{}

	for _, expr := range exprs {
		if expr != nil {
			c.expressions = append(c.expressions, expr)
		}
	}
}

func (c *Container) analyze() {
	c.analyzeOnce.Do(func() {
		c.mu.RLock()
		traversals, funcs := extractReferencesAndFunctions(c.expressions...)
		c.mu.RUnlock()

		refs := make([]Ref, 0, len(traversals))
		for _, t := range traversals {
			if r, ok := ParseRef(t); ok {
				refs = append(refs, r)
			}
		}

		c.mu.Lock()
		c.references = traversals
		c.refs = refs
		c.calledFunctions = funcs
		c.mu.Unlock()
	})
}

// References returns all unique variable traversals found in the expressions.
func (c *Container) References() []hcl.Traversal {
	c.analyze()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.references
}

// Refs returns the references classified by root, variable and index.
func (c *Container) Refs() []Ref {
	c.analyze()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.refs
}

// CalledFunctions returns all unique function calls found in the expressions.
func (c *Container) CalledFunctions() []string {
	c.analyze()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.calledFunctions
}
