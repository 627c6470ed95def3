package exprref

import (
	"maps"
	"math/big"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// NoIndex marks a reference without a literal index.
const NoIndex = -1

// Ref is one reference to a component from an expression. The forms are:
//
//	name            the component's default variable
//	name[2]         element 2 of the default variable
//	name.var        variable var
//	name.var[2]     element 2 of variable var
//
// Anything after the index is applied by the expression itself.
type Ref struct {
	Root  string
	Var   string // empty for the default variable
	Index int
	Range hcl.Range
}

// Bare reports whether the reference names the component only.
func (r Ref) Bare() bool { return r.Var == "" }

// TraversalKey generates a stable, canonical string representation for an hcl.Traversal,
// suitable for use as a map key.
func TraversalKey(t hcl.Traversal) string {
	return string(hclwrite.TokensForTraversal(t).Bytes())
}

// ParseRef classifies an absolute traversal. Relative traversals are
// rejected.
func ParseRef(t hcl.Traversal) (Ref, bool) {
	if len(t) == 0 {
		return Ref{}, false
	}
	root, ok := t[0].(hcl.TraverseRoot)
	if !ok {
		return Ref{}, false
	}
	r := Ref{Root: root.Name, Index: NoIndex, Range: t.SourceRange()}
	rest := t[1:]
	if len(rest) > 0 {
		if attr, ok := rest[0].(hcl.TraverseAttr); ok {
			r.Var = attr.Name
			rest = rest[1:]
		}
	}
	if len(rest) > 0 {
		if idx, ok := indexOf(rest[0]); ok {
			r.Index = idx
		}
	}
	return r, true
}

func indexOf(step hcl.Traverser) (int, bool) {
	ti, ok := step.(hcl.TraverseIndex)
	if !ok || ti.Key.IsNull() || !ti.Key.IsKnown() || ti.Key.Type() != cty.Number {
		return 0, false
	}
	bf := ti.Key.AsBigFloat()
	if !bf.IsInt() || bf.Sign() < 0 {
		return 0, false
	}
	i, acc := bf.Int64()
	if acc != big.Exact {
		return 0, false
	}
	return int(i), true
}

// extractReferencesAndFunctions collects the distinct traversals and
// function names used by exprs, both in sorted order.
func extractReferencesAndFunctions(exprs ...hcl.Expression) ([]hcl.Traversal, []string) {
	traversals := make(map[string]hcl.Traversal)
	functions := make(map[string]struct{})

	for _, expr := range exprs {
		if expr == nil {
			continue
		}
		for _, t := range expr.Variables() {
			traversals[TraversalKey(t)] = t
		}
		// Variables() does not report function calls.
		if node, ok := expr.(hclsyntax.Node); ok {
			hclsyntax.VisitAll(node, func(n hclsyntax.Node) hcl.Diagnostics {
				if call, ok := n.(*hclsyntax.FunctionCallExpr); ok {
					functions[call.Name] = struct{}{}
				}
				return nil
			})
		}
	}

	refs := make([]hcl.Traversal, 0, len(traversals))
	for _, k := range slices.Sorted(maps.Keys(traversals)) {
		refs = append(refs, traversals[k])
	}
	return refs, slices.Sorted(maps.Keys(functions))
}
