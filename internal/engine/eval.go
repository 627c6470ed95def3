package engine

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/reactidoc/internal/ctxlog"
	"github.com/specialistvlad/reactidoc/internal/exprref"
	"github.com/specialistvlad/reactidoc/internal/statevar"
	"github.com/specialistvlad/reactidoc/internal/topologystore"
	"github.com/specialistvlad/reactidoc/internal/value"
	"github.com/zclconf/go-cty/cty"
)

// eval evaluates expr for r's component, reading referenced slots through r.
// Only the references on the branches actually taken are read, so they alone
// become dependencies.
func (e *Engine) eval(r *reader, expr hcl.Expression) cty.Value {
	byRoot := make(map[string][]exprref.Ref)
	var roots []string
	for _, ref := range e.liveRefs(r, expr) {
		if _, seen := byRoot[ref.Root]; !seen {
			roots = append(roots, ref.Root)
		}
		byRoot[ref.Root] = append(byRoot[ref.Root], ref)
	}

	vars := make(map[string]cty.Value, len(roots))
	for _, ref := range e.container(expr).Refs() {
		if v, ok := r.self.Iter[ref.Root]; ok {
			vars[ref.Root] = v
		} else if _, live := byRoot[ref.Root]; !live {
			vars[ref.Root] = cty.DynamicVal
		}
	}
	for _, root := range roots {
		refs := byRoot[root]
		if _, ok := r.self.Iter[root]; ok {
			continue
		}
		target, ok := r.Resolve(root)
		if !ok {
			e.Report(&hcl.Diagnostic{
				Severity: hcl.DiagWarning,
				Summary:  "Unknown reference",
				Detail:   fmt.Sprintf("No component named %q is visible from %s.", root, r.self.Addr.String()),
				Subject:  refs[0].Range.Ptr(),
			})
			vars[root] = cty.DynamicVal
			continue
		}
		vars[root] = e.refValue(r, target, refs)
	}

	v, diags := expr.Value(&hcl.EvalContext{Variables: vars, Functions: e.functions})
	if diags.HasErrors() {
		ctxlog.FromContext(r.ctx).Debug("Attribute evaluation failed.", "component", r.self.Addr.String(), "error", diags.Error())
		return value.NaN
	}
	v = normalize(v)
	if v.IsNull() && v.Type() == cty.DynamicPseudoType {
		return value.NaN
	}
	return v
}

// liveRefs returns the references of expr that lie outside the branches its
// conditionals do not take. Conditions are evaluated to pick the branch.
// Conditionals under for and splat expressions keep both branches, since
// their conditions may use iteration symbols.
func (e *Engine) liveRefs(r *reader, expr hcl.Expression) []exprref.Ref {
	node, ok := expr.(hclsyntax.Node)
	if !ok {
		return e.container(expr).Refs()
	}

	var dead, scoped []hcl.Range
	hclsyntax.VisitAll(node, func(n hclsyntax.Node) hcl.Diagnostics {
		switch n := n.(type) {
		case *hclsyntax.ForExpr, *hclsyntax.SplatExpr:
			scoped = append(scoped, n.Range())
		case *hclsyntax.ConditionalExpr:
			if within(n.Range(), dead) || within(n.Range(), scoped) {
				return nil
			}
			cond, ok := value.AsBool(e.eval(r, n.Condition))
			if !ok {
				return nil
			}
			if cond {
				dead = append(dead, n.FalseResult.Range())
			} else {
				dead = append(dead, n.TrueResult.Range())
			}
		}
		return nil
	})
	if len(dead) == 0 {
		return e.container(expr).Refs()
	}

	// The container merges equal traversals, so positions come from the
	// raw list.
	var live []exprref.Ref
	for _, t := range expr.Variables() {
		if ref, ok := exprref.ParseRef(t); ok && !within(ref.Range, dead) {
			live = append(live, ref)
		}
	}
	return live
}

func within(rng hcl.Range, outer []hcl.Range) bool {
	for _, o := range outer {
		if rng.Filename == o.Filename && o.Start.Byte <= rng.Start.Byte && rng.End.Byte <= o.End.Byte {
			return true
		}
	}
	return false
}

// refValue binds one referenced component: its default variable when every
// reference is bare, otherwise an object of the variables named.
func (e *Engine) refValue(r *reader, target *topologystore.Component, refs []exprref.Ref) cty.Value {
	t := e.TypeOf(target)

	bare := true
	for _, ref := range refs {
		if !ref.Bare() {
			bare = false
			break
		}
	}
	if bare {
		return e.varValue(r, target, t.Default, refs)
	}

	byVar := make(map[string][]exprref.Ref)
	for _, ref := range refs {
		if !ref.Bare() {
			byVar[ref.Var] = append(byVar[ref.Var], ref)
		}
	}
	attrs := make(map[string]cty.Value, len(byVar))
	for name, vrefs := range byVar {
		attrs[name] = e.varValue(r, target, name, vrefs)
	}
	return cty.ObjectVal(attrs)
}

// varValue reads one variable for an expression. Array variables indexed
// only by literals are read element by element; the other positions are
// left unknown so the expression cannot depend on them.
func (e *Engine) varValue(r *reader, target *topologystore.Component, name string, refs []exprref.Ref) cty.Value {
	def, ok := e.TypeOf(target).Def(name)
	if !ok {
		e.Report(&hcl.Diagnostic{
			Severity: hcl.DiagWarning,
			Summary:  "Unknown state variable",
			Detail:   fmt.Sprintf("Component %s of type %q has no variable %q.", target.Addr.String(), target.Type, name),
			Subject:  refs[0].Range.Ptr(),
		})
		return cty.DynamicVal
	}
	if def.Shape != statevar.Array {
		return r.ReadOf(target.ID, name)
	}

	var indices []int
	for _, ref := range refs {
		if ref.Index == exprref.NoIndex {
			return r.ReadOf(target.ID, name)
		}
		indices = append(indices, ref.Index)
	}
	n := r.ReadSize(target.ID, name)
	elems := make([]cty.Value, n)
	for i := range elems {
		elems[i] = cty.DynamicVal
	}
	for _, i := range indices {
		if i < n {
			elems[i] = r.ReadIndex(target.ID, name, i)
		}
	}
	return value.Tuple(elems...)
}
