package engine

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/reactidoc/internal/ctxlog"
	"github.com/specialistvlad/reactidoc/internal/expand"
	"github.com/specialistvlad/reactidoc/internal/nodestore"
	"github.com/specialistvlad/reactidoc/internal/statevar"
	"github.com/specialistvlad/reactidoc/internal/topologystore"
	"github.com/specialistvlad/reactidoc/internal/value"
	"github.com/specialistvlad/reactidoc/internal/variant"
	"github.com/zclconf/go-cty/cty"
)

// reader implements statevar.Reader and statevar.Writer for one component.
type reader struct {
	e       *Engine
	ctx     context.Context
	self    *topologystore.Component
	tracked bool
}

func (r *reader) Context() context.Context { return r.ctx }

func (r *reader) Self() *topologystore.Component { return r.self }

func (r *reader) Component(id topologystore.ID) (*topologystore.Component, bool) {
	return r.e.graph.Component(id)
}

func (r *reader) Resolve(name string) (*topologystore.Component, bool) {
	ts := r.e.graph.Topology()
	id, ok := ts.Resolve(r.self.Scope, name)
	if !ok {
		return nil, false
	}
	return ts.Get(id)
}

func (r *reader) Read(name string) cty.Value {
	return r.ReadOf(r.self.ID, name)
}

func (r *reader) ReadOf(id topologystore.ID, name string) cty.Value {
	return r.e.read(r.ctx, nodestore.Key{Component: id, Var: name, Index: nodestore.Whole}, r.tracked)
}

func (r *reader) ReadIndex(id topologystore.ID, name string, i int) cty.Value {
	if i < 0 {
		return value.NaN
	}
	return r.e.read(r.ctx, nodestore.Key{Component: id, Var: name, Index: i}, r.tracked)
}

func (r *reader) ReadSize(id topologystore.ID, name string) int {
	n, ok := value.AsInt(r.e.read(r.ctx, nodestore.Key{Component: id, Var: name, Index: nodestore.Size}, r.tracked))
	if !ok || n < 0 {
		return 0
	}
	return n
}

func (r *reader) Has(id topologystore.ID, name string) bool {
	c, ok := r.e.graph.Component(id)
	if !ok {
		return false
	}
	_, ok = r.e.TypeOf(c).Def(name)
	return ok
}

func (r *reader) Expr(name string) (hcl.Expression, bool) {
	return r.self.Attr(name)
}

func (r *reader) Attr(name string) (cty.Value, bool) {
	expr, ok := r.self.Attr(name)
	if !ok {
		return cty.NilVal, false
	}
	return r.Eval(expr), true
}

func (r *reader) AttrOr(name string, def cty.Value) cty.Value {
	v, ok := r.Attr(name)
	if !ok {
		return def
	}
	return v
}

func (r *reader) Eval(expr hcl.Expression) cty.Value {
	return r.e.eval(r, expr)
}

func (r *reader) Target(attr string) (*topologystore.Component, bool) {
	expr, ok := r.self.Attr(attr)
	if !ok {
		return nil, false
	}
	if t, diags := hcl.AbsTraversalForExpr(expr); !diags.HasErrors() && len(t) == 1 {
		return r.Resolve(t.RootName())
	}
	v := r.Eval(expr)
	if v.IsNull() || v.Type() != cty.String {
		return nil, false
	}
	return r.Resolve(v.AsString())
}

func (r *reader) TypeOf(id topologystore.ID) *statevar.Type {
	c, ok := r.e.graph.Component(id)
	if !ok {
		return r.e.unknown
	}
	return r.e.TypeOf(c)
}

func (r *reader) ActiveChildren(id topologystore.ID) []*topologystore.Component {
	c, ok := r.e.graph.Component(id)
	if !ok {
		return nil
	}
	var out []*topologystore.Component
	for _, chID := range c.Children {
		ch, ok := r.e.graph.Component(chID)
		if !ok || ch.Hidden {
			continue
		}
		out = append(out, ch)
		out = append(out, r.Instances(ch.ID)...)
	}
	return out
}

func (r *reader) Instances(id topologystore.ID) []*topologystore.Component {
	if !r.Has(id, "children") {
		return nil
	}
	ts := r.e.graph.Topology()
	var out []*topologystore.Component
	for _, addr := range value.Elements(r.ReadOf(id, "children")) {
		if addr.IsNull() || addr.Type() != cty.String {
			continue
		}
		if inst, ok := ts.ByAddress(addr.AsString()); ok {
			out = append(out, inst)
		}
	}
	return out
}

func (r *reader) Expand(kind string, specs []expand.Spec) []*topologystore.Component {
	members, err := r.e.expander.Sync(r.ctx, r.self, kind, specs)
	if err != nil {
		ctxlog.FromContext(r.ctx).Warn("Replacement expansion failed.", "construct", r.self.Addr.String(), "error", err)
		r.e.Report(&hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid replacement",
			Detail:   err.Error(),
			Subject:  rangePtr(r.self.Range()),
		})
	}
	return members
}

func (r *reader) Variant() *variant.Sampler { return r.e.sampler }

func (r *reader) Report(d *hcl.Diagnostic) {
	if d.Subject == nil {
		d.Subject = rangePtr(r.self.Range())
	}
	r.e.Report(d)
}

func (r *reader) Untracked(fn func(r statevar.Reader)) {
	fn(&reader{e: r.e, ctx: r.ctx, self: r.self})
}

func (r *reader) Set(name string, v cty.Value) {
	r.write(nodestore.Key{Component: r.self.ID, Var: name, Index: nodestore.Whole}, v)
}

func (r *reader) SetIndex(name string, i int, v cty.Value) {
	r.write(nodestore.Key{Component: r.self.ID, Var: name, Index: i}, v)
}

func (r *reader) Reset(name string) {
	r.e.Reset(r.ctx, r.self.ID, name)
}

func (r *reader) write(k nodestore.Key, v cty.Value) {
	if err := r.e.Set(r.ctx, k, v); err != nil {
		ctxlog.FromContext(r.ctx).Warn("Ignoring write.", "component", r.self.Addr.String(), "var", k.Var, "error", err)
		r.e.Report(&hcl.Diagnostic{
			Severity: hcl.DiagWarning,
			Summary:  "Ignored write",
			Detail:   fmt.Sprintf("%v.", err),
			Subject:  rangePtr(r.self.Range()),
		})
	}
}

var (
	_ statevar.Reader = (*reader)(nil)
	_ statevar.Writer = (*reader)(nil)
)
