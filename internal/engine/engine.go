package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/reactidoc/internal/config"
	"github.com/specialistvlad/reactidoc/internal/ctxlog"
	"github.com/specialistvlad/reactidoc/internal/expand"
	"github.com/specialistvlad/reactidoc/internal/exprref"
	"github.com/specialistvlad/reactidoc/internal/graph"
	"github.com/specialistvlad/reactidoc/internal/metrics"
	"github.com/specialistvlad/reactidoc/internal/nodeid"
	"github.com/specialistvlad/reactidoc/internal/nodestore"
	"github.com/specialistvlad/reactidoc/internal/registry"
	"github.com/specialistvlad/reactidoc/internal/statevar"
	"github.com/specialistvlad/reactidoc/internal/topologystore"
	"github.com/specialistvlad/reactidoc/internal/value"
	"github.com/specialistvlad/reactidoc/internal/variant"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Config wires an engine to its collaborators.
type Config struct {
	Graph    graph.Graph
	Registry *registry.Registry
	Sampler  *variant.Sampler
	Metrics  *metrics.Metrics
}

type frame struct {
	key  nodestore.Key
	deps []nodestore.Key
}

// Engine resolves the state variables of one document session. It is not
// safe for concurrent use.
type Engine struct {
	graph    graph.Graph
	reg      *registry.Registry
	sampler  *variant.Sampler
	metrics  *metrics.Metrics
	expander *expand.Expander

	frames     []*frame
	diags      hcl.Diagnostics
	seen       map[string]struct{}
	containers map[hcl.Expression]*exprref.Container
	functions  map[string]function.Function
	unknown    *statevar.Type
}

// New creates an engine.
func New(cfg Config) *Engine {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.Discard()
	}
	if cfg.Sampler == nil {
		cfg.Sampler = variant.New(variant.Config{})
	}
	e := &Engine{
		graph:      cfg.Graph,
		reg:        cfg.Registry,
		sampler:    cfg.Sampler,
		metrics:    cfg.Metrics,
		seen:       make(map[string]struct{}),
		containers: make(map[hcl.Expression]*exprref.Container),
		functions:  Functions(),
		unknown:    statevar.NewType(""),
	}
	e.expander = expand.New(cfg.Graph.Topology(), expand.Hooks{
		IsTemplate: cfg.Registry.IsTemplate,
		OnCreate:   e.onCreate,
		OnDestroy:  e.onDestroy,
	}, cfg.Metrics)
	return e
}

// Graph returns the graph the engine resolves.
func (e *Engine) Graph() graph.Graph { return e.graph }

// Expander returns the replacement-group manager.
func (e *Engine) Expander() *expand.Expander { return e.expander }

// Sampler returns the document's variant sampler.
func (e *Engine) Sampler() *variant.Sampler { return e.sampler }

// Load instantiates the static tree under a root component named after the
// template.
func (e *Engine) Load(ctx context.Context, root *config.Component) (*topologystore.Component, error) {
	return e.expander.Instantiate(ctx, root, expand.Placement{
		Addr:  nodeid.Address{Path: []nodeid.PathSegment{nodeid.NewPathSegment(root.Name)}},
		Scope: topologystore.RootScope,
	})
}

// TypeOf returns the definition table of a component. Unknown types have
// no variables.
func (e *Engine) TypeOf(c *topologystore.Component) *statevar.Type {
	if t, ok := e.reg.Type(c.Type); ok {
		return t
	}
	return e.unknown
}

// Read returns a variable of a component, computing it if needed.
func (e *Engine) Read(ctx context.Context, id topologystore.ID, name string) cty.Value {
	return e.read(ctx, nodestore.Key{Component: id, Var: name, Index: nodestore.Whole}, false)
}

// Peek returns the memoized value of a slot without computing anything.
func (e *Engine) Peek(id topologystore.ID, name string) (cty.Value, nodestore.Status, bool) {
	slot, ok := e.graph.Slot(nodestore.Key{Component: id, Var: name, Index: nodestore.Whole})
	if !ok {
		return cty.NilVal, nodestore.StatusStale, false
	}
	return slot.Value, slot.Status, true
}

// Writer returns the action view of a component.
func (e *Engine) Writer(ctx context.Context, c *topologystore.Component) statevar.Writer {
	return &reader{e: e, ctx: ctx, self: c}
}

// Diagnostics returns everything reported so far.
func (e *Engine) Diagnostics() hcl.Diagnostics {
	out := make(hcl.Diagnostics, len(e.diags))
	copy(out, e.diags)
	return out
}

// Report records a diagnostic unless an identical one was already recorded.
func (e *Engine) Report(d *hcl.Diagnostic) {
	key := fmt.Sprintf("%d|%s|%s", d.Severity, d.Summary, d.Detail)
	if d.Subject != nil {
		key += "|" + d.Subject.String()
	}
	if _, dup := e.seen[key]; dup {
		return
	}
	e.seen[key] = struct{}{}
	e.diags = append(e.diags, d)
}

func (e *Engine) read(ctx context.Context, k nodestore.Key, track bool) cty.Value {
	c, ok := e.graph.Component(k.Component)
	if !ok {
		return cty.NullVal(cty.DynamicPseudoType)
	}
	def, ok := e.TypeOf(c).Def(k.Var)
	if !ok {
		return cty.NullVal(cty.DynamicPseudoType)
	}
	if def.Shape == statevar.Scalar {
		k.Index = nodestore.Whole
	}
	if track && len(e.frames) > 0 {
		top := e.frames[len(e.frames)-1]
		top.deps = append(top.deps, k)
	}

	slot := e.graph.EnsureSlot(k)
	switch slot.Status {
	case nodestore.StatusFresh:
		return slot.Value
	case nodestore.StatusResolving:
		return e.cycle(ctx, c, def, k)
	}
	return e.compute(ctx, c, def, k, slot)
}

func (e *Engine) compute(ctx context.Context, c *topologystore.Component, def *statevar.Def, k nodestore.Key, slot *nodestore.Slot) cty.Value {
	slot.Status = nodestore.StatusResolving
	f := &frame{key: k}
	e.frames = append(e.frames, f)
	v := e.evaluate(ctx, c, def, k)
	e.frames = e.frames[:len(e.frames)-1]
	e.metrics.Recomputations.Inc()

	if _, alive := e.graph.Component(c.ID); !alive {
		return v
	}
	if slot.Cyclic {
		v = def.PlaceholderValue()
	}
	slot.Value = normalize(v)
	slot.Status = nodestore.StatusFresh
	e.graph.ReplaceDeps(k, f.deps)
	return slot.Value
}

func (e *Engine) evaluate(ctx context.Context, c *topologystore.Component, def *statevar.Def, k nodestore.Key) (v cty.Value) {
	defer func() {
		if rec := recover(); rec != nil {
			ctxlog.FromContext(ctx).Error("State variable definition panicked.", "component", c.Addr.String(), "var", k.Var, "panic", rec)
			e.Report(&hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "State variable evaluation failed",
				Detail:   fmt.Sprintf("Computing %s of %s failed: %v", k.Var, c.Addr.String(), rec),
				Subject:  rangePtr(c.Range()),
			})
			v = def.PlaceholderValue()
		}
	}()

	r := &reader{e: e, ctx: ctx, self: c, tracked: true}
	switch {
	case k.Index == nodestore.Size:
		return cty.NumberIntVal(int64(max(def.Size(r), 0)))
	case k.Index >= 0:
		return def.Element(r, k.Index)
	case def.Shape == statevar.Array && def.Define == nil:
		n := r.ReadSize(c.ID, def.Name)
		elems := make([]cty.Value, n)
		for i := range elems {
			elems[i] = r.ReadIndex(c.ID, def.Name, i)
		}
		return value.Tuple(elems...)
	}
	return def.Define(r)
}

func (e *Engine) cycle(ctx context.Context, c *topologystore.Component, def *statevar.Def, k nodestore.Key) cty.Value {
	start := len(e.frames) - 1
	for start >= 0 && e.frames[start].key != k {
		start--
	}
	if start < 0 {
		start = 0
	}

	var path []string
	for _, f := range e.frames[start:] {
		if slot, ok := e.graph.Slot(f.key); ok {
			slot.Cyclic = true
		}
		path = append(path, e.describe(f.key))
	}
	path = append(path, e.describe(k))

	e.metrics.Cycles.Inc()
	ctxlog.FromContext(ctx).Debug("Dependency cycle detected.", "component", c.Addr.String(), "var", k.Var, "length", len(path)-1)
	e.Report(&hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  "Circular dependency",
		Detail:   fmt.Sprintf("The value of %s depends on itself: %s.", e.describe(k), strings.Join(path, " -> ")),
		Subject:  rangePtr(c.Range()),
	})
	return def.PlaceholderValue()
}

func (e *Engine) describe(k nodestore.Key) string {
	c, ok := e.graph.Component(k.Component)
	if !ok {
		return k.String()
	}
	s := c.Addr.String() + "." + k.Var
	switch {
	case k.Index == nodestore.Size:
		s += ".size"
	case k.Index >= 0:
		s += fmt.Sprintf("[%d]", k.Index)
	}
	return s
}

// Set writes an essential variable. Writing the value it already holds
// changes nothing.
func (e *Engine) Set(ctx context.Context, k nodestore.Key, v cty.Value) error {
	c, ok := e.graph.Component(k.Component)
	if !ok {
		return fmt.Errorf("component %d not found", k.Component)
	}
	def, ok := e.TypeOf(c).Def(k.Var)
	if !ok {
		return fmt.Errorf("component '%s' has no variable '%s'", c.Addr.String(), k.Var)
	}
	if !def.Essential {
		return fmt.Errorf("variable '%s' of '%s' is not essential", k.Var, c.Addr.String())
	}
	if def.Shape == statevar.Array && k.Index < 0 {
		return fmt.Errorf("array variable '%s' of '%s' is written one element at a time", k.Var, c.Addr.String())
	}
	if def.Shape == statevar.Scalar {
		k.Index = nodestore.Whole
	}

	v = normalize(v)
	slot := e.graph.EnsureSlot(k)
	if slot.Set && slot.Status == nodestore.StatusFresh && value.Equal(slot.Value, v) {
		return nil
	}
	slot.Value = v
	slot.Set = true
	slot.Status = nodestore.StatusFresh
	slot.Cyclic = false
	e.graph.ReplaceDeps(k, nil)

	changed := e.graph.Invalidate(ctx, k)
	e.metrics.Invalidations.Add(float64(len(changed)))
	ctxlog.FromContext(ctx).Debug("Essential variable written.", "component", c.Addr.String(), "var", k.Var, "index", k.Index, "invalidated", len(changed))
	return nil
}

// Reset returns an essential variable, or every written element of an
// essential array, to its definition.
func (e *Engine) Reset(ctx context.Context, id topologystore.ID, name string) {
	var keys []nodestore.Key
	for _, k := range e.graph.SlotsOf(id) {
		if k.Var != name {
			continue
		}
		if slot, _ := e.graph.Slot(k); slot.Set {
			slot.Set = false
			slot.Status = nodestore.StatusStale
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return
	}
	changed := e.graph.Invalidate(ctx, keys...)
	e.metrics.Invalidations.Add(float64(len(changed) + len(keys)))
}

func (e *Engine) onCreate(ctx context.Context, c *topologystore.Component) {
	t, ok := e.reg.Type(c.Type)
	if !ok {
		e.Report(&hcl.Diagnostic{
			Severity: hcl.DiagWarning,
			Summary:  "Unknown component type",
			Detail:   fmt.Sprintf("Component type %q is not supported; %s is kept as a plain container.", c.Type, c.Addr.String()),
			Subject:  rangePtr(c.Range()),
		})
	}
	if c.Template != nil {
		for _, attr := range c.Template.Attributes {
			for _, fn := range e.container(attr.Expr).CalledFunctions() {
				if _, known := e.functions[fn]; !known {
					e.Report(&hcl.Diagnostic{
						Severity: hcl.DiagWarning,
						Summary:  "Unknown function",
						Detail:   fmt.Sprintf("There is no function named %q; the attribute %q evaluates to NaN.", fn, attr.Name),
						Subject:  attr.Expr.Range().Ptr(),
					})
				}
			}
		}
	}

	seeds := c.Seeds.Lookup(c.Addr)
	if !ok || len(seeds) == 0 {
		return
	}
	for _, s := range seeds {
		def, ok := t.Def(s.Var)
		if !ok || !def.Essential {
			continue
		}
		k := nodestore.Key{Component: c.ID, Var: s.Var, Index: s.Index}
		if def.Shape == statevar.Scalar {
			k.Index = nodestore.Whole
		}
		slot := e.graph.EnsureSlot(k)
		slot.Value = normalize(s.Value)
		slot.Set = true
		slot.Status = nodestore.StatusFresh
	}
	ctxlog.FromContext(ctx).Debug("Seeded component from copy source.", "component", c.Addr.String(), "seeds", len(seeds))
}

func (e *Engine) onDestroy(ctx context.Context, ids []topologystore.ID) {
	for _, id := range ids {
		changed := e.graph.DropComponent(ctx, id)
		e.metrics.Invalidations.Add(float64(len(changed)))
	}
}

func (e *Engine) container(expr hcl.Expression) *exprref.Container {
	c, ok := e.containers[expr]
	if !ok {
		c = exprref.NewContainer(expr)
		e.containers[expr] = c
	}
	return c
}

// normalize strips unknowns so stored values are always wholly known.
func normalize(v cty.Value) cty.Value {
	if v == cty.NilVal {
		return cty.NullVal(cty.DynamicPseudoType)
	}
	return value.Sanitize(v)
}

func rangePtr(r hcl.Range) *hcl.Range {
	if r.Filename == "" && r.Start.Line == 0 {
		return nil
	}
	return &r
}
