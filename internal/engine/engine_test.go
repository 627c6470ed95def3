package engine

import (
	"context"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/specialistvlad/reactidoc/internal/ctxlog"
	"github.com/specialistvlad/reactidoc/internal/graph"
	"github.com/specialistvlad/reactidoc/internal/hcldoc"
	"github.com/specialistvlad/reactidoc/internal/inmemorystore"
	"github.com/specialistvlad/reactidoc/internal/inmemorytopology"
	"github.com/specialistvlad/reactidoc/internal/metrics"
	"github.com/specialistvlad/reactidoc/internal/nodestore"
	"github.com/specialistvlad/reactidoc/internal/registry"
	"github.com/specialistvlad/reactidoc/internal/statevar"
	"github.com/specialistvlad/reactidoc/internal/topologystore"
	"github.com/specialistvlad/reactidoc/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

// testTypes is a small catalog exercising each engine feature.
func testTypes() *registry.Registry {
	r := registry.New()
	r.RegisterType(statevar.NewType("document"))
	r.RegisterType(statevar.NewType("number", statevar.Fragment{{
		Name: "value",
		Type: cty.Number,
		Define: func(r statevar.Reader) cty.Value {
			return value.ToNumber(r.AttrOr("value", cty.Zero))
		},
	}}))
	r.RegisterType(statevar.NewType("input", statevar.Fragment{{
		Name:      "value",
		Type:      cty.Number,
		Essential: true,
		Define: func(r statevar.Reader) cty.Value {
			return value.ToNumber(r.AttrOr("prefill", cty.Zero))
		},
	}}))
	r.RegisterType(statevar.NewType("grid", statevar.Fragment{
		{
			Name:      "cells",
			Shape:     statevar.Array,
			Type:      cty.Number,
			Essential: true,
			Size: func(r statevar.Reader) int {
				n, _ := value.AsInt(r.AttrOr("size", cty.NumberIntVal(3)))
				return n
			},
			Element: func(r statevar.Reader, i int) cty.Value {
				return cty.NumberIntVal(int64(i))
			},
		},
		{
			Name: "value",
			Type: cty.Number,
			Define: func(r statevar.Reader) cty.Value {
				sum := 0.0
				for _, c := range value.Elements(r.Read("cells")) {
					sum += value.AsFloat(c)
				}
				return value.Number(sum)
			},
		},
	}))
	r.RegisterType(statevar.NewType("pick", statevar.Fragment{{
		Name: "value",
		Type: cty.Number,
		Define: func(r statevar.Reader) cty.Value {
			if value.AsFloat(r.AttrOr("flag", cty.Zero)) > 0 {
				return r.AttrOr("a", cty.Zero)
			}
			return r.AttrOr("b", cty.Zero)
		},
	}}))
	r.RegisterType(statevar.NewType("boom", statevar.Fragment{{
		Name:   "value",
		Type:   cty.Number,
		Define: func(statevar.Reader) cty.Value { panic("kaboom") },
	}}))
	return r
}

type harness struct {
	t       *testing.T
	ctx     context.Context
	e       *Engine
	metrics *metrics.Metrics
}

func newHarness(t *testing.T, src string) *harness {
	t.Helper()
	ctx := ctxlog.Discard(context.Background())
	doc, err := hcldoc.NewLoader().Parse(ctx, "test.hcl", []byte(src))
	require.NoError(t, err)

	m := metrics.New(prometheus.NewRegistry())
	e := New(Config{
		Graph:    graph.New(inmemorytopology.New(), inmemorystore.New()),
		Registry: testTypes(),
		Metrics:  m,
	})
	_, err = e.Load(ctx, doc.Root)
	require.NoError(t, err)
	return &harness{t: t, ctx: ctx, e: e, metrics: m}
}

func (h *harness) comp(name string) *topologystore.Component {
	h.t.Helper()
	c, ok := h.e.Graph().Topology().ByAddress("doc." + name)
	require.True(h.t, ok, "component %s", name)
	return c
}

func (h *harness) num(name string) float64 {
	return value.AsFloat(h.e.Read(h.ctx, h.comp(name).ID, "value"))
}

func (h *harness) status(name string) nodestore.Status {
	_, st, _ := h.e.Peek(h.comp(name).ID, "value")
	return st
}

func (h *harness) set(name string, v cty.Value) {
	h.t.Helper()
	require.NoError(h.t, h.e.Set(h.ctx, nodestore.Key{Component: h.comp(name).ID, Var: "value", Index: nodestore.Whole}, v))
}

func (h *harness) recomputations() float64 {
	return testutil.ToFloat64(h.metrics.Recomputations)
}

func TestRead_LazyAndMemoized(t *testing.T) {
	h := newHarness(t, `
input "a" { prefill = 3 }
number "b" { value = a * 2 }
number "c" { value = 5 }
`)

	assert.Equal(t, nodestore.StatusStale, h.status("b"), "nothing is computed before it is read")
	assert.InDelta(t, 6, h.num("b"), 0)
	assert.Equal(t, 2.0, h.recomputations())

	assert.InDelta(t, 6, h.num("b"), 0)
	assert.Equal(t, 2.0, h.recomputations(), "fresh values are memoized")

	assert.InDelta(t, 5, h.num("c"), 0)
	h.set("a", cty.NumberIntVal(10))
	assert.Equal(t, nodestore.StatusStale, h.status("b"))
	assert.Equal(t, nodestore.StatusFresh, h.status("c"), "unrelated variables stay fresh")
	assert.InDelta(t, 20, h.num("b"), 0)
}

func TestSet_Rules(t *testing.T) {
	h := newHarness(t, `
input "a" { prefill = 1 }
number "b" { value = a + 1 }
`)
	assert.InDelta(t, 2, h.num("b"), 0)

	err := h.e.Set(h.ctx, nodestore.Key{Component: h.comp("b").ID, Var: "value", Index: nodestore.Whole}, cty.Zero)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not essential")

	h.set("a", cty.NumberIntVal(4))
	assert.InDelta(t, 5, h.num("b"), 0)
	before := testutil.ToFloat64(h.metrics.Invalidations)
	h.set("a", cty.NumberIntVal(4))
	assert.Equal(t, before, testutil.ToFloat64(h.metrics.Invalidations), "writing the same value invalidates nothing")
	assert.Equal(t, nodestore.StatusFresh, h.status("b"))

	h.e.Reset(h.ctx, h.comp("a").ID, "value")
	assert.InDelta(t, 2, h.num("b"), 0, "reset returns to the definition")
}

func TestRead_DependenciesReplaced(t *testing.T) {
	h := newHarness(t, `
input "flag" { prefill = 1 }
input "x" { prefill = 10 }
input "y" { prefill = 20 }
pick "p" {
  flag = flag
  a    = x
  b    = y
}
`)
	assert.InDelta(t, 10, h.num("p"), 0)

	h.set("y", cty.NumberIntVal(21))
	assert.Equal(t, nodestore.StatusFresh, h.status("p"), "the untaken branch is not a dependency")

	h.set("flag", cty.NumberIntVal(-1))
	assert.InDelta(t, 21, h.num("p"), 0)

	h.set("x", cty.NumberIntVal(11))
	assert.Equal(t, nodestore.StatusFresh, h.status("p"), "edges from the previous evaluation are dropped")

	h.set("y", cty.NumberIntVal(7))
	assert.Equal(t, nodestore.StatusStale, h.status("p"))
	assert.InDelta(t, 7, h.num("p"), 0)
}

func TestArray_PartialInvalidation(t *testing.T) {
	h := newHarness(t, `
grid "g" { size = 3 }
number "p" { value = g.cells[1] * 10 }
number "q" { value = g.cells[2] }
number "s" { value = g.value }
`)
	assert.InDelta(t, 10, h.num("p"), 0)
	assert.InDelta(t, 2, h.num("q"), 0)
	assert.InDelta(t, 3, h.num("s"), 0)

	g := h.comp("g")
	require.NoError(t, h.e.Set(h.ctx, nodestore.Key{Component: g.ID, Var: "cells", Index: 2}, cty.NumberIntVal(40)))

	assert.Equal(t, nodestore.StatusFresh, h.status("p"), "other elements' readers are untouched")
	assert.Equal(t, nodestore.StatusStale, h.status("q"))
	assert.Equal(t, nodestore.StatusStale, h.status("s"))
	assert.InDelta(t, 40, h.num("q"), 0)
	assert.InDelta(t, 41, h.num("s"), 0)

	err := h.e.Set(h.ctx, nodestore.Key{Component: g.ID, Var: "cells", Index: nodestore.Whole}, cty.EmptyTupleVal)
	assert.Error(t, err, "arrays are written element by element")
}

func TestCycle_PlaceholderAndDiagnostic(t *testing.T) {
	h := newHarness(t, `
number "a" { value = b + 1 }
number "b" { value = a + 1 }
number "c" { value = a * 0 + 4 }
number "ok" { value = 4 }
`)
	assert.True(t, value.IsNaN(h.e.Read(h.ctx, h.comp("a").ID, "value")))
	assert.True(t, value.IsNaN(h.e.Read(h.ctx, h.comp("b").ID, "value")))
	assert.True(t, value.IsNaN(h.e.Read(h.ctx, h.comp("c").ID, "value")), "direct consumers see the placeholder")
	assert.InDelta(t, 4, h.num("ok"), 0, "the rest of the document resolves")

	diags := h.e.Diagnostics()
	require.Len(t, diags, 1)
	assert.Equal(t, hcl.DiagError, diags[0].Severity)
	assert.Equal(t, "Circular dependency", diags[0].Summary)
	assert.Contains(t, diags[0].Detail, "doc.a.value -> doc.b.value -> doc.a.value")
	require.NotNil(t, diags[0].Subject)
	assert.Equal(t, 2, diags[0].Subject.Start.Line)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Cycles))
}

func TestEval_Diagnostics(t *testing.T) {
	h := newHarness(t, `
number "a" { value = missing + 1 }
number "b" { value = nofunc(1) }
number "c" { value = a.nope }
widget "w" {}
boom "x" {}
`)
	assert.True(t, value.IsNaN(h.e.Read(h.ctx, h.comp("a").ID, "value")))
	assert.True(t, value.IsNaN(h.e.Read(h.ctx, h.comp("b").ID, "value")))
	assert.True(t, value.IsNaN(h.e.Read(h.ctx, h.comp("c").ID, "value")))
	assert.True(t, value.IsNaN(h.e.Read(h.ctx, h.comp("x").ID, "value")), "a panicking definition yields its placeholder")

	var summaries []string
	for _, d := range h.e.Diagnostics() {
		summaries = append(summaries, d.Summary)
	}
	assert.ElementsMatch(t, []string{
		"Unknown function",
		"Unknown component type",
		"Unknown reference",
		"Unknown state variable",
		"State variable evaluation failed",
	}, summaries)
}

func TestFunctions(t *testing.T) {
	h := newHarness(t, `
number "r" { value = sqrt(16) + round(3.14159, 2) }
number "n" { value = sqrt(-1) }
number "i" { value = 1 / 0 }
`)
	assert.InDelta(t, 7.14, h.num("r"), 1e-12)
	assert.True(t, value.IsNaN(h.e.Read(h.ctx, h.comp("n").ID, "value")))
	assert.True(t, h.e.Read(h.ctx, h.comp("i").ID, "value").RawEquals(cty.PositiveInfinity))
}
