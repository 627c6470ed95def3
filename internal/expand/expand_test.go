package expand

import (
	"context"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/specialistvlad/reactidoc/internal/config"
	"github.com/specialistvlad/reactidoc/internal/ctxlog"
	"github.com/specialistvlad/reactidoc/internal/inmemorytopology"
	"github.com/specialistvlad/reactidoc/internal/metrics"
	"github.com/specialistvlad/reactidoc/internal/nodeid"
	"github.com/specialistvlad/reactidoc/internal/topologystore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type fixture struct {
	ctx       context.Context
	ts        topologystore.Store
	x         *Expander
	m         *metrics.Metrics
	construct *topologystore.Component
	destroyed []topologystore.ID
	created   []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx: ctxlog.WithLogger(context.Background(), slog.New(slog.DiscardHandler)),
		ts:  inmemorytopology.New(),
		m:   metrics.New(prometheus.NewRegistry()),
	}
	f.x = New(f.ts, Hooks{
		IsTemplate: func(typ string) bool { return typ == "repeat" },
		OnCreate: func(_ context.Context, c *topologystore.Component) {
			f.created = append(f.created, c.Addr.String())
		},
		OnDestroy: func(_ context.Context, ids []topologystore.ID) {
			f.destroyed = append(f.destroyed, ids...)
		},
	}, f.m)

	doc := &config.Component{Type: "document", Name: "doc", Children: []*config.Component{
		{Type: "repeat", Name: "rep", Children: body()},
	}}
	root, err := f.x.Instantiate(f.ctx, doc, Placement{Addr: nodeid.Address{Path: []nodeid.PathSegment{nodeid.NewPathSegment("doc")}}, Scope: topologystore.RootScope})
	require.NoError(t, err)
	require.Len(t, root.Children, 1)
	f.construct, _ = f.ts.Get(root.Children[0])
	return f
}

func body() []*config.Component {
	return []*config.Component{
		{Type: "section", Name: "s", Children: []*config.Component{{Type: "number", Name: "n"}}},
	}
}

func (f *fixture) specs(n int, tag string) []Spec {
	out := make([]Spec, n)
	for i := range out {
		out[i] = Spec{
			Key:       Key{Index: i, Tag: tag},
			Templates: f.construct.Template.Children,
			Iter:      map[string]cty.Value{"count": cty.ObjectVal(map[string]cty.Value{"index": cty.NumberIntVal(int64(i))})},
		}
	}
	return out
}

func ids(cs []*topologystore.Component) []topologystore.ID {
	out := make([]topologystore.ID, len(cs))
	for i, c := range cs {
		out[i] = c.ID
	}
	return out
}

func TestInstantiate_TemplateChildrenAreNotStatic(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, []string{"doc", "doc.rep"}, f.created)
	assert.Empty(t, f.construct.Children)
}

func TestSync_CreatesGroupsWithStaticDescendants(t *testing.T) {
	f := newFixture(t)

	members, err := f.x.Sync(f.ctx, f.construct, "count", f.specs(2, ""))
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "doc.rep.s[0]", members[0].Addr.String())
	assert.Equal(t, "doc.rep.s[1]", members[1].Addr.String())

	n, ok := f.ts.ByAddress("doc.rep.s[1].n")
	require.True(t, ok)
	assert.Equal(t, f.construct.ID, n.Owner)
	assert.True(t, n.Iter["count"].GetAttr("index").RawEquals(cty.NumberIntVal(1)))

	// Each group has its own scope: `s` resolves to the group's own member.
	id, ok := f.ts.Resolve(n.Scope, "s")
	require.True(t, ok)
	assert.Equal(t, members[1].ID, id)

	assert.InDelta(t, 2, testutil.ToFloat64(f.m.Expansions.WithLabelValues("count")), 0)
}

func TestSync_ShrinkRegrowRestoresGroups(t *testing.T) {
	f := newFixture(t)

	first, err := f.x.Sync(f.ctx, f.construct, "count", f.specs(3, ""))
	require.NoError(t, err)

	shrunk, err := f.x.Sync(f.ctx, f.construct, "count", f.specs(1, ""))
	require.NoError(t, err)
	assert.Equal(t, ids(first[:1]), ids(shrunk))
	assert.False(t, f.ts.Visible(first[2].ID))

	n2, _ := f.ts.ByAddress("doc.rep.s[2].n")
	assert.False(t, f.ts.Visible(n2.ID), "descendants of hidden groups are not visible")

	regrown, err := f.x.Sync(f.ctx, f.construct, "count", f.specs(3, ""))
	require.NoError(t, err)
	assert.Equal(t, ids(first), ids(regrown), "retained groups come back with the same identity")
	assert.True(t, f.ts.Visible(n2.ID))
	assert.Empty(t, f.destroyed)
	assert.InDelta(t, 3, testutil.ToFloat64(f.m.Expansions.WithLabelValues("count")), 0)

	groups := f.x.Groups(f.construct.ID)
	require.Len(t, groups, 3)
	for _, g := range groups {
		assert.False(t, g.Hidden)
	}
}

func TestSync_TagChangeRebuilds(t *testing.T) {
	f := newFixture(t)

	before, err := f.x.Sync(f.ctx, f.construct, "each", f.specs(1, `"a"`))
	require.NoError(t, err)
	after, err := f.x.Sync(f.ctx, f.construct, "each", f.specs(1, `"b"`))
	require.NoError(t, err)

	require.Len(t, after, 1)
	assert.NotEqual(t, before[0].ID, after[0].ID)
	assert.Equal(t, "doc.rep.s[0]", after[0].Addr.String())
	assert.Len(t, f.destroyed, 2, "the old instance and its static child")
}

func TestSync_KindChangeDestroysAll(t *testing.T) {
	f := newFixture(t)

	_, err := f.x.Sync(f.ctx, f.construct, "count", f.specs(2, ""))
	require.NoError(t, err)
	_, err = f.x.Sync(f.ctx, f.construct, "count", f.specs(0, ""))
	require.NoError(t, err)

	_, err = f.x.Sync(f.ctx, f.construct, "each", nil)
	require.NoError(t, err)
	assert.Len(t, f.destroyed, 4)
	assert.Empty(t, f.x.Groups(f.construct.ID))
}

func TestSync_DuplicateIndexAndAddressConflicts(t *testing.T) {
	f := newFixture(t)

	specs := append(f.specs(1, ""), f.specs(1, "")...)
	members, err := f.x.Sync(f.ctx, f.construct, "count", specs)
	require.Error(t, err)
	assert.Len(t, members, 1)

	dup := []Spec{{Key: Key{Index: 5}, Templates: []*config.Component{{Type: "number", Name: "x"}, {Type: "number", Name: "x"}}}}
	_, err = f.x.Sync(f.ctx, f.construct, "count", dup)
	require.Error(t, err)
	_, ok := f.ts.ByAddress("doc.rep.x[5]")
	assert.False(t, ok, "a failed group leaves nothing behind")
}

func TestSync_SeedsInherited(t *testing.T) {
	f := newFixture(t)
	seeds := &topologystore.SeedSet{Base: f.construct.Addr, Values: map[string][]topologystore.Seed{
		"s[0].n": {{Var: "value", Index: -1, Value: cty.NumberIntVal(7)}},
	}}
	spec := f.specs(1, "")
	spec[0].Seeds = seeds

	_, err := f.x.Sync(f.ctx, f.construct, "count", spec)
	require.NoError(t, err)

	n, ok := f.ts.ByAddress("doc.rep.s[0].n")
	require.True(t, ok)
	got := n.Seeds.Lookup(n.Addr)
	require.Len(t, got, 1)
	assert.True(t, got[0].Value.RawEquals(cty.NumberIntVal(7)))
}
