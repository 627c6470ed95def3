package inmemorytopology

import (
	"testing"

	"github.com/specialistvlad/reactidoc/internal/nodeid"
	"github.com/specialistvlad/reactidoc/internal/topologystore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addr(t *testing.T, raw string) nodeid.Address {
	t.Helper()
	a, err := nodeid.Parse(raw)
	require.NoError(t, err)
	return *a
}

func TestCreate_LinksAndNames(t *testing.T) {
	s := New()
	root, err := s.Create(topologystore.NewComponent{Type: "document", Name: "doc", Addr: addr(t, "doc"), Scope: topologystore.RootScope})
	require.NoError(t, err)
	assert.Equal(t, root, s.Root())

	p, err := s.Create(topologystore.NewComponent{Type: "point", Name: "p", Addr: addr(t, "doc.p"), Parent: root.ID, Scope: topologystore.RootScope})
	require.NoError(t, err)
	assert.Equal(t, []topologystore.ID{p.ID}, root.Children)

	id, ok := s.Resolve(topologystore.RootScope, "p")
	require.True(t, ok)
	assert.Equal(t, p.ID, id)

	got, ok := s.ByAddress("doc.p")
	require.True(t, ok)
	assert.Equal(t, p, got)

	_, err = s.Create(topologystore.NewComponent{Type: "point", Name: "p", Addr: addr(t, "doc.p"), Parent: root.ID, Scope: topologystore.RootScope})
	assert.Error(t, err, "addresses are unique")

	_, err = s.Create(topologystore.NewComponent{Type: "document", Name: "other", Addr: addr(t, "other"), Scope: topologystore.RootScope})
	assert.Error(t, err, "only one root")
}

func TestScopes_ShadowOuterNames(t *testing.T) {
	s := New()
	root, err := s.Create(topologystore.NewComponent{Type: "document", Name: "doc", Addr: addr(t, "doc"), Scope: topologystore.RootScope})
	require.NoError(t, err)
	outer, err := s.Create(topologystore.NewComponent{Type: "number", Name: "n", Addr: addr(t, "doc.n"), Parent: root.ID, Scope: topologystore.RootScope})
	require.NoError(t, err)
	rep, err := s.Create(topologystore.NewComponent{Type: "repeat", Name: "rep", Addr: addr(t, "doc.rep"), Parent: root.ID, Scope: topologystore.RootScope})
	require.NoError(t, err)

	group := s.NewScope(topologystore.RootScope)
	inner, err := s.Create(topologystore.NewComponent{Type: "number", Name: "n", Addr: addr(t, "doc.rep.n[0]"), Parent: rep.ID, Owner: rep.ID, Scope: group})
	require.NoError(t, err)
	assert.Empty(t, rep.Children, "instances are not static children")

	id, ok := s.Resolve(group, "n")
	require.True(t, ok)
	assert.Equal(t, inner.ID, id)

	id, ok = s.Resolve(topologystore.RootScope, "n")
	require.True(t, ok)
	assert.Equal(t, outer.ID, id)

	id, ok = s.Resolve(group, "rep")
	require.True(t, ok, "outer names stay visible")
	assert.Equal(t, rep.ID, id)
}

func TestDestroy_OwnerChecked(t *testing.T) {
	s := New()
	root, _ := s.Create(topologystore.NewComponent{Type: "document", Name: "doc", Addr: addr(t, "doc"), Scope: topologystore.RootScope})
	rep, _ := s.Create(topologystore.NewComponent{Type: "repeat", Name: "rep", Addr: addr(t, "doc.rep"), Parent: root.ID, Scope: topologystore.RootScope})
	scope := s.NewScope(topologystore.RootScope)
	inst, err := s.Create(topologystore.NewComponent{Type: "section", Name: "g", Addr: addr(t, "doc.rep.g[0]"), Parent: rep.ID, Owner: rep.ID, Scope: scope})
	require.NoError(t, err)
	leaf, err := s.Create(topologystore.NewComponent{Type: "point", Name: "p", Addr: addr(t, "doc.rep.g[0].p"), Parent: inst.ID, Owner: rep.ID, Scope: scope})
	require.NoError(t, err)
	assert.Equal(t, []topologystore.ID{leaf.ID}, inst.Children)

	_, err = s.Destroy(inst.ID, topologystore.NoID)
	require.Error(t, err, "static tree does not own instances")

	removed, err := s.Destroy(inst.ID, rep.ID)
	require.NoError(t, err)
	assert.Equal(t, []topologystore.ID{leaf.ID, inst.ID}, removed)

	_, ok := s.Get(leaf.ID)
	assert.False(t, ok)
	_, ok = s.Resolve(scope, "g")
	assert.False(t, ok)

	again, err := s.Create(topologystore.NewComponent{Type: "section", Name: "g", Addr: addr(t, "doc.rep.g[0]"), Parent: rep.ID, Owner: rep.ID, Scope: scope})
	require.NoError(t, err)
	assert.Greater(t, int(again.ID), int(leaf.ID), "IDs are never reused")
}

func TestVisible_InheritsHidden(t *testing.T) {
	s := New()
	root, _ := s.Create(topologystore.NewComponent{Type: "document", Name: "doc", Addr: addr(t, "doc"), Scope: topologystore.RootScope})
	g, _ := s.Create(topologystore.NewComponent{Type: "section", Name: "g", Addr: addr(t, "doc.g"), Parent: root.ID, Scope: topologystore.RootScope})
	p, _ := s.Create(topologystore.NewComponent{Type: "point", Name: "p", Addr: addr(t, "doc.g.p"), Parent: g.ID, Scope: topologystore.RootScope})

	s.SetHidden(g.ID, true)
	assert.False(t, s.Visible(p.ID))
	assert.False(t, p.Hidden, "descendants are not modified")

	s.SetHidden(g.ID, false)
	assert.True(t, s.Visible(p.ID))
	assert.Len(t, s.All(), 3)
}
