package expand

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/specialistvlad/reactidoc/internal/config"
	"github.com/specialistvlad/reactidoc/internal/ctxlog"
	"github.com/specialistvlad/reactidoc/internal/metrics"
	"github.com/specialistvlad/reactidoc/internal/nodeid"
	"github.com/specialistvlad/reactidoc/internal/topologystore"
	"github.com/zclconf/go-cty/cty"
)

// Key identifies a replacement group within its construct.
type Key struct {
	Index int
	Tag   string
}

// Spec requests one active group.
type Spec struct {
	Key       Key
	Templates []*config.Component

	// Iter is merged over the bindings the construct itself sees.
	Iter map[string]cty.Value

	// Seeds, when set, replaces the inherited seed set for the group.
	Seeds *topologystore.SeedSet
}

// Hooks connect the expander to the engine.
type Hooks struct {
	// IsTemplate reports whether a type instantiates its own children.
	IsTemplate func(typ string) bool
	// OnCreate runs for every component created, parents first.
	OnCreate func(ctx context.Context, c *topologystore.Component)
	// OnDestroy runs with the IDs removed by a group's destruction.
	OnDestroy func(ctx context.Context, ids []topologystore.ID)
}

// Placement positions a template instance in the arena.
type Placement struct {
	Parent topologystore.ID
	Owner  topologystore.ID
	Addr   nodeid.Address
	Scope  topologystore.ScopeID
	Iter   map[string]cty.Value
	Seeds  *topologystore.SeedSet
}

// GroupInfo describes a held group.
type GroupInfo struct {
	Key     Key
	Members []topologystore.ID
	Hidden  bool
}

type group struct {
	key     Key
	members []topologystore.ID
	hidden  bool
}

type construct struct {
	kind   string
	groups map[int]*group
}

// Expander holds the replacement groups of one document session.
type Expander struct {
	topology   topologystore.Store
	hooks      Hooks
	metrics    *metrics.Metrics
	constructs map[topologystore.ID]*construct
}

// New creates an expander over a topology store.
func New(ts topologystore.Store, hooks Hooks, m *metrics.Metrics) *Expander {
	if m == nil {
		m = metrics.Discard()
	}
	return &Expander{topology: ts, hooks: hooks, metrics: m, constructs: make(map[topologystore.ID]*construct)}
}

// Instantiate creates a component from a template, and its static
// descendants unless its type is a template type.
func (x *Expander) Instantiate(ctx context.Context, tmpl *config.Component, p Placement) (*topologystore.Component, error) {
	c, err := x.topology.Create(topologystore.NewComponent{
		Type:     tmpl.Type,
		Name:     tmpl.Name,
		Addr:     p.Addr,
		Template: tmpl,
		Parent:   p.Parent,
		Owner:    p.Owner,
		Scope:    p.Scope,
		Iter:     p.Iter,
		Seeds:    p.Seeds,
	})
	if err != nil {
		return nil, err
	}
	if x.hooks.OnCreate != nil {
		x.hooks.OnCreate(ctx, c)
	}
	if x.hooks.IsTemplate != nil && x.hooks.IsTemplate(tmpl.Type) {
		return c, nil
	}
	for _, child := range tmpl.Children {
		_, err := x.Instantiate(ctx, child, Placement{
			Parent: c.ID,
			Owner:  p.Owner,
			Addr:   c.Addr.Child(child.Name, -1),
			Scope:  p.Scope,
			Iter:   p.Iter,
			Seeds:  p.Seeds,
		})
		if err != nil {
			if removed, derr := x.topology.Destroy(c.ID, p.Owner); derr == nil && x.hooks.OnDestroy != nil {
				x.hooks.OnDestroy(ctx, removed)
			}
			return nil, err
		}
	}
	return c, nil
}

// Sync makes specs the active groups of owner and returns their members in
// order.
func (x *Expander) Sync(ctx context.Context, owner *topologystore.Component, kind string, specs []Spec) ([]*topologystore.Component, error) {
	logger := ctxlog.FromContext(ctx).With("construct", owner.Addr.String(), "kind", kind)

	st, ok := x.constructs[owner.ID]
	if ok && st.kind != kind {
		logger.Debug("Construct changed kind, destroying all groups.", "previous", st.kind)
		for _, idx := range st.indices() {
			x.destroyGroup(ctx, owner, st, idx)
		}
		ok = false
	}
	if !ok {
		st = &construct{kind: kind, groups: make(map[int]*group)}
		x.constructs[owner.ID] = st
	}

	var errs []error
	wanted := make(map[int]struct{}, len(specs))
	var out []*topologystore.Component
	for _, spec := range specs {
		if _, dup := wanted[spec.Key.Index]; dup {
			errs = append(errs, fmt.Errorf("replacement index %d requested twice", spec.Key.Index))
			continue
		}
		wanted[spec.Key.Index] = struct{}{}

		g, held := st.groups[spec.Key.Index]
		if held && g.key.Tag != spec.Key.Tag {
			logger.Debug("Replacement key changed, rebuilding group.", "index", spec.Key.Index, "from", g.key.Tag, "to", spec.Key.Tag)
			x.destroyGroup(ctx, owner, st, spec.Key.Index)
			held = false
		}
		if !held {
			var err error
			if g, err = x.createGroup(ctx, owner, kind, spec); err != nil {
				errs = append(errs, err)
				continue
			}
			st.groups[spec.Key.Index] = g
		} else if g.hidden {
			x.setHidden(g, false)
		}
		for _, id := range g.members {
			if c, ok := x.topology.Get(id); ok {
				out = append(out, c)
			}
		}
	}

	for _, idx := range st.indices() {
		if _, keep := wanted[idx]; keep {
			continue
		}
		if g := st.groups[idx]; !g.hidden {
			x.setHidden(g, true)
		}
	}

	if len(errs) > 0 {
		return out, fmt.Errorf("expanding '%s': %w", owner.Addr.String(), errors.Join(errs...))
	}
	return out, nil
}

// Groups lists the groups held for a construct, ordered by index.
func (x *Expander) Groups(owner topologystore.ID) []GroupInfo {
	st, ok := x.constructs[owner]
	if !ok {
		return nil
	}
	var out []GroupInfo
	for _, idx := range st.indices() {
		g := st.groups[idx]
		out = append(out, GroupInfo{Key: g.key, Members: append([]topologystore.ID(nil), g.members...), Hidden: g.hidden})
	}
	return out
}

func (x *Expander) createGroup(ctx context.Context, owner *topologystore.Component, kind string, spec Spec) (*group, error) {
	iter := make(map[string]cty.Value, len(owner.Iter)+len(spec.Iter))
	for k, v := range owner.Iter {
		iter[k] = v
	}
	for k, v := range spec.Iter {
		iter[k] = v
	}
	seeds := owner.Seeds
	if spec.Seeds != nil {
		seeds = spec.Seeds
	}

	scope := x.topology.NewScope(owner.Scope)
	g := &group{key: spec.Key}
	for _, tmpl := range spec.Templates {
		c, err := x.Instantiate(ctx, tmpl, Placement{
			Parent: owner.ID,
			Owner:  owner.ID,
			Addr:   owner.Addr.Child(tmpl.Name, spec.Key.Index),
			Scope:  scope,
			Iter:   iter,
			Seeds:  seeds,
		})
		if err != nil {
			// Keep what was created so the group can be destroyed whole.
			x.destroyMembers(ctx, owner, g.members)
			return nil, err
		}
		g.members = append(g.members, c.ID)
	}
	x.metrics.Expansions.WithLabelValues(kind).Inc()
	ctxlog.FromContext(ctx).Debug("Created replacement group.", "construct", owner.Addr.String(), "index", spec.Key.Index, "members", len(g.members))
	return g, nil
}

func (x *Expander) destroyGroup(ctx context.Context, owner *topologystore.Component, st *construct, idx int) {
	g := st.groups[idx]
	delete(st.groups, idx)
	x.destroyMembers(ctx, owner, g.members)
}

func (x *Expander) destroyMembers(ctx context.Context, owner *topologystore.Component, members []topologystore.ID) {
	for i := len(members) - 1; i >= 0; i-- {
		removed, err := x.topology.Destroy(members[i], owner.ID)
		if err != nil {
			ctxlog.FromContext(ctx).Warn("Failed to destroy replacement instance.", "id", members[i], "error", err)
			continue
		}
		for _, id := range removed {
			delete(x.constructs, id)
		}
		if x.hooks.OnDestroy != nil {
			x.hooks.OnDestroy(ctx, removed)
		}
	}
}

func (x *Expander) setHidden(g *group, hidden bool) {
	g.hidden = hidden
	for _, id := range g.members {
		x.topology.SetHidden(id, hidden)
	}
}

func (st *construct) indices() []int {
	out := make([]int, 0, len(st.groups))
	for idx := range st.groups {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}
