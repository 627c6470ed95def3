package components

import (
	"fmt"

	"github.com/specialistvlad/reactidoc/internal/config"
	"github.com/specialistvlad/reactidoc/internal/ctxlog"
	"github.com/specialistvlad/reactidoc/internal/expand"
	"github.com/specialistvlad/reactidoc/internal/nodeid"
	"github.com/specialistvlad/reactidoc/internal/nodestore"
	"github.com/specialistvlad/reactidoc/internal/statevar"
	"github.com/specialistvlad/reactidoc/internal/topologystore"
	"github.com/zclconf/go-cty/cty"
)

func copyType() *statevar.Type {
	t := statevar.NewType(TypeCopy, statevar.Fragment{{
		Name: "source",
		Type: cty.String,
		Define: func(r statevar.Reader) cty.Value {
			src, ok := r.Target("source")
			if !ok {
				return cty.NullVal(cty.String)
			}
			return cty.StringVal(src.Addr.String())
		},
	}}, childrenFragment(copyChildren))
	return withDefault(t, ChildrenVar).AsTemplate()
}

// copyChildren instantiates one clone of the source. The clone starts from
// the essential values the source holds when the clone is created and is
// independent from then on.
func copyChildren(r statevar.Reader) []*topologystore.Component {
	self := r.Self()
	src, ok := r.Target("source")
	if !ok {
		configWarning(r, "Unknown copy source", fmt.Sprintf("%s does not name a component it can see; nothing is copied.", self.Addr.String()))
		return r.Expand(TypeCopy, nil)
	}
	if self.Addr.HasPrefix(src.Addr) {
		structuralError(r, "Invalid copy", fmt.Sprintf("%s cannot copy %s, which contains it.", self.Addr.String(), src.Addr.String()))
		return r.Expand(TypeCopy, nil)
	}
	if src.Template == nil {
		return r.Expand(TypeCopy, nil)
	}

	base := self.Addr.Child(src.Name, 0)
	return r.Expand(TypeCopy, []expand.Spec{{
		Key:       expand.Key{Index: 0, Tag: src.Addr.String()},
		Templates: []*config.Component{src.Template},
		Iter:      src.Iter,
		Seeds:     snapshot(r, src, base),
	}})
}

// snapshot records the essential values of src and its active subtree,
// keyed by their address relative to src, for a clone rooted at base.
func snapshot(r statevar.Reader, src *topologystore.Component, base nodeid.Address) *topologystore.SeedSet {
	seeds := &topologystore.SeedSet{Base: base, Values: make(map[string][]topologystore.Seed)}
	r.Untracked(func(u statevar.Reader) {
		var visit func(c *topologystore.Component)
		visit = func(c *topologystore.Component) {
			rel, ok := c.Addr.Rel(src.Addr)
			if !ok {
				return
			}
			seeds.Values[rel] = append(seeds.Values[rel], essentials(u, c)...)
			for _, ch := range u.ActiveChildren(c.ID) {
				visit(ch)
			}
		}
		visit(src)
		for _, inst := range u.Instances(src.ID) {
			visit(inst)
		}
	})
	ctxlog.FromContext(r.Context()).Debug("Took copy snapshot.", "source", src.Addr.String(), "clone", base.String(), "components", len(seeds.Values))
	return seeds
}

func essentials(r statevar.Reader, c *topologystore.Component) []topologystore.Seed {
	t := r.TypeOf(c.ID)
	var out []topologystore.Seed
	for _, name := range t.Order {
		d := t.Defs[name]
		if !d.Essential {
			continue
		}
		if d.Shape == statevar.Scalar {
			out = append(out, topologystore.Seed{Var: name, Index: nodestore.Whole, Value: r.ReadOf(c.ID, name)})
			continue
		}
		for i := range r.ReadSize(c.ID, name) {
			out = append(out, topologystore.Seed{Var: name, Index: i, Value: r.ReadIndex(c.ID, name, i)})
		}
	}
	return out
}
