package components

import (
	"fmt"
	"math"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/reactidoc/internal/statevar"
	"github.com/specialistvlad/reactidoc/internal/topologystore"
	"github.com/specialistvlad/reactidoc/internal/value"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// labelFragment gives a component a display label.
var labelFragment = statevar.Fragment{{
	Name: "label",
	Type: cty.String,
	Define: func(r statevar.Reader) cty.Value {
		return value.ToString(r.AttrOr("label", cty.StringVal("")))
	},
}}

// hiddenFragment exposes the "hide" attribute. It does not remove the
// component from the document, it only tells the renderer.
var hiddenFragment = statevar.Fragment{{
	Name: "hidden",
	Type: cty.Bool,
	Define: func(r statevar.Reader) cty.Value {
		return cty.BoolVal(attrBool(r, "hide", false))
	},
}}

// childrenFragment publishes the instances of a construct. build returns
// the members of the active groups.
func childrenFragment(build func(r statevar.Reader) []*topologystore.Component) statevar.Fragment {
	return statevar.Fragment{{
		Name:   ChildrenVar,
		Type:   cty.DynamicPseudoType,
		Hidden: true,
		Define: func(r statevar.Reader) cty.Value {
			return addresses(build(r))
		},
		Placeholder: cty.EmptyTupleVal,
	}}
}

func attrNumber(r statevar.Reader, name string, def float64) float64 {
	v, ok := r.Attr(name)
	if !ok {
		return def
	}
	return value.AsFloat(v)
}

func attrInt(r statevar.Reader, name string, def int) int {
	v, ok := r.Attr(name)
	if !ok {
		return def
	}
	n, ok := value.AsInt(v)
	if !ok {
		return def
	}
	return n
}

func attrBool(r statevar.Reader, name string, def bool) bool {
	v, ok := r.Attr(name)
	if !ok {
		return def
	}
	b, ok := value.AsBool(v)
	if !ok {
		return def
	}
	return b
}

func attrString(r statevar.Reader, name, def string) string {
	v, ok := r.Attr(name)
	if !ok {
		return def
	}
	s := value.ToString(v)
	if s.IsNull() {
		return def
	}
	return s.AsString()
}

// stringOr reads a string value, or def when v is null or not a string.
func stringOr(v cty.Value, def string) string {
	s := value.ToString(v)
	if s.IsNull() {
		return def
	}
	return s.AsString()
}

func addresses(members []*topologystore.Component) cty.Value {
	out := make([]cty.Value, len(members))
	for i, c := range members {
		out[i] = cty.StringVal(c.Addr.String())
	}
	return value.Tuple(out...)
}

// descendants walks the active subtree below id, depth first, and returns
// the components keep accepts.
func descendants(r statevar.Reader, id topologystore.ID, keep func(*topologystore.Component) bool) []*topologystore.Component {
	var out []*topologystore.Component
	var walk func(id topologystore.ID)
	walk = func(id topologystore.ID) {
		for _, ch := range r.ActiveChildren(id) {
			if keep(ch) {
				out = append(out, ch)
			}
			walk(ch.ID)
		}
	}
	walk(id)
	return out
}

// canonical renders v as a stable string, used as a replacement key tag.
func canonical(v cty.Value) string {
	v = value.Sanitize(v)
	if value.IsMath(v) {
		return "math:" + value.AsMath(v).String()
	}
	if v.Type() == cty.Number && !v.IsNull() {
		return fmt.Sprintf("%g", value.AsFloat(v))
	}
	b, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return v.GoString()
	}
	return string(b)
}

func clampCount(n int) int {
	return max(n, 0)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func structuralError(r statevar.Reader, summary, detail string) {
	r.Report(&hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   detail,
	})
}

func configWarning(r statevar.Reader, summary, detail string) {
	r.Report(&hcl.Diagnostic{
		Severity: hcl.DiagWarning,
		Summary:  summary,
		Detail:   detail,
	})
}
