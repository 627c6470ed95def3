package components

import (
	"fmt"

	"github.com/specialistvlad/reactidoc/internal/expand"
	"github.com/specialistvlad/reactidoc/internal/statevar"
	"github.com/specialistvlad/reactidoc/internal/topologystore"
	"github.com/specialistvlad/reactidoc/internal/value"
	"github.com/zclconf/go-cty/cty"
)

type item struct {
	key, val cty.Value
}

// forEachItems reads the "for_each" attribute. ok is false when the
// attribute is absent.
func forEachItems(r statevar.Reader) (items []item, ok bool) {
	v, ok := r.Attr("for_each")
	if !ok {
		return nil, false
	}
	v = value.Sanitize(v)
	switch {
	case value.IsSequence(v):
		for i, e := range value.Elements(v) {
			items = append(items, item{key: cty.NumberIntVal(int64(i)), val: e})
		}
	case !v.IsNull() && (v.Type().IsObjectType() || v.Type().IsMapType()):
		for it := v.ElementIterator(); it.Next(); {
			k, e := it.Element()
			items = append(items, item{key: k, val: e})
		}
	default:
		configWarning(r, "Invalid for_each", fmt.Sprintf("for_each must be a list or an object, not %s; nothing is repeated.", v.Type().FriendlyName()))
	}
	return items, true
}

func repeatType() *statevar.Type {
	t := statevar.NewType(TypeRepeat, statevar.Fragment{{
		Name:      "count",
		Type:      cty.Number,
		Essential: true,
		Define: func(r statevar.Reader) cty.Value {
			if items, ok := forEachItems(r); ok {
				return cty.NumberIntVal(int64(len(items)))
			}
			return cty.NumberIntVal(int64(clampCount(attrInt(r, "count", 0))))
		},
	}}, childrenFragment(repeatChildren))
	t = withDefault(t, "count")
	return t.AsTemplate().WithAction("setCount", setCount)
}

// repeatChildren instantiates the body once per index. With for_each, a
// group is rebuilt when the item at its index changes.
func repeatChildren(r statevar.Reader) []*topologystore.Component {
	n, _ := value.AsInt(r.Read("count"))
	n = clampCount(n)
	items, each := forEachItems(r)
	if each {
		n = min(n, len(items))
	}

	specs := make([]expand.Spec, n)
	for i := range specs {
		iter := map[string]cty.Value{
			"count": cty.ObjectVal(map[string]cty.Value{"index": cty.NumberIntVal(int64(i))}),
		}
		var tag string
		if each {
			iter["each"] = cty.ObjectVal(map[string]cty.Value{"key": items[i].key, "value": items[i].val})
			tag = canonical(items[i].key) + "=" + canonical(items[i].val)
		}
		specs[i] = expand.Spec{
			Key:       expand.Key{Index: i, Tag: tag},
			Templates: r.Self().Template.Children,
			Iter:      iter,
		}
	}
	return r.Expand(TypeRepeat, specs)
}

// setCount changes the number of repetitions. Groups beyond the new count
// are kept hidden and come back unchanged when the count grows again.
func setCount(w statevar.Writer, args cty.Value) error {
	n, ok := value.AsInt(args)
	if !ok || n < 0 {
		return fmt.Errorf("setCount expects a non-negative number")
	}
	w.Set("count", cty.NumberIntVal(int64(n)))
	return nil
}
