package components

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/reactidoc/internal/config"
	"github.com/specialistvlad/reactidoc/internal/expand"
	"github.com/specialistvlad/reactidoc/internal/statevar"
	"github.com/specialistvlad/reactidoc/internal/topologystore"
	"github.com/specialistvlad/reactidoc/internal/value"
	"github.com/specialistvlad/reactidoc/internal/variant"
	"github.com/zclconf/go-cty/cty"
)

func selectType() *statevar.Type {
	t := statevar.NewType(TypeSelect, statevar.Fragment{{
		// selectedIndices are positions among the configured children,
		// drawn once per document and then only changed by copies' seeds.
		Name:        "selectedIndices",
		Type:        cty.DynamicPseudoType,
		Essential:   true,
		Define:      drawIndices,
		Placeholder: cty.EmptyTupleVal,
	}}, childrenFragment(selectChildren))
	return withDefault(t, "selectedIndices").AsTemplate()
}

func drawIndices(r statevar.Reader) cty.Value {
	options := r.Self().Template.Children
	if len(options) == 0 {
		configWarning(r, "Empty selection", "A select needs at least one child to choose from.")
		return cty.EmptyTupleVal
	}
	weights := make([]float64, len(options))
	for i, opt := range options {
		weights[i] = 1
		if expr, ok := opt.Attr("select_weight"); ok {
			weights[i] = value.AsFloat(r.Eval(expr))
			if !finite(weights[i]) {
				weights[i] = 0
			}
		}
	}
	draw := variant.Indices(weights, attrInt(r, "number_to_select", 1), attrBool(r, "with_replacement", false))
	v, err := r.Variant().Select(r.Self().Addr.String(), draw)
	if err != nil {
		structuralError(r, "Invalid selection", fmt.Sprintf("Cannot select from %s: %v.", r.Self().Addr.String(), err))
		return cty.EmptyTupleVal
	}
	return v
}

func selectChildren(r statevar.Reader) []*topologystore.Component {
	options := r.Self().Template.Children
	var specs []expand.Spec
	for j, v := range value.Elements(r.Read("selectedIndices")) {
		idx, ok := value.AsInt(v)
		if !ok || idx < 0 || idx >= len(options) {
			continue
		}
		specs = append(specs, expand.Spec{
			Key:       expand.Key{Index: j, Tag: strconv.Itoa(idx)},
			Templates: []*config.Component{options[idx]},
		})
	}
	return r.Expand(TypeSelect, specs)
}

func selectFromSequenceType() *statevar.Type {
	t := statevar.NewType(TypeSelectFromSequence, statevar.Fragment{
		{
			Name:        "selectedValues",
			Type:        cty.DynamicPseudoType,
			Essential:   true,
			Define:      drawSequence,
			Placeholder: cty.EmptyTupleVal,
		},
		{
			Name: "value",
			Type: cty.DynamicPseudoType,
			Define: func(r statevar.Reader) cty.Value {
				vals := value.Elements(r.Read("selectedValues"))
				if len(vals) == 0 {
					return value.NaN
				}
				return vals[0]
			},
		},
	}, childrenFragment(sequenceChildren))
	return t.AsTemplate()
}

func sequenceSpec(r statevar.Reader) variant.SequenceSpec {
	spec := variant.SequenceSpec{
		Letters:         attrString(r, "type", "number") == "letters",
		Step:            attrNumber(r, "step", 1),
		Count:           attrInt(r, "number_to_select", 1),
		WithReplacement: attrBool(r, "with_replacement", false),
		Sorted:          attrBool(r, "sort_results", false),
	}
	endpoint := func(name string, def float64) float64 {
		v, ok := r.Attr(name)
		if !ok {
			return def
		}
		if spec.Letters && !v.IsNull() && v.Type() == cty.String {
			return float64(letterNumber(v.AsString()))
		}
		return value.AsFloat(v)
	}
	spec.From = endpoint("from", 1)
	spec.To = endpoint("to", spec.From)

	entry := func(v cty.Value) cty.Value {
		if v.IsNull() {
			return v
		}
		if spec.Letters {
			return value.ToString(v)
		}
		return value.ToNumber(v)
	}
	for _, v := range value.Elements(r.AttrOr("exclude", cty.EmptyTupleVal)) {
		spec.Exclude = append(spec.Exclude, entry(v))
	}
	for _, combo := range value.Elements(r.AttrOr("exclude_combinations", cty.EmptyTupleVal)) {
		var vals []cty.Value
		for _, v := range value.Elements(combo) {
			vals = append(vals, entry(v))
		}
		spec.ExcludeCombinations = append(spec.ExcludeCombinations, vals)
	}
	return spec
}

// letterNumber maps "a" to 1, "z" to 26 and "aa" to 27.
func letterNumber(s string) int {
	n := 0
	for _, ch := range strings.ToLower(strings.TrimSpace(s)) {
		if ch < 'a' || ch > 'z' {
			return 0
		}
		n = n*26 + int(ch-'a') + 1
	}
	return n
}

func drawSequence(r statevar.Reader) cty.Value {
	spec := sequenceSpec(r)
	if spec.Truncated() {
		configWarning(r, "Sequence too long", fmt.Sprintf("%s spans %.0f values; only the first %d are drawn from.", r.Self().Addr.String(), spec.Len(), variant.MaxDomain))
	}
	v, err := r.Variant().Select(r.Self().Addr.String(), r.Variant().Sequence(spec))
	if err == nil {
		return v
	}
	structuralError(r, "Invalid selection", fmt.Sprintf("Cannot select from %s: %v.", r.Self().Addr.String(), err))
	placeholder := value.NaN
	if spec.Letters {
		placeholder = cty.NullVal(cty.String)
	}
	out := make([]cty.Value, max(spec.Count, 1))
	for i := range out {
		out[i] = placeholder
	}
	return value.Tuple(out...)
}

// sequenceChildren publishes each selected value as a number or text
// component named "value", so that it can be rendered and copied like any
// other component.
func sequenceChildren(r statevar.Reader) []*topologystore.Component {
	self := r.Self()
	var specs []expand.Spec
	for i, v := range value.Elements(r.Read("selectedValues")) {
		typ := TypeNumber
		if !v.IsNull() && v.Type() == cty.String {
			typ = TypeText
		}
		rng := self.Range()
		specs = append(specs, expand.Spec{
			Key: expand.Key{Index: i, Tag: canonical(v)},
			Templates: []*config.Component{{
				Type: typ,
				Name: "value",
				Attributes: map[string]*config.Attribute{
					"value": {Name: "value", Expr: &hclsyntax.LiteralValueExpr{Val: v, SrcRange: rng}, Range: rng},
				},
				DefRange: rng,
				Range:    rng,
			}},
		})
	}
	return r.Expand(TypeSelectFromSequence, specs)
}

