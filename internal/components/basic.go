package components

import (
	"fmt"

	"github.com/specialistvlad/reactidoc/internal/mathexpr"
	"github.com/specialistvlad/reactidoc/internal/statevar"
	"github.com/specialistvlad/reactidoc/internal/topologystore"
	"github.com/specialistvlad/reactidoc/internal/value"
	"github.com/zclconf/go-cty/cty"
)

// documentType is shared by document and section: containers whose credit
// is the weighted average of the active answers below them.
func documentType(name string) *statevar.Type {
	t := statevar.NewType(name, labelFragment, hiddenFragment, statevar.Fragment{
		{
			Name: "creditAchieved",
			Type: cty.Number,
			Define: func(r statevar.Reader) cty.Value {
				var total, weights float64
				for _, a := range activeAnswers(r) {
					w := value.AsFloat(r.ReadOf(a.ID, "weight"))
					if !finite(w) || w < 0 {
						continue
					}
					total += w * value.AsFloat(r.ReadOf(a.ID, "creditAchieved"))
					weights += w
				}
				if weights == 0 {
					return cty.Zero
				}
				return value.Number(total / weights)
			},
		},
		{
			Name: "numAnswers",
			Type: cty.Number,
			Define: func(r statevar.Reader) cty.Value {
				return cty.NumberIntVal(int64(len(activeAnswers(r))))
			},
		},
	})
	return withDefault(t, "creditAchieved")
}

func activeAnswers(r statevar.Reader) []*topologystore.Component {
	return descendants(r, r.Self().ID, func(c *topologystore.Component) bool {
		return c.Type == TypeAnswer
	})
}

func textType() *statevar.Type {
	return statevar.NewType(TypeText, hiddenFragment, statevar.Fragment{{
		Name: "value",
		Type: cty.String,
		Define: func(r statevar.Reader) cty.Value {
			s := value.ToString(r.AttrOr("value", cty.StringVal("")))
			if s.IsNull() {
				return cty.StringVal("")
			}
			return s
		},
	}})
}

func numberType() *statevar.Type {
	return statevar.NewType(TypeNumber, hiddenFragment, statevar.Fragment{{
		Name: "value",
		Type: cty.Number,
		Define: func(r statevar.Reader) cty.Value {
			return value.ToNumber(r.AttrOr("value", value.NaN))
		},
	}})
}

func booleanType() *statevar.Type {
	return statevar.NewType(TypeBoolean, hiddenFragment, statevar.Fragment{{
		Name: "value",
		Type: cty.Bool,
		Define: func(r statevar.Reader) cty.Value {
			return cty.BoolVal(attrBool(r, "value", false))
		},
	}})
}

// mathFragment derives "text" and "number" from a math "value".
var mathFragment = statevar.Fragment{
	{
		Name: "text",
		Type: cty.String,
		Define: func(r statevar.Reader) cty.Value {
			return cty.StringVal(mathexpr.Normalize(value.AsMath(r.Read("value"))).String())
		},
	},
	{
		Name: "number",
		Type: cty.Number,
		Define: func(r statevar.Reader) cty.Value {
			return value.ToNumber(r.Read("value"))
		},
	},
}

func mathType() *statevar.Type {
	return statevar.NewType(TypeMath, hiddenFragment, mathFragment, statevar.Fragment{{
		Name: "value",
		Type: value.MathType,
		Define: func(r statevar.Reader) cty.Value {
			return value.Math(value.AsMath(r.AttrOr("value", cty.NullVal(cty.String))))
		},
	}})
}

func pointType() *statevar.Type {
	coord := func(name string) *statevar.Def {
		return &statevar.Def{
			Name:      name,
			Type:      cty.Number,
			Essential: true,
			Define: func(r statevar.Reader) cty.Value {
				return value.ToNumber(r.AttrOr(name, cty.Zero))
			},
		}
	}
	t := statevar.NewType(TypePoint, labelFragment, hiddenFragment, statevar.Fragment{
		coord("x"),
		coord("y"),
		{
			Name: "value",
			Type: cty.Object(map[string]cty.Type{"x": cty.Number, "y": cty.Number}),
			Define: func(r statevar.Reader) cty.Value {
				return value.Point(r.Read("x"), r.Read("y"))
			},
		},
		{
			Name: "draggable",
			Type: cty.Bool,
			Define: func(r statevar.Reader) cty.Value {
				return cty.BoolVal(attrBool(r, "draggable", true))
			},
		},
	})
	return t.WithAction("movePoint", movePoint)
}

// movePoint moves a draggable point. args is an object with x, y or both.
func movePoint(w statevar.Writer, args cty.Value) error {
	if b, _ := value.AsBool(w.Read("draggable")); !b {
		return fmt.Errorf("point '%s' is not draggable", w.Self().Addr.String())
	}
	if args.IsNull() || !args.Type().IsObjectType() {
		return fmt.Errorf("movePoint expects an object with x and y, got %s", args.Type().FriendlyName())
	}
	for _, coord := range []string{"x", "y"} {
		if args.Type().HasAttribute(coord) {
			w.Set(coord, value.ToNumber(args.GetAttr(coord)))
		}
	}
	return nil
}

func matrixType() *statevar.Type {
	return statevar.NewType(TypeMatrix, hiddenFragment, statevar.Fragment{
		{
			Name: "value",
			Type: cty.DynamicPseudoType,
			Define: func(r statevar.Reader) cty.Value {
				var rows []cty.Value
				for _, row := range value.Elements(r.AttrOr("value", cty.EmptyTupleVal)) {
					var entries []cty.Value
					for _, e := range value.Elements(row) {
						entries = append(entries, matrixEntry(e))
					}
					rows = append(rows, value.Tuple(entries...))
				}
				return value.Tuple(rows...)
			},
			Placeholder: cty.EmptyTupleVal,
		},
		{
			Name: "numRows",
			Type: cty.Number,
			Define: func(r statevar.Reader) cty.Value {
				return cty.NumberIntVal(int64(len(value.Elements(r.Read("value")))))
			},
		},
		{
			Name: "numColumns",
			Type: cty.Number,
			Define: func(r statevar.Reader) cty.Value {
				n := 0
				for _, row := range value.Elements(r.Read("value")) {
					n = max(n, len(value.Elements(row)))
				}
				return cty.NumberIntVal(int64(n))
			},
		},
	})
}

// matrixEntry keeps numbers and math as they are and parses strings.
func matrixEntry(v cty.Value) cty.Value {
	switch {
	case value.IsMath(v):
		return v
	case !v.IsNull() && v.Type() == cty.String:
		return value.Math(value.AsMath(v))
	}
	return value.ToNumber(v)
}
