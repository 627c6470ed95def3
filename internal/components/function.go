package components

import (
	"fmt"
	"math"

	"github.com/specialistvlad/reactidoc/internal/mathexpr"
	"github.com/specialistvlad/reactidoc/internal/statevar"
	"github.com/specialistvlad/reactidoc/internal/value"
	"github.com/zclconf/go-cty/cty"
)

// Evaluation modes of a function.
const (
	EvalSymbolic = "symbolic"
	EvalNumeric  = "numeric"
)

func functionType() *statevar.Type {
	return statevar.NewType(TypeFunction, labelFragment, hiddenFragment, mathFragment, statevar.Fragment{
		{
			Name: "value",
			Type: value.MathType,
			Define: func(r statevar.Reader) cty.Value {
				return value.Math(value.AsMath(r.AttrOr("formula", cty.NullVal(cty.String))))
			},
		},
		{
			Name: "variable",
			Type: cty.String,
			Define: func(r statevar.Reader) cty.Value {
				return cty.StringVal(attrString(r, "variable", "x"))
			},
		},
		{
			Name: "domain",
			Type: cty.String,
			Define: func(r statevar.Reader) cty.Value {
				src, ok := r.Attr("domain")
				if !ok {
					return cty.NullVal(cty.String)
				}
				s := value.ToString(src)
				if s.IsNull() {
					return cty.NullVal(cty.String)
				}
				iv, err := mathexpr.ParseInterval(s.AsString())
				if err != nil {
					configWarning(r, "Invalid domain", fmt.Sprintf("%v; the function is evaluated on the whole real line.", err))
					return cty.NullVal(cty.String)
				}
				return cty.StringVal(iv.String())
			},
		},
		{
			Name: "evaluation",
			Type: cty.String,
			Define: func(r statevar.Reader) cty.Value {
				mode := attrString(r, "evaluation", EvalSymbolic)
				if mode != EvalSymbolic && mode != EvalNumeric {
					configWarning(r, "Unsupported evaluation mode", fmt.Sprintf("Evaluation %q is not %q or %q; using %q.", mode, EvalSymbolic, EvalNumeric, EvalSymbolic))
					mode = EvalSymbolic
				}
				return cty.StringVal(mode)
			},
		},
	})
}

func evaluateType() *statevar.Type {
	return statevar.NewType(TypeEvaluate, hiddenFragment, statevar.Fragment{{
		Name: "value",
		Type: cty.Number,
		Define: func(r statevar.Reader) cty.Value {
			target, ok := r.Target("function")
			if !ok || target.Type != TypeFunction {
				configWarning(r, "Invalid function reference", "The \"function\" attribute must name a function component.")
				return value.NaN
			}
			f := mathexpr.Function{
				Formula:  value.AsMath(r.ReadOf(target.ID, "value")),
				Variable: stringOr(r.ReadOf(target.ID, "variable"), "x"),
			}
			if d := stringOr(r.ReadOf(target.ID, "domain"), ""); d != "" {
				if iv, err := mathexpr.ParseInterval(d); err == nil {
					f.Domain = &iv
				}
			}
			if stringOr(r.ReadOf(target.ID, "evaluation"), EvalSymbolic) == EvalSymbolic {
				f.Policy = mathexpr.Symbolic
			}
			return value.Number(f.At(attrNumber(r, "input", math.NaN())))
		},
	}})
}
