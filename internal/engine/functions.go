package engine

import (
	"math"

	"github.com/specialistvlad/reactidoc/internal/value"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Functions returns the functions available to attribute expressions.
func Functions() map[string]function.Function {
	return map[string]function.Function{
		"abs":      stdlib.AbsoluteFunc,
		"ceil":     stdlib.CeilFunc,
		"floor":    stdlib.FloorFunc,
		"max":      stdlib.MaxFunc,
		"min":      stdlib.MinFunc,
		"log":      stdlib.LogFunc,
		"pow":      stdlib.PowFunc,
		"signum":   stdlib.SignumFunc,
		"length":   stdlib.LengthFunc,
		"concat":   stdlib.ConcatFunc,
		"reverse":  stdlib.ReverseListFunc,
		"coalesce": stdlib.CoalesceFunc,
		"upper":    stdlib.UpperFunc,
		"lower":    stdlib.LowerFunc,
		"format":   stdlib.FormatFunc,
		"join":     stdlib.JoinFunc,
		"range":    stdlib.RangeFunc,
		"sqrt":     SqrtFunc,
		"round":    RoundFunc,
	}
}

// SqrtFunc returns the square root, NaN for negative input.
var SqrtFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "num", Type: cty.Number, AllowNull: true},
	},
	Type: function.StaticReturnType(cty.Number),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		return value.Number(math.Sqrt(value.AsFloat(args[0]))), nil
	},
})

// RoundFunc rounds to a number of decimal places.
var RoundFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "num", Type: cty.Number, AllowNull: true},
	},
	VarParam: &function.Parameter{Name: "places", Type: cty.Number},
	Type:     function.StaticReturnType(cty.Number),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		f := value.AsFloat(args[0])
		places := 0
		if len(args) > 1 {
			places, _ = value.AsInt(args[1])
		}
		p := math.Pow(10, float64(places))
		return value.Number(math.Round(f*p) / p), nil
	},
})
