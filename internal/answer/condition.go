package answer

import (
	"math"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/reactidoc/internal/value"
	"github.com/zclconf/go-cty/cty"
)

// EvalFunc evaluates a sub-expression of a condition.
type EvalFunc func(expr hcl.Expression) cty.Value

// Evaluate returns the degree, between 0 and 1, to which expr holds.
func Evaluate(expr hcl.Expression, eval EvalFunc, opts Options) float64 {
	switch e := expr.(type) {
	case *hclsyntax.ParenthesesExpr:
		return Evaluate(e.Expression, eval, opts)

	case *hclsyntax.UnaryOpExpr:
		if e.Op == hclsyntax.OpLogicalNot {
			return 1 - Evaluate(e.Val, eval, opts)
		}

	case *hclsyntax.BinaryOpExpr:
		switch e.Op {
		case hclsyntax.OpLogicalAnd:
			return (Evaluate(e.LHS, eval, opts) + Evaluate(e.RHS, eval, opts)) / 2
		case hclsyntax.OpLogicalOr:
			return math.Max(Evaluate(e.LHS, eval, opts), Evaluate(e.RHS, eval, opts))
		case hclsyntax.OpEqual:
			return Fraction(eval(e.LHS), eval(e.RHS), opts)
		case hclsyntax.OpNotEqual:
			if Fraction(eval(e.LHS), eval(e.RHS), opts) < 1 {
				return 1
			}
			return 0
		case hclsyntax.OpGreaterThan, hclsyntax.OpGreaterThanOrEqual,
			hclsyntax.OpLessThan, hclsyntax.OpLessThanOrEqual:
			return order(e.Op, eval(e.LHS), eval(e.RHS), opts)
		}
	}

	if b, ok := value.AsBool(eval(expr)); ok && b {
		return 1
	}
	return 0
}

func order(op *hclsyntax.Operation, l, r cty.Value, opts Options) float64 {
	a, b := value.AsFloat(l), value.AsFloat(r)
	if math.IsNaN(a) || math.IsNaN(b) {
		return 0
	}
	var ok bool
	switch op {
	case hclsyntax.OpGreaterThan:
		ok = a > b
	case hclsyntax.OpGreaterThanOrEqual:
		ok = a > b || NumbersEqual(a, b, opts)
	case hclsyntax.OpLessThan:
		ok = a < b
	case hclsyntax.OpLessThanOrEqual:
		ok = a < b || NumbersEqual(a, b, opts)
	}
	if ok {
		return 1
	}
	return 0
}
