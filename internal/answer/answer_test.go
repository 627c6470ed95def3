package answer

import (
	"math"
	"testing"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/reactidoc/internal/mathexpr"
	"github.com/specialistvlad/reactidoc/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func num(f float64) cty.Value { return cty.NumberFloatVal(f) }

func matrix(rows ...[]float64) cty.Value {
	var out []cty.Value
	for _, r := range rows {
		var cells []cty.Value
		for _, c := range r {
			cells = append(cells, num(c))
		}
		out = append(out, value.Tuple(cells...))
	}
	return value.Tuple(out...)
}

func point(x, y float64) cty.Value { return value.Point(num(x), num(y)) }

func TestFraction(t *testing.T) {
	testCases := []struct {
		name string
		a, b cty.Value
		opts Options
		want float64
	}{
		{
			name: "2x2 matrices differing in one entry",
			a:    matrix([]float64{1, 2}, []float64{3, 4}),
			b:    matrix([]float64{1, 2}, []float64{3, 5}),
			want: 0.75,
		},
		{
			name: "1x1 against 2x2 sharing one entry",
			a:    matrix([]float64{1}),
			b:    matrix([]float64{1, 2}, []float64{3, 4}),
			want: 0.25,
		},
		{
			name: "lists with j of m matching",
			a:    value.Tuple(num(1), num(2), num(3), num(4), num(5)),
			b:    value.Tuple(num(1), num(0), num(3), num(0), num(5)),
			want: 0.6,
		},
		{
			name: "scalar against list",
			a:    num(1),
			b:    value.Tuple(num(1), num(2)),
			want: 0.5,
		},
		{
			name: "empty sequences",
			a:    cty.EmptyTupleVal,
			b:    cty.EmptyTupleVal,
			want: 1,
		},
		{
			name: "points match by coordinate",
			a:    point(1, 3),
			b:    point(1, 2),
			want: 0.5,
		},
		{
			name: "record fields missing on one side are unmatched",
			a:    cty.ObjectVal(map[string]cty.Value{"x": num(1), "y": num(2)}),
			b:    cty.ObjectVal(map[string]cty.Value{"x": num(1), "z": num(2)}),
			want: 1.0 / 3,
		},
		{
			name: "list of points averages partial points",
			a:    value.Tuple(point(1, 3), point(4, 4)),
			b:    value.Tuple(point(1, 2), point(4, 4)),
			want: 0.75,
		},
		{
			name: "unordered pairs without double credit",
			a:    value.Tuple(num(1), num(1)),
			b:    value.Tuple(num(1), num(2)),
			opts: Options{Unordered: true},
			want: 0.5,
		},
		{
			name: "unordered finds the permutation",
			a:    value.Tuple(num(3), num(1), num(2)),
			b:    value.Tuple(num(1), num(2), num(3)),
			opts: Options{Unordered: true},
			want: 1,
		},
		{
			name: "unordered applies at the top level only",
			a:    value.Tuple(value.Tuple(num(2), num(1))),
			b:    value.Tuple(value.Tuple(num(1), num(2))),
			opts: Options{Unordered: true},
			want: 0,
		},
		{
			name: "NaN never matches",
			a:    value.NaN,
			b:    value.NaN,
			want: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			opts := tc.opts
			if opts.Tolerance == 0 {
				opts.Tolerance = DefaultTolerance
			}
			assert.InDelta(t, tc.want, Fraction(tc.a, tc.b, opts), 1e-12)
		})
	}
}

func TestLeavesEqual(t *testing.T) {
	opts := DefaultOptions()
	assert.True(t, LeavesEqual(num(1), num(1+1e-14), opts))
	assert.False(t, LeavesEqual(num(1), num(1.001), opts))
	assert.True(t, LeavesEqual(num(1), num(1.001), Options{AbsoluteTolerance: 0.01}))
	assert.True(t, LeavesEqual(num(100), num(101), Options{Tolerance: 0.01}))
	assert.True(t, LeavesEqual(cty.StringVal(" x "), cty.StringVal("x"), opts))
	assert.True(t, LeavesEqual(cty.NumberVal(cty.PositiveInfinity.AsBigFloat()), cty.PositiveInfinity, opts))

	commuted := value.Math(mathexpr.MustParse("y + 2x"))
	assert.True(t, LeavesEqual(value.Math(mathexpr.MustParse("2x + y")), commuted, opts))
	assert.False(t, LeavesEqual(value.Math(mathexpr.MustParse("2(x + 1)")), value.Math(mathexpr.MustParse("2x + 2")), opts),
		"equal forms that normalization does not unify are different")
	assert.True(t, LeavesEqual(value.Math(mathexpr.MustParse("1/2")), num(0.5), opts))
	assert.True(t, LeavesEqual(value.Math(mathexpr.MustParse("1 + x")), cty.StringVal("x+1"), opts),
		"typed text is compared as math")
	assert.False(t, LeavesEqual(cty.StringVal("x"), value.Math(mathexpr.MustParse("y")), opts))
}

func TestCredit(t *testing.T) {
	assert.InDelta(t, 0.375, Credit(0.75, 0.5, true), 1e-12)
	assert.InDelta(t, 0, Credit(0.75, 1, false), 0)
	assert.InDelta(t, 1, Credit(1, 1, false), 0)
	assert.InDelta(t, 0, Credit(math.NaN(), 1, true), 0)
}

func parseCondition(t *testing.T, src string) hcl.Expression {
	t.Helper()
	expr, diags := hclsyntax.ParseExpression([]byte(src), "cond.hcl", hcl.Pos{Line: 1, Column: 1})
	require.False(t, diags.HasErrors(), diags.Error())
	return expr
}

// evalWith evaluates sub-expressions against fixed variables.
func evalWith(vars map[string]cty.Value) EvalFunc {
	ctx := &hcl.EvalContext{Variables: vars}
	return func(expr hcl.Expression) cty.Value {
		v, diags := expr.Value(ctx)
		if diags.HasErrors() {
			return value.NaN
		}
		return v
	}
}

func TestEvaluate(t *testing.T) {
	testCases := []struct {
		name string
		cond string
		vars map[string]cty.Value
		opts Options
		want float64
	}{
		{
			name: "point in first quadrant",
			cond: `P.x > 0 && P.y > 0`,
			vars: map[string]cty.Value{"P": point(5.9, 3.5)},
			want: 1,
		},
		{
			name: "point outside first quadrant holds half the condition",
			cond: `(P.x > 0) && (P.y > 0)`,
			vars: map[string]cty.Value{"P": point(-8.8, 1.3)},
			want: 0.5,
		},
		{
			name: "two points against two goals, unordered",
			cond: `[A, B] == [G1, G2]`,
			vars: map[string]cty.Value{
				"A": point(1.02, 2), "B": point(9, 9),
				"G1": point(1, 2), "G2": point(-3, 4),
			},
			opts: Options{Unordered: true, AbsoluteTolerance: 0.05},
			want: 0.5,
		},
		{
			name: "or takes the better side",
			cond: `x == 1 || x == 2`,
			vars: map[string]cty.Value{"x": num(2)},
			want: 1,
		},
		{
			name: "negation and inequality",
			cond: `!(x != 3)`,
			vars: map[string]cty.Value{"x": num(3)},
			want: 1,
		},
		{
			name: "plain boolean expression",
			cond: `contains`,
			vars: map[string]cty.Value{"contains": cty.True},
			want: 1,
		},
		{
			name: "less or equal uses tolerance",
			cond: `x <= 1`,
			vars: map[string]cty.Value{"x": num(1 + 1e-15)},
			want: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			opts := tc.opts
			if opts.Tolerance == 0 {
				opts.Tolerance = DefaultTolerance
			}
			got := Evaluate(parseCondition(t, tc.cond), evalWith(tc.vars), opts)
			assert.InDelta(t, tc.want, got, 1e-12)
		})
	}
}
