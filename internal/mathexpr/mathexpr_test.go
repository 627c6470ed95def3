package mathexpr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_String(t *testing.T) {
	testCases := []struct {
		name     string
		src      string
		expected string
	}{
		{name: "implicit product", src: "2x^2", expected: "2*x^2"},
		{name: "subtraction", src: "x - 3", expected: "x - 3"},
		{name: "unary minus binds below power", src: "-x^2", expected: "-x^2"},
		{name: "parenthesized product", src: "2(x+1)", expected: "2*(x + 1)"},
		{name: "quotient", src: "1/x", expected: "1/x"},
		{name: "function call", src: "sin(2x)", expected: "sin(2*x)"},
		{name: "negative exponent", src: "x^-1", expected: "x^(-1)"},
		{name: "infinity literal", src: "infinity", expected: "infinity"},
		{name: "blank", src: "   ", expected: "＿"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			n, err := Parse(tc.src)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, n.String())

			// The printed form must parse back to the same tree.
			if !n.IsUndefined() {
				again, err := Parse(n.String())
				require.NoError(t, err)
				assert.Equal(t, n.String(), again.String())
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, src := range []string{"(x + 1", "x +", "3 $ 4", "sin(x"} {
		t.Run(src, func(t *testing.T) {
			_, err := Parse(src)
			var synErr *SyntaxError
			assert.ErrorAs(t, err, &synErr)
			assert.True(t, ParseOrUndefined(src).IsUndefined())
		})
	}
}

func TestEqual_Normalization(t *testing.T) {
	testCases := []struct {
		a, b  string
		equal bool
	}{
		{a: "x + y", b: "y + x", equal: true},
		{a: "2x", b: "x*2", equal: true},
		{a: "x - y", b: "-y + x", equal: true},
		{a: "-x*y", b: "x*(-y)", equal: true},
		{a: "(-x)/y", b: "-(x/y)", equal: true},
		{a: "--x", b: "x", equal: true},
		{a: "(a+b)+c", b: "a+(c+b)", equal: true},
		{a: "2x + 3x", b: "5x", equal: false},
		{a: "x/2", b: "0.5x", equal: false},
		{a: "(x+1)^2", b: "x^2+2x+1", equal: false},
		{a: "x^2", b: "x^3", equal: false},
	}

	for _, tc := range testCases {
		t.Run(tc.a+" vs "+tc.b, func(t *testing.T) {
			assert.Equal(t, tc.equal, Equal(MustParse(tc.a), MustParse(tc.b)))
		})
	}
}

func TestEqual_UndefinedNeverMatches(t *testing.T) {
	assert.False(t, Equal(Undefined, Undefined))
	assert.False(t, Equal(MustParse("x"), Undefined))
}

func TestVars(t *testing.T) {
	n := MustParse("pi*r^2 + e^t + r")
	assert.Equal(t, []string{"r", "t"}, n.Vars())
}

func TestEval_PolePolicies(t *testing.T) {
	inv := MustParse("1/x")
	env := Env{"x": 0}

	assert.True(t, math.IsNaN(Eval(inv, env)), "numeric policy yields NaN at a pole")
	assert.True(t, math.IsInf(EvalSymbolic(inv, env, "x"), 1), "right-hand limit of 1/x at 0 is +inf")
	assert.True(t, math.IsInf(EvalSymbolic(MustParse("-1/x"), env, "x"), -1))
	assert.True(t, math.IsInf(EvalSymbolic(MustParse("1/(1-x)"), Env{"x": 1}, "x"), -1))
	assert.True(t, math.IsInf(EvalSymbolic(MustParse("1/x^2"), env, "x"), 1))
	assert.True(t, math.IsNaN(EvalSymbolic(MustParse("x/x"), env, "x")), "0/0 stays undefined")
	assert.InDelta(t, 0.0, EvalSymbolic(inv, Env{"x": math.Inf(1)}, "x"), 1e-12)
}

func TestEval_Logarithms(t *testing.T) {
	ln := MustParse("log(x)")
	assert.True(t, math.IsNaN(Eval(ln, Env{"x": 0})))
	assert.True(t, math.IsInf(EvalSymbolic(ln, Env{"x": 0}, "x"), -1))
	assert.True(t, math.IsNaN(EvalSymbolic(ln, Env{"x": -1}, "x")))
	assert.InDelta(t, 1.0, Eval(ln, Env{"x": math.E}), 1e-12)
}

func TestInterval(t *testing.T) {
	iv, err := ParseInterval("(0, 10]")
	require.NoError(t, err)
	assert.False(t, iv.Contains(0))
	assert.True(t, iv.Contains(10))
	assert.True(t, iv.Contains(5))
	assert.False(t, iv.Contains(10.5))
	assert.False(t, iv.Contains(math.NaN()))
	assert.Equal(t, "(0, 10]", iv.String())

	unbounded, err := ParseInterval("[-inf, inf)")
	require.NoError(t, err)
	assert.True(t, unbounded.Contains(math.Inf(-1)))
	assert.False(t, unbounded.Contains(math.Inf(1)))

	for _, bad := range []string{"0,1", "[1, 0]", "(a, 1)", "[0 1]"} {
		_, err := ParseInterval(bad)
		assert.Error(t, err, bad)
	}
}

func TestFunction_At(t *testing.T) {
	dom, err := ParseInterval("[0, 2)")
	require.NoError(t, err)
	f := Function{Formula: MustParse("1/x"), Variable: "x", Domain: &dom, Policy: Symbolic}

	assert.True(t, math.IsInf(f.At(0), 1), "closed endpoint evaluates")
	assert.True(t, math.IsNaN(f.At(2)), "open endpoint is outside")
	assert.True(t, math.IsNaN(f.At(-1)))
	assert.InDelta(t, 1.0, f.At(1), 1e-12)

	f.Policy = Numeric
	assert.True(t, math.IsNaN(f.At(0)))
}
