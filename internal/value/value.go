// Package value holds the cty conventions shared by every state variable:
// how NaN is represented, the capsule type carrying symbolic math, and the
// conversions used by snapshots and host payloads.
package value

import (
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/specialistvlad/reactidoc/internal/mathexpr"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// MathType is the capsule type for symbolic expressions. Two math values are
// equal when their normalized forms print identically.
var MathType = cty.CapsuleWithOps("math", reflect.TypeOf(mathexpr.Node{}), &cty.CapsuleOps{
	GoString: func(v interface{}) string {
		return "value.Math(" + strconv.Quote(v.(*mathexpr.Node).String()) + ")"
	},
	TypeGoString: func(reflect.Type) string {
		return "value.MathType"
	},
	Equals: func(a, b interface{}) cty.Value {
		return cty.BoolVal(mathexpr.Equal(a.(*mathexpr.Node), b.(*mathexpr.Node)))
	},
	RawEquals: func(a, b interface{}) bool {
		return a.(*mathexpr.Node).String() == b.(*mathexpr.Node).String()
	},
})

// NaN is the number value that is not a number. cty numbers cannot hold a
// NaN, so a null number stands in for it everywhere in the engine.
var NaN = cty.NullVal(cty.Number)

// Math wraps an expression tree.
func Math(n *mathexpr.Node) cty.Value {
	if n == nil {
		n = mathexpr.Undefined
	}
	return cty.CapsuleVal(MathType, n)
}

// Number converts f, mapping NaN to the null number.
func Number(f float64) cty.Value {
	if math.IsNaN(f) {
		return NaN
	}
	return cty.NumberFloatVal(f)
}

// IsMath reports whether v carries a math capsule.
func IsMath(v cty.Value) bool {
	return v.Type().Equals(MathType)
}

// IsNaN reports whether v is a number that is not a number: null, unknown,
// or a math expression that does not evaluate to a constant.
func IsNaN(v cty.Value) bool {
	return math.IsNaN(AsFloat(v))
}

// AsMath extracts an expression from v. Numbers become literals and strings
// are parsed; anything else is the undefined marker.
func AsMath(v cty.Value) *mathexpr.Node {
	if v.IsNull() || !v.IsKnown() {
		return mathexpr.Undefined
	}
	switch {
	case IsMath(v):
		return v.EncapsulatedValue().(*mathexpr.Node)
	case v.Type() == cty.Number:
		return mathexpr.Num(AsFloat(v))
	case v.Type() == cty.String:
		return mathexpr.ParseOrUndefined(v.AsString())
	}
	return mathexpr.Undefined
}

// AsFloat converts v to a float64. Values that have no numeric reading give NaN.
func AsFloat(v cty.Value) float64 {
	if v == cty.NilVal || v.IsNull() || !v.IsKnown() {
		return math.NaN()
	}
	if IsMath(v) {
		n := v.EncapsulatedValue().(*mathexpr.Node)
		if len(n.Vars()) > 0 {
			return math.NaN()
		}
		return mathexpr.Eval(n, nil)
	}
	if v.Type() == cty.String {
		f, err := strconv.ParseFloat(strings.TrimSpace(v.AsString()), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	}
	n, err := convert.Convert(v, cty.Number)
	if err != nil || n.IsNull() || !n.IsKnown() {
		return math.NaN()
	}
	f, _ := n.AsBigFloat().Float64()
	return f
}

// ToNumber converts v to a number value, NaN when impossible.
func ToNumber(v cty.Value) cty.Value {
	return Number(AsFloat(v))
}

// AsInt rounds v to an int. ok is false for NaN and infinities.
func AsInt(v cty.Value) (n int, ok bool) {
	f := AsFloat(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(math.Round(f)), true
}

// AsBool reads a boolean. Numbers are true when non-zero.
func AsBool(v cty.Value) (b bool, ok bool) {
	if v == cty.NilVal || v.IsNull() || !v.IsKnown() {
		return false, false
	}
	switch v.Type() {
	case cty.Bool:
		return v.True(), true
	case cty.Number:
		f := AsFloat(v)
		return f != 0 && !math.IsNaN(f), true
	case cty.String:
		b, err := strconv.ParseBool(strings.TrimSpace(v.AsString()))
		return b, err == nil
	}
	return false, false
}

// ToString converts v to a string value, or the null string.
func ToString(v cty.Value) cty.Value {
	if v == cty.NilVal || v.IsNull() || !v.IsKnown() {
		return cty.NullVal(cty.String)
	}
	if IsMath(v) {
		return cty.StringVal(AsMath(v).String())
	}
	s, err := convert.Convert(v, cty.String)
	if err != nil {
		return cty.NullVal(cty.String)
	}
	return s
}

// IsSequence reports whether v is a known tuple or list.
func IsSequence(v cty.Value) bool {
	if v == cty.NilVal || v.IsNull() || !v.IsKnown() {
		return false
	}
	ty := v.Type()
	return ty.IsTupleType() || ty.IsListType()
}

// Elements returns the elements of a sequence, or nil.
func Elements(v cty.Value) []cty.Value {
	if !IsSequence(v) {
		return nil
	}
	out := make([]cty.Value, 0, v.LengthInt())
	for it := v.ElementIterator(); it.Next(); {
		_, e := it.Element()
		out = append(out, e)
	}
	return out
}

// Tuple builds a tuple value, accepting an empty argument list.
func Tuple(elems ...cty.Value) cty.Value {
	if len(elems) == 0 {
		return cty.EmptyTupleVal
	}
	return cty.TupleVal(elems)
}

// Point builds the object representation of a coordinate pair.
func Point(x, y cty.Value) cty.Value {
	return cty.ObjectVal(map[string]cty.Value{"x": ToNumber(x), "y": ToNumber(y)})
}

// Sanitize replaces unknown values with nulls so a value can leave the
// engine. Marks are dropped.
func Sanitize(v cty.Value) cty.Value {
	if v == cty.NilVal {
		return cty.NullVal(cty.DynamicPseudoType)
	}
	out, _ := cty.Transform(v, func(_ cty.Path, v cty.Value) (cty.Value, error) {
		if !v.IsKnown() {
			return cty.NullVal(v.Type()), nil
		}
		return v, nil
	})
	return out
}

// Equal reports exact equality, treating two NaNs as equal.
func Equal(a, b cty.Value) bool {
	if a == cty.NilVal || b == cty.NilVal {
		return a == b
	}
	a, b = Sanitize(a), Sanitize(b)
	if a.IsNull() || b.IsNull() {
		return a.IsNull() && b.IsNull()
	}
	if IsMath(a) && IsMath(b) {
		return AsMath(a).String() == AsMath(b).String()
	}
	if a.Type() == cty.Number && b.Type() == cty.Number {
		return a.AsBigFloat().Cmp(b.AsBigFloat()) == 0
	}
	return a.RawEquals(b)
}

// Round returns f rounded to the given number of significant digits.
func Round(f float64, digits int) float64 {
	if f == 0 || math.IsNaN(f) || math.IsInf(f, 0) || digits <= 0 {
		return f
	}
	s := strconv.FormatFloat(f, 'g', digits, 64)
	out, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return f
	}
	return out
}
