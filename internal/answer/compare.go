package answer

import (
	"math"
	"strings"

	"github.com/specialistvlad/reactidoc/internal/mathexpr"
	"github.com/specialistvlad/reactidoc/internal/value"
	"github.com/zclconf/go-cty/cty"
)

// DefaultTolerance is the relative tolerance used when none is configured.
const DefaultTolerance = 1e-12

// maxExactAssignment bounds the operand size for the exact unordered match.
const maxExactAssignment = 16

// Options configure a comparison.
type Options struct {
	MatchPartial bool
	Unordered    bool

	// Tolerance is relative to the larger magnitude. AbsoluteTolerance,
	// when positive, also accepts differences up to that amount.
	Tolerance         float64
	AbsoluteTolerance float64
}

// DefaultOptions returns the options used when an award configures nothing.
func DefaultOptions() Options {
	return Options{Tolerance: DefaultTolerance}
}

// NumbersEqual compares two floats under opts.
func NumbersEqual(a, b float64, opts Options) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	if a == b {
		return true
	}
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return false
	}
	d := math.Abs(a - b)
	if opts.AbsoluteTolerance > 0 && d <= opts.AbsoluteTolerance {
		return true
	}
	return d <= opts.Tolerance*math.Max(math.Abs(a), math.Abs(b))
}

// LeavesEqual compares two non-sequence values.
func LeavesEqual(a, b cty.Value, opts Options) bool {
	a, b = value.Sanitize(a), value.Sanitize(b)
	if a.IsNull() || b.IsNull() {
		return false
	}
	ta, tb := a.Type(), b.Type()

	switch {
	case value.IsMath(a) && value.IsMath(b):
		na, nb := value.AsMath(a), value.AsMath(b)
		if mathexpr.Equal(na, nb) {
			return true
		}
		if len(na.Vars()) == 0 && len(nb.Vars()) == 0 {
			return NumbersEqual(value.AsFloat(a), value.AsFloat(b), opts)
		}
		return false
	case value.IsMath(a) && tb == cty.String:
		return LeavesEqual(a, value.Math(value.AsMath(b)), opts)
	case ta == cty.String && value.IsMath(b):
		return LeavesEqual(value.Math(value.AsMath(a)), b, opts)
	case value.IsMath(a) || value.IsMath(b) || ta == cty.Number || tb == cty.Number:
		return NumbersEqual(value.AsFloat(a), value.AsFloat(b), opts)
	case ta == cty.String && tb == cty.String:
		return strings.TrimSpace(a.AsString()) == strings.TrimSpace(b.AsString())
	case ta == cty.Bool && tb == cty.Bool:
		return a.True() == b.True()
	case isRecord(a) && isRecord(b):
		return recordFraction(a, b, Options{Tolerance: opts.Tolerance, AbsoluteTolerance: opts.AbsoluteTolerance}) >= 1
	}
	return value.Equal(a, b)
}

// isRecord reports whether v is an object or map, such as a point.
func isRecord(v cty.Value) bool {
	v = value.Sanitize(v)
	if v.IsNull() || value.IsMath(v) {
		return false
	}
	t := v.Type()
	return t.IsObjectType() || t.IsMapType()
}

func fields(v cty.Value) map[string]cty.Value {
	out := make(map[string]cty.Value, v.LengthInt())
	for it := v.ElementIterator(); it.Next(); {
		k, e := it.Element()
		out[k.AsString()] = e
	}
	return out
}

// recordFraction compares two records field by field over the union of
// their field names. A field present on one side only is unmatched.
func recordFraction(a, b cty.Value, opts Options) float64 {
	fa, fb := fields(value.Sanitize(a)), fields(value.Sanitize(b))
	names := make(map[string]struct{}, len(fa)+len(fb))
	for k := range fa {
		names[k] = struct{}{}
	}
	for k := range fb {
		names[k] = struct{}{}
	}
	if len(names) == 0 {
		return 1
	}
	var sum float64
	for k := range names {
		av, okA := fa[k]
		bv, okB := fb[k]
		if okA && okB {
			sum += Fraction(av, bv, opts)
		}
	}
	return sum / float64(len(names))
}

// Fraction returns the share of matching sub-positions of a and b. Lists
// compare by position and records, such as points, by field.
func Fraction(a, b cty.Value, opts Options) float64 {
	sa, sb := value.IsSequence(a), value.IsSequence(b)
	if !sa && !sb {
		if isRecord(a) && isRecord(b) {
			inner := opts
			inner.Unordered = false
			return recordFraction(a, b, inner)
		}
		if LeavesEqual(a, b, opts) {
			return 1
		}
		return 0
	}

	ea, eb := asElements(a, sa), asElements(b, sb)
	m := max(len(ea), len(eb))
	if m == 0 {
		return 1
	}

	inner := opts
	inner.Unordered = false
	if opts.Unordered {
		return bestAssignment(ea, eb, inner) / float64(m)
	}

	var sum float64
	for i := 0; i < min(len(ea), len(eb)); i++ {
		sum += Fraction(ea[i], eb[i], inner)
	}
	return sum / float64(m)
}

// asElements treats a non-sequence as a sequence of one.
func asElements(v cty.Value, isSeq bool) []cty.Value {
	if isSeq {
		return value.Elements(v)
	}
	return []cty.Value{v}
}

// bestAssignment pairs elements one to one maximizing the summed fractions.
func bestAssignment(a, b []cty.Value, opts Options) float64 {
	if len(a) > len(b) {
		a, b = b, a
	}
	if len(a) == 0 {
		return 0
	}

	score := make([][]float64, len(a))
	for i := range a {
		score[i] = make([]float64, len(b))
		for j := range b {
			score[i][j] = Fraction(a[i], b[j], opts)
		}
	}

	if len(b) > maxExactAssignment {
		return greedyAssignment(score)
	}

	// dp[mask] is the best total for the first popcount(mask) rows of a
	// using exactly the columns in mask.
	size := 1 << len(b)
	dp := make([]float64, size)
	for i := range dp {
		dp[i] = -1
	}
	dp[0] = 0
	best := 0.0
	for mask := 0; mask < size; mask++ {
		if dp[mask] < 0 {
			continue
		}
		row := popcount(mask)
		if row == len(a) {
			best = math.Max(best, dp[mask])
			continue
		}
		for j := 0; j < len(b); j++ {
			if mask&(1<<j) != 0 {
				continue
			}
			next := mask | 1<<j
			dp[next] = math.Max(dp[next], dp[mask]+score[row][j])
		}
	}
	return best
}

func greedyAssignment(score [][]float64) float64 {
	used := make(map[int]bool)
	var total float64
	for i := range score {
		bestJ, bestV := -1, -1.0
		for j, v := range score[i] {
			if !used[j] && v > bestV {
				bestJ, bestV = j, v
			}
		}
		if bestJ >= 0 {
			used[bestJ] = true
			total += bestV
		}
	}
	return total
}

func popcount(x int) int {
	n := 0
	for x != 0 {
		x &= x - 1
		n++
	}
	return n
}

// Credit converts a fraction into award credit.
func Credit(fraction, credit float64, matchPartial bool) float64 {
	if math.IsNaN(fraction) {
		return 0
	}
	if matchPartial {
		return fraction * credit
	}
	if fraction >= 1 {
		return credit
	}
	return 0
}
