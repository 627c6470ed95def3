package variant

import (
	"math"
	"math/rand/v2"
	"sort"
	"strconv"

	"github.com/specialistvlad/reactidoc/internal/value"
	"github.com/zclconf/go-cty/cty"
)

// MaxDomain caps the materialized size of a sequence.
const MaxDomain = 100000

// SequenceSpec describes an arithmetic sequence to draw from, optionally
// as letters ("a", "b", ...) instead of numbers.
type SequenceSpec struct {
	From, To, Step float64
	Letters        bool

	Count           int
	WithReplacement bool
	Sorted          bool

	// Exclude lists values that may never be drawn.
	Exclude []cty.Value
	// ExcludeCombinations lists draws that may not occur together, by
	// position. A null entry matches anything.
	ExcludeCombinations [][]cty.Value
}

// Len is the number of values between From and To. It may exceed
// MaxDomain, in which case Domain returns only the first MaxDomain values.
func (spec SequenceSpec) Len() float64 {
	step := spec.Step
	if step == 0 {
		step = 1
	}
	f := math.Floor((spec.To-spec.From)/step+1e-9) + 1
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	return f
}

// Truncated reports whether Domain drops values beyond MaxDomain.
func (spec SequenceSpec) Truncated() bool {
	return spec.Len() > MaxDomain
}

// Domain lists the values of the sequence, at most MaxDomain of them.
func (spec SequenceSpec) Domain() []cty.Value {
	step := spec.Step
	if step == 0 {
		step = 1
	}
	n := int(math.Min(spec.Len(), MaxDomain))
	out := make([]cty.Value, 0, n)
	for i := 0; i < n; i++ {
		x := spec.From + float64(i)*step
		if spec.Letters {
			out = append(out, cty.StringVal(letters(int(math.Round(x)))))
			continue
		}
		out = append(out, cty.NumberFloatVal(value.Round(x, 12)))
	}
	return out
}

// letters maps 1 to "a", 26 to "z", 27 to "aa".
func letters(n int) string {
	if n < 1 {
		return strconv.Itoa(n)
	}
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('a' + n%26)}, b...)
		n /= 26
	}
	return string(b)
}

// Sequence draws spec.Count values from the sequence. The exclusion limit
// is checked before any random number is used.
func (s *Sampler) Sequence(spec SequenceSpec) DrawFunc {
	return func(r *rand.Rand) (cty.Value, error) {
		domain := spec.Domain()
		count := spec.Count
		if count < 1 {
			count = 1
		}

		allowed := make([]cty.Value, 0, len(domain))
		for _, v := range domain {
			if !contains(spec.Exclude, v) {
				allowed = append(allowed, v)
			}
		}
		excluded := len(domain) - len(allowed)
		if len(domain) == 0 || float64(excluded) > s.cfg.MaxExcludedFraction*float64(len(domain)) {
			return cty.NilVal, &ExclusionError{Excluded: excluded, Total: len(domain), Limit: s.cfg.MaxExcludedFraction}
		}
		if !spec.WithReplacement && len(allowed) < count {
			return cty.NilVal, ErrExhausted
		}

		for attempt := 0; attempt < maxAttempts; attempt++ {
			var picked []cty.Value
			if spec.WithReplacement {
				picked = make([]cty.Value, count)
				for i := range picked {
					picked[i] = allowed[r.IntN(len(allowed))]
				}
			} else {
				perm := r.Perm(len(allowed))[:count]
				picked = make([]cty.Value, count)
				for i, p := range perm {
					picked[i] = allowed[p]
				}
			}
			if spec.Sorted {
				sortValues(picked)
			}
			if matchesAny(spec.ExcludeCombinations, picked) {
				continue
			}
			return value.Tuple(picked...), nil
		}
		return cty.NilVal, ErrExhausted
	}
}

// Indices draws count indices from weighted options. Weights below zero
// count as zero.
func Indices(weights []float64, count int, withReplacement bool) DrawFunc {
	return func(r *rand.Rand) (cty.Value, error) {
		w := make([]float64, len(weights))
		copy(w, weights)
		if count < 1 {
			count = 1
		}
		if !withReplacement && count > positive(w) {
			return cty.NilVal, ErrExhausted
		}

		out := make([]cty.Value, 0, count)
		for len(out) < count {
			i := pickWeighted(r, w)
			if i < 0 {
				return cty.NilVal, ErrExhausted
			}
			out = append(out, cty.NumberIntVal(int64(i)))
			if !withReplacement {
				w[i] = 0
			}
		}
		return value.Tuple(out...), nil
	}
}

func pickWeighted(r *rand.Rand, w []float64) int {
	var total float64
	for _, x := range w {
		if x > 0 {
			total += x
		}
	}
	if total <= 0 {
		return -1
	}
	target := r.Float64() * total
	last := -1
	for i, x := range w {
		if x <= 0 {
			continue
		}
		last = i
		if target < x {
			return i
		}
		target -= x
	}
	return last
}

func positive(w []float64) int {
	n := 0
	for _, x := range w {
		if x > 0 {
			n++
		}
	}
	return n
}

func contains(list []cty.Value, v cty.Value) bool {
	for _, x := range list {
		if value.Equal(x, v) {
			return true
		}
	}
	return false
}

func matchesAny(combos [][]cty.Value, picked []cty.Value) bool {
	for _, combo := range combos {
		if len(combo) > len(picked) {
			continue
		}
		match := true
		for i, c := range combo {
			if c.IsNull() {
				continue
			}
			if !value.Equal(c, picked[i]) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func sortValues(vs []cty.Value) {
	less := func(a, b cty.Value) bool {
		if a.Type() == cty.String && b.Type() == cty.String {
			sa, sb := a.AsString(), b.AsString()
			if len(sa) != len(sb) {
				return len(sa) < len(sb)
			}
			return sa < sb
		}
		fa := value.AsFloat(a)
		fb := value.AsFloat(b)
		return fa < fb
	}
	sort.SliceStable(vs, func(i, j int) bool { return less(vs[i], vs[j]) })
}
