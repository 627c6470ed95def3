package mathexpr

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Interval is a closed, open or half-open range of real numbers.
type Interval struct {
	Lo, Hi             float64
	LoClosed, HiClosed bool
}

// All is the whole real line.
var All = Interval{Lo: math.Inf(-1), Hi: math.Inf(1)}

// ParseInterval reads notation like "(0, 10]" or "[-inf, 2)".
func ParseInterval(src string) (Interval, error) {
	s := strings.TrimSpace(src)
	if len(s) < 5 {
		return Interval{}, fmt.Errorf("interval %q is too short", src)
	}
	var iv Interval
	switch s[0] {
	case '[':
		iv.LoClosed = true
	case '(':
	default:
		return Interval{}, fmt.Errorf("interval %q must start with '(' or '['", src)
	}
	switch s[len(s)-1] {
	case ']':
		iv.HiClosed = true
	case ')':
	default:
		return Interval{}, fmt.Errorf("interval %q must end with ')' or ']'", src)
	}
	parts := strings.Split(s[1:len(s)-1], ",")
	if len(parts) != 2 {
		return Interval{}, fmt.Errorf("interval %q must have exactly two endpoints", src)
	}
	var err error
	if iv.Lo, err = parseEndpoint(parts[0]); err != nil {
		return Interval{}, err
	}
	if iv.Hi, err = parseEndpoint(parts[1]); err != nil {
		return Interval{}, err
	}
	if iv.Lo > iv.Hi {
		return Interval{}, fmt.Errorf("interval %q has lower endpoint above upper", src)
	}
	return iv, nil
}

func parseEndpoint(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "inf", "infinity", "+inf", "+infinity":
		return math.Inf(1), nil
	case "-inf", "-infinity":
		return math.Inf(-1), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad interval endpoint %q", s)
	}
	return v, nil
}

// Contains reports whether x lies in the interval.
func (iv Interval) Contains(x float64) bool {
	if math.IsNaN(x) {
		return false
	}
	if x < iv.Lo || x > iv.Hi {
		return false
	}
	if x == iv.Lo && !iv.LoClosed {
		return false
	}
	if x == iv.Hi && !iv.HiClosed {
		return false
	}
	return true
}

func (iv Interval) String() string {
	lo, hi := "(", ")"
	if iv.LoClosed {
		lo = "["
	}
	if iv.HiClosed {
		hi = "]"
	}
	return fmt.Sprintf("%s%s, %s%s", lo, formatNum(iv.Lo), formatNum(iv.Hi), hi)
}

// Function is a formula of one variable with an optional domain.
type Function struct {
	Formula  *Node
	Variable string
	Domain   *Interval
	Policy   Policy
}

// At evaluates the function at x. Inputs outside the domain, including open
// endpoints, give NaN.
func (f Function) At(x float64) float64 {
	if math.IsNaN(x) || f.Formula.IsUndefined() {
		return math.NaN()
	}
	if f.Domain != nil && !f.Domain.Contains(x) {
		return math.NaN()
	}
	env := Env{f.Variable: x}
	if f.Policy == Symbolic {
		return EvalSymbolic(f.Formula, env, f.Variable)
	}
	return Eval(f.Formula, env)
}
