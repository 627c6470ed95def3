package mathexpr

import "math"

// Policy selects how poles and logarithm boundaries evaluate.
type Policy int

const (
	// Numeric evaluates poles to NaN.
	Numeric Policy = iota
	// Symbolic evaluates poles to a signed infinity, the one-sided limit
	// from the right of the evaluation variable.
	Symbolic
)

// Env binds variable names to numbers.
type Env map[string]float64

// Eval evaluates n under the numeric policy.
func Eval(n *Node, env Env) float64 {
	return evaluator{env: env, policy: Numeric}.eval(n)
}

// EvalSymbolic evaluates n under the symbolic policy. variable names the
// binding in env that one-sided limits approach along; it may be empty for
// expressions without a distinguished variable.
func EvalSymbolic(n *Node, env Env, variable string) float64 {
	return evaluator{env: env, policy: Symbolic, variable: variable}.eval(n)
}

type evaluator struct {
	env      Env
	policy   Policy
	variable string
}

func (ev evaluator) eval(n *Node) float64 {
	if n == nil {
		return math.NaN()
	}
	switch n.Op {
	case OpNum:
		return n.Num
	case OpVar:
		if v, ok := ev.env[n.Name]; ok {
			return v
		}
		if c, ok := constants[n.Name]; ok {
			return c
		}
		return math.NaN()
	case OpNeg:
		return -ev.eval(n.Args[0])
	case OpAdd:
		sum := 0.0
		for _, a := range n.Args {
			sum += ev.eval(a)
		}
		return sum
	case OpMul:
		prod := 1.0
		for _, a := range n.Args {
			prod *= ev.eval(a)
		}
		return prod
	case OpDiv:
		return ev.div(n.Args[0], n.Args[1])
	case OpPow:
		return math.Pow(ev.eval(n.Args[0]), ev.eval(n.Args[1]))
	case OpCall:
		return ev.call(n.Name, ev.eval(n.Args[0]))
	}
	return math.NaN()
}

func (ev evaluator) div(numNode, denNode *Node) float64 {
	num, den := ev.eval(numNode), ev.eval(denNode)
	if den != 0 || math.IsNaN(den) {
		return num / den
	}
	if ev.policy == Numeric || num == 0 || math.IsNaN(num) {
		return math.NaN()
	}

	x, bound := ev.env[ev.variable]
	if !bound || math.IsInf(x, 0) {
		return math.Copysign(math.Inf(1), num)
	}
	shifted := make(Env, len(ev.env))
	for k, v := range ev.env {
		shifted[k] = v
	}
	shifted[ev.variable] = x + limitStep(x)
	right := evaluator{env: shifted, policy: Numeric}.eval(denNode)
	if right == 0 || math.IsNaN(right) {
		return math.NaN()
	}
	return math.Copysign(math.Inf(1), num*right)
}

func limitStep(x float64) float64 {
	return 1e-9 * math.Max(1, math.Abs(x))
}

func (ev evaluator) call(name string, arg float64) float64 {
	fn, ok := functions[name]
	if !ok {
		return math.NaN()
	}
	switch name {
	case "log", "ln", "log10":
		if arg == 0 && ev.policy == Symbolic {
			return math.Inf(-1)
		}
		if arg <= 0 {
			return math.NaN()
		}
	}
	return fn(arg)
}
