package mathexpr

import "sort"

// Normalize returns the canonical form of n used for structural equality.
// Sums and products are flattened and their operands sorted; negations are
// pulled out of products and quotients and double negations cancel.
// Negative literals become negated positive literals. Nothing else is
// rewritten.
func Normalize(n *Node) *Node {
	if n == nil {
		return Undefined
	}
	switch n.Op {
	case OpNum:
		if n.Num < 0 {
			return Neg(Num(-n.Num))
		}
		return Num(n.Num)
	case OpVar:
		return Var(n.Name)
	case OpUndefined:
		return Undefined
	case OpNeg:
		return negate(Normalize(n.Args[0]))
	case OpAdd:
		var terms []*Node
		for _, a := range n.Args {
			na := Normalize(a)
			if na.Op == OpAdd {
				terms = append(terms, na.Args...)
				continue
			}
			terms = append(terms, na)
		}
		sortCanonical(terms)
		return Add(terms...)
	case OpMul:
		negative := false
		var factors []*Node
		for _, a := range n.Args {
			na := Normalize(a)
			if na.Op == OpNeg {
				negative = !negative
				na = na.Args[0]
			}
			if na.Op == OpMul {
				factors = append(factors, na.Args...)
				continue
			}
			factors = append(factors, na)
		}
		sortCanonical(factors)
		var out *Node
		if len(factors) == 1 {
			out = factors[0]
		} else {
			out = Mul(factors...)
		}
		if negative {
			return Neg(out)
		}
		return out
	case OpDiv:
		num, den := Normalize(n.Args[0]), Normalize(n.Args[1])
		negative := false
		if num.Op == OpNeg {
			negative, num = !negative, num.Args[0]
		}
		if den.Op == OpNeg {
			negative, den = !negative, den.Args[0]
		}
		out := Div(num, den)
		if negative {
			return Neg(out)
		}
		return out
	case OpPow:
		return Pow(Normalize(n.Args[0]), Normalize(n.Args[1]))
	case OpCall:
		return Call(n.Name, Normalize(n.Args[0]))
	}
	return Undefined
}

func negate(n *Node) *Node {
	if n.Op == OpNeg {
		return n.Args[0]
	}
	return Neg(n)
}

func sortCanonical(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].String() < nodes[j].String()
	})
}

// Equal reports whether a and b are identical after normalization. An
// undefined expression is never equal to anything, including itself.
func Equal(a, b *Node) bool {
	if a.IsUndefined() || b.IsUndefined() {
		return false
	}
	return Normalize(a).String() == Normalize(b).String()
}
