package mathexpr

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Op identifies the kind of a Node.
type Op int

const (
	OpNum Op = iota
	OpVar
	OpAdd // n-ary
	OpMul // n-ary
	OpNeg
	OpDiv
	OpPow
	OpCall
	// OpUndefined marks an expression that could not be parsed or is blank.
	OpUndefined
)

// Node is a single vertex of an expression tree. Nodes are treated as
// immutable once built; Normalize always returns fresh trees.
type Node struct {
	Op   Op
	Num  float64
	Name string // variable or function name
	Args []*Node
}

// Undefined is the marker for blank or unparsable input.
var Undefined = &Node{Op: OpUndefined}

func Num(v float64) *Node { return &Node{Op: OpNum, Num: v} }
func Var(name string) *Node { return &Node{Op: OpVar, Name: name} }
func Neg(n *Node) *Node { return &Node{Op: OpNeg, Args: []*Node{n}} }
func Add(args ...*Node) *Node { return &Node{Op: OpAdd, Args: args} }
func Mul(args ...*Node) *Node { return &Node{Op: OpMul, Args: args} }
func Div(num, den *Node) *Node { return &Node{Op: OpDiv, Args: []*Node{num, den}} }
func Pow(base, exp *Node) *Node { return &Node{Op: OpPow, Args: []*Node{base, exp}} }
func Call(name string, arg *Node) *Node {
	return &Node{Op: OpCall, Name: name, Args: []*Node{arg}}
}

// IsUndefined reports whether n is nil or contains an undefined marker.
func (n *Node) IsUndefined() bool {
	if n == nil || n.Op == OpUndefined {
		return true
	}
	for _, a := range n.Args {
		if a.IsUndefined() {
			return true
		}
	}
	return false
}

// constants resolve when a variable of the same name is not bound.
var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

// Vars returns the sorted free variables of n. Named constants are excluded.
func (n *Node) Vars() []string {
	seen := map[string]struct{}{}
	var walk func(*Node)
	walk = func(m *Node) {
		if m == nil {
			return
		}
		if m.Op == OpVar {
			if _, isConst := constants[m.Name]; !isConst {
				seen[m.Name] = struct{}{}
			}
		}
		for _, a := range m.Args {
			walk(a)
		}
	}
	walk(n)

	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

const (
	precAdd = iota + 1
	precMul
	precNeg
	precPow
	precAtom
)

func (n *Node) prec() int {
	switch n.Op {
	case OpAdd:
		return precAdd
	case OpMul, OpDiv:
		return precMul
	case OpNeg:
		return precNeg
	case OpPow:
		return precPow
	default:
		return precAtom
	}
}

// String prints n in a stable, parseable form.
func (n *Node) String() string {
	if n == nil {
		return "＿"
	}
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	switch n.Op {
	case OpNum:
		sb.WriteString(formatNum(n.Num))
	case OpVar:
		sb.WriteString(n.Name)
	case OpUndefined:
		sb.WriteString("＿")
	case OpNeg:
		sb.WriteByte('-')
		n.child(sb, 0, precNeg)
	case OpAdd:
		for i, a := range n.Args {
			if i > 0 {
				if a.Op == OpNeg {
					sb.WriteString(" - ")
					a.child(sb, 0, precAdd+1)
					continue
				}
				sb.WriteString(" + ")
			}
			n.child(sb, i, precAdd)
		}
	case OpMul:
		for i := range n.Args {
			if i > 0 {
				sb.WriteByte('*')
			}
			n.child(sb, i, precMul)
		}
	case OpDiv:
		n.child(sb, 0, precMul)
		sb.WriteByte('/')
		n.child(sb, 1, precMul+1)
	case OpPow:
		n.child(sb, 0, precPow+1)
		sb.WriteByte('^')
		n.child(sb, 1, precPow)
	case OpCall:
		sb.WriteString(n.Name)
		sb.WriteByte('(')
		n.Args[0].write(sb)
		sb.WriteByte(')')
	}
}

// child writes argument i, parenthesized when its precedence is below min.
func (n *Node) child(sb *strings.Builder, i, min int) {
	a := n.Args[i]
	if a.prec() < min {
		sb.WriteByte('(')
		a.write(sb)
		sb.WriteByte(')')
		return
	}
	a.write(sb)
}

func formatNum(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "infinity"
	case math.IsInf(v, -1):
		return "-infinity"
	case math.IsNaN(v):
		return "NaN"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
