package mathexpr

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// functions lists the names that parse as calls when followed by '('.
var functions = map[string]func(float64) float64{
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"asin":  math.Asin,
	"acos":  math.Acos,
	"atan":  math.Atan,
	"exp":   math.Exp,
	"log":   math.Log,
	"ln":    math.Log,
	"log10": math.Log10,
	"sqrt":  math.Sqrt,
	"abs":   math.Abs,
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNum
	tokIdent
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

// SyntaxError reports where a parse failed.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("math syntax error at offset %d: %s", e.Pos, e.Msg)
}

func tokenize(src string) ([]token, error) {
	var toks []token
	rs := []rune(src)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || (r == '.' && i+1 < len(rs) && unicode.IsDigit(rs[i+1])):
			start := i
			for i < len(rs) && (unicode.IsDigit(rs[i]) || rs[i] == '.') {
				i++
			}
			text := string(rs[start:i])
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, &SyntaxError{Pos: start, Msg: fmt.Sprintf("bad number %q", text)}
			}
			toks = append(toks, token{kind: tokNum, text: text, num: v, pos: start})
		case unicode.IsLetter(r):
			start := i
			for i < len(rs) && (unicode.IsLetter(rs[i]) || unicode.IsDigit(rs[i]) || rs[i] == '_') {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: string(rs[start:i]), pos: start})
		case strings.ContainsRune("+-*/^", r):
			toks = append(toks, token{kind: tokOp, text: string(r), pos: i})
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		default:
			return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", r)}
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(rs)}), nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isOp(op string) bool {
	t := p.peek()
	return t.kind == tokOp && t.text == op
}

// Parse turns text such as "2x^2 - 3(x+1)/y" into an expression tree.
// Implicit multiplication is supported between adjacent factors.
func Parse(src string) (*Node, error) {
	if strings.TrimSpace(src) == "" {
		return Undefined, nil
	}
	toks, err := tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	n, err := p.sum()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
	}
	return n, nil
}

// MustParse is Parse for known-good literals; it panics on error.
func MustParse(src string) *Node {
	n, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return n
}

// ParseOrUndefined never fails; unparsable text becomes the undefined marker.
func ParseOrUndefined(src string) *Node {
	n, err := Parse(src)
	if err != nil {
		return Undefined
	}
	return n
}

func (p *parser) sum() (*Node, error) {
	first, err := p.product()
	if err != nil {
		return nil, err
	}
	terms := []*Node{first}
	for p.isOp("+") || p.isOp("-") {
		op := p.next().text
		t, err := p.product()
		if err != nil {
			return nil, err
		}
		if op == "-" {
			t = Neg(t)
		}
		terms = append(terms, t)
	}
	if len(terms) == 1 {
		return first, nil
	}
	return Add(terms...), nil
}

func (p *parser) startsFactor() bool {
	switch p.peek().kind {
	case tokNum, tokIdent, tokLParen:
		return true
	}
	return false
}

func (p *parser) product() (*Node, error) {
	acc, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.isOp("*"):
			p.next()
			rhs, err := p.unary()
			if err != nil {
				return nil, err
			}
			acc = appendFactor(acc, rhs)
		case p.isOp("/"):
			p.next()
			rhs, err := p.unary()
			if err != nil {
				return nil, err
			}
			acc = Div(acc, rhs)
		case p.startsFactor():
			rhs, err := p.power()
			if err != nil {
				return nil, err
			}
			acc = appendFactor(acc, rhs)
		default:
			return acc, nil
		}
	}
}

func appendFactor(acc, rhs *Node) *Node {
	if acc.Op == OpMul {
		return Mul(append(append([]*Node{}, acc.Args...), rhs)...)
	}
	return Mul(acc, rhs)
}

func (p *parser) unary() (*Node, error) {
	if p.isOp("-") {
		p.next()
		n, err := p.unary()
		if err != nil {
			return nil, err
		}
		return Neg(n), nil
	}
	if p.isOp("+") {
		p.next()
		return p.unary()
	}
	return p.power()
}

func (p *parser) power() (*Node, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if p.isOp("^") {
		p.next()
		exp, err := p.unary()
		if err != nil {
			return nil, err
		}
		return Pow(base, exp), nil
	}
	return base, nil
}

func (p *parser) primary() (*Node, error) {
	t := p.next()
	switch t.kind {
	case tokNum:
		return Num(t.num), nil
	case tokIdent:
		name := t.text
		if name == "infinity" || name == "inf" {
			return Num(math.Inf(1)), nil
		}
		if _, isFunc := functions[name]; isFunc && p.peek().kind == tokLParen {
			p.next()
			arg, err := p.sum()
			if err != nil {
				return nil, err
			}
			if p.peek().kind != tokRParen {
				return nil, &SyntaxError{Pos: p.peek().pos, Msg: "missing ')'"}
			}
			p.next()
			return Call(name, arg), nil
		}
		return Var(name), nil
	case tokLParen:
		n, err := p.sum()
		if err != nil {
			return nil, err
		}
		if p.peek().kind != tokRParen {
			return nil, &SyntaxError{Pos: p.peek().pos, Msg: "missing ')'"}
		}
		p.next()
		return n, nil
	case tokEOF:
		return nil, &SyntaxError{Pos: t.pos, Msg: "unexpected end of input"}
	}
	return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
}
