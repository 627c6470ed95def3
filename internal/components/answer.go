package components

import (
	"fmt"
	"math"

	"github.com/specialistvlad/reactidoc/internal/answer"
	"github.com/specialistvlad/reactidoc/internal/statevar"
	"github.com/specialistvlad/reactidoc/internal/topologystore"
	"github.com/specialistvlad/reactidoc/internal/value"
	"github.com/zclconf/go-cty/cty"
)

// comparisonFragment holds the options an award inherits from its answer
// unless it sets them itself.
var comparisonFragment = statevar.Fragment{
	boolOption("matchPartial", "match_partial"),
	boolOption("unorderedCompare", "unordered_compare"),
	numberOption("tolerance", "tolerance", answer.DefaultTolerance),
	numberOption("absoluteTolerance", "absolute_tolerance", 0),
}

func boolOption(name, attr string) *statevar.Def {
	return &statevar.Def{
		Name:   name,
		Type:   cty.Bool,
		Hidden: true,
		Define: func(r statevar.Reader) cty.Value {
			if v, ok := r.Attr(attr); ok {
				b, _ := value.AsBool(v)
				return cty.BoolVal(b)
			}
			if parent, ok := parentAnswer(r); ok {
				return r.ReadOf(parent.ID, name)
			}
			return cty.False
		},
	}
}

func numberOption(name, attr string, def float64) *statevar.Def {
	return &statevar.Def{
		Name:   name,
		Type:   cty.Number,
		Hidden: true,
		Define: func(r statevar.Reader) cty.Value {
			if v, ok := r.Attr(attr); ok {
				return value.ToNumber(v)
			}
			if parent, ok := parentAnswer(r); ok {
				return r.ReadOf(parent.ID, name)
			}
			return value.Number(def)
		},
	}
}

// parentAnswer returns the answer an award belongs to. An answer has no
// parent answer, so its options come from its own attributes.
func parentAnswer(r statevar.Reader) (*topologystore.Component, bool) {
	self := r.Self()
	if self.Type != TypeAward {
		return nil, false
	}
	p, ok := r.Component(self.Parent)
	if !ok || p.Type != TypeAnswer {
		return nil, false
	}
	return p, true
}

func options(r statevar.Reader) answer.Options {
	opts := answer.Options{Tolerance: value.AsFloat(r.Read("tolerance"))}
	opts.MatchPartial, _ = value.AsBool(r.Read("matchPartial"))
	opts.Unordered, _ = value.AsBool(r.Read("unorderedCompare"))
	if !finite(opts.Tolerance) || opts.Tolerance < 0 {
		opts.Tolerance = answer.DefaultTolerance
	}
	if abs := value.AsFloat(r.Read("absoluteTolerance")); finite(abs) && abs > 0 {
		opts.AbsoluteTolerance = abs
	}
	return opts
}

func answerType() *statevar.Type {
	t := statevar.NewType(TypeAnswer, labelFragment, hiddenFragment, comparisonFragment, statevar.Fragment{
		{
			Name: "weight",
			Type: cty.Number,
			Define: func(r statevar.Reader) cty.Value {
				return value.Number(attrNumber(r, "weight", 1))
			},
		},
		{
			// currentResponses lists the values the answer would submit: the
			// "responses" attribute, or the value of every input inside it.
			Name: "currentResponses",
			Type: cty.DynamicPseudoType,
			Define: func(r statevar.Reader) cty.Value {
				if v, ok := r.Attr("responses"); ok {
					if value.IsSequence(v) {
						return v
					}
					return value.Tuple(v)
				}
				var out []cty.Value
				for _, in := range descendants(r, r.Self().ID, func(c *topologystore.Component) bool { return inputTypes[c.Type] }) {
					out = append(out, r.ReadOf(in.ID, "value"))
				}
				return value.Tuple(out...)
			},
			Placeholder: cty.EmptyTupleVal,
		},
		{
			Name: "creditAchievedIfSubmit",
			Type: cty.Number,
			Define: func(r statevar.Reader) cty.Value {
				best := 0.0
				for _, a := range awards(r) {
					if c := value.AsFloat(r.ReadOf(a.ID, "value")); c > best {
						best = c
					}
				}
				return value.Number(best)
			},
		},
		{
			Name:      "creditAchieved",
			Type:      cty.Number,
			Essential: true,
			Define:    func(statevar.Reader) cty.Value { return cty.Zero },
		},
		{
			Name:        "submittedResponses",
			Type:        cty.DynamicPseudoType,
			Essential:   true,
			Define:      func(statevar.Reader) cty.Value { return cty.EmptyTupleVal },
			Placeholder: cty.EmptyTupleVal,
		},
		{
			Name:      "numSubmissions",
			Type:      cty.Number,
			Essential: true,
			Define:    func(statevar.Reader) cty.Value { return cty.Zero },
		},
		{
			// justSubmitted holds while the responses are the ones submitted.
			Name: "justSubmitted",
			Type: cty.Bool,
			Define: func(r statevar.Reader) cty.Value {
				n, _ := value.AsInt(r.Read("numSubmissions"))
				return cty.BoolVal(n > 0 && value.Equal(r.Read("currentResponses"), r.Read("submittedResponses")))
			},
		},
	})
	t = withDefault(t, "creditAchieved")
	return t.
		WithAction("submitAnswer", submitAnswer).
		WithAction("resetAnswer", resetAnswer)
}

func awards(r statevar.Reader) []*topologystore.Component {
	return descendants(r, r.Self().ID, func(c *topologystore.Component) bool {
		return c.Type == TypeAward
	})
}

// submitAnswer records the current responses and their credit. Submitting
// unchanged responses again does not count as a new submission.
func submitAnswer(w statevar.Writer, _ cty.Value) error {
	again, _ := value.AsBool(w.Read("justSubmitted"))
	w.Set("creditAchieved", value.ToNumber(w.Read("creditAchievedIfSubmit")))
	w.Set("submittedResponses", w.Read("currentResponses"))
	if !again {
		n, _ := value.AsInt(w.Read("numSubmissions"))
		w.Set("numSubmissions", cty.NumberIntVal(int64(n+1)))
	}
	return nil
}

func resetAnswer(w statevar.Writer, _ cty.Value) error {
	for _, name := range []string{"creditAchieved", "submittedResponses", "numSubmissions"} {
		w.Reset(name)
	}
	return nil
}

func awardType() *statevar.Type {
	return statevar.NewType(TypeAward, comparisonFragment, statevar.Fragment{
		{
			Name: "credit",
			Type: cty.Number,
			Define: func(r statevar.Reader) cty.Value {
				c := attrNumber(r, "credit", 1)
				if math.IsNaN(c) {
					c = 0
				}
				return value.Number(math.Min(math.Max(c, 0), 1))
			},
		},
		{
			// fractionSatisfied is the degree to which the condition holds,
			// or to which the responses match the target.
			Name: "fractionSatisfied",
			Type: cty.Number,
			Define: func(r statevar.Reader) cty.Value {
				opts := options(r)
				if expr, ok := r.Expr("condition"); ok {
					return value.Number(answer.Evaluate(expr, r.Eval, opts))
				}
				target, ok := r.Attr("target")
				if !ok {
					configWarning(r, "Award without condition", "An award needs a \"condition\" or a \"target\"; it never grants credit.")
					return cty.Zero
				}
				parent, ok := parentAnswer(r)
				if !ok {
					configWarning(r, "Award outside answer", fmt.Sprintf("Award %s compares against responses but is not inside an answer.", r.Self().Addr.String()))
					return cty.Zero
				}
				responses := value.Elements(r.ReadOf(parent.ID, "currentResponses"))
				var response cty.Value
				switch len(responses) {
				case 0:
					return cty.Zero
				case 1:
					response = responses[0]
				default:
					response = value.Tuple(responses...)
				}
				return value.Number(answer.Fraction(response, target, opts))
			},
		},
		{
			Name: "conditionSatisfied",
			Type: cty.Bool,
			Define: func(r statevar.Reader) cty.Value {
				return cty.BoolVal(value.AsFloat(r.Read("fractionSatisfied")) >= 1)
			},
		},
		{
			Name: "value",
			Type: cty.Number,
			Define: func(r statevar.Reader) cty.Value {
				partial, _ := value.AsBool(r.Read("matchPartial"))
				return value.Number(answer.Credit(value.AsFloat(r.Read("fractionSatisfied")), value.AsFloat(r.Read("credit")), partial))
			},
		},
	})
}
