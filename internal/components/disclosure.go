package components

import (
	"github.com/specialistvlad/reactidoc/internal/statevar"
	"github.com/zclconf/go-cty/cty"
)

func disclosureType() *statevar.Type {
	t := statevar.NewType(TypeDisclosure, labelFragment, hiddenFragment, statevar.Fragment{{
		Name:      "open",
		Type:      cty.Bool,
		Essential: true,
		Define: func(r statevar.Reader) cty.Value {
			return cty.BoolVal(attrBool(r, "open", false))
		},
	}})
	return withDefault(t, "open").
		WithAction("open", func(w statevar.Writer, _ cty.Value) error {
			w.Set("open", cty.True)
			return nil
		}).
		WithAction("close", func(w statevar.Writer, _ cty.Value) error {
			w.Set("open", cty.False)
			return nil
		})
}
