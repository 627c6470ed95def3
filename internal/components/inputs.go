package components

import (
	"fmt"

	"github.com/specialistvlad/reactidoc/internal/mathexpr"
	"github.com/specialistvlad/reactidoc/internal/statevar"
	"github.com/specialistvlad/reactidoc/internal/value"
	"github.com/zclconf/go-cty/cty"
)

// inputTypes are the components an answer collects responses from when it
// does not name them.
var inputTypes = map[string]bool{
	TypeMathInput:    true,
	TypeTextInput:    true,
	TypeBooleanInput: true,
	TypeMatrixInput:  true,
}

// inputType builds an input whose essential value starts from "prefill"
// and is replaced by the updateValue action.
func inputType(name string, ty cty.Type, prefill func(statevar.Reader) cty.Value, convert func(cty.Value) cty.Value, extra ...statevar.Fragment) *statevar.Type {
	fragments := append([]statevar.Fragment{labelFragment, hiddenFragment}, extra...)
	t := statevar.NewType(name, append(fragments, statevar.Fragment{{
		Name:      "value",
		Type:      ty,
		Essential: true,
		Define:    prefill,
	}})...)
	return t.WithAction("updateValue", func(w statevar.Writer, args cty.Value) error {
		if args == cty.NilVal || !args.IsKnown() {
			return fmt.Errorf("updateValue needs a value")
		}
		w.Set("value", convert(args))
		return nil
	})
}

func mathInputType() *statevar.Type {
	return inputType(TypeMathInput, value.MathType,
		func(r statevar.Reader) cty.Value {
			return value.Math(value.AsMath(r.AttrOr("prefill", cty.NullVal(cty.String))))
		},
		func(v cty.Value) cty.Value { return value.Math(value.AsMath(v)) },
		mathFragment,
	)
}

func textInputType() *statevar.Type {
	toText := func(v cty.Value) cty.Value {
		s := value.ToString(v)
		if s.IsNull() {
			return cty.StringVal("")
		}
		return s
	}
	return inputType(TypeTextInput, cty.String,
		func(r statevar.Reader) cty.Value {
			return toText(r.AttrOr("prefill", cty.StringVal("")))
		},
		toText,
	)
}

func booleanInputType() *statevar.Type {
	toBool := func(v cty.Value) cty.Value {
		b, _ := value.AsBool(v)
		return cty.BoolVal(b)
	}
	return inputType(TypeBooleanInput, cty.Bool,
		func(r statevar.Reader) cty.Value {
			return toBool(r.AttrOr("prefill", cty.False))
		},
		toBool,
	)
}

// matrixStride separates rows in the flat cell index of a matrix input, so
// that resizing never renumbers the cells that remain.
const matrixStride = 100

func matrixInputType() *statevar.Type {
	dim := func(name, attr string) *statevar.Def {
		return &statevar.Def{
			Name:      name,
			Type:      cty.Number,
			Essential: true,
			Define: func(r statevar.Reader) cty.Value {
				return cty.NumberIntVal(int64(min(clampCount(attrInt(r, attr, 1)), matrixStride-1)))
			},
		}
	}
	size := func(r statevar.Reader) (rows, cols int) {
		rows, _ = value.AsInt(r.Read("numRows"))
		cols, _ = value.AsInt(r.Read("numColumns"))
		return clampCount(rows), min(clampCount(cols), matrixStride-1)
	}

	t := statevar.NewType(TypeMatrixInput, labelFragment, hiddenFragment, statevar.Fragment{
		dim("numRows", "num_rows"),
		dim("numColumns", "num_columns"),
		{
			// cells holds one entry per row and column at row*matrixStride+column.
			// Its whole value is the matrix of the current size.
			Name:      "cells",
			Shape:     statevar.Array,
			Type:      value.MathType,
			Essential: true,
			Hidden:    true,
			Size: func(r statevar.Reader) int {
				rows, _ := size(r)
				return rows * matrixStride
			},
			Element: func(r statevar.Reader, i int) cty.Value {
				row, col := i/matrixStride, i%matrixStride
				prefill := value.Elements(r.AttrOr("prefill", cty.EmptyTupleVal))
				if row < len(prefill) {
					if entries := value.Elements(prefill[row]); col < len(entries) {
						return value.Math(value.AsMath(entries[col]))
					}
				}
				return value.Math(mathexpr.Undefined)
			},
			Define: func(r statevar.Reader) cty.Value {
				rows, cols := size(r)
				out := make([]cty.Value, rows)
				for i := range out {
					entries := make([]cty.Value, cols)
					for j := range entries {
						entries[j] = r.ReadIndex(r.Self().ID, "cells", i*matrixStride+j)
					}
					out[i] = value.Tuple(entries...)
				}
				return value.Tuple(out...)
			},
			Placeholder: cty.EmptyTupleVal,
		},
		{
			Name: "value",
			Type: cty.DynamicPseudoType,
			Define: func(r statevar.Reader) cty.Value {
				return r.Read("cells")
			},
			Placeholder: cty.EmptyTupleVal,
		},
	})
	return t.
		WithAction("updateEntry", updateEntry).
		WithAction("updateSize", updateSize)
}

// updateEntry writes one cell. args: {row, column, value}.
func updateEntry(w statevar.Writer, args cty.Value) error {
	if args.IsNull() || !args.Type().IsObjectType() {
		return fmt.Errorf("updateEntry expects an object with row, column and value")
	}
	for _, attr := range []string{"row", "column", "value"} {
		if !args.Type().HasAttribute(attr) {
			return fmt.Errorf("updateEntry is missing %q", attr)
		}
	}
	row, okRow := value.AsInt(args.GetAttr("row"))
	col, okCol := value.AsInt(args.GetAttr("column"))
	rows, _ := value.AsInt(w.Read("numRows"))
	cols, _ := value.AsInt(w.Read("numColumns"))
	if !okRow || !okCol || row < 0 || col < 0 || row >= rows || col >= cols {
		return fmt.Errorf("entry (%d, %d) is outside the %dx%d matrix", row, col, rows, cols)
	}
	w.SetIndex("cells", row*matrixStride+col, value.Math(value.AsMath(args.GetAttr("value"))))
	return nil
}

// updateSize changes the number of rows, columns or both. Cells outside
// the new size keep their values for when the matrix grows again.
func updateSize(w statevar.Writer, args cty.Value) error {
	if args.IsNull() || !args.Type().IsObjectType() {
		return fmt.Errorf("updateSize expects an object with numRows, numColumns or both")
	}
	for _, attr := range []string{"numRows", "numColumns"} {
		if !args.Type().HasAttribute(attr) {
			continue
		}
		n, ok := value.AsInt(args.GetAttr(attr))
		if !ok || n < 0 || n >= matrixStride {
			return fmt.Errorf("%s must be between 0 and %d", attr, matrixStride-1)
		}
		w.Set(attr, cty.NumberIntVal(int64(n)))
	}
	return nil
}
