package value

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// FromGo converts decoded JSON or YAML data (maps, slices, scalars) into a
// cty value. The type is inferred from the data itself.
func FromGo(data any) (cty.Value, error) {
	if data == nil {
		return cty.NullVal(cty.DynamicPseudoType), nil
	}
	raw, err := json.Marshal(normalizeYAML(data))
	if err != nil {
		return cty.NilVal, fmt.Errorf("encoding payload: %w", err)
	}
	ty, err := ctyjson.ImpliedType(raw)
	if err != nil {
		return cty.NilVal, fmt.Errorf("inferring payload type: %w", err)
	}
	v, err := ctyjson.Unmarshal(raw, ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("decoding payload: %w", err)
	}
	return v, nil
}

// normalizeYAML rewrites map[any]any, which encoding/json rejects.
func normalizeYAML(data any) any {
	switch d := data.(type) {
	case map[any]any:
		out := make(map[string]any, len(d))
		for k, v := range d {
			out[fmt.Sprint(k)] = normalizeYAML(v)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(d))
		for k, v := range d {
			out[k] = normalizeYAML(v)
		}
		return out
	case []any:
		out := make([]any, len(d))
		for i, v := range d {
			out[i] = normalizeYAML(v)
		}
		return out
	}
	return data
}

// ToGo converts v into plain Go data suitable for YAML or JSON encoding.
// NaN and infinities become strings since neither format has a portable
// spelling for them. Math expressions print as parsed.
func ToGo(v cty.Value) any {
	v = Sanitize(v)
	if v.IsNull() {
		if v.Type() == cty.Number {
			return "NaN"
		}
		return nil
	}
	ty := v.Type()
	switch {
	case IsMath(v):
		return AsMath(v).String()
	case ty == cty.Number:
		f := AsFloat(v)
		if math.IsInf(f, 0) {
			return formatFloat(f, -1)
		}
		return f
	case ty == cty.String:
		return v.AsString()
	case ty == cty.Bool:
		return v.True()
	case ty.IsObjectType() || ty.IsMapType():
		out := map[string]any{}
		for it := v.ElementIterator(); it.Next(); {
			k, e := it.Element()
			out[k.AsString()] = ToGo(e)
		}
		return out
	case IsSequence(v) || ty.IsSetType():
		out := []any{}
		for it := v.ElementIterator(); it.Next(); {
			_, e := it.Element()
			out = append(out, ToGo(e))
		}
		return out
	}
	return fmt.Sprintf("%#v", v)
}

// Display renders v the way a reader would see it: numbers rounded to the
// given significant digits, math in normalized text, NaN spelled out.
func Display(v cty.Value, digits int) cty.Value {
	v = Sanitize(v)
	ty := v.Type()
	switch {
	case v.IsNull():
		if ty == cty.Number {
			return cty.StringVal("NaN")
		}
		return cty.StringVal("")
	case IsMath(v):
		return cty.StringVal(AsMath(v).String())
	case ty == cty.Number:
		return cty.StringVal(formatFloat(AsFloat(v), digits))
	case ty == cty.String:
		return v
	case ty == cty.Bool:
		return cty.StringVal(strconv.FormatBool(v.True()))
	case ty.IsObjectType() || ty.IsMapType():
		attrs := map[string]cty.Value{}
		for it := v.ElementIterator(); it.Next(); {
			k, e := it.Element()
			attrs[k.AsString()] = Display(e, digits)
		}
		return cty.ObjectVal(attrs)
	case IsSequence(v):
		var elems []cty.Value
		for _, e := range Elements(v) {
			elems = append(elems, Display(e, digits))
		}
		return Tuple(elems...)
	}
	return cty.StringVal(fmt.Sprintf("%#v", v))
}

func formatFloat(f float64, digits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "infinity"
	case math.IsInf(f, -1):
		return "-infinity"
	}
	return strconv.FormatFloat(Round(f, digits), 'g', -1, 64)
}

// SortedKeys returns the keys of m in order, for deterministic output.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
