package value

import (
	"fmt"
	"math"
	"sort"
	"time"

	gyaml "github.com/goccy/go-yaml"
)

// FromOrdered converts a plain Go tree into a Value. Documents are given as
// gyaml.MapSlice (order kept) or map[string]any (keys sorted); arrays as
// []any.
func FromOrdered(x any) (*Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case *Value:
		return t.Clone(), nil
	case bool:
		return Bool(t), nil
	case int:
		return intValue(int64(t)), nil
	case int32:
		return Int32(t), nil
	case int64:
		return intValue(t), nil
	case uint64:
		if t > math.MaxInt64 {
			return Double(float64(t)), nil
		}
		return intValue(int64(t)), nil
	case float32:
		return Double(float64(t)), nil
	case float64:
		return Double(t), nil
	case string:
		return String(t), nil
	case []byte:
		return Binary(0, append([]byte(nil), t...)), nil
	case time.Time:
		return DateTime(t.UnixMilli()), nil
	case []any:
		a := Arr()
		for i, e := range t {
			child, err := FromOrdered(e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			a.Items = append(a.Items, child)
		}
		return a, nil
	case gyaml.MapSlice:
		d := Doc()
		for _, it := range t {
			child, err := FromOrdered(it.Value)
			if err != nil {
				return nil, fmt.Errorf("%v: %w", it.Key, err)
			}
			d.Put(fmt.Sprint(it.Key), child)
		}
		return d, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		d := Doc()
		for _, k := range keys {
			child, err := FromOrdered(t[k])
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			d.Put(k, child)
		}
		return d, nil
	}
	return nil, fmt.Errorf("%w: unsupported Go type %T", ErrKind, x)
}

func intValue(i int64) *Value {
	if i >= math.MinInt32 && i <= math.MaxInt32 {
		return Int32(int32(i))
	}
	return Int64(i)
}

// ToOrdered converts v into plain Go values: gyaml.MapSlice for documents,
// []any for arrays, int32/int64/float64/string/bool/nil for scalars,
// []byte for binary and time.Time for datetimes. Code-with-scope becomes a
// two entry MapSlice.
func ToOrdered(v *Value) any {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case BoolKind:
		return v.Bool
	case Int32Kind:
		return int32(v.Int)
	case Int64Kind:
		return v.Int
	case DoubleKind:
		return v.Double
	case StringKind:
		return v.Str
	case BinaryKind:
		return append([]byte(nil), v.Data...)
	case DateTimeKind:
		return time.UnixMilli(v.Int).UTC()
	case CodeWithScopeKind:
		return gyaml.MapSlice{
			{Key: "$code", Value: v.Str},
			{Key: "$scope", Value: ToOrdered(v.Scope)},
		}
	case ArrayKind:
		out := make([]any, 0, len(v.Items))
		for _, it := range v.Items {
			out = append(out, ToOrdered(it))
		}
		return out
	case DocumentKind:
		ms := make(gyaml.MapSlice, 0, len(v.Fields))
		for _, f := range v.Fields {
			ms = append(ms, gyaml.MapItem{Key: f.Key, Value: ToOrdered(f.Value)})
		}
		return ms
	}
	return nil
}

// ParseOrderedYAML decodes YAML through goccy/go-yaml's ordered map mode.
// Empty input and a top-level null yield an empty document.
func ParseOrderedYAML(data []byte) (*Value, error) {
	var x any
	if err := gyaml.UnmarshalWithOptions(data, &x, gyaml.UseOrderedMap()); err != nil {
		return nil, fmt.Errorf("value: invalid YAML: %w", err)
	}
	if x == nil {
		return Doc(), nil
	}
	return FromOrdered(x)
}
