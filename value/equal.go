package value

import (
	"bytes"
	"math"
)

// Equal reports whether a and b are deeply equal. Documents are compared as
// key sets; arrays positionally. Doubles compare by bit pattern, so NaN
// equals itself and 0.0 differs from -0.0.
func (a *Value) Equal(b *Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a == b {
		return true
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case NullKind:
		return true
	case BoolKind:
		return a.Bool == b.Bool
	case Int32Kind, Int64Kind, DateTimeKind:
		return a.Int == b.Int
	case DoubleKind:
		return math.Float64bits(a.Double) == math.Float64bits(b.Double)
	case StringKind:
		return a.Str == b.Str
	case BinaryKind:
		return a.Subtype == b.Subtype && bytes.Equal(a.Data, b.Data)
	case CodeWithScopeKind:
		return a.Str == b.Str && a.Scope.Equal(b.Scope)
	case ArrayKind:
		if len(a.Items) != len(b.Items) {
			return false
		}
		for i := range a.Items {
			if !a.Items[i].Equal(b.Items[i]) {
				return false
			}
		}
		return true
	case DocumentKind:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for _, f := range a.Fields {
			o, ok := b.Get(f.Key)
			if !ok || !f.Value.Equal(o) {
				return false
			}
		}
		return true
	}
	return false
}

// Clone returns a deep copy of v. Binary payloads and scopes are copied too.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	res := &Value{}
	return v.CloneTo(res)
}

// CloneTo deep copies v into dst and returns dst.
func (v *Value) CloneTo(dst *Value) *Value {
	*dst = Value{
		Kind:    v.Kind,
		Bool:    v.Bool,
		Int:     v.Int,
		Double:  v.Double,
		Str:     v.Str,
		Subtype: v.Subtype,
	}
	if v.Data != nil {
		dst.Data = append([]byte(nil), v.Data...)
	}
	if v.Scope != nil {
		dst.Scope = v.Scope.Clone()
	}
	switch v.Kind {
	case DocumentKind:
		dst.Fields = make([]Field, len(v.Fields))
		for i, f := range v.Fields {
			dst.Fields[i] = Field{Key: f.Key, Value: f.Value.Clone()}
		}
	case ArrayKind:
		dst.Items = make([]*Value, len(v.Items))
		for i, it := range v.Items {
			dst.Items[i] = it.Clone()
		}
	}
	return dst
}
