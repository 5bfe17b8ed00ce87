package value

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ParseJSON decodes a single JSON text into a Value, keeping key order.
//
// Integral numbers within the int32 range become Int32, wider integers
// Int64, anything with a fraction or exponent Double. Extended wrappers
// ({"$numberLong": ...}, {"$binary": ...}, ...) produced by MarshalJSON are
// recognized so every kind survives a round trip.
func ParseJSON(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeJSON(dec)
	if err != nil {
		return nil, fmt.Errorf("value: invalid JSON: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("value: invalid JSON: trailing data after top-level value")
	}
	return v, nil
}

// DecodeJSON reads the next JSON text from dec. dec must have UseNumber set.
func DecodeJSON(dec *json.Decoder) (*Value, error) {
	return decodeJSON(dec)
}

func decodeJSON(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case string:
		return String(t), nil
	case json.Number:
		return numberValue(string(t))
	case float64:
		return Double(t), nil
	case json.Delim:
		switch t {
		case '{':
			d := Doc()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", kt)
				}
				child, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				d.Put(key, child)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return fromExtended(d)
		case '[':
			a := Arr()
			for dec.More() {
				child, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				a.Items = append(a.Items, child)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return a, nil
		}
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

func numberValue(s string) (*Value, error) {
	if strings.ContainsAny(s, ".eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q: %w", s, err)
		}
		return Double(f), nil
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return nil, fmt.Errorf("bad number %q: %w", s, err)
		}
		return Double(f), nil
	}
	if i >= math.MinInt32 && i <= math.MaxInt32 {
		return Int32(int32(i)), nil
	}
	return Int64(i), nil
}

// fromExtended converts a freshly decoded document holding an extended
// wrapper into the kind it stands for. Other documents are returned as is.
func fromExtended(d *Value) (*Value, error) {
	if len(d.Fields) == 0 || len(d.Fields) > 2 || !strings.HasPrefix(d.Fields[0].Key, "$") {
		return d, nil
	}
	if len(d.Fields) == 2 {
		code, okc := d.Get("$code")
		scope, oks := d.Get("$scope")
		if okc && oks && code.Kind == StringKind && scope.Kind == DocumentKind {
			return CodeWithScope(code.Str, scope), nil
		}
		return d, nil
	}
	f := d.Fields[0]
	switch f.Key {
	case "$numberLong":
		if f.Value.Kind != StringKind {
			return d, nil
		}
		i, err := strconv.ParseInt(f.Value.Str, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad $numberLong %q: %w", f.Value.Str, err)
		}
		return Int64(i), nil
	case "$numberInt":
		if f.Value.Kind != StringKind {
			return d, nil
		}
		i, err := strconv.ParseInt(f.Value.Str, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("bad $numberInt %q: %w", f.Value.Str, err)
		}
		return Int32(int32(i)), nil
	case "$numberDouble":
		if f.Value.Kind != StringKind {
			return d, nil
		}
		x, err := parseDouble(f.Value.Str)
		if err != nil {
			return nil, err
		}
		return Double(x), nil
	case "$binary":
		b := f.Value
		enc, ok1 := b.Get("base64")
		sub, ok2 := b.Get("subType")
		if !ok1 || !ok2 || enc.Kind != StringKind || sub.Kind != StringKind || b.Len() != 2 {
			return d, nil
		}
		data, err := base64.StdEncoding.DecodeString(enc.Str)
		if err != nil {
			return nil, fmt.Errorf("bad $binary payload: %w", err)
		}
		st, err := strconv.ParseUint(sub.Str, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("bad $binary subType %q", sub.Str)
		}
		return Binary(byte(st), data), nil
	case "$date":
		switch f.Value.Kind {
		case Int64Kind, Int32Kind:
			return DateTime(f.Value.Int), nil
		}
	}
	return d, nil
}

func parseDouble(s string) (float64, error) {
	switch s {
	case "NaN":
		return math.NaN(), nil
	case "Infinity":
		return math.Inf(1), nil
	case "-Infinity":
		return math.Inf(-1), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad $numberDouble %q: %w", s, err)
	}
	return f, nil
}

// MarshalJSON renders v as compact JSON in document key order.
func MarshalJSON(v *Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalJSONIndent is like MarshalJSON but indents the output.
func MarshalJSONIndent(v *Value, prefix, indent string) ([]byte, error) {
	b, err := MarshalJSON(v)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, b, prefix, indent); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func writeString(buf *bytes.Buffer, s string) {
	b, _ := json.Marshal(s)
	buf.Write(b)
}

func writeJSON(buf *bytes.Buffer, v *Value) error {
	if v == nil {
		buf.WriteString("null")
		return nil
	}
	switch v.Kind {
	case NullKind:
		buf.WriteString("null")
	case BoolKind:
		buf.WriteString(strconv.FormatBool(v.Bool))
	case Int32Kind:
		buf.WriteString(strconv.FormatInt(v.Int, 10))
	case Int64Kind:
		if v.Int >= math.MinInt32 && v.Int <= math.MaxInt32 {
			buf.WriteString(`{"$numberLong":"`)
			buf.WriteString(strconv.FormatInt(v.Int, 10))
			buf.WriteString(`"}`)
		} else {
			buf.WriteString(strconv.FormatInt(v.Int, 10))
		}
	case DoubleKind:
		if math.IsNaN(v.Double) || math.IsInf(v.Double, 0) {
			buf.WriteString(`{"$numberDouble":"`)
			buf.WriteString(formatDouble(v.Double))
			buf.WriteString(`"}`)
		} else {
			buf.WriteString(formatDouble(v.Double))
		}
	case StringKind:
		writeString(buf, v.Str)
	case BinaryKind:
		fmt.Fprintf(buf, `{"$binary":{"base64":"%s","subType":"%02x"}}`,
			base64.StdEncoding.EncodeToString(v.Data), v.Subtype)
	case DateTimeKind:
		fmt.Fprintf(buf, `{"$date":{"$numberLong":"%d"}}`, v.Int)
	case CodeWithScopeKind:
		buf.WriteString(`{"$code":`)
		writeString(buf, v.Str)
		buf.WriteString(`,"$scope":`)
		if err := writeJSON(buf, v.Scope); err != nil {
			return err
		}
		buf.WriteByte('}')
	case DocumentKind:
		buf.WriteByte('{')
		for i, f := range v.Fields {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(buf, f.Key)
			buf.WriteByte(':')
			if err := writeJSON(buf, f.Value); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case ArrayKind:
		buf.WriteByte('[')
		for i, it := range v.Items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, it); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	default:
		return fmt.Errorf("value: cannot encode %s", v.Kind)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (v *Value) MarshalJSON() ([]byte, error) {
	return MarshalJSON(v)
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	x, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*v = *x
	return nil
}
