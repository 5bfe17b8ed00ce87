// Package value provides the ordered document tree that docpatch diffs and
// patches.
//
// A Value is a tagged union. Documents keep their keys in insertion order,
// which matters for iteration and rendering but not for equality. Scalars
// are compared structurally and by kind: Int32(1), Int64(1) and Double(1)
// are three different values.
package value

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	NullKind Kind = iota
	BoolKind
	Int32Kind
	Int64Kind
	DoubleKind
	StringKind
	BinaryKind
	DateTimeKind
	CodeWithScopeKind
	DocumentKind
	ArrayKind
)

var kindNames = [...]string{
	NullKind:          "null",
	BoolKind:          "bool",
	Int32Kind:         "int32",
	Int64Kind:         "int64",
	DoubleKind:        "double",
	StringKind:        "string",
	BinaryKind:        "binary",
	DateTimeKind:      "datetime",
	CodeWithScopeKind: "code-with-scope",
	DocumentKind:      "document",
	ArrayKind:         "array",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

var (
	// ErrKind is returned when a container primitive is used on the wrong kind.
	ErrKind = errors.New("wrong value kind")
	// ErrIndex is returned for array positions outside the valid range.
	ErrIndex = errors.New("array index out of range")
)

// Field is one key/value entry of a document.
type Field struct {
	Key   string
	Value *Value
}

// Value is a node of a document tree.
type Value struct {
	Kind Kind

	Fields []Field
	Items  []*Value

	Bool    bool
	Int     int64 // Int32, Int64 and DateTime (milliseconds since epoch)
	Double  float64
	Str     string // String, and code for CodeWithScope
	Subtype byte
	Data    []byte
	Scope   *Value
}

func Null() *Value            { return &Value{Kind: NullKind} }
func Bool(b bool) *Value      { return &Value{Kind: BoolKind, Bool: b} }
func Int32(i int32) *Value    { return &Value{Kind: Int32Kind, Int: int64(i)} }
func Int64(i int64) *Value    { return &Value{Kind: Int64Kind, Int: i} }
func Double(f float64) *Value { return &Value{Kind: DoubleKind, Double: f} }
func String(s string) *Value  { return &Value{Kind: StringKind, Str: s} }

// Binary returns a binary blob. data is retained, not copied.
func Binary(subtype byte, data []byte) *Value {
	return &Value{Kind: BinaryKind, Subtype: subtype, Data: data}
}

// DateTime returns a UTC datetime given in milliseconds since the epoch.
func DateTime(ms int64) *Value { return &Value{Kind: DateTimeKind, Int: ms} }

// CodeWithScope returns a code scalar bound to a scope document.
func CodeWithScope(code string, scope *Value) *Value {
	if scope == nil {
		scope = Doc()
	}
	return &Value{Kind: CodeWithScopeKind, Str: code, Scope: scope}
}

// F is shorthand for a Field.
func F(key string, v *Value) Field { return Field{Key: key, Value: v} }

// Doc builds a document from fields. Later duplicates of a key overwrite
// earlier ones in place.
func Doc(fields ...Field) *Value {
	d := &Value{Kind: DocumentKind, Fields: make([]Field, 0, len(fields))}
	for _, f := range fields {
		d.Put(f.Key, f.Value)
	}
	return d
}

// Arr builds an array.
func Arr(items ...*Value) *Value {
	if items == nil {
		items = []*Value{}
	}
	return &Value{Kind: ArrayKind, Items: items}
}

func (v *Value) IsDocument() bool { return v != nil && v.Kind == DocumentKind }
func (v *Value) IsArray() bool    { return v != nil && v.Kind == ArrayKind }

// IsContainer reports whether v is a document or an array.
func (v *Value) IsContainer() bool { return v.IsDocument() || v.IsArray() }

// Len returns the number of fields of a document or items of an array.
func (v *Value) Len() int {
	switch v.Kind {
	case DocumentKind:
		return len(v.Fields)
	case ArrayKind:
		return len(v.Items)
	}
	return 0
}

func (v *Value) fieldIndex(key string) int {
	for i := range v.Fields {
		if v.Fields[i].Key == key {
			return i
		}
	}
	return -1
}

// Get returns the value stored under key.
func (v *Value) Get(key string) (*Value, bool) {
	if v.Kind != DocumentKind {
		return nil, false
	}
	if i := v.fieldIndex(key); i >= 0 {
		return v.Fields[i].Value, true
	}
	return nil, false
}

// Has reports whether the document has key.
func (v *Value) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Keys returns the document keys in order.
func (v *Value) Keys() []string {
	keys := make([]string, len(v.Fields))
	for i := range v.Fields {
		keys[i] = v.Fields[i].Key
	}
	return keys
}

// Put stores x under key. An existing key keeps its position.
func (v *Value) Put(key string, x *Value) error {
	if v.Kind != DocumentKind {
		return fmt.Errorf("%w: put %q on %s", ErrKind, key, v.Kind)
	}
	if i := v.fieldIndex(key); i >= 0 {
		v.Fields[i].Value = x
		return nil
	}
	v.Fields = append(v.Fields, Field{Key: key, Value: x})
	return nil
}

// Delete removes key and reports whether it was present.
func (v *Value) Delete(key string) bool {
	if v.Kind != DocumentKind {
		return false
	}
	i := v.fieldIndex(key)
	if i < 0 {
		return false
	}
	v.Fields = append(v.Fields[:i], v.Fields[i+1:]...)
	return true
}

// Index returns the i'th array item.
func (v *Value) Index(i int) (*Value, bool) {
	if v.Kind != ArrayKind || i < 0 || i >= len(v.Items) {
		return nil, false
	}
	return v.Items[i], true
}

// Insert places x at position i, shifting later items right. i may equal Len.
func (v *Value) Insert(i int, x *Value) error {
	if v.Kind != ArrayKind {
		return fmt.Errorf("%w: insert on %s", ErrKind, v.Kind)
	}
	if i < 0 || i > len(v.Items) {
		return fmt.Errorf("%w: insert at %d, length %d", ErrIndex, i, len(v.Items))
	}
	v.Items = append(v.Items, nil)
	copy(v.Items[i+1:], v.Items[i:])
	v.Items[i] = x
	return nil
}

// Append adds x after the last item.
func (v *Value) Append(x *Value) error {
	if v.Kind != ArrayKind {
		return fmt.Errorf("%w: append on %s", ErrKind, v.Kind)
	}
	v.Items = append(v.Items, x)
	return nil
}

// Set overwrites the item at i.
func (v *Value) Set(i int, x *Value) error {
	if v.Kind != ArrayKind {
		return fmt.Errorf("%w: set on %s", ErrKind, v.Kind)
	}
	if i < 0 || i >= len(v.Items) {
		return fmt.Errorf("%w: set at %d, length %d", ErrIndex, i, len(v.Items))
	}
	v.Items[i] = x
	return nil
}

// RemoveAt deletes the item at i, shifting later items left.
func (v *Value) RemoveAt(i int) (*Value, error) {
	if v.Kind != ArrayKind {
		return nil, fmt.Errorf("%w: remove on %s", ErrKind, v.Kind)
	}
	if i < 0 || i >= len(v.Items) {
		return nil, fmt.Errorf("%w: remove at %d, length %d", ErrIndex, i, len(v.Items))
	}
	x := v.Items[i]
	copy(v.Items[i:], v.Items[i+1:])
	v.Items[len(v.Items)-1] = nil
	v.Items = v.Items[:len(v.Items)-1]
	return x, nil
}

// Short renders v for error messages: containers collapse to "object" or
// "array", simple scalars print literally.
func (v *Value) Short() string {
	if v == nil {
		return "null"
	}
	switch v.Kind {
	case NullKind:
		return "null"
	case ArrayKind:
		return "array"
	case DocumentKind:
		return "object"
	case BoolKind:
		return strconv.FormatBool(v.Bool)
	case Int32Kind, Int64Kind:
		return strconv.FormatInt(v.Int, 10)
	case DoubleKind:
		return formatDouble(v.Double)
	}
	b, err := MarshalJSON(v)
	if err != nil {
		return "value " + v.Kind.String()
	}
	return "value " + string(b)
}

// String renders v as JSON.
func (v *Value) String() string {
	b, err := MarshalJSON(v)
	if err != nil {
		return fmt.Sprintf("<%s: %v>", v.Kind, err)
	}
	return string(b)
}

func formatDouble(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '.', 'e', 'E':
			return s
		}
	}
	return s + ".0"
}
