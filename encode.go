package docpatch

import (
	"github.com/yamledit/docpatch/pointer"
	"github.com/yamledit/docpatch/value"
)

// Wire field names.
const (
	fieldOp        = "op"
	fieldPath      = "path"
	fieldFrom      = "from"
	fieldValue     = "value"
	fieldFromValue = "fromValue"
)

// Encode encodes p as an array of operation documents. Payloads are shared
// with p, not copied.
func (p Patch) Encode() *value.Value {
	arr := value.Arr()
	for _, op := range p {
		arr.Items = append(arr.Items, op.Encode())
	}
	return arr
}

// Encode encodes o as an operation document. "op" always comes first;
// move and copy put "from" before "path", replace puts "fromValue" before
// "path".
func (o Operation) Encode() *value.Value {
	d := value.Doc(value.F(fieldOp, value.String(string(o.Op))))
	switch o.Op {
	case Move, Copy:
		d.Put(fieldFrom, value.String(o.From.String()))
		d.Put(fieldPath, value.String(o.Path.String()))
	case Replace:
		if o.SrcValue != nil {
			d.Put(fieldFromValue, o.SrcValue)
		}
		d.Put(fieldPath, value.String(o.Path.String()))
		if o.Value != nil {
			d.Put(fieldValue, o.Value)
		}
	default:
		d.Put(fieldPath, value.String(o.Path.String()))
		if o.Value != nil {
			d.Put(fieldValue, o.Value)
		}
	}
	return d
}

// DecodePatch reads an edit list from its wire form. An add, replace or
// test without "value" decodes with a nil Value; Apply and Validate decide
// whether that is an error.
func DecodePatch(v *value.Value) (Patch, error) {
	if !v.IsArray() {
		return nil, invalidf(-1, "patch must be an array")
	}
	p := make(Patch, 0, len(v.Items))
	for i, it := range v.Items {
		op, err := decodeOperation(i, it)
		if err != nil {
			return nil, err
		}
		p = append(p, op)
	}
	return p, nil
}

func decodeOperation(i int, d *value.Value) (Operation, error) {
	var op Operation
	if !d.IsDocument() {
		return op, invalidf(i, "operation must be an object")
	}
	name, err := stringField(i, d, fieldOp)
	if err != nil {
		return op, err
	}
	if op.Op, err = ParseOp(name); err != nil {
		return op, invalidf(i, "%v", err)
	}
	if op.Path, err = pathField(i, d, fieldPath); err != nil {
		return op, err
	}
	if op.Op.needsFrom() {
		if op.From, err = pathField(i, d, fieldFrom); err != nil {
			return op, err
		}
	}
	if v, ok := d.Get(fieldValue); ok && op.Op != Move && op.Op != Copy {
		op.Value = v
	}
	if v, ok := d.Get(fieldFromValue); ok && op.Op == Replace {
		op.SrcValue = v
	}
	return op, nil
}

func stringField(i int, d *value.Value, name string) (string, error) {
	v, ok := d.Get(name)
	if !ok {
		return "", invalidf(i, "missing '%s' field", name)
	}
	if v.Kind != value.StringKind {
		return "", invalidf(i, "'%s' must be a string, got %s", name, v.Kind)
	}
	return v.Str, nil
}

func pathField(i int, d *value.Value, name string) (pointer.Path, error) {
	s, err := stringField(i, d, name)
	if err != nil {
		return pointer.Root, err
	}
	p, err := pointer.Parse(s)
	if err != nil {
		return pointer.Root, invalidf(i, "'%s': %v", name, err)
	}
	return p, nil
}

// ParsePatch decodes a JSON edit list.
func ParsePatch(data []byte) (Patch, error) {
	v, err := value.ParseJSON(data)
	if err != nil {
		return nil, invalidf(-1, "%v", err)
	}
	return DecodePatch(v)
}

// MarshalJSON implements json.Marshaler.
func (p Patch) MarshalJSON() ([]byte, error) {
	return value.MarshalJSON(p.Encode())
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Patch) UnmarshalJSON(data []byte) error {
	q, err := ParsePatch(data)
	if err != nil {
		return err
	}
	*p = q
	return nil
}
