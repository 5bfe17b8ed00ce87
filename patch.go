package docpatch

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/yamledit/docpatch/internal/debug"
	"github.com/yamledit/docpatch/pointer"
	"github.com/yamledit/docpatch/value"
)

// processor receives the operations of a checked patch in order.
type processor interface {
	add(path pointer.Path, v *value.Value) error
	remove(path pointer.Path) error
	replace(path pointer.Path, v *value.Value) error
	move(from, to pointer.Path) error
	copy(from, to pointer.Path) error
	test(path pointer.Path, v *value.Value) error
}

// Apply applies p to a deep copy of source and returns the copy. source is
// never modified, whether or not p applies.
func Apply(p Patch, source *value.Value, flags CompatFlags) (*value.Value, error) {
	ip := &inPlace{root: source.Clone(), flags: flags}
	if err := process(p, ip, flags); err != nil {
		return nil, err
	}
	return ip.root, nil
}

// ApplyInPlace applies p to root, mutating it. A patch replacing the root
// overwrites *root. On failure root may be left partially patched.
func ApplyInPlace(p Patch, root *value.Value, flags CompatFlags) error {
	if root == nil {
		return errors.New("docpatch: ApplyInPlace requires a non-nil root")
	}
	return process(p, &inPlace{root: root, flags: flags, pinned: true}, flags)
}

// Validate checks that p is well formed without applying it to anything.
func Validate(p Patch, flags CompatFlags) error {
	return process(p, noop{}, flags)
}

// ApplyValue decodes a wire patch and applies it to a copy of source.
func ApplyValue(patch, source *value.Value, flags CompatFlags) (*value.Value, error) {
	p, err := DecodePatch(patch)
	if err != nil {
		return nil, err
	}
	return Apply(p, source, flags)
}

// ValidateValue decodes a wire patch and validates it.
func ValidateValue(patch *value.Value, flags CompatFlags) error {
	p, err := DecodePatch(patch)
	if err != nil {
		return err
	}
	return Validate(p, flags)
}

// ApplyJSON applies a JSON patch to a JSON document.
func ApplyJSON(patch, doc []byte, flags CompatFlags) ([]byte, error) {
	p, err := ParsePatch(patch)
	if err != nil {
		return nil, err
	}
	src, err := value.ParseJSON(doc)
	if err != nil {
		return nil, err
	}
	res, err := Apply(p, src, flags)
	if err != nil {
		return nil, err
	}
	return value.MarshalJSON(res)
}

// ApplyStream reads one JSON document from r, applies p and writes the
// result to w followed by a newline.
func ApplyStream(r io.Reader, w io.Writer, p Patch, flags CompatFlags) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	doc, err := value.DecodeJSON(dec)
	if err != nil {
		return fmt.Errorf("docpatch: failed to decode document: %w", err)
	}
	ip := &inPlace{root: doc, flags: flags}
	if err := process(p, ip, flags); err != nil {
		return err
	}
	out, err := value.MarshalJSON(ip.root)
	if err != nil {
		return err
	}
	_, err = w.Write(append(out, '\n'))
	return err
}

// check rejects malformed operations before anything is applied and fills
// in null values when flags allow it.
func check(p Patch, flags CompatFlags) (Patch, error) {
	var out Patch
	for i, op := range p {
		if _, err := ParseOp(string(op.Op)); err != nil {
			return nil, invalidf(i, "%v", err)
		}
		if op.Op.needsValue() && op.Value == nil {
			if !flags.Has(MissingValuesAsNulls) {
				return nil, invalidf(i, "missing 'value' field")
			}
			if out == nil {
				out = append(Patch(nil), p...)
			}
			out[i].Value = value.Null()
		}
	}
	if out == nil {
		return p, nil
	}
	return out, nil
}

func process(p Patch, proc processor, flags CompatFlags) error {
	p, err := check(p, flags)
	if err != nil {
		return err
	}
	for i, op := range p {
		if debug.Patch() {
			debug.Logf("patch", "%d: %s", i, op)
		}
		switch op.Op {
		case Add:
			err = proc.add(op.Path, op.Value.Clone())
		case Remove:
			err = proc.remove(op.Path)
		case Replace:
			err = proc.replace(op.Path, op.Value.Clone())
		case Move:
			err = proc.move(op.From, op.Path)
		case Copy:
			err = proc.copy(op.From, op.Path)
		case Test:
			err = proc.test(op.Path, op.Value)
		}
		if err != nil {
			if debug.Patch() {
				debug.Logf("patch", "%d failed: %v", i, err)
			}
			return err
		}
	}
	return nil
}

type noop struct{}

func (noop) add(pointer.Path, *value.Value) error     { return nil }
func (noop) remove(pointer.Path) error                { return nil }
func (noop) replace(pointer.Path, *value.Value) error { return nil }
func (noop) move(_, _ pointer.Path) error             { return nil }
func (noop) copy(_, _ pointer.Path) error             { return nil }
func (noop) test(pointer.Path, *value.Value) error    { return nil }

// inPlace mutates root. When pinned, root replacement overwrites the node
// the caller holds instead of swapping the pointer.
type inPlace struct {
	root   *value.Value
	flags  CompatFlags
	pinned bool
}

func (ip *inPlace) setRoot(v *value.Value) {
	if ip.pinned {
		*ip.root = *v
		return
	}
	ip.root = v
}

// Evaluate returns the node at path within root.
func Evaluate(root *value.Value, path pointer.Path) (*value.Value, error) {
	cur := root
	for i := 0; i < path.Len(); i++ {
		if cur == nil {
			return nil, ErrPathNotFound
		}
		tok := path.Get(i)
		switch cur.Kind {
		case value.DocumentKind:
			next, ok := cur.Get(tok.Field())
			if !ok {
				return nil, ErrPathNotFound
			}
			cur = next
		case value.ArrayKind:
			idx, ok := tok.Index()
			if !ok {
				return nil, ErrInvalidIndex
			}
			next, ok := cur.Index(idx)
			if !ok {
				return nil, ErrIndexOutOfBounds
			}
			cur = next
		default:
			return nil, ErrNotContainer
		}
	}
	if cur == nil {
		return nil, ErrPathNotFound
	}
	return cur, nil
}

func (ip *inPlace) eval(op Op, path pointer.Path) (*value.Value, error) {
	v, err := Evaluate(ip.root, path)
	if err != nil {
		return nil, appErr(op, path, err, "")
	}
	return v, nil
}

// parent resolves the container holding the last token of path.
func (ip *inPlace) parent(op Op, path pointer.Path) (*value.Value, pointer.Token, error) {
	pp, _ := path.Parent()
	last, _ := path.Last()
	c, err := ip.eval(op, pp)
	if err != nil {
		return nil, last, err
	}
	if !c.IsContainer() {
		return nil, last, appErr(op, path, ErrNotContainer, "")
	}
	return c, last, nil
}

func (ip *inPlace) add(path pointer.Path, v *value.Value) error {
	return ip.set(Add, path, v)
}

func (ip *inPlace) set(op Op, path pointer.Path, v *value.Value) error {
	if path.IsRoot() {
		ip.setRoot(v)
		return nil
	}
	c, last, err := ip.parent(op, path)
	if err != nil {
		return err
	}
	if c.IsDocument() {
		return c.Put(last.Field(), v)
	}
	if last.IsAppend() {
		return c.Append(v)
	}
	idx, ok := last.Index()
	if !ok {
		return appErr(op, path, ErrInvalidIndex, "invalid array index %q", last.Field())
	}
	if idx > c.Len() {
		return appErr(op, path, ErrIndexOutOfBounds, "array index %d out of bounds", idx)
	}
	return c.Insert(idx, v)
}

func (ip *inPlace) remove(path pointer.Path) error {
	if path.IsRoot() {
		return appErr(Remove, path, ErrRootRemoval, "")
	}
	c, last, err := ip.parent(Remove, path)
	if err != nil {
		return err
	}
	if c.IsDocument() {
		c.Delete(last.Field())
		return nil
	}
	idx, ok := last.Index()
	if !ok && !last.IsAppend() {
		return appErr(Remove, path, ErrInvalidIndex, "invalid array index %q", last.Field())
	}
	if !ok || idx >= c.Len() {
		if ip.flags.Has(RemoveNonexistentArrayElement) {
			return nil
		}
		return appErr(Remove, path, ErrIndexOutOfBounds, "array index %s out of bounds", last.Field())
	}
	_, err = c.RemoveAt(idx)
	return err
}

func (ip *inPlace) replace(path pointer.Path, v *value.Value) error {
	if path.IsRoot() {
		ip.setRoot(v)
		return nil
	}
	c, last, err := ip.parent(Replace, path)
	if err != nil {
		return err
	}
	if c.IsDocument() {
		if !c.Has(last.Field()) {
			return appErr(Replace, path, ErrMissingField, "missing field %q", last.Field())
		}
		return c.Put(last.Field(), v)
	}
	idx, ok := last.Index()
	if !ok {
		return appErr(Replace, path, ErrInvalidIndex, "invalid array index %q", last.Field())
	}
	if idx >= c.Len() {
		return appErr(Replace, path, ErrIndexOutOfBounds, "array index %d out of bounds", idx)
	}
	return c.Set(idx, v)
}

func (ip *inPlace) move(from, to pointer.Path) error {
	v, err := ip.eval(Move, from)
	if err != nil {
		return err
	}
	if from.IsRoot() {
		return appErr(Move, from, ErrRootRemoval, "")
	}
	if err := ip.remove(from); err != nil {
		return err
	}
	return ip.set(Move, to, v)
}

func (ip *inPlace) copy(from, to pointer.Path) error {
	v, err := ip.eval(Copy, from)
	if err != nil {
		return err
	}
	return ip.set(Copy, to, v.Clone())
}

func (ip *inPlace) test(path pointer.Path, v *value.Value) error {
	got, err := ip.eval(Test, path)
	if err != nil {
		return err
	}
	if !got.Equal(v) {
		return appErr(Test, path, ErrTestFailed, "expected value %s but found %s", v.Short(), got.Short())
	}
	return nil
}
