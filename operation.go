package docpatch

import (
	"fmt"
	"strings"

	"github.com/yamledit/docpatch/pointer"
	"github.com/yamledit/docpatch/value"
)

// Op names an RFC 6902 operation.
type Op string

const (
	Add     Op = "add"
	Remove  Op = "remove"
	Replace Op = "replace"
	Move    Op = "move"
	Copy    Op = "copy"
	Test    Op = "test"
)

// ParseOp maps a wire name onto an Op. Names are case sensitive.
func ParseOp(name string) (Op, error) {
	switch op := Op(name); op {
	case Add, Remove, Replace, Move, Copy, Test:
		return op, nil
	}
	return "", fmt.Errorf("unknown operation %q", name)
}

func (o Op) String() string { return string(o) }

// needsValue reports whether the wire record of o must carry "value".
func (o Op) needsValue() bool {
	switch o {
	case Add, Replace, Test:
		return true
	}
	return false
}

// needsFrom reports whether the wire record of o must carry "from".
func (o Op) needsFrom() bool {
	return o == Move || o == Copy
}

// Operation is one edit. Move and Copy read From and write Path.
//
// SrcValue is the value a Replace overwrote; it is only informative and
// is ignored when the patch is applied. A Remove may carry the removed
// value in Value for the same reason.
type Operation struct {
	Op       Op
	Path     pointer.Path
	From     pointer.Path
	Value    *value.Value
	SrcValue *value.Value
}

func (o Operation) String() string {
	var b strings.Builder
	b.WriteString(string(o.Op))
	if o.Op.needsFrom() {
		fmt.Fprintf(&b, " %q ->", o.From.String())
	}
	fmt.Fprintf(&b, " %q", o.Path.String())
	if o.Value != nil {
		b.WriteString(" ")
		b.WriteString(o.Value.String())
	}
	return b.String()
}

// Equal reports whether o and x are the same edit, payloads included.
func (o Operation) Equal(x Operation) bool {
	return o.Op == x.Op &&
		o.Path.Equal(x.Path) &&
		o.From.Equal(x.From) &&
		o.Value.Equal(x.Value) &&
		o.SrcValue.Equal(x.SrcValue)
}

// Patch is an ordered edit list.
type Patch []Operation

// Equal reports whether p and q hold equal operations in the same order.
func (p Patch) Equal(q Patch) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if !p[i].Equal(q[i]) {
			return false
		}
	}
	return true
}

func (p Patch) String() string {
	lines := make([]string, len(p))
	for i, op := range p {
		lines[i] = op.String()
	}
	return strings.Join(lines, "\n")
}

func opAdd(path pointer.Path, v *value.Value) Operation {
	return Operation{Op: Add, Path: path, Value: v}
}

func opRemove(path pointer.Path, v *value.Value) Operation {
	return Operation{Op: Remove, Path: path, Value: v}
}

func opReplace(path pointer.Path, src, v *value.Value) Operation {
	return Operation{Op: Replace, Path: path, Value: v, SrcValue: src}
}

func opMove(from, to pointer.Path) Operation {
	return Operation{Op: Move, From: from, Path: to}
}

func opCopy(from, to pointer.Path) Operation {
	return Operation{Op: Copy, From: from, Path: to}
}

func opTest(path pointer.Path, v *value.Value) Operation {
	return Operation{Op: Test, Path: path, Value: v}
}
