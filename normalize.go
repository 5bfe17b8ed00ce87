package docpatch

import (
	"strings"

	"github.com/yamledit/docpatch/pointer"
	"github.com/yamledit/docpatch/value"
)

// introduceMoves merges a remove and a later add of an equal value (or an
// add and a later remove) into one move. The first equal candidate wins.
func introduceMoves(ops Patch) Patch {
	for i := 0; i < len(ops); i++ {
		a := ops[i]
		if a.Op != Remove && a.Op != Add {
			continue
		}
		for j := i + 1; j < len(ops); j++ {
			b := ops[j]
			if !a.Value.Equal(b.Value) {
				continue
			}
			var mv Operation
			switch {
			case a.Op == Remove && b.Op == Add:
				mv = opMove(a.Path, relativePath(b.Path, ops[i+1:j]))
			case a.Op == Add && b.Op == Remove:
				// the add at i is applied before the remove, so it counts too
				mv = opMove(relativePath(b.Path, ops[i:j]), a.Path)
			default:
				continue
			}
			ops = append(ops[:j], ops[j+1:]...)
			ops[i] = mv
			break
		}
	}
	return ops
}

// relativePath rebases path past the adds and removes in between. Each one
// addressing an index of the same array as a prefix of path shifts that
// index by one: an add is undone (-1), a remove restored (+1).
func relativePath(path pointer.Path, between Patch) pointer.Path {
	counters := make([]int, path.Len())
	for _, op := range between {
		if op.Op != Add && op.Op != Remove {
			continue
		}
		p := op.Path
		if p.Len() == 0 || p.Len() > path.Len() {
			continue
		}
		depth := p.Len() - 1
		common := -1
		for k := 0; k < depth; k++ {
			if p.Get(k) != path.Get(k) {
				break
			}
			common = k
		}
		if common != depth-1 || !p.Get(depth).IsArrayIndex() {
			continue
		}
		if op.Op == Add {
			counters[depth]--
		} else {
			counters[depth]++
		}
	}
	res := path
	for k, c := range counters {
		if c == 0 {
			continue
		}
		cur, ok := path.Get(k).Index()
		if !ok {
			continue
		}
		res = res.WithToken(k, pointer.IndexToken(cur+c))
	}
	return res
}

type unchangedEntry struct {
	v    *value.Value
	path pointer.Path
}

// unchangedValues lists the subtrees that sit at the same path, unchanged,
// in both source and target. A value seen twice keeps its first path.
type unchangedValues []unchangedEntry

func (u unchangedValues) lookup(v *value.Value) (pointer.Path, bool) {
	for _, e := range u {
		if e.v.Equal(v) {
			return e.path, true
		}
	}
	return pointer.Root, false
}

func (u *unchangedValues) collect(path pointer.Path, source, target *value.Value) {
	if source.Equal(target) {
		if _, ok := u.lookup(target); !ok {
			*u = append(*u, unchangedEntry{v: target, path: path})
		}
		return
	}
	if source.Kind != target.Kind {
		return
	}
	switch source.Kind {
	case value.DocumentKind:
		for _, f := range source.Fields {
			if tv, ok := target.Get(f.Key); ok {
				u.collect(path.Append(f.Key), f.Value, tv)
			}
		}
	case value.ArrayKind:
		n := min(len(source.Items), len(target.Items))
		for i := 0; i < n; i++ {
			u.collect(path.AppendIndex(i), source.Items[i], target.Items[i])
		}
	}
}

// introduceCopies rewrites adds whose value is unchanged elsewhere in the
// source into copies from that location.
func introduceCopies(ops Patch, source, target *value.Value, tests bool) Patch {
	var u unchangedValues
	u.collect(pointer.Root, source, target)
	if len(u) == 0 {
		return ops
	}
	out := make(Patch, 0, len(ops))
	for _, op := range ops {
		if op.Op != Add {
			out = append(out, op)
			continue
		}
		from, ok := u.lookup(op.Value)
		if !ok || !copyAllowed(from, op.Path) {
			out = append(out, op)
			continue
		}
		if tests {
			out = append(out, opTest(from, op.Value))
		}
		out = append(out, opCopy(from, op.Path))
	}
	return out
}

// copyAllowed rejects copying onto the source path itself, and copying from
// an array index greater than the destination index at the same depth.
// It is a coarse guard against reading a slot an earlier operation has
// already shifted; it does not track the operations themselves.
func copyAllowed(from, to pointer.Path) bool {
	if from.Equal(to) {
		return false
	}
	n := min(from.Len(), to.Len())
	for k := 0; k < n; k++ {
		a, b := from.Get(k), to.Get(k)
		if a.IsArrayIndex() && b.IsArrayIndex() && compareDigits(a.Field(), b.Field()) > 0 {
			return false
		}
	}
	return true
}

// compareDigits compares two decimal digit strings numerically.
func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// splitReplaces turns each replace carrying its original value into a
// remove of that value followed by an add of the new one.
func splitReplaces(ops Patch) Patch {
	out := make(Patch, 0, len(ops))
	for _, op := range ops {
		if op.Op != Replace || op.SrcValue == nil {
			out = append(out, op)
			continue
		}
		out = append(out, opRemove(op.Path, op.SrcValue), opAdd(op.Path, op.Value))
	}
	return out
}
