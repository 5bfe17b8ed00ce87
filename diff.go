package docpatch

import (
	"github.com/yamledit/docpatch/internal/debug"
	"github.com/yamledit/docpatch/pointer"
	"github.com/yamledit/docpatch/value"
)

type differ struct {
	flags DiffFlags
	ops   Patch
}

// Diff computes the edit list that turns source into target.
//
// A nil source or target stands for an absent document: the result is a
// single add or remove at the root. The returned operations never alias
// source or target.
func Diff(source, target *value.Value, flags DiffFlags) Patch {
	d := &differ{flags: flags}
	switch {
	case source == nil && target == nil:
		return Patch{}
	case source == nil:
		d.ops = append(d.ops, opAdd(pointer.Root, target.Clone()))
	case target == nil:
		d.ops = append(d.ops, opRemove(pointer.Root, source.Clone()))
	default:
		d.generate(pointer.Root, source, target)
		d.logf("generated")
		if !flags.Has(OmitMoveOperation) {
			d.ops = introduceMoves(d.ops)
			d.logf("moves")
		}
		if !flags.Has(OmitCopyOperation) {
			d.ops = introduceCopies(d.ops, source, target, flags.Has(EmitTestOperations))
			d.logf("copies")
		}
		if flags.Has(AddExplicitRemoveAddOnReplace) {
			d.ops = splitReplaces(d.ops)
			d.logf("split")
		}
	}
	d.strip()
	if d.ops == nil {
		return Patch{}
	}
	return d.ops
}

// DiffValue is Diff followed by encoding the edit list as an array value.
func DiffValue(source, target *value.Value, flags DiffFlags) *value.Value {
	return Diff(source, target, flags).Encode()
}

// DiffJSON diffs two JSON texts and returns the JSON edit list.
func DiffJSON(source, target []byte, flags DiffFlags) ([]byte, error) {
	s, err := value.ParseJSON(source)
	if err != nil {
		return nil, err
	}
	t, err := value.ParseJSON(target)
	if err != nil {
		return nil, err
	}
	return Diff(s, t, flags).MarshalJSON()
}

func (d *differ) test(path pointer.Path, v *value.Value) {
	if d.flags.Has(EmitTestOperations) {
		d.ops = append(d.ops, opTest(path, v.Clone()))
	}
}

func (d *differ) generate(path pointer.Path, source, target *value.Value) {
	if source.Equal(target) {
		return
	}
	switch {
	case source.IsArray() && target.IsArray():
		d.compareArray(path, source.Items, target.Items)
	case source.IsDocument() && target.IsDocument():
		d.compareDocuments(path, source, target)
	default:
		d.test(path, source)
		d.ops = append(d.ops, opReplace(path, source.Clone(), target.Clone()))
	}
}

func (d *differ) compareDocuments(path pointer.Path, source, target *value.Value) {
	for _, f := range source.Fields {
		child := path.Append(f.Key)
		tv, ok := target.Get(f.Key)
		if !ok {
			d.test(child, f.Value)
			d.ops = append(d.ops, opRemove(child, f.Value.Clone()))
			continue
		}
		d.generate(child, f.Value, tv)
	}
	for _, f := range target.Fields {
		if !source.Has(f.Key) {
			d.ops = append(d.ops, opAdd(path.Append(f.Key), f.Value.Clone()))
		}
	}
}

func (d *differ) compareArray(path pointer.Path, src, tgt []*value.Value) {
	common := lcs(src, tgt)
	var si, ti, li, pos int
	for li < len(common) {
		lv, sv, tv := common[li], src[si], tgt[ti]
		switch {
		case lv.Equal(sv) && lv.Equal(tv):
			si++
			ti++
			li++
			pos++
		case lv.Equal(sv):
			d.ops = append(d.ops, opAdd(path.AppendIndex(pos), tv.Clone()))
			pos++
			ti++
		case lv.Equal(tv):
			at := path.AppendIndex(pos)
			d.test(at, sv)
			d.ops = append(d.ops, opRemove(at, sv.Clone()))
			si++
		default:
			d.generate(path.AppendIndex(pos), sv, tv)
			si++
			ti++
			pos++
		}
	}
	for si < len(src) && ti < len(tgt) {
		d.generate(path.AppendIndex(pos), src[si], tgt[ti])
		si++
		ti++
		pos++
	}
	for ; ti < len(tgt); ti++ {
		d.ops = append(d.ops, opAdd(path.AppendIndex(pos), tgt[ti].Clone()))
		pos++
	}
	for ; si < len(src); si++ {
		at := path.AppendIndex(pos)
		d.test(at, src[si])
		d.ops = append(d.ops, opRemove(at, src[si].Clone()))
	}
}

// strip drops the payloads the flags ask to omit. It runs after every
// pass because the passes match on those payloads.
func (d *differ) strip() {
	for i := range d.ops {
		op := &d.ops[i]
		switch op.Op {
		case Remove:
			if d.flags.Has(OmitValueOnRemove) {
				op.Value = nil
			}
		case Replace:
			if !d.flags.Has(AddOriginalValueOnReplace) {
				op.SrcValue = nil
			}
		}
	}
}

func (d *differ) logf(stage string) {
	if !debug.Diff() {
		return
	}
	debug.Logf("diff", "%s (%d ops):\n%s", stage, len(d.ops), d.ops)
}
