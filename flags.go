package docpatch

import "strings"

// DiffFlags shapes the edit list produced by Diff.
type DiffFlags uint8

const (
	// OmitValueOnRemove drops "value" from remove records.
	OmitValueOnRemove DiffFlags = 1 << iota
	// OmitMoveOperation disables coalescing remove/add pairs into moves.
	OmitMoveOperation
	// OmitCopyOperation disables rewriting adds of unchanged source values into copies.
	OmitCopyOperation
	// AddOriginalValueOnReplace emits "fromValue" on replace records.
	AddOriginalValueOnReplace
	// EmitTestOperations guards removals, replacements and copies with test operations.
	EmitTestOperations
	// AddExplicitRemoveAddOnReplace splits every replace into a remove followed by an add.
	AddExplicitRemoveAddOnReplace
)

var diffFlagNames = []struct {
	f    DiffFlags
	name string
}{
	{OmitValueOnRemove, "OMIT_VALUE_ON_REMOVE"},
	{OmitMoveOperation, "OMIT_MOVE_OPERATION"},
	{OmitCopyOperation, "OMIT_COPY_OPERATION"},
	{AddOriginalValueOnReplace, "ADD_ORIGINAL_VALUE_ON_REPLACE"},
	{EmitTestOperations, "EMIT_TEST_OPERATIONS"},
	{AddExplicitRemoveAddOnReplace, "ADD_EXPLICIT_REMOVE_ADD_ON_REPLACE"},
}

// DefaultDiffFlags returns the flags Diff uses when none are given.
func DefaultDiffFlags() DiffFlags { return OmitValueOnRemove }

// NoMoveOrCopy disables both normalization passes, yielding plain
// add/remove/replace lists.
func NoMoveOrCopy() DiffFlags {
	return OmitValueOnRemove | OmitMoveOperation | OmitCopyOperation
}

// Has reports whether every flag in x is set in f.
func (f DiffFlags) Has(x DiffFlags) bool { return f&x == x }

// With returns f with the flags in x set.
func (f DiffFlags) With(x DiffFlags) DiffFlags { return f | x }

// Without returns f with the flags in x cleared.
func (f DiffFlags) Without(x DiffFlags) DiffFlags { return f &^ x }

func (f DiffFlags) String() string {
	var names []string
	for _, n := range diffFlagNames {
		if f.Has(n.f) {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// CompatFlags relaxes the patch engine.
type CompatFlags uint8

const (
	// MissingValuesAsNulls treats an absent "value" on add, replace and test as null.
	MissingValuesAsNulls CompatFlags = 1 << iota
	// RemoveNonexistentArrayElement makes an out of range array remove a no-op.
	RemoveNonexistentArrayElement
)

// DefaultCompatFlags is the strict RFC 6902 behavior.
func DefaultCompatFlags() CompatFlags { return 0 }

// Has reports whether every flag in x is set in f.
func (f CompatFlags) Has(x CompatFlags) bool { return f&x == x }

// With returns f with the flags in x set.
func (f CompatFlags) With(x CompatFlags) CompatFlags { return f | x }

// Without returns f with the flags in x cleared.
func (f CompatFlags) Without(x CompatFlags) CompatFlags { return f &^ x }

func (f CompatFlags) String() string {
	var names []string
	if f.Has(MissingValuesAsNulls) {
		names = append(names, "MISSING_VALUES_AS_NULLS")
	}
	if f.Has(RemoveNonexistentArrayElement) {
		names = append(names, "REMOVE_NONEXISTENT_ARRAY_ELEMENT")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}
