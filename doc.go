// Package docpatch computes and applies RFC 6902 edit lists over ordered
// document trees.
//
// Diff walks a source and a target value and emits add, remove and replace
// operations, aligning arrays by their longest common subsequence. Unless
// disabled by DiffFlags, matching remove/add pairs are then coalesced into
// moves and adds of values already present in the source become copies.
//
// Apply replays an edit list against a deep copy of a document, leaving the
// caller's value untouched; ApplyInPlace mutates the document it is given.
// Validate checks an edit list without a document. CompatFlags relax the
// strict RFC behavior for patches produced by lenient writers.
//
//	p := docpatch.Diff(src, dst, docpatch.DefaultDiffFlags())
//	out, err := docpatch.Apply(p, src, docpatch.DefaultCompatFlags())
//
// Failures are *InvalidPatchError for malformed edit lists and
// *ApplicationError for operations that do not fit the document. Both
// support errors.Is against the package sentinels.
package docpatch
