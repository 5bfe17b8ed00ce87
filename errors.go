package docpatch

import (
	"errors"
	"fmt"

	"github.com/yamledit/docpatch/pointer"
)

// ErrInvalidPatch is wrapped by every InvalidPatchError.
var ErrInvalidPatch = errors.New("invalid patch")

// Application failures. ApplicationError.Err holds one of these.
var (
	ErrPathNotFound     = errors.New("no such path")
	ErrIndexOutOfBounds = errors.New("index out of bounds")
	ErrNotContainer     = errors.New("cannot reference past a scalar value")
	ErrMissingField     = errors.New("missing field")
	ErrTestFailed       = errors.New("test failed")
	ErrRootRemoval      = errors.New("cannot remove document root")
	ErrInvalidIndex     = errors.New("invalid array index")
)

// InvalidPatchError reports a malformed edit list. It is raised before
// any operation is applied. Index is -1 when the list itself is malformed.
type InvalidPatchError struct {
	Index int
	Msg   string
}

func (e *InvalidPatchError) Error() string {
	if e.Index < 0 {
		return "docpatch: invalid patch: " + e.Msg
	}
	return fmt.Sprintf("docpatch: invalid patch: operation %d: %s", e.Index, e.Msg)
}

func (e *InvalidPatchError) Unwrap() error { return ErrInvalidPatch }

func invalidf(index int, format string, args ...any) error {
	return &InvalidPatchError{Index: index, Msg: fmt.Sprintf(format, args...)}
}

// ApplicationError reports an operation that could not be applied.
type ApplicationError struct {
	Op   Op
	Path pointer.Path
	Msg  string
	Err  error
}

func (e *ApplicationError) Error() string {
	at := "root"
	if !e.Path.IsRoot() {
		at = e.Path.String()
	}
	return fmt.Sprintf("docpatch: [%s operation] %s at %s", e.Op, e.Msg, at)
}

func (e *ApplicationError) Unwrap() error { return e.Err }

func appErr(op Op, path pointer.Path, err error, format string, args ...any) error {
	msg := err.Error()
	if format != "" {
		msg = fmt.Sprintf(format, args...)
	}
	return &ApplicationError{Op: op, Path: path, Msg: msg, Err: err}
}
