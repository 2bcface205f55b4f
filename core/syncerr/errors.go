package syncerr

import (
	"errors"
	"fmt"
)

// Kind classifies an engine error.
type Kind string

const (
	// KindSchema indicates a structural problem with the header or requested columns.
	KindSchema Kind = "SCHEMA"
	// KindSchemaMismatch indicates the desired and observed column sets disagree in overwrite mode.
	KindSchemaMismatch Kind = "SCHEMA_MISMATCH"
	// KindIndex indicates non-unique row keys.
	KindIndex Kind = "INDEX"
	// KindWriteConflict indicates a cell expected to be empty was non-empty at write time.
	KindWriteConflict Kind = "WRITE_CONFLICT"
	// KindRemote indicates a failure of the remote grid transport.
	KindRemote Kind = "REMOTE"
)

// Sentinels for errors.Is comparisons. Any *Error matches the sentinel of its Kind.
var (
	ErrSchema         = &Error{Kind: KindSchema}
	ErrSchemaMismatch = &Error{Kind: KindSchemaMismatch}
	ErrIndex          = &Error{Kind: KindIndex}
	ErrWriteConflict  = &Error{Kind: KindWriteConflict}
	ErrRemote         = &Error{Kind: KindRemote}
)

// Error is the concrete error type raised by the engine.
type Error struct {
	// Kind classifies the failure.
	Kind Kind
	// Op names the operation that failed (e.g. "read", "plan", "apply.add_rows").
	Op string
	// Message is a human readable description.
	Message string
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a sentinel of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// WithOp returns a copy of the error tagged with the given operation name.
func (e *Error) WithOp(op string) *Error {
	cp := *e
	cp.Op = op
	return &cp
}

// Schema returns a KindSchema error.
func Schema(format string, args ...any) *Error {
	return &Error{Kind: KindSchema, Message: fmt.Sprintf(format, args...)}
}

// SchemaMismatch returns a KindSchemaMismatch error.
func SchemaMismatch(format string, args ...any) *Error {
	return &Error{Kind: KindSchemaMismatch, Message: fmt.Sprintf(format, args...)}
}

// Index returns a KindIndex error.
func Index(format string, args ...any) *Error {
	return &Error{Kind: KindIndex, Message: fmt.Sprintf(format, args...)}
}

// WriteConflict returns a KindWriteConflict error.
func WriteConflict(format string, args ...any) *Error {
	return &Error{Kind: KindWriteConflict, Message: fmt.Sprintf(format, args...)}
}

// Remote wraps a transport failure. A nil err yields nil.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) && e.Kind == KindRemote {
		return err
	}
	return &Error{Kind: KindRemote, Op: op, Err: err}
}

// KindOf returns the Kind of the first *Error in the chain, or "" if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsRetryable reports whether a caller may retry the failed call.
func IsRetryable(err error) bool {
	return KindOf(err) == KindRemote
}
