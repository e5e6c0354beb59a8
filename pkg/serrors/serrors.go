// Package serrors defines semantic error kinds shared by the validator
// packages. A kind tells the request boundary which class of failure it is
// looking at (a fetch problem, a broken schema, a bad request) without
// parsing error strings.
package serrors

import (
	"errors"
	"fmt"
)

// Kind is a marker interface implemented by all semantic error kinds created
// with NewKind.
type Kind interface {
	error
	isKind()
}

type kind struct{ s string }

func (k kind) Error() string { return k.s }
func (k kind) isKind()       {}

// NewKind creates a new semantic error kind (a sentinel). Kinds are comparable
// and match through errors.Is on any *Error carrying them.
func NewKind(name string) Kind { return kind{s: name} }

var (
	// ErrFetch indicates a remote resource (schema or document) could not be
	// retrieved: network failure, non-2xx status, timeout or an oversized body.
	ErrFetch = NewKind("FETCH")
	// ErrSchemaParse indicates the fetched schema text is not a valid XSD.
	ErrSchemaParse = NewKind("SCHEMA_PARSE")
	// ErrBadRequest indicates the client sent invalid data.
	ErrBadRequest = NewKind("BAD_REQUEST")
	// ErrUnavailable indicates no schema is loaded yet.
	ErrUnavailable = NewKind("UNAVAILABLE")
	// ErrTimeout indicates the request deadline was exceeded.
	ErrTimeout = NewKind("TIMEOUT")
	// ErrNotFound indicates no route matches the request.
	ErrNotFound = NewKind("NOT_FOUND")
	// ErrMethodNotAllowed indicates the route exists for another method.
	ErrMethodNotAllowed = NewKind("METHOD_NOT_ALLOWED")
	// ErrInternal indicates an internal server error.
	ErrInternal = NewKind("INTERNAL")
)

// Error is a semantic error carrying a kind, an optional wrapped cause and an
// optional message.
//
// errors.Is(err, target) matches either the kind or anything in the cause
// chain; errors.As behaves the same way.
//
// Error() renders "<msg>: <cause>", "<msg>", "<cause>" or the kind name,
// depending on which parts are set.
type Error struct {
	kind Kind
	err  error
	msg  string
}

// With constructs a semantic error with the given kind and message.
func With(k Kind, msgFmt string, args ...any) *Error {
	return &Error{kind: k, msg: fmt.Sprintf(msgFmt, args...)}
}

// Wrap constructs a semantic error with the given kind wrapping err.
func Wrap(k Kind, err error, msgFmt string, args ...any) *Error {
	return &Error{kind: k, err: err, msg: fmt.Sprintf(msgFmt, args...)}
}

// KindOnly creates a semantic error carrying only the kind.
func KindOnly(k Kind) *Error { return &Error{kind: k} }

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	case e.kind != nil:
		return e.kind.Error()
	default:
		return "unknown error"
	}
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.err }

// Is matches against either the kind sentinel or the wrapped cause.
func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return e == nil && target == nil
	}
	if e.kind != nil && errors.Is(e.kind, target) {
		return true
	}

	return e.err != nil && errors.Is(e.err, target)
}

// As enables type assertions against either the kind or the wrapped cause.
func (e *Error) As(target any) bool {
	if e == nil || target == nil {
		return false
	}
	if e.kind != nil && errors.As(e.kind, target) {
		return true
	}

	return e.err != nil && errors.As(e.err, target)
}

// Kind returns the kind sentinel associated with this error, or nil.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the message attached to this error.
func (e *Error) Message() string { return e.msg }

// KindOf returns the outermost semantic kind found in err's chain, or
// ErrInternal when err carries none. A bare Kind passed as err is returned
// as-is.
func KindOf(err error) Kind {
	if err == nil {
		return nil
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}

	return ErrInternal
}
