// Package apperr defines the typed error taxonomy shared by the service
// layer. Handlers map kinds to HTTP statuses; services never see raw storage
// errors, which are wrapped as Transient.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// Unauthenticated: no or invalid identity on the request.
	Unauthenticated Kind = iota
	// Forbidden: authenticated but not authorized for this record.
	Forbidden
	// NotFound: a referenced key is absent.
	NotFound
	// Validation: malformed or empty input.
	Validation
	// Conflict: uniqueness violation, e.g. a duplicate username.
	Conflict
	// Transient: storage timeout or contention; safe to retry idempotent
	// operations.
	Transient
)

func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not found"
	case Validation:
		return "validation"
	case Conflict:
		return "conflict"
	case Transient:
		return "transient"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg}
}

func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error. If err is already
// an *Error its kind is preserved and only context is added.
func Wrap(kind Kind, msg string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		kind = ae.Kind
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf reports the kind carried by err, or false for untyped errors.
func KindOf(err error) (Kind, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return 0, false
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// Message returns the user-presentable message for err. Untyped errors are
// masked so storage detail does not leak to clients.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Msg
	}
	return "internal error"
}
