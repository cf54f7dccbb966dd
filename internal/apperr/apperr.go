// Package apperr defines the error taxonomy shared by the service layer and
// mapped to transport statuses in one place by the server.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure.
type Kind int

const (
	// NotAuthenticated: no caller identity could be resolved.
	NotAuthenticated Kind = iota
	// NotFound: a user, program, template, or session does not exist.
	NotFound
	// Unauthorized: the resource exists but belongs to someone else, or a
	// template belongs to another category.
	Unauthorized
	// InvalidState: the mutation's precondition failed (terminal session,
	// completed slot, cross-phase swap, rest-day swap).
	InvalidState
	// Conflict: an optimistic concurrency check failed; the caller should
	// re-read and retry.
	Conflict
	// Internal: unexpected infrastructure failure.
	Internal
)

// Error carries a kind alongside a message and an optional cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error around a cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the kind from an error chain, defaulting to Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether the error chain carries the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
