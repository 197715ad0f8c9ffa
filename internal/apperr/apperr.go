// Package apperr defines the application error taxonomy. Every failure a
// service returns is one of a small set of kinds that handlers translate
// to HTTP statuses; raw storage errors never reach the caller.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the HTTP layer.
type Kind int

const (
	// Validation means the input was malformed or missing (400).
	Validation Kind = iota
	// Unauthorized means no valid session was presented (401).
	Unauthorized
	// Forbidden means the session is valid but lacks rights (403).
	Forbidden
	// NotFound means a referenced entity does not exist (404).
	NotFound
	// Conflict means a uniqueness constraint was violated (409).
	Conflict
	// Internal is an unexpected or storage failure (500).
	Internal
)

// Error is a classified application error with a human-readable message.
// Fields lists the offending input fields on validation errors.
type Error struct {
	Kind    Kind
	Message string
	Fields  []string
	Err     error // wrapped cause, if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an error of the given kind wrapping a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Invalid creates a Validation error listing the violated fields.
func Invalid(message string, fields ...string) *Error {
	return &Error{Kind: Validation, Message: message, Fields: fields}
}

// KindOf returns the kind of err. Unknown errors classify as Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Is reports whether err is an application error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
