// Package apperr provides the error kinds surfaced by the API and the
// kind-to-status table used by the HTTP error translator.
//
// Services and repositories return *Error values (or wrap them with %w);
// the translator resolves them with From, which maps anything else to
// ErrUnexpected:
//
//	if errors.Is(err, apperr.ErrNotFound) { ... }
//	status := apperr.From(err).HTTPStatus()
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport.
type Kind string

const (
	KindValidation       Kind = "VALIDATION"
	KindNotFound         Kind = "NOT_FOUND"
	KindConflict         Kind = "CONFLICT"
	KindMethodNotAllowed Kind = "METHOD_NOT_ALLOWED"
	KindPayloadTooLarge  Kind = "PAYLOAD_TOO_LARGE"
	KindRateLimited      Kind = "RATE_LIMITED"
	KindUnexpected       Kind = "UNEXPECTED"
)

var statusByKind = map[Kind]int{
	KindValidation:       http.StatusBadRequest,
	KindNotFound:         http.StatusNotFound,
	KindConflict:         http.StatusConflict,
	KindMethodNotAllowed: http.StatusMethodNotAllowed,
	KindPayloadTooLarge:  http.StatusRequestEntityTooLarge,
	KindRateLimited:      http.StatusTooManyRequests,
	KindUnexpected:       http.StatusInternalServerError,
}

// HTTPStatus returns the status code for k, 500 for unknown kinds.
func (k Kind) HTTPStatus() int {
	if s, ok := statusByKind[k]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error is an API error with a kind, a client-safe message and optional
// per-field details.
type Error struct {
	Kind    Kind
	Message string
	Details []string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error with the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// HTTPStatus returns the status code for the error's kind.
func (e *Error) HTTPStatus() int {
	return e.Kind.HTTPStatus()
}

// WithCause returns a copy of e wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Details: e.Details, cause: err}
}

// Sentinels for errors.Is.
var (
	ErrNotFound   = &Error{Kind: KindNotFound, Message: "not found"}
	ErrConflict   = &Error{Kind: KindConflict, Message: "conflict"}
	ErrUnexpected = &Error{Kind: KindUnexpected, Message: "internal server error"}
)

// Validation creates a validation error listing every violated constraint.
func Validation(msg string, details ...string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Details: details}
}

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Conflict creates a constraint violation error.
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// New creates an error of an arbitrary kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// From returns the *Error in err's chain, or an unexpected error wrapping
// err when there is none.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return ErrUnexpected.WithCause(err)
}

// StatusOf returns the HTTP status for any error.
func StatusOf(err error) int {
	return From(err).HTTPStatus()
}
