// Package apperror defines the error taxonomy shared by services and the
// HTTP layer. Every failure surfaced to a caller carries a stable Kind and a
// human message; internal detail stays in the wrapped error.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a stable machine-readable error category
type Kind string

const (
	KindUnauthorized Kind = "unauthorized" // no identity on the request
	KindForbidden    Kind = "forbidden"    // identity present, no project access
	KindNotFound     Kind = "not_found"    // referenced project or entity absent
	KindPrecondition Kind = "precondition" // valid entity, invalid state
	KindValidation   Kind = "validation"   // malformed payload
	KindConflict     Kind = "conflict"     // sequence allocation lost the race
	KindUpstream     Kind = "upstream"     // rendering/storage collaborator failed
	KindInternal     Kind = "internal"
)

// Error is an application error with a stable kind
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string // field-level validation detail
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Unauthorized reports a request with no identity
func Unauthorized() *Error {
	return &Error{Kind: KindUnauthorized, Message: "Unauthorized"}
}

// Forbidden reports an identity without project access
func Forbidden() *Error {
	return &Error{Kind: KindForbidden, Message: "Forbidden"}
}

// NotFound reports an absent entity
func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Message: what + " not found"}
}

// Precondition reports a valid entity in an invalid state
func Precondition(msg string) *Error {
	return &Error{Kind: KindPrecondition, Message: msg}
}

// Validation reports a malformed payload
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// ValidationFields reports a malformed payload with per-field detail
func ValidationFields(msg string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

// Conflict reports an exhausted allocation race
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// Upstream wraps a collaborator failure
func Upstream(msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: msg, Err: err}
}

// Internal wraps an unexpected failure
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: err}
}

// KindOf returns the Kind of err, or KindInternal for unclassified errors
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf returns the user-visible message for err
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal error"
}

// FieldsOf returns field-level validation detail, if any
func FieldsOf(err error) map[string]string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Fields
	}
	return nil
}

// HTTPStatus maps a kind to its HTTP status code
func HTTPStatus(k Kind) int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindPrecondition:
		return http.StatusBadRequest
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
