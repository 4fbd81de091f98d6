// Package errors provides the typed error taxonomy for protocol and API responses.
package errors

import (
	"fmt"
	"net/http"
)

// ErrorType represents the category of error for metrics and response formatting.
type ErrorType string

const (
	// TypeValidation indicates a malformed or incomplete message (HTTP 400).
	TypeValidation ErrorType = "validation"
	// TypeAuthority indicates a non-host attempting a host-only action (HTTP 403).
	TypeAuthority ErrorType = "authority"
	// TypeMembership indicates a session-membership precondition failure (HTTP 403).
	TypeMembership ErrorType = "membership"
	// TypeNotFound indicates an unknown session, participant, or index (HTTP 404).
	TypeNotFound ErrorType = "not_found"
	// TypeConflict indicates a resource conflict such as a taken username (HTTP 409).
	TypeConflict ErrorType = "conflict"
	// TypeInternal indicates a server-side error (HTTP 500).
	TypeInternal ErrorType = "internal"
)

// Error represents a structured error with type, message, and optional cause.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for this error type.
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeAuthority, TypeMembership:
		return http.StatusForbidden
	case TypeNotFound:
		return http.StatusNotFound
	case TypeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ValidationError creates a new validation error.
func ValidationError(message string) *Error {
	return &Error{Type: TypeValidation, Message: message}
}

// AuthorityError creates a new authority error.
func AuthorityError(message string) *Error {
	return &Error{Type: TypeAuthority, Message: message}
}

// MembershipError creates a new membership error.
func MembershipError(message string) *Error {
	return &Error{Type: TypeMembership, Message: message}
}

// NotFoundError creates a new not-found error.
func NotFoundError(message string) *Error {
	return &Error{Type: TypeNotFound, Message: message}
}

// ConflictError creates a new conflict error.
func ConflictError(message string) *Error {
	return &Error{Type: TypeConflict, Message: message}
}

// InternalError creates a new internal error wrapping a cause.
func InternalError(message string, cause error) *Error {
	return &Error{Type: TypeInternal, Message: message, Cause: cause}
}

// TypeOf returns the error type of err, or TypeInternal for untyped errors.
func TypeOf(err error) ErrorType {
	if e, ok := err.(*Error); ok {
		return e.Type
	}
	return TypeInternal
}
