package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// FieldErrors maps a form field name to a human-readable message. Every
// violated rule is reported at once so the dashboard can render all of them.
type FieldErrors map[string]string

// Empty reports whether no field carries an error.
func (f FieldErrors) Empty() bool {
	return len(f) == 0
}

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Status  int         `json:"status"`
	Fields  FieldErrors `json:"fields,omitempty"`
	// Retryable marks transient failures the dashboard may retry as-is.
	Retryable bool  `json:"retryable,omitempty"`
	Err       error `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrPreconditionFailed = New("PRECONDITION_FAILED", http.StatusPreconditionFailed, "precondition failed")
	ErrUpstream           = &Error{Code: "UPSTREAM_ERROR", Status: http.StatusBadGateway, Message: "upstream request failed", Retryable: true}
	ErrUpstreamDecode     = New("UPSTREAM_DECODE_ERROR", http.StatusBadGateway, "upstream response malformed")
	ErrSubmitInFlight     = New("SUBMIT_IN_FLIGHT", http.StatusConflict, "a submission is already in progress")
	ErrSessionExpired     = New("SESSION_EXPIRED", http.StatusGone, "form session expired")
	ErrExportFailed       = New("EXPORT_FAILED", http.StatusInternalServerError, "export generation failed")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// Validation builds a validation error carrying per-field messages.
func Validation(fields FieldErrors) *Error {
	clone := *ErrValidation
	clone.Fields = fields
	return &clone
}

// Precondition builds a precondition error with a specific message.
func Precondition(message string) *Error {
	return Clone(ErrPreconditionFailed, message)
}

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Is reports whether err carries the same code as target.
func Is(err error, target *Error) bool {
	if err == nil || target == nil {
		return false
	}
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == target.Code
}
