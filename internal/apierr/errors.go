// Package apierr defines the typed errors components raise. Each error
// carries an HTTP-style status code; the HTTP boundary is the only layer that
// turns them into response envelopes.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a component failure with an HTTP-style status code.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// BadRequest signals malformed or missing input.
func BadRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

// Unauthorized signals bad credentials or an invalid, expired, or reused token.
func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

// NotFound signals a referenced entity is absent.
func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

// Conflict signals a duplicate unique field.
func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Message: message}
}

// Dependency signals that an external collaborator (storage, upload) failed.
func Dependency(message string, err error) *Error {
	return &Error{Status: http.StatusBadGateway, Message: message, Err: err}
}

// Internal wraps an unclassified failure.
func Internal(message string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: message, Err: err}
}

// StatusOf extracts the status code from err, defaulting to 500 for
// unclassified errors.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return http.StatusInternalServerError
}

// MessageOf extracts the caller-facing message from err. Unclassified errors
// collapse to a generic message so internals do not leak.
func MessageOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "internal server error"
}
