package errdefs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("permission denied")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrTransport       = errors.New("backend unavailable")
	ErrCancelled       = errors.New("cancelled")
)

// APIError is a non-2xx answer from the backend. It unwraps to the sentinel
// matching its status so callers can use errors.Is.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s: %s", e.Status, http.StatusText(e.Status), e.Message)
	}
	return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
}

func (e *APIError) Unwrap() error {
	return FromStatus(e.Status)
}

func FromStatus(code int) error {
	switch {
	case code == http.StatusBadRequest, code == http.StatusUnprocessableEntity:
		return ErrValidation
	case code == http.StatusUnauthorized:
		return ErrUnauthenticated
	case code == http.StatusForbidden:
		return ErrForbidden
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusConflict:
		return ErrConflict
	case code >= http.StatusInternalServerError:
		return ErrTransport
	default:
		return nil
	}
}

// Message extracts the text to show a user for err. Server-provided messages
// and client-side validation details win; everything else gets fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.Message
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fallback
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Detail
	}
	return fallback
}

// ValidationError is raised before any network call when input is rejected
// locally.
type ValidationError struct {
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, e.Detail)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func Invalid(format string, args ...any) error {
	return &ValidationError{Detail: fmt.Sprintf(format, args...)}
}

// UserError pairs a cause with the text meant for the person using the
// client. It unwraps to the cause.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string { return e.Message }

func (e *UserError) Unwrap() error { return e.Err }

// Describe wraps err in a UserError whose text is Message(err, fallback).
func Describe(err error, fallback string) error {
	if err == nil {
		return nil
	}
	return &UserError{Message: Message(err, fallback), Err: err}
}
