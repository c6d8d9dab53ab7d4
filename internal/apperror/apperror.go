package apperror

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the application's error taxonomy. Services return
// these (wrapped in an *AppError); the HTTP layer maps them to status codes
// with errors.Is.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
	ErrInternal   = errors.New("internal error")
)

type AppError struct {
	Err     error  // sentinel from the taxonomy above
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func BadRequest(field, message string) *AppError {
	return &AppError{
		Err:     ErrBadRequest,
		Message: message,
		Field:   field,
	}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
	}
}

// Internal wraps a backing-store failure. The cause goes into the message
// for logs; the HTTP layer never exposes it to clients.
func Internal(op string, err error) *AppError {
	return &AppError{
		Err:     ErrInternal,
		Message: fmt.Sprintf("%s: %v", op, err),
	}
}
