// Package apperror defines the domain error taxonomy shared by the service
// and handler layers.
//
// Services return *AppError values that wrap one of the sentinels below.
// Handlers never inspect messages; they map the sentinel to a status code:
//
//	ErrValidation   → 400
//	ErrDuplicate    → 400
//	ErrUnauthorized → 401
//	ErrNotFound     → 404
//	anything else   → 500
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrDuplicate    = errors.New("duplicate")
	ErrUnauthorized = errors.New("unauthorized")
)

type AppError struct {
	Err     error  // sentinel
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Duplicate reports that a unique value (e.g. an email address) is taken.
// It is a client error, so handlers map it to 400 alongside validation.
func Duplicate(field, message string) *AppError {
	return &AppError{
		Err:     ErrDuplicate,
		Message: message,
		Field:   field,
	}
}

// Unauthorized covers missing credentials, wrong credentials and missing
// sessions. The message is what the client sees, so callers must not leak
// which part of a credential pair was wrong.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}
