package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrStoreUnavailable = errors.New("index store unavailable")
	ErrCorruptIndex     = errors.New("corrupt index")
	ErrCapacityExceeded = errors.New("table capacity exceeded")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInternal         = errors.New("internal error")
	ErrTimeout          = errors.New("operation timed out")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// Corruptf reports a record or probe scan that violates the store layout.
func Corruptf(format string, args ...any) *AppError {
	return Newf(ErrCorruptIndex, http.StatusInternalServerError, format, args...)
}

// CapacityExceeded reports a table whose probe cycle has no free slot left.
func CapacityExceeded(capacity uint64) *AppError {
	return Newf(ErrCapacityExceeded, http.StatusInternalServerError, "no free slot in table of capacity %d", capacity)
}

// Unavailable wraps a store open failure. The cause stays reachable through
// errors.Is and errors.As.
func Unavailable(path string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, path, cause)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrStoreUnavailable), errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
