package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/hrygo/rosterly/server/service/record"
	"github.com/hrygo/rosterly/server/service/search"
	"github.com/hrygo/rosterly/store"
)

// ErrorCode classifies an API error.
type ErrorCode string

const (
	ErrCodeInvalidArgument    ErrorCode = "INVALID_ARGUMENT"
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeAlreadyExists      ErrorCode = "ALREADY_EXISTS"
	ErrCodeRateLimitExceeded  ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeContextCanceled    ErrorCode = "CONTEXT_CANCELED"
	ErrCodeInternal           ErrorCode = "INTERNAL"
)

// APIError is the structured error returned to HTTP clients.
type APIError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps the code to a response status.
func (e *APIError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeInvalidArgument:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeAlreadyExists:
		return http.StatusConflict
	case ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests
	case ErrCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeContextCanceled:
		// Client closed request.
		return 499
	default:
		return http.StatusInternalServerError
	}
}

func InvalidArgument(msg string) *APIError {
	return &APIError{Code: ErrCodeInvalidArgument, Message: msg}
}

func NotFound(msg string) *APIError {
	return &APIError{Code: ErrCodeNotFound, Message: msg}
}

func RateLimitExceeded(msg string) *APIError {
	return &APIError{Code: ErrCodeRateLimitExceeded, Message: msg}
}

func ServiceUnavailable(msg string) *APIError {
	return &APIError{Code: ErrCodeServiceUnavailable, Message: msg}
}

// Wrap wraps an existing error with a code and a client-facing message.
func Wrap(cause error, code ErrorCode, msg string) *APIError {
	return &APIError{Code: code, Message: msg, Cause: cause}
}

// FromError converts a service or store error into an APIError.
// Unknown errors become INTERNAL and keep their cause for logging only.
func FromError(err error) *APIError {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, store.ErrNotFound):
		return Wrap(err, ErrCodeNotFound, "resource not found")
	case errors.Is(err, store.ErrAlreadyExists):
		return Wrap(err, ErrCodeAlreadyExists, "resource already exists")
	case errors.Is(err, record.ErrInvalidArgument), errors.Is(err, search.ErrEmptyQuery):
		return Wrap(err, ErrCodeInvalidArgument, err.Error())
	// Search wraps cancellation in ErrSearchUnavailable, so this case comes first.
	case errors.Is(err, context.Canceled):
		return Wrap(err, ErrCodeContextCanceled, "operation canceled")
	case errors.Is(err, search.ErrSearchUnavailable):
		return Wrap(err, ErrCodeServiceUnavailable, search.ErrSearchUnavailable.Error())
	default:
		return Wrap(err, ErrCodeInternal, "internal error")
	}
}
