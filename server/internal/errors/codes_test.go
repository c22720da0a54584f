package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hrygo/rosterly/server/service/record"
	"github.com/hrygo/rosterly/server/service/search"
	"github.com/hrygo/rosterly/store"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   ErrorCode
		status int
	}{
		{"not found", fmt.Errorf("employee x: %w", store.ErrNotFound), ErrCodeNotFound, http.StatusNotFound},
		{"already exists", fmt.Errorf("failed to create: %w", store.ErrAlreadyExists), ErrCodeAlreadyExists, http.StatusConflict},
		{"invalid", fmt.Errorf("email is required: %w", record.ErrInvalidArgument), ErrCodeInvalidArgument, http.StatusBadRequest},
		{"empty query", search.ErrEmptyQuery, ErrCodeInvalidArgument, http.StatusBadRequest},
		{"search unavailable", fmt.Errorf("%w: timeout", search.ErrSearchUnavailable), ErrCodeServiceUnavailable, http.StatusServiceUnavailable},
		{"canceled", context.Canceled, ErrCodeContextCanceled, 499},
		{"search canceled by caller", fmt.Errorf("%w: %w", search.ErrSearchUnavailable, context.Canceled), ErrCodeContextCanceled, 499},
		{"search deadline", fmt.Errorf("%w: %w", search.ErrSearchUnavailable, context.DeadlineExceeded), ErrCodeServiceUnavailable, http.StatusServiceUnavailable},
		{"unknown", errors.New("disk on fire"), ErrCodeInternal, http.StatusInternalServerError},
		{"already an api error", RateLimitExceeded("slow down"), ErrCodeRateLimitExceeded, http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := FromError(tt.err)
			assert.Equal(t, tt.code, apiErr.Code)
			assert.Equal(t, tt.status, apiErr.HTTPStatus())
		})
	}
}

func TestAPIError(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(cause, ErrCodeInternal, "internal error")
	assert.Equal(t, "[INTERNAL] internal error: boom", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "[NOT_FOUND] missing", NotFound("missing").Error())

	wrapped := fmt.Errorf("handler: %w", InvalidArgument("bad id"))
	assert.Equal(t, ErrCodeInvalidArgument, FromError(wrapped).Code)
	assert.Equal(t, ErrCodeInternal, FromError(errors.New("plain")).Code)
	assert.Equal(t, http.StatusServiceUnavailable, ServiceUnavailable("x").HTTPStatus())
}
