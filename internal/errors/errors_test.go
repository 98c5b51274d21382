package errors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	assert.Equal(t, "Unauthorized", ErrUnauthorized.Error())

	wrapped := ErrInternal.WithError(fmt.Errorf("disk full"))
	assert.Equal(t, "Internal server error: disk full", wrapped.Error())
}

func TestAppError_WithDetailsDoesNotMutateBase(t *testing.T) {
	detailed := ErrValidation.WithDetails(map[string]string{"userId": "required"})

	assert.NotNil(t, detailed.Details)
	assert.Nil(t, ErrValidation.Details)
	assert.Equal(t, ErrValidation.Code, detailed.Code)
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := ErrDatabaseError.WithError(cause)

	assert.True(t, errors.Is(err, cause))
}

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", ErrValidation, http.StatusBadRequest},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"configuration", ErrConfiguration, http.StatusInternalServerError},
		{"plain error", errors.New("x"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.err))
		})
	}
}

func TestGetErrorResponse(t *testing.T) {
	t.Run("app error with details", func(t *testing.T) {
		resp := GetErrorResponse(ErrValidation.WithDetails("bad"))
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		assert.Equal(t, "Invalid request body", resp.Error.Message)
		assert.Equal(t, "bad", resp.Error.Details)
	})

	t.Run("plain errors are hidden", func(t *testing.T) {
		resp := GetErrorResponse(errors.New("connection refused to 10.0.0.1"))
		assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
		assert.Equal(t, "Internal server error", resp.Error.Message)
		assert.Nil(t, resp.Error.Details)
	})
}

func TestWrapDBError(t *testing.T) {
	assert.Nil(t, WrapDBError(nil))

	tests := []struct {
		name string
		err  error
		want *AppError
	}{
		{"no rows", sql.ErrNoRows, ErrNotFound},
		{"deadline", context.DeadlineExceeded, ErrDatabaseTimeout},
		{"connection failure", &pq.Error{Code: "08006"}, ErrDatabaseConnectionFailed},
		{"too many connections", &pq.Error{Code: "53300"}, ErrServiceUnavailable},
		{"other pq error", &pq.Error{Code: "42P01"}, ErrDatabaseError},
		{"generic", errors.New("x"), ErrDatabaseError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapDBError(tt.err)
			assert.Equal(t, tt.want.Code, got.Code)
			assert.True(t, errors.Is(got, tt.err))
		})
	}
}
