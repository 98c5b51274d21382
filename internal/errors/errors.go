package errors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/lib/pq"
)

// AppError represents a structured application error
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Details    any    `json:"details,omitempty"`
	Err        error  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements error unwrapping
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		HTTPStatus: e.HTTPStatus,
		Details:    details,
		Err:        e.Err,
	}
}

// WithError wraps an underlying error
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		HTTPStatus: e.HTTPStatus,
		Details:    e.Details,
		Err:        err,
	}
}

// WithMessage replaces the client-facing message
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    message,
		HTTPStatus: e.HTTPStatus,
		Details:    e.Details,
		Err:        e.Err,
	}
}

// Common error definitions
var (
	// Authentication errors (401)
	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Unauthorized",
		HTTPStatus: http.StatusUnauthorized,
	}

	// Validation errors (400)
	ErrValidation = &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    "Invalid request body",
		HTTPStatus: http.StatusBadRequest,
	}
	ErrMissingParameter = &AppError{
		Code:       "MISSING_PARAMETER",
		Message:    "Required parameter is missing",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrPayloadTooLarge = &AppError{
		Code:       "PAYLOAD_TOO_LARGE",
		Message:    "Request body too large",
		HTTPStatus: http.StatusRequestEntityTooLarge,
	}

	// Not found (404)
	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		HTTPStatus: http.StatusNotFound,
	}

	// Infrastructure errors (503)
	ErrServiceUnavailable = &AppError{
		Code:       "SERVICE_UNAVAILABLE",
		Message:    "Service temporarily unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
	}
	ErrDatabaseConnectionFailed = &AppError{
		Code:       "DATABASE_CONNECTION_FAILED",
		Message:    "Failed to connect to database",
		HTTPStatus: http.StatusServiceUnavailable,
	}

	// Internal errors (500)
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
	}
	ErrConfiguration = &AppError{
		Code:       "CONFIGURATION_ERROR",
		Message:    "Server misconfiguration: missing API key",
		HTTPStatus: http.StatusInternalServerError,
	}
	ErrDatabaseError = &AppError{
		Code:       "DATABASE_ERROR",
		Message:    "Database operation failed",
		HTTPStatus: http.StatusInternalServerError,
	}
	ErrDatabaseTimeout = &AppError{
		Code:       "DATABASE_TIMEOUT",
		Message:    "Database operation timed out",
		HTTPStatus: http.StatusGatewayTimeout,
	}
)

// GetHTTPStatus extracts HTTP status from error
func GetHTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// ErrorBody is the payload under the "error" key of every error response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse is the JSON envelope returned for failed requests.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// GetErrorResponse converts error to API response. Errors that are not
// AppErrors never leak their text to clients.
func GetErrorResponse(err error) ErrorResponse {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return ErrorResponse{Error: ErrorBody{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		}}
	}

	return ErrorResponse{Error: ErrorBody{
		Code:    ErrInternal.Code,
		Message: ErrInternal.Message,
	}}
}

// =============================================================================
// DATABASE ERROR HELPERS
// =============================================================================

// WrapDBError classifies a storage error. Storage errors reach clients as
// 5xx responses, so everything except a missing row maps to a server error.
func WrapDBError(err error) *AppError {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound.WithError(err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrDatabaseTimeout.WithError(err)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return wrapPQError(pqErr)
	}

	return ErrDatabaseError.WithError(err)
}

// wrapPQError converts PostgreSQL errors to AppErrors
func wrapPQError(pqErr *pq.Error) *AppError {
	switch pqErr.Code.Class() {
	// Connection exceptions
	case "08":
		return ErrDatabaseConnectionFailed.WithError(pqErr)
	// Insufficient resources, operator intervention
	case "53", "57":
		return ErrServiceUnavailable.WithError(pqErr).WithDetails(map[string]string{
			"reason": pqErr.Code.Name(),
		})
	default:
		return ErrDatabaseError.WithError(pqErr)
	}
}
