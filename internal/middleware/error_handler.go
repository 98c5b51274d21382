// Package middleware provides HTTP middleware for the Ticketbooth API.
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/madfam-org/ticketbooth/internal/errors"
	"github.com/madfam-org/ticketbooth/internal/logging"
)

// ErrorHandlerMiddleware converts errors set via c.Error() into the JSON error
// envelope. Register it before the handlers it should cover.
//
// Usage in handlers:
//
//	if err != nil {
//	    AbortInternal(c, err)
//	    return
//	}
func ErrorHandlerMiddleware(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status := errors.GetHTTPStatus(err)

		requestLogger := logger.WithError(err)
		fields := []logging.Field{
			logging.String("method", c.Request.Method),
			logging.String("path", c.Request.URL.Path),
			logging.Int("status_code", status),
		}
		if status >= http.StatusInternalServerError {
			requestLogger.Error(c.Request.Context(), "Request failed", fields...)
		} else {
			requestLogger.Debug(c.Request.Context(), "Request rejected", fields...)
		}

		c.JSON(status, errors.GetErrorResponse(err))
	}
}

// AbortWithAppError sets an application error on the context and aborts.
func AbortWithAppError(c *gin.Context, appErr *errors.AppError) {
	_ = c.Error(appErr)
	c.Abort()
}

// AbortValidation is a convenience function for validation errors.
func AbortValidation(c *gin.Context, details any) {
	AbortWithAppError(c, errors.ErrValidation.WithDetails(details))
}

// AbortMissingParameter rejects a request lacking a required parameter.
func AbortMissingParameter(c *gin.Context, message string) {
	AbortWithAppError(c, errors.ErrMissingParameter.WithMessage(message))
}

// AbortInternal is a convenience function for 500 errors.
// The underlying error is logged but not exposed to the client.
func AbortInternal(c *gin.Context, err error) {
	AbortWithAppError(c, errors.ErrInternal.WithError(err))
}

// RecoveryMiddleware replaces gin.Recovery so that panics are logged with
// their stack and answered with the JSON error envelope.
func RecoveryMiddleware(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.Error(c.Request.Context(), "Panic recovered",
					logging.String("method", c.Request.Method),
					logging.String("path", c.Request.URL.Path),
					logging.String("panic", fmt.Sprintf("%v", recovered)),
					logging.String("stack", string(debug.Stack())))

				c.AbortWithStatusJSON(http.StatusInternalServerError, errors.GetErrorResponse(errors.ErrInternal))
			}
		}()
		c.Next()
	}
}
