package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"github.com/madfam-org/ticketbooth/internal/errors"
	"github.com/madfam-org/ticketbooth/internal/logging"
)

// APIKeyHeader carries the shared secret.
const APIKeyHeader = "x-api-key"

// APIKeyAuth admits requests whose x-api-key header equals expectedKey. An
// empty expectedKey is a server misconfiguration and fails every request with
// a 500 rather than a 401.
func APIKeyAuth(expectedKey string, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if expectedKey == "" {
			logger.Error(c.Request.Context(), "API key is not configured; rejecting request",
				logging.String("path", c.Request.URL.Path))
			AbortWithAppError(c, errors.ErrConfiguration)
			return
		}

		provided := c.GetHeader(APIKeyHeader)
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(expectedKey)) != 1 {
			logger.Warn(c.Request.Context(), "Rejected request with missing or invalid API key",
				logging.String("path", c.Request.URL.Path),
				logging.String("client_ip", c.ClientIP()),
				logging.Bool("key_present", provided != ""))
			AbortWithAppError(c, errors.ErrUnauthorized)
			return
		}

		c.Next()
	}
}
