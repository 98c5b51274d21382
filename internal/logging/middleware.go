package logging

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware propagates X-Request-ID or assigns a fresh one.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(ContextWithRequestID(c.Request.Context(), requestID))

		c.Next()
	}
}

// RequestLoggingMiddleware logs one line per request, at error level for 5xx
// and warn for 4xx.
func RequestLoggingMiddleware(logger Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		ctx := c.Request.Context()
		status := c.Writer.Status()
		fields := []Field{
			String("client_ip", c.ClientIP()),
			String("method", c.Request.Method),
			String("path", path),
			Int("status_code", status),
			Duration("latency", time.Since(start)),
			String("user_agent", c.Request.UserAgent()),
			Int64("request_size", c.Request.ContentLength),
			Int("response_size", c.Writer.Size()),
		}

		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			fields = append(fields, String("error", errs))
		}

		switch {
		case status >= 500:
			logger.Error(ctx, "HTTP request completed", fields...)
		case status >= 400:
			logger.Warn(ctx, "HTTP request completed", fields...)
		default:
			logger.Info(ctx, "HTTP request completed", fields...)
		}
	}
}
