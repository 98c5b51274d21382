package api

import (
	"github.com/gin-gonic/gin"

	"github.com/madfam-org/ticketbooth/internal/logging"
	"github.com/madfam-org/ticketbooth/internal/middleware"
)

// RouterConfig holds settings the router needs beyond the handler.
type RouterConfig struct {
	// APIKey is the shared secret for /api routes. Empty means every /api
	// request fails as misconfigured.
	APIKey         string
	MaxRequestSize int64
}

// NewRouter builds the gin engine with the full middleware chain.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	maxRequestSize := cfg.MaxRequestSize
	if maxRequestSize <= 0 {
		maxRequestSize = middleware.DefaultMaxRequestSize
	}

	router := gin.New()
	router.Use(
		middleware.RecoveryMiddleware(h.logger),
		logging.RequestIDMiddleware(),
		logging.TracingMiddleware(),
		logging.RequestLoggingMiddleware(h.logger),
		h.metrics.HTTPMetricsMiddleware(),
		middleware.SecurityHeadersMiddleware(),
		middleware.ErrorHandlerMiddleware(h.logger),
	)

	SetupRoutes(router, h, cfg.APIKey, maxRequestSize)
	return router
}

func SetupRoutes(router *gin.Engine, h *Handler, apiKey string, maxRequestSize int64) {
	// Health checks
	router.GET("/health", h.Health)
	router.GET("/health/live", h.LivenessProbe)
	router.GET("/health/ready", h.ReadinessProbe)

	// Metrics
	router.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	tokens := router.Group("/api/tokens")
	tokens.Use(
		middleware.APIKeyAuth(apiKey, h.logger),
		middleware.RequestSizeLimitMiddleware(maxRequestSize),
	)
	{
		tokens.POST("", h.CreateToken)
		tokens.GET("", h.ListActiveTokens)
	}
}
