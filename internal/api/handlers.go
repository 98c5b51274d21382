package api

import (
	"context"

	"github.com/madfam-org/ticketbooth/internal/logging"
	"github.com/madfam-org/ticketbooth/internal/monitoring"
	"github.com/madfam-org/ticketbooth/internal/services"
	"github.com/madfam-org/ticketbooth/internal/validation"
	"github.com/madfam-org/ticketbooth/pkg/types"
)

// TokenManager is the token service as seen by the handlers.
type TokenManager interface {
	CreateToken(ctx context.Context, input services.CreateTokenInput) (*types.Token, error)
	GetActiveTokens(ctx context.Context, userID string) ([]types.Token, error)
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BuildInfo identifies the running binary.
type BuildInfo struct {
	Service string
	Version string
}

type Handler struct {
	tokens    TokenManager
	validator *validation.Validator
	store     Pinger
	metrics   *monitoring.MetricsCollector
	logger    logging.Logger
	build     BuildInfo
}

func NewHandler(
	tokens TokenManager,
	validator *validation.Validator,
	store Pinger,
	metrics *monitoring.MetricsCollector,
	logger logging.Logger,
	build BuildInfo,
) *Handler {
	return &Handler{
		tokens:    tokens,
		validator: validator,
		store:     store,
		metrics:   metrics,
		logger:    logger,
		build:     build,
	}
}
