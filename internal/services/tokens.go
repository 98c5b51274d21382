package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/madfam-org/ticketbooth/internal/db"
	"github.com/madfam-org/ticketbooth/internal/logging"
	"github.com/madfam-org/ticketbooth/pkg/types"
)

// CreateTokenInput is a validated request to mint a token.
type CreateTokenInput struct {
	UserID           string
	Scopes           []string
	ExpiresInMinutes int
}

// Clock returns the current time.
type Clock func() time.Time

// TokenGenerator returns a new opaque token value.
type TokenGenerator func() string

// SystemClock reads the wall clock in UTC, truncated to the precision tokens
// are reported with.
func SystemClock() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// UUIDTokenGenerator returns random version 4 UUIDs.
func UUIDTokenGenerator() string {
	return uuid.New().String()
}

// TokenService mints tokens and lists the ones still active
type TokenService struct {
	store    db.TokenStore
	logger   logging.Logger
	now      Clock
	generate TokenGenerator
}

// TokenServiceOption customizes a TokenService.
type TokenServiceOption func(*TokenService)

func WithClock(clock Clock) TokenServiceOption {
	return func(s *TokenService) { s.now = clock }
}

func WithTokenGenerator(generate TokenGenerator) TokenServiceOption {
	return func(s *TokenService) { s.generate = generate }
}

// NewTokenService creates a new token service
func NewTokenService(store db.TokenStore, logger logging.Logger, opts ...TokenServiceOption) *TokenService {
	s := &TokenService{
		store:    store,
		logger:   logger.WithField("component", "token_service"),
		now:      SystemClock,
		generate: UUIDTokenGenerator,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateToken mints and stores a token for a validated input. Exactly one
// record is inserted per call.
func (s *TokenService) CreateToken(ctx context.Context, input CreateTokenInput) (*types.Token, error) {
	ctx, span := logging.StartSpan(ctx, "TokenService.CreateToken")
	defer span.End()
	logging.AddSpanAttribute(span, "token.user_id", input.UserID)
	logging.AddSpanAttribute(span, "token.scope_count", len(input.Scopes))
	logging.AddSpanAttribute(span, "token.expires_in_minutes", input.ExpiresInMinutes)

	createdAt := s.now()
	pending := &db.PendingToken{
		UserID:    input.UserID,
		Scopes:    append([]string(nil), input.Scopes...),
		Token:     s.generate(),
		CreatedAt: createdAt,
		ExpiresAt: CalculateExpiresAt(createdAt, input.ExpiresInMinutes),
	}

	record, err := s.store.Insert(ctx, pending)
	if err != nil {
		logging.SetSpanError(span, err)
		return nil, fmt.Errorf("create token: %w", err)
	}

	s.logger.Info(ctx, "Token created",
		logging.String("token_id", record.ID),
		logging.String("user_id", record.UserID),
		logging.Int("scope_count", len(record.Scopes)),
		logging.String("expires_at", types.FormatTimestamp(record.ExpiresAt)),
	)

	token := toPublicToken(record)
	return &token, nil
}

// GetActiveTokens returns the user's tokens that have not expired, newest
// first. The result is never nil.
func (s *TokenService) GetActiveTokens(ctx context.Context, userID string) ([]types.Token, error) {
	ctx, span := logging.StartSpan(ctx, "TokenService.GetActiveTokens")
	defer span.End()
	logging.AddSpanAttribute(span, "token.user_id", userID)

	now := s.now()

	records, err := s.store.ListActive(ctx, userID, now)
	if err != nil {
		logging.SetSpanError(span, err)
		return nil, fmt.Errorf("list active tokens: %w", err)
	}

	active := make([]*db.TokenRecord, 0, len(records))
	for _, record := range records {
		if record.IsActive(now) {
			active = append(active, record)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].CreatedAt.After(active[j].CreatedAt)
	})

	tokens := make([]types.Token, 0, len(active))
	for _, record := range active {
		tokens = append(tokens, toPublicToken(record))
	}

	logging.AddSpanAttribute(span, "token.active_count", len(tokens))
	s.logger.Debug(ctx, "Active tokens listed",
		logging.String("user_id", userID),
		logging.Int("count", len(tokens)),
	)

	return tokens, nil
}

func toPublicToken(record *db.TokenRecord) types.Token {
	return types.Token{
		ID:        record.ID,
		UserID:    record.UserID,
		Scopes:    append([]string(nil), record.Scopes...),
		Token:     record.Token,
		CreatedAt: types.FormatTimestamp(record.CreatedAt),
		ExpiresAt: types.FormatTimestamp(record.ExpiresAt),
	}
}
