package verification

import (
	"context"
	"errors"
	"log/slog"

	jwttoken "sisvita/internal/jwt_token"
	"sisvita/internal/platform/metrics"
	id "sisvita/pkg/domain"
	dErrors "sisvita/pkg/domain-errors"
	"sisvita/pkg/platform/audit"
	"sisvita/pkg/platform/sentinel"
	"sisvita/pkg/requestcontext"
)

// IdentityMarker flips the verified flag on the identity record.
type IdentityMarker interface {
	MarkEmailVerified(ctx context.Context, userID id.UserID) error
}

// AccountMarker flips the verified flag on the user account record.
type AccountMarker interface {
	SetEmailVerified(ctx context.Context, userID id.UserID) error
}

// Service confirms email-verification links: it validates the token
// and marks both the identity and the account as verified.
type Service struct {
	tokens         *jwttoken.JWTService
	identities     IdentityMarker
	accounts       AccountMarker
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(tokens *jwttoken.JWTService, identities IdentityMarker, accounts AccountMarker, opts ...Option) *Service {
	s := &Service{
		tokens:     tokens,
		identities: identities,
		accounts:   accounts,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Confirm validates a verification token and marks the user verified.
// Confirming twice is harmless; the flag update is idempotent.
func (s *Service) Confirm(ctx context.Context, token string) (id.UserID, error) {
	userID, err := s.tokens.ExtractUserID(token, jwttoken.PurposeEmailVerification)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			return id.UserID{}, err
		}
		return id.UserID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	if err := s.identities.MarkEmailVerified(ctx, userID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return id.UserID{}, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return id.UserID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark identity verified")
	}
	if err := s.accounts.SetEmailVerified(ctx, userID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return id.UserID{}, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return id.UserID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark account verified")
	}

	if s.auditPublisher != nil {
		_ = s.auditPublisher.Emit(ctx, audit.Event{
			Category:  audit.EventEmailVerified.Category(),
			Timestamp: requestcontext.Now(ctx),
			UserID:    userID,
			Action:    string(audit.EventEmailVerified),
			RequestID: requestcontext.RequestID(ctx),
			ClientIP:  requestcontext.ClientIP(ctx),
			Device:    requestcontext.Device(ctx),
		})
	}
	if s.metrics != nil {
		s.metrics.EmailsVerified.Inc()
	}
	s.logger.InfoContext(ctx, "email verified", "user_id", userID)

	return userID, nil
}
