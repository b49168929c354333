package authn

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"sisvita/internal/identity"
	jwttoken "sisvita/internal/jwt_token"
	"sisvita/internal/platform/metrics"
	"sisvita/internal/registration/models"
	id "sisvita/pkg/domain"
	dErrors "sisvita/pkg/domain-errors"
	"sisvita/pkg/platform/audit"
	"sisvita/pkg/requestcontext"
)

// CredentialVerifier checks an email/password pair.
type CredentialVerifier interface {
	VerifyPassword(ctx context.Context, email, password string) (*identity.Identity, error)
}

// AccountFinder loads the user account for flag checks.
type AccountFinder interface {
	FindAccount(ctx context.Context, userID id.UserID) (*models.UserAccount, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Result is a successful login outcome.
type Result struct {
	UserID        id.UserID
	AccessToken   string
	ExpiresIn     time.Duration
	EmailVerified bool
}

// Service handles login. Credential failures are indistinct on the
// wire; only the audit trail records which check failed.
type Service struct {
	identities      CredentialVerifier
	accounts        AccountFinder
	tokens          *jwttoken.JWTService
	accessTTL       time.Duration
	requireVerified bool
	logger          *slog.Logger
	auditPublisher  AuditPublisher
	metrics         *metrics.Metrics
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

// WithRequireVerified makes login refuse accounts that have not
// confirmed their email address.
func WithRequireVerified(require bool) Option {
	return func(s *Service) {
		s.requireVerified = require
	}
}

// New constructs a Service.
func New(identities CredentialVerifier, accounts AccountFinder, tokens *jwttoken.JWTService, accessTTL time.Duration, opts ...Option) *Service {
	s := &Service{
		identities: identities,
		accounts:   accounts,
		tokens:     tokens,
		accessTTL:  accessTTL,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var errInvalidCredentials = dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")

// Login verifies credentials and mints an access token.
func (s *Service) Login(ctx context.Context, email, password string) (*Result, error) {
	if email == "" || password == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email and password are required")
	}

	ident, err := s.identities.VerifyPassword(ctx, email, password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			s.recordFailure(ctx, id.UserID{}, email, "invalid_credentials")
			return nil, errInvalidCredentials
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify credentials")
	}

	if !ident.Active {
		s.recordFailure(ctx, ident.ID, email, "inactive")
		return nil, errInvalidCredentials
	}

	account, err := s.accounts.FindAccount(ctx, ident.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	if !account.Active {
		s.recordFailure(ctx, ident.ID, email, "inactive")
		return nil, errInvalidCredentials
	}
	if s.requireVerified && !account.EmailVerified {
		s.recordFailure(ctx, ident.ID, email, "unverified")
		return nil, dErrors.New(dErrors.CodeForbidden, "email address not verified")
	}

	token, err := s.tokens.Generate(ident.ID, ident.Email, jwttoken.PurposeAccess, s.accessTTL)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mint access token")
	}

	s.logAudit(ctx, audit.EventLoginSucceeded, ident.ID, email, "")
	if s.metrics != nil {
		s.metrics.LoginsTotal.WithLabelValues("success").Inc()
	}

	return &Result{
		UserID:        ident.ID,
		AccessToken:   token,
		ExpiresIn:     s.accessTTL,
		EmailVerified: account.EmailVerified,
	}, nil
}

func (s *Service) recordFailure(ctx context.Context, userID id.UserID, email, reason string) {
	s.logger.WarnContext(ctx, "login rejected", "email", email, "reason", reason)
	s.logAudit(ctx, audit.EventLoginFailed, userID, email, reason)
	if s.metrics != nil {
		s.metrics.LoginsTotal.WithLabelValues(reason).Inc()
	}
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, userID id.UserID, email, reason string) {
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		Category:  event.Category(),
		Timestamp: requestcontext.Now(ctx),
		UserID:    userID,
		Action:    string(event),
		Reason:    reason,
		Email:     email,
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
		Device:    requestcontext.Device(ctx),
	})
}
