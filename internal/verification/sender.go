package verification

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	jwttoken "sisvita/internal/jwt_token"
	id "sisvita/pkg/domain"
	"sisvita/pkg/platform/audit"
	"sisvita/pkg/requestcontext"
)

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Sender issues email-verification links. It is deliberately isolated:
// every failure is logged and swallowed, never propagated, so a lost
// email cannot fail a registration.
type Sender struct {
	tokens         *jwttoken.JWTService
	baseURL        string
	ttl            time.Duration
	logger         *slog.Logger
	auditPublisher AuditPublisher
}

type SenderOption func(*Sender)

func WithSenderLogger(logger *slog.Logger) SenderOption {
	return func(s *Sender) {
		s.logger = logger
	}
}

func WithSenderAuditPublisher(publisher AuditPublisher) SenderOption {
	return func(s *Sender) {
		s.auditPublisher = publisher
	}
}

// NewSender constructs a Sender. baseURL is the confirmation page the
// link points at; the token rides in its query string.
func NewSender(tokens *jwttoken.JWTService, baseURL string, ttl time.Duration, opts ...SenderOption) *Sender {
	s := &Sender{
		tokens:  tokens,
		baseURL: baseURL,
		ttl:     ttl,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SendVerificationLink mints a verification token and hands the link to
// the delivery side. Delivery is the mail relay's concern; here the
// link is logged at debug level for development setups without one.
func (s *Sender) SendVerificationLink(ctx context.Context, userID id.UserID, email string) {
	token, err := s.tokens.Generate(userID, email, jwttoken.PurposeEmailVerification, s.ttl)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to mint verification token",
			"user_id", userID, "error", err)
		return
	}

	link := s.baseURL + "?token=" + url.QueryEscape(token)
	s.logger.InfoContext(ctx, "verification link issued", "user_id", userID, "email", email)
	s.logger.DebugContext(ctx, "verification link", "link", link)

	if s.auditPublisher != nil {
		_ = s.auditPublisher.Emit(ctx, audit.Event{
			Category:  audit.EventVerificationRequested.Category(),
			Timestamp: requestcontext.Now(ctx),
			UserID:    userID,
			Action:    string(audit.EventVerificationRequested),
			Email:     email,
			RequestID: requestcontext.RequestID(ctx),
			ClientIP:  requestcontext.ClientIP(ctx),
			Device:    requestcontext.Device(ctx),
		})
	}
}
