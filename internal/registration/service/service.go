package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"sisvita/internal/catalog"
	"sisvita/internal/identity"
	"sisvita/internal/platform/metrics"
	"sisvita/internal/registration/models"
	id "sisvita/pkg/domain"
	dErrors "sisvita/pkg/domain-errors"
	"sisvita/pkg/platform/audit"
	"sisvita/pkg/requestcontext"
)

const confirmationMessage = "Account created. Check your inbox to verify your email address."

// IdentityProvider provisions and tears down authentication records.
type IdentityProvider interface {
	Create(ctx context.Context, email, password, displayName string) (id.UserID, error)
	Delete(ctx context.Context, userID id.UserID) error
}

// CatalogFinder resolves reference-data descriptions to IDs.
type CatalogFinder interface {
	FindIDByDescription(ctx context.Context, kind catalog.Kind, description string) (id.CatalogID, error)
}

// ProfileStore persists the Person/UserAccount pair atomically.
type ProfileStore interface {
	CreatePair(ctx context.Context, person *models.Person, account *models.UserAccount) error
}

// VerificationSender triggers the verification-link notification.
// Implementations swallow their own failures; a lost email never fails
// a registration.
type VerificationSender interface {
	SendVerificationLink(ctx context.Context, userID id.UserID, email string)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates registration: validate, provision the identity,
// resolve references, write the profile pair, trigger verification.
//
// Failure handling is two-phase. Identity creation failing needs no
// compensation since nothing was written yet. Only a profile-write
// failure triggers the compensating identity delete; a failed
// best-effort lookup never does.
type Service struct {
	identities     IdentityProvider
	catalogs       CatalogFinder
	profiles       ProfileStore
	verifications  VerificationSender
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(s *Service)

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
func New(identities IdentityProvider, catalogs CatalogFinder, profiles ProfileStore, verifications VerificationSender, opts ...Option) *Service {
	s := &Service{
		identities:    identities,
		catalogs:      catalogs,
		profiles:      profiles,
		verifications: verifications,
		logger:        slog.Default(),
		tracer:        otel.Tracer("sisvita/registration"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register runs the full registration flow. No retries anywhere: every
// external call succeeds once or the registration fails.
func (s *Service) Register(ctx context.Context, req models.Request) (*models.Result, error) {
	ctx, span := s.tracer.Start(ctx, "registration.Register")
	defer span.End()

	req.Normalize()
	if err := req.Validate(ctx); err != nil {
		s.incrementFailed(err)
		return nil, err
	}
	birthDate, err := req.ParsedBirthDate()
	if err != nil {
		s.incrementFailed(err)
		return nil, err
	}

	// Phase 1: identity. A failure here leaves nothing behind.
	userID, err := s.identities.Create(ctx, req.Email, req.Password, req.DisplayName())
	if err != nil {
		err = mapIdentityError(err)
		span.RecordError(err)
		s.incrementFailed(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("user.id", userID.String()))

	userTypeID := s.lookup(ctx, catalog.KindUserType, catalog.DescriptionPatient)

	// Gender, document type and location have no ordering dependency,
	// so resolve them concurrently. All three are best-effort.
	var genderID, documentTypeID, locationID *id.CatalogID
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		genderID = s.lookup(groupCtx, catalog.KindGender, req.Gender)
		return nil
	})
	group.Go(func() error {
		documentTypeID = s.lookup(groupCtx, catalog.KindDocumentType, req.DocumentType)
		return nil
	})
	if req.Location != "" {
		group.Go(func() error {
			locationID = s.lookup(groupCtx, catalog.KindLocation, req.Location)
			return nil
		})
	}
	_ = group.Wait()

	// Both records share one timestamp captured before the transaction.
	createdAt := requestcontext.Now(ctx)
	person := &models.Person{
		ID:             userID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		MiddleName:     optional(req.MiddleName),
		BirthDate:      birthDate,
		Phone:          optional(req.Phone),
		Email:          req.Email,
		DocumentNumber: req.DocumentNumber,
		GenderID:       genderID,
		DocumentTypeID: documentTypeID,
		LocationID:     locationID,
		Active:         true,
		CreatedAt:      createdAt,
	}
	account := &models.UserAccount{
		ID:         userID,
		PersonID:   userID,
		UserTypeID: userTypeID,
		Active:     true,
		CreatedAt:  createdAt,
	}

	// Phase 2: profile pair. This is the only failure that compensates.
	if err := s.profiles.CreatePair(ctx, person, account); err != nil {
		span.RecordError(err)
		s.compensate(ctx, userID, err)
		wrapped := dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist profile")
		s.incrementFailed(wrapped)
		return nil, wrapped
	}

	s.verifications.SendVerificationLink(ctx, userID, req.Email)

	s.logAudit(ctx, audit.EventUserRegistered, userID, req.Email, "")
	if s.metrics != nil {
		s.metrics.RegistrationsTotal.Inc()
	}
	s.logger.InfoContext(ctx, "registration completed", "user_id", userID)

	return &models.Result{UserID: userID, Message: confirmationMessage}, nil
}

// lookup resolves a catalog description, returning nil on any failure.
func (s *Service) lookup(ctx context.Context, kind catalog.Kind, description string) *id.CatalogID {
	catalogID, err := s.catalogs.FindIDByDescription(ctx, kind, description)
	if err != nil {
		s.logger.WarnContext(ctx, "catalog lookup failed, storing null reference",
			"kind", kind, "description", description, "error", err)
		return nil
	}
	return &catalogID
}

// compensate deletes the identity created in phase 1 after a phase 2
// failure. Best-effort: a failed delete is logged, not surfaced.
func (s *Service) compensate(ctx context.Context, userID id.UserID, cause error) {
	s.logger.ErrorContext(ctx, "profile write failed, deleting identity",
		"user_id", userID, "error", cause)
	if err := s.identities.Delete(ctx, userID); err != nil {
		s.logger.ErrorContext(ctx, "compensating identity delete failed",
			"user_id", userID, "error", err)
		return
	}
	s.logAudit(ctx, audit.EventIdentityCompensated, userID, "", cause.Error())
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, userID id.UserID, emailAddr, reason string) {
	if s.auditPublisher == nil {
		return
	}
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		Category:  event.Category(),
		Timestamp: requestcontext.Now(ctx),
		UserID:    userID,
		Action:    string(event),
		Reason:    reason,
		Email:     emailAddr,
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
		Device:    requestcontext.Device(ctx),
	})
}

func (s *Service) incrementFailed(err error) {
	if s.metrics != nil {
		s.metrics.RegistrationsFailed.WithLabelValues(string(dErrors.CodeOf(err))).Inc()
	}
}

func mapIdentityError(err error) error {
	switch {
	case errors.Is(err, identity.ErrEmailTaken):
		return dErrors.New(dErrors.CodeConflict, "email is already registered")
	case errors.Is(err, identity.ErrWeakPassword):
		return dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters with a letter and a digit")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create identity")
	}
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
