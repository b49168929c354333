package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	id "sisvita/pkg/domain"
	"sisvita/pkg/platform/sentinel"
	"sisvita/pkg/requestcontext"
)

// Store persists identities. Implementations return sentinel errors:
// ErrAlreadyUsed when the email is taken, ErrNotFound for misses.
type Store interface {
	Create(ctx context.Context, identity *Identity) error
	FindByID(ctx context.Context, userID id.UserID) (*Identity, error)
	FindByEmail(ctx context.Context, email string) (*Identity, error)
	Delete(ctx context.Context, userID id.UserID) error
	SetEmailVerified(ctx context.Context, userID id.UserID) error
}

// Provider is the identity provider: it owns credential hashing, email
// uniqueness, and the compensating delete. Registration and login go
// through it, never through the store directly.
type Provider struct {
	store Store
}

func NewProvider(store Store) *Provider {
	return &Provider{store: store}
}

// Create provisions an identity. Email uniqueness is enforced here and
// only here; a duplicate surfaces as ErrEmailTaken.
func (p *Provider) Create(ctx context.Context, email, password, displayName string) (id.UserID, error) {
	if err := ValidatePassword(password); err != nil {
		return id.UserID{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return id.UserID{}, fmt.Errorf("hash password: %w", err)
	}

	identity := &Identity{
		ID:           id.NewUserID(),
		Email:        strings.TrimSpace(email),
		PasswordHash: string(hash),
		DisplayName:  displayName,
		Active:       true,
		CreatedAt:    requestcontext.Now(ctx),
	}

	if err := p.store.Create(ctx, identity); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return id.UserID{}, ErrEmailTaken
		}
		return id.UserID{}, fmt.Errorf("create identity: %w", err)
	}
	return identity.ID, nil
}

// Delete removes an identity. Used as the compensating action when the
// profile write fails after identity creation.
func (p *Provider) Delete(ctx context.Context, userID id.UserID) error {
	if err := p.store.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete identity %s: %w", userID, err)
	}
	return nil
}

// VerifyPassword checks a credential pair. A missing identity and a
// wrong password both return ErrInvalidCredentials so callers cannot
// probe which emails exist.
func (p *Provider) VerifyPassword(ctx context.Context, email, password string) (*Identity, error) {
	identity, err := p.store.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return identity, nil
}

// FindByID fetches an identity record.
func (p *Provider) FindByID(ctx context.Context, userID id.UserID) (*Identity, error) {
	return p.store.FindByID(ctx, userID)
}

// MarkEmailVerified flips the verified flag on the identity record.
func (p *Provider) MarkEmailVerified(ctx context.Context, userID id.UserID) error {
	if err := p.store.SetEmailVerified(ctx, userID); err != nil {
		return fmt.Errorf("mark email verified: %w", err)
	}
	return nil
}
