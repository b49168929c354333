package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"sisvita/internal/identity"
	id "sisvita/pkg/domain"
	"sisvita/pkg/platform/sentinel"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return ErrNotFound when the requested entity does not exist
// - Return ErrAlreadyUsed when the email uniqueness invariant would break
// - Return nil for successful operations

// InMemoryStore keeps identities in memory for tests/dev. Email
// uniqueness is case-insensitive, matching the Postgres unique index.
type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[id.UserID]*identity.Identity
	byEmail map[string]id.UserID
}

// New constructs an empty in-memory identity store.
func New() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[id.UserID]*identity.Identity),
		byEmail: make(map[string]id.UserID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, ident *identity.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := emailKey(ident.Email)
	if _, taken := s.byEmail[key]; taken {
		return fmt.Errorf("email %s: %w", ident.Email, sentinel.ErrAlreadyUsed)
	}

	cp := *ident
	s.byID[ident.ID] = &cp
	s.byEmail[key] = ident.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, userID id.UserID) (*identity.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if ident, ok := s.byID[userID]; ok {
		cp := *ident
		return &cp, nil
	}
	return nil, fmt.Errorf("identity %s: %w", userID, sentinel.ErrNotFound)
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*identity.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if userID, ok := s.byEmail[emailKey(email)]; ok {
		cp := *s.byID[userID]
		return &cp, nil
	}
	return nil, fmt.Errorf("identity for %s: %w", email, sentinel.ErrNotFound)
}

func (s *InMemoryStore) Delete(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ident, ok := s.byID[userID]
	if !ok {
		return fmt.Errorf("identity %s: %w", userID, sentinel.ErrNotFound)
	}
	delete(s.byEmail, emailKey(ident.Email))
	delete(s.byID, userID)
	return nil
}

func (s *InMemoryStore) SetEmailVerified(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ident, ok := s.byID[userID]
	if !ok {
		return fmt.Errorf("identity %s: %w", userID, sentinel.ErrNotFound)
	}
	ident.EmailVerified = true
	return nil
}

// Count reports how many identities are stored. Test helper.
func (s *InMemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
