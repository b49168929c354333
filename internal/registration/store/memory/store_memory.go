package memory

import (
	"context"
	"fmt"
	"sync"

	"sisvita/internal/registration/models"
	id "sisvita/pkg/domain"
	"sisvita/pkg/platform/sentinel"
)

// InMemoryStore keeps Person/UserAccount pairs in memory. A single
// mutex over both maps gives CreatePair the same all-or-nothing
// visibility the SQL store gets from its transaction.
type InMemoryStore struct {
	mu       sync.RWMutex
	persons  map[id.UserID]*models.Person
	accounts map[id.UserID]*models.UserAccount
}

// New constructs an empty in-memory profile store.
func New() *InMemoryStore {
	return &InMemoryStore{
		persons:  make(map[id.UserID]*models.Person),
		accounts: make(map[id.UserID]*models.UserAccount),
	}
}

func (s *InMemoryStore) CreatePair(_ context.Context, person *models.Person, account *models.UserAccount) error {
	if person.ID != account.ID {
		return fmt.Errorf("person %s and account %s diverge: %w", person.ID, account.ID, sentinel.ErrInvalidState)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.persons[person.ID]; exists {
		return fmt.Errorf("profile %s: %w", person.ID, sentinel.ErrAlreadyUsed)
	}

	personCopy := *person
	accountCopy := *account
	s.persons[person.ID] = &personCopy
	s.accounts[account.ID] = &accountCopy
	return nil
}

func (s *InMemoryStore) FindPerson(_ context.Context, userID id.UserID) (*models.Person, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if person, ok := s.persons[userID]; ok {
		cp := *person
		return &cp, nil
	}
	return nil, fmt.Errorf("person %s: %w", userID, sentinel.ErrNotFound)
}

func (s *InMemoryStore) FindAccount(_ context.Context, userID id.UserID) (*models.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if account, ok := s.accounts[userID]; ok {
		cp := *account
		return &cp, nil
	}
	return nil, fmt.Errorf("account %s: %w", userID, sentinel.ErrNotFound)
}

func (s *InMemoryStore) SetEmailVerified(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[userID]
	if !ok {
		return fmt.Errorf("account %s: %w", userID, sentinel.ErrNotFound)
	}
	account.EmailVerified = true
	return nil
}

// Count reports how many profile pairs are stored. Test helper.
func (s *InMemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.persons)
}
