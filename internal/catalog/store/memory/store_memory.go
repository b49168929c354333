package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"sisvita/internal/catalog"
	id "sisvita/pkg/domain"
	"sisvita/pkg/platform/sentinel"
)

// InMemoryStore keeps catalog entries in memory for tests/dev.
// Description matching is exact but case-insensitive, matching the
// Postgres functional index.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[entryKey]id.CatalogID
}

type entryKey struct {
	kind        catalog.Kind
	description string
}

// New constructs an empty in-memory catalog store.
func New() *InMemoryStore {
	return &InMemoryStore{entries: make(map[entryKey]id.CatalogID)}
}

// NewSeeded constructs a store preloaded with the given entries.
func NewSeeded(entries []catalog.Entry) *InMemoryStore {
	s := New()
	for _, e := range entries {
		s.Put(e)
	}
	return s
}

// Put adds or replaces an entry.
func (s *InMemoryStore) Put(entry catalog.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[keyOf(entry.Kind, entry.Description)] = entry.ID
}

func (s *InMemoryStore) FindIDByDescription(_ context.Context, kind catalog.Kind, description string) (id.CatalogID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if catalogID, ok := s.entries[keyOf(kind, description)]; ok {
		return catalogID, nil
	}
	return id.CatalogID{}, fmt.Errorf("catalog %s %q: %w", kind, description, sentinel.ErrNotFound)
}

func keyOf(kind catalog.Kind, description string) entryKey {
	return entryKey{kind: kind, description: strings.ToLower(strings.TrimSpace(description))}
}
