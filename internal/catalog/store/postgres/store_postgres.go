package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"sisvita/internal/catalog"
	id "sisvita/pkg/domain"
	"sisvita/pkg/platform/sentinel"
)

// Store resolves catalog entries from PostgreSQL. Reference data only;
// there is no write path outside migrations.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindIDByDescription(ctx context.Context, kind catalog.Kind, description string) (id.CatalogID, error) {
	query := `
		SELECT id
		FROM catalog_entries
		WHERE kind = $1 AND lower(description) = lower($2)
	`
	var rawID uuid.UUID
	err := s.db.QueryRowContext(ctx, query, string(kind), description).Scan(&rawID)
	if errors.Is(err, sql.ErrNoRows) {
		return id.CatalogID{}, fmt.Errorf("catalog %s %q: %w", kind, description, sentinel.ErrNotFound)
	}
	if err != nil {
		return id.CatalogID{}, fmt.Errorf("find catalog entry: %w", err)
	}
	return id.CatalogID(rawID), nil
}
