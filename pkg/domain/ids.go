// Package domain holds the typed identifiers shared across modules.
// IDs are distinct types over uuid.UUID so the compiler rejects
// cross-assignment between, say, a user and a catalog entry.
package domain

import (
	"github.com/google/uuid"

	dErrors "sisvita/pkg/domain-errors"
)

// UserID identifies an Identity and, by construction, its Person and
// UserAccount records (they share the same id).
type UserID uuid.UUID

// CatalogID identifies an entry in one of the reference catalogs.
type CatalogID uuid.UUID

// NewUserID returns a fresh random user id.
func NewUserID() UserID {
	return UserID(uuid.New())
}

// NewCatalogID returns a fresh random catalog entry id.
func NewCatalogID() CatalogID {
	return CatalogID(uuid.New())
}

func (id UserID) String() string    { return uuid.UUID(id).String() }
func (id CatalogID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id CatalogID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// ParseUserID parses and validates a user id at a trust boundary.
// IDs must be valid, non-empty, non-nil UUIDs.
func ParseUserID(raw string) (UserID, error) {
	u, err := parseUUID(raw)
	if err != nil {
		return UserID{}, err
	}
	return UserID(u), nil
}

// ParseCatalogID parses and validates a catalog entry id.
func ParseCatalogID(raw string) (CatalogID, error) {
	u, err := parseUUID(raw)
	if err != nil {
		return CatalogID{}, err
	}
	return CatalogID(u), nil
}

func parseUUID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id is required")
	}
	u, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id must not be the nil UUID")
	}
	return u, nil
}
