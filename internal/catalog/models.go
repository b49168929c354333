package catalog

import (
	"context"

	id "sisvita/pkg/domain"
)

// Kind partitions catalog entries into independent description spaces.
// Lookups always scope to one kind; "DNI" the document type never
// collides with a location that happens to share the text.
type Kind string

const (
	KindUserType     Kind = "user_type"
	KindGender       Kind = "gender"
	KindDocumentType Kind = "document_type"
	KindLocation     Kind = "location"
)

// Entry is a reference-data row: a stable ID for a human-readable
// description within a kind.
type Entry struct {
	ID          id.CatalogID
	Kind        Kind
	Description string
}

// Store resolves catalog descriptions to their IDs. Implementations
// return sentinel.ErrNotFound when no entry matches.
type Store interface {
	FindIDByDescription(ctx context.Context, kind Kind, description string) (id.CatalogID, error)
}

// Descriptions the registration flow depends on.
const (
	DescriptionPatient = "Patient"
)
