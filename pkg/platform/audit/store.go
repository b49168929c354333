package audit

import (
	"context"

	id "sisvita/pkg/domain"
)

// Store persists audit events. The Postgres implementation writes a
// transactional outbox row so events commit atomically with the domain
// write that produced them; the memory implementation backs tests/dev.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID id.UserID) ([]Event, error)
}
