package audit

import (
	"time"

	id "sisvita/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance.
	// These require tamper-proof storage and long retention.
	// Examples: account creation, compensating deletes.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring.
	// Examples: failed logins, token validation failures.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and
	// operational visibility. These can be sampled with short retention.
	// Examples: verification emails requested.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	UserID    id.UserID
	Action    string
	Reason    string
	// Enrichment fields for audit trail completeness.
	Email     string // registrant email when available
	RequestID string // correlation ID from HTTP request context
	ClientIP  string
	Device    string // parsed device description from the User-Agent
}

type AuditEvent string

const (
	// Registration events
	EventUserRegistered      AuditEvent = "user_registered"
	EventIdentityCompensated AuditEvent = "identity_compensated"

	// Verification events
	EventVerificationRequested AuditEvent = "verification_requested"
	EventEmailVerified         AuditEvent = "email_verified"

	// Login events
	EventLoginSucceeded AuditEvent = "login_succeeded"
	EventLoginFailed    AuditEvent = "login_failed"
)

// eventCategories is the source of truth for routing; events missing
// here default to operations.
var eventCategories = map[AuditEvent]EventCategory{
	EventUserRegistered:        CategoryCompliance,
	EventIdentityCompensated:   CategoryCompliance,
	EventEmailVerified:         CategoryCompliance,
	EventVerificationRequested: CategoryOperations,
	EventLoginSucceeded:        CategorySecurity,
	EventLoginFailed:           CategorySecurity,
}

// Category returns the routing category for the event.
func (e AuditEvent) Category() EventCategory {
	if c, ok := eventCategories[e]; ok {
		return c
	}
	return CategoryOperations
}
