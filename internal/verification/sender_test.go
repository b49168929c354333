package verification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	jwttoken "sisvita/internal/jwt_token"
	id "sisvita/pkg/domain"
	"sisvita/pkg/platform/audit"
	"sisvita/pkg/platform/audit/publisher"
	auditmemory "sisvita/pkg/platform/audit/store/memory"
)

func TestSenderEmitsAuditTrail(t *testing.T) {
	store := auditmemory.NewInMemoryStore()
	auditor := publisher.NewPublisher(store)
	tokens := jwttoken.NewJWTService("test-signing-key", "test-issuer")
	sender := NewSender(tokens, "https://app.example.com/verify", time.Hour,
		WithSenderAuditPublisher(auditor))

	userID := id.NewUserID()
	sender.SendVerificationLink(context.Background(), userID, "u@x.com")

	events, err := store.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, string(audit.EventVerificationRequested), events[0].Action)
	require.Equal(t, "u@x.com", events[0].Email)
}
