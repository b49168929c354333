//go:build integration

package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	id "sisvita/pkg/domain"
	audit "sisvita/pkg/platform/audit"
	"sisvita/pkg/platform/sentinel"
	"sisvita/pkg/testutil/containers"
)

func TestSinkPublishesUserKeyedEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	broker := containers.NewRedpandaContainer(t)
	topic := "sisvita.audit.test"

	sink, err := NewSink(ctx, broker.Brokers, topic)
	require.NoError(t, err)
	defer sink.Close()

	userID := id.NewUserID()
	event := audit.Event{
		Timestamp: time.Now().UTC(),
		UserID:    userID,
		Action:    string(audit.EventUserRegistered),
		Email:     "u@x.com",
		RequestID: "req-123",
	}
	require.NoError(t, sink.Append(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(broker.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	fetches := consumer.PollFetches(fetchCtx)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.Len(t, records, 1)
	require.Equal(t, userID.String(), string(records[0].Key))

	var wire struct {
		Category  string `json:"category"`
		UserID    string `json:"user_id"`
		Action    string `json:"action"`
		Email     string `json:"email"`
		RequestID string `json:"request_id"`
	}
	require.NoError(t, json.Unmarshal(records[0].Value, &wire))
	require.Equal(t, string(audit.CategoryCompliance), wire.Category)
	require.Equal(t, userID.String(), wire.UserID)
	require.Equal(t, string(audit.EventUserRegistered), wire.Action)
	require.Equal(t, "u@x.com", wire.Email)
	require.Equal(t, "req-123", wire.RequestID)
}

func TestSinkIsWriteOnly(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	broker := containers.NewRedpandaContainer(t)

	sink, err := NewSink(ctx, broker.Brokers, "sisvita.audit.writeonly")
	require.NoError(t, err)
	defer sink.Close()

	_, err = sink.ListByUser(ctx, id.NewUserID())
	require.ErrorIs(t, err, sentinel.ErrUnavailable)
}
