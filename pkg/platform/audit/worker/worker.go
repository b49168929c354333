// Package worker materializes audit events from the Kafka topic into
// the audit_events table so they can be queried per user. It is the
// read-side counterpart of the write-only Kafka sink.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	id "sisvita/pkg/domain"
	audit "sisvita/pkg/platform/audit"
)

// recordNamespace seeds deterministic event IDs so reprocessing a
// record after a rebalance stays idempotent.
var recordNamespace = uuid.MustParse("8d7a1e52-9c3b-4f6d-a140-5b2f9e6c0d11")

// MaterializeStore persists a consumed event under a stable ID.
type MaterializeStore interface {
	Materialize(ctx context.Context, eventID uuid.UUID, event audit.Event) error
}

// Materializer consumes the audit topic and writes events to the store.
type Materializer struct {
	client *kgo.Client
	store  MaterializeStore
	logger *slog.Logger
}

// NewMaterializer joins the consumer group for the audit topic.
func NewMaterializer(brokers []string, topic, group string, store MaterializeStore, logger *slog.Logger) (*Materializer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumerGroup(group),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka consumer: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Materializer{client: client, store: store, logger: logger}, nil
}

// Run polls until the context is cancelled. Malformed or unwritable
// records are logged and skipped; the stream must keep moving.
func (m *Materializer) Run(ctx context.Context) error {
	for {
		fetches := m.client.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return ctx.Err()
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			m.logger.Error("audit fetch failed", "topic", topic, "partition", partition, "error", err)
		})
		fetches.EachRecord(func(record *kgo.Record) {
			if err := m.materialize(ctx, record); err != nil {
				m.logger.Error("failed to materialize audit event",
					"offset", record.Offset, "error", err)
			}
		})
	}
}

// Close leaves the consumer group.
func (m *Materializer) Close() {
	m.client.Close()
}

type wireEvent struct {
	Category  string `json:"category"`
	Timestamp string `json:"timestamp"`
	UserID    string `json:"user_id"`
	Action    string `json:"action"`
	Reason    string `json:"reason"`
	Email     string `json:"email"`
	RequestID string `json:"request_id"`
	ClientIP  string `json:"client_ip"`
	Device    string `json:"device"`
}

func (m *Materializer) materialize(ctx context.Context, record *kgo.Record) error {
	var wire wireEvent
	if err := json.Unmarshal(record.Value, &wire); err != nil {
		return fmt.Errorf("decode audit record: %w", err)
	}

	event := audit.Event{
		Category:  audit.EventCategory(wire.Category),
		Action:    wire.Action,
		Reason:    wire.Reason,
		Email:     wire.Email,
		RequestID: wire.RequestID,
		ClientIP:  wire.ClientIP,
		Device:    wire.Device,
	}
	if ts, err := time.Parse(time.RFC3339Nano, wire.Timestamp); err == nil {
		event.Timestamp = ts
	}
	if wire.UserID != "" {
		if userID, err := id.ParseUserID(wire.UserID); err == nil {
			event.UserID = userID
		}
	}

	eventID := uuid.NewSHA1(recordNamespace,
		[]byte(fmt.Sprintf("%s/%d/%d", record.Topic, record.Partition, record.Offset)))
	return m.store.Materialize(ctx, eventID, event)
}
