// Package publisher forwards audit events to Kafka. The store append has
// already succeeded by the time an event reaches here; publishing exists so
// downstream consumers (compliance archiving, alerting) see the same log.
package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "duesgate/pkg/platform/audit"
)

// Kafka publishes audit events to a single topic, keyed by member so all
// events for one member land in one partition in order.
type Kafka struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafka connects to the brokers and ensures the audit topic exists.
func NewKafka(ctx context.Context, brokers []string, topic string, logger *slog.Logger) (*Kafka, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}

	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopics(ctx, 1, 1, nil, topic)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("create audit topic: %w", err)
	}
	for _, r := range resp.Sorted() {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			client.Close()
			return nil, fmt.Errorf("create audit topic %s: %w", r.Topic, r.Err)
		}
	}

	return &Kafka{client: client, topic: topic, logger: logger}, nil
}

type wireEvent struct {
	Category   string `json:"Category"`
	Timestamp  string `json:"Timestamp"`
	Member     string `json:"Member,omitempty"`
	Actor      string `json:"Actor,omitempty"`
	Action     string `json:"Action"`
	Handle     string `json:"Handle,omitempty"`
	Visibility string `json:"Visibility,omitempty"`
	Detail     string `json:"Detail,omitempty"`
	RequestID  string `json:"RequestID,omitempty"`
}

// Publish produces one event synchronously. The worker calls this off the
// request path, so the sync produce keeps ordering without blocking callers.
func (k *Kafka) Publish(ctx context.Context, event audit.Event) error {
	we := wireEvent{
		Category:   string(audit.AuditEvent(event.Action).Category()),
		Timestamp:  event.Timestamp.Format(time.RFC3339Nano),
		Action:     event.Action,
		Handle:     event.Handle,
		Visibility: event.Visibility,
		Detail:     event.Detail,
		RequestID:  event.RequestID,
	}
	var key []byte
	if !event.Member.IsNil() {
		we.Member = event.Member.String()
		key = []byte(we.Member)
	}
	if !event.Actor.IsNil() {
		we.Actor = event.Actor.String()
	}

	value, err := json.Marshal(we)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	record := &kgo.Record{Topic: k.topic, Key: key, Value: value}
	if err := k.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes and releases the client.
func (k *Kafka) Close() {
	k.client.Close()
}

var _ audit.Publisher = (*Kafka)(nil)
