// Package kafka streams audit events to per-category topics.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	audit "warden/pkg/platform/audit"
)

// Publisher is the produce side of a Kafka client.
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte, headers map[string]string) error
}

// Sink implements audit.Sink. Events are keyed by user so one user's trail
// stays ordered within a partition.
type Sink struct {
	publisher   Publisher
	topicPrefix string
}

func New(publisher Publisher, topicPrefix string) *Sink {
	return &Sink{publisher: publisher, topicPrefix: topicPrefix}
}

// Topic returns the topic an event category is published to.
func (s *Sink) Topic(category audit.EventCategory) string {
	return s.topicPrefix + "." + string(category)
}

// Topics lists every topic the sink may write to.
func (s *Sink) Topics() []string {
	return []string{
		s.Topic(audit.CategoryCompliance),
		s.Topic(audit.CategorySecurity),
		s.Topic(audit.CategoryOperations),
	}
}

func (s *Sink) Append(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	key := []byte(event.Subject)
	if !event.UserID.IsNil() {
		key = []byte(event.UserID.String())
	}
	headers := map[string]string{
		"event_id": event.ID.String(),
		"action":   event.Action,
	}
	return s.publisher.Publish(ctx, s.Topic(event.Category), key, value, headers)
}
