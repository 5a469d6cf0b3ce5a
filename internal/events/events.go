// Package events defines the collector's outbound event bus: topics,
// payload types, and the Publisher/Subscriber interfaces with NATS and
// no-op implementations.
package events

import (
	"context"

	"github.com/groblegark/proctor/internal/audit"
)

// Event topic constants
const (
	// Per-event fanout for downstream consumers (live proctoring views,
	// alerting). Only newly accepted events are published; duplicates
	// dropped by the store are not.
	TopicEventAccepted = "audit.event.accepted"

	// Batch-level summary, one message per accepted sync request.
	TopicBatchAccepted = "audit.batch.accepted"

	// Administrative wipe of an attempt's stored events.
	TopicLogsCleared = "audit.logs.cleared"
)

// Event payload types

type EventAccepted struct {
	Event *audit.Event `json:"event"`
}

type BatchAccepted struct {
	AttemptID  string `json:"attemptId"`
	UserID     string `json:"userId"`
	Accepted   int    `json:"accepted"`
	Duplicates int    `json:"duplicates"`
	Rejected   int    `json:"rejected"`
}

type LogsCleared struct {
	AttemptID string `json:"attemptId,omitempty"`
	Deleted   int    `json:"deleted"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// Subscriber receives events from the event bus.
type Subscriber interface {
	// Subscribe delivers raw event payloads on the returned channel.
	// Call the returned cancel function to unsubscribe and close the channel.
	Subscribe(topic string) (<-chan []byte, func(), error)
	Close() error
}
