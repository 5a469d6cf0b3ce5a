// Package store defines the collector's persistence interface for received
// audit events.
package store

import (
	"context"

	"github.com/groblegark/proctor/internal/audit"
)

// Store is the collector-side event archive. Implementations must be safe
// for concurrent use.
type Store interface {
	// InsertEvents stores a batch, skipping ids that are already present.
	// It returns the ids that were newly inserted; the difference between
	// the input and the result is the duplicate set.
	InsertEvents(ctx context.Context, events []*audit.Event) ([]string, error)

	// ListEvents returns stored events ordered by timestamp. An empty
	// attemptID returns events for every attempt.
	ListEvents(ctx context.Context, attemptID string) ([]*audit.Event, error)

	// DeleteEvents removes stored events and reports how many were
	// deleted. An empty attemptID wipes the archive.
	DeleteEvents(ctx context.Context, attemptID string) (int, error)

	// Ping verifies the backing medium is reachable.
	Ping(ctx context.Context) error

	// Close releases resources held by the store.
	Close() error
}
