// Package store defines the durable local event log used by the capture
// agent. Events are keyed by id and carry a synced flag; synced events are
// removed rather than retained, so the collector holds the long-term audit
// trail.
package store

import (
	"context"

	"github.com/groblegark/proctor/internal/audit"
)

// Store is the append-only local persistence contract for audit events.
type Store interface {
	// Append persists one event. The event must carry a unique id.
	Append(ctx context.Context, event *audit.Event) error

	// Unsynced returns all events not yet acknowledged by the collector,
	// in no guaranteed order.
	Unsynced(ctx context.Context) ([]*audit.Event, error)

	// MarkSynced removes the given ids from the unsynced working set.
	// Ids not present are ignored.
	MarkSynced(ctx context.Context, ids []string) error

	// All returns the full remaining local log. Because MarkSynced
	// deletes, events already acknowledged are omitted.
	All(ctx context.Context) ([]*audit.Event, error)

	// Clear empties the store entirely. Administrative use.
	Clear(ctx context.Context) error
}
