// Package client provides a transport-agnostic interface to the audit
// collector and an HTTP/JSON implementation that talks to its REST API.
package client

import (
	"context"

	"github.com/groblegark/proctor/internal/audit"
)

// Collector is the interface the agent uses to communicate with the audit
// collector. It is implemented by HTTPClient (default) and can be backed by
// any transport.
type Collector interface {
	// SubmitBatch uploads a batch of events. On a rejected batch the
	// decoded response is returned alongside the error so callers can
	// inspect the per-event errors.
	SubmitBatch(ctx context.Context, payload *audit.SyncPayload) (*audit.SyncResponse, error)

	// Logs fetches every event the collector holds for the attempt.
	Logs(ctx context.Context, attemptID string) (*audit.LogsResponse, error)

	// Clear deletes the collector's events for the attempt.
	Clear(ctx context.Context, attemptID string) error

	// Health reports the collector's health status string.
	Health(ctx context.Context) (string, error)

	// Close releases transport resources.
	Close() error
}
