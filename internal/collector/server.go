// Package collector implements the server side of the audit pipeline: it
// validates and stores event batches uploaded by agents, serves them back
// for review, and fans accepted events out to the event bus.
package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/groblegark/proctor/internal/audit"
	"github.com/groblegark/proctor/internal/collector/metrics"
	"github.com/groblegark/proctor/internal/collector/store"
	"github.com/groblegark/proctor/internal/events"
)

// Server holds the collector's business logic, independent of transport.
type Server struct {
	store     store.Store
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

// NewServer returns a collector backed by the given store and publisher.
func NewServer(s store.Store, p events.Publisher, m *metrics.Metrics, logger *slog.Logger) *Server {
	return &Server{store: s, publisher: p, metrics: m, logger: logger}
}

// IngestResult summarizes one processed batch.
type IngestResult struct {
	// Accepted is the number of events newly stored. Duplicate resends
	// are acknowledged but not counted here.
	Accepted int

	// Duplicates is the number of valid events that were already stored.
	Duplicates int

	// Errors carries one itemized message per rejected event.
	Errors []string
}

// Ingest validates a batch and stores the valid events, deduplicating by
// event id. Invalid events are rejected individually; the batch as a whole
// fails only when it contains no valid event at all.
func (s *Server) Ingest(ctx context.Context, payload *audit.SyncPayload) (*IngestResult, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveIngestLatency(time.Since(start)) }()

	res := &IngestResult{}
	var valid []*audit.Event
	for i, e := range payload.Events {
		if e == nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Event %d: empty event", i))
			continue
		}
		if err := audit.ValidateEvent(e, payload.AttemptID, payload.UserID); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("Event %d: %v", i, err))
			continue
		}
		valid = append(valid, e)
	}
	s.metrics.CountEvents("rejected", len(res.Errors))

	if len(valid) == 0 {
		s.metrics.CountSyncRequest("rejected")
		return res, errEmptyBatch
	}

	inserted, err := s.store.InsertEvents(ctx, valid)
	if err != nil {
		s.metrics.CountSyncRequest("error")
		return nil, fmt.Errorf("storing events: %w", err)
	}
	res.Accepted = len(inserted)
	res.Duplicates = len(valid) - len(inserted)
	s.metrics.CountEvents("accepted", res.Accepted)
	s.metrics.CountEvents("duplicate", res.Duplicates)
	s.metrics.CountSyncRequest("accepted")

	s.publishAccepted(ctx, payload, valid, inserted, res)

	s.logger.Info("batch ingested",
		"attemptId", payload.AttemptID,
		"accepted", res.Accepted,
		"duplicates", res.Duplicates,
		"rejected", len(res.Errors))
	return res, nil
}

// errEmptyBatch rejects a batch with no valid events.
var errEmptyBatch = fmt.Errorf("no valid events in payload")

// publishAccepted fans newly stored events out to the bus. Publishing is
// best-effort; failures are logged but never fail the ingest.
func (s *Server) publishAccepted(ctx context.Context, payload *audit.SyncPayload, valid []*audit.Event, inserted []string, res *IngestResult) {
	newIDs := make(map[string]bool, len(inserted))
	for _, id := range inserted {
		newIDs[id] = true
	}
	for _, e := range valid {
		if !newIDs[e.ID] {
			continue
		}
		if err := s.publisher.Publish(ctx, events.TopicEventAccepted, events.EventAccepted{Event: e}); err != nil {
			s.logger.Warn("failed to publish event", "topic", events.TopicEventAccepted, "id", e.ID, "err", err)
		}
	}
	batch := events.BatchAccepted{
		AttemptID:  payload.AttemptID,
		UserID:     payload.UserID,
		Accepted:   res.Accepted,
		Duplicates: res.Duplicates,
		Rejected:   len(res.Errors),
	}
	if err := s.publisher.Publish(ctx, events.TopicBatchAccepted, batch); err != nil {
		s.logger.Warn("failed to publish event", "topic", events.TopicBatchAccepted, "err", err)
	}
}

// Logs returns stored events, optionally scoped to one attempt.
func (s *Server) Logs(ctx context.Context, attemptID string) ([]*audit.Event, error) {
	return s.store.ListEvents(ctx, attemptID)
}

// Clear wipes stored events, optionally scoped to one attempt.
func (s *Server) Clear(ctx context.Context, attemptID string) (int, error) {
	deleted, err := s.store.DeleteEvents(ctx, attemptID)
	if err != nil {
		return 0, err
	}
	cleared := events.LogsCleared{AttemptID: attemptID, Deleted: deleted}
	if err := s.publisher.Publish(ctx, events.TopicLogsCleared, cleared); err != nil {
		s.logger.Warn("failed to publish event", "topic", events.TopicLogsCleared, "err", err)
	}
	return deleted, nil
}

// Healthy reports whether the backing store is reachable.
func (s *Server) Healthy(ctx context.Context) error {
	return s.store.Ping(ctx)
}
