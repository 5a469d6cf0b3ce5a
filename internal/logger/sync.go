package logger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/groblegark/proctor/internal/audit"
	"github.com/groblegark/proctor/internal/client"
	"github.com/groblegark/proctor/internal/store"
)

// flushTimeout bounds the final upload at session teardown, when the
// surrounding process is about to exit and cannot wait indefinitely.
const flushTimeout = 5 * time.Second

// Syncer uploads unsynced events to the collector in batches. At most one
// upload is in flight at a time: a periodic tick that lands while a sync is
// running is skipped rather than queued, which is safe because the next tick
// picks up whatever the running sync leaves behind.
type Syncer struct {
	store     store.Store
	collector client.Collector
	cfg       audit.Config
	logger    *slog.Logger

	inflight sync.Mutex

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyncer builds a syncer for the attempt described by cfg.
func NewSyncer(s store.Store, c client.Collector, cfg audit.Config, logger *slog.Logger) *Syncer {
	return &Syncer{
		store:     s,
		collector: c,
		cfg:       cfg.Normalize(),
		logger:    logger,
	}
}

// Start begins periodic sync at the attempt's sync interval. It runs an
// initial sync immediately, then on each tick.
func (s *Syncer) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop cancels the periodic loop and waits for the current sync (if any)
// to finish.
func (s *Syncer) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Syncer) run(ctx context.Context) {
	if _, err := s.Sync(ctx); err != nil {
		s.logger.Error("sync failed", "err", err)
	}

	ticker := time.NewTicker(s.cfg.SyncPeriod())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sync(ctx); err != nil {
				s.logger.Error("sync failed", "err", err)
			}
		}
	}
}

// Sync uploads the attempt's currently unsynced events. If another sync is
// already in flight it returns immediately without doing anything. Events are
// marked synced only after the collector acknowledges the batch, so a failed
// upload leaves them queued for the next attempt.
func (s *Syncer) Sync(ctx context.Context) (int, error) {
	if !s.inflight.TryLock() {
		return 0, nil
	}
	defer s.inflight.Unlock()
	return s.syncLocked(ctx)
}

// Flush performs a final upload, waiting for any in-flight sync to finish
// first. It is bounded by flushTimeout so teardown cannot hang on a dead
// collector.
func (s *Syncer) Flush(ctx context.Context) (int, error) {
	s.inflight.Lock()
	defer s.inflight.Unlock()

	ctx, cancel := context.WithTimeout(ctx, flushTimeout)
	defer cancel()
	return s.syncLocked(ctx)
}

// UnsyncedCount reports how many of the attempt's events are still waiting
// for upload.
func (s *Syncer) UnsyncedCount(ctx context.Context) (int, error) {
	events, err := s.unsynced(ctx)
	if err != nil {
		return 0, err
	}
	return len(events), nil
}

// unsynced reads the pending set scoped to this syncer's attempt. The store
// may hold leftovers from an earlier interrupted attempt; those belong to
// that attempt's sync and must be neither uploaded under this attempt's
// identity nor deleted by it.
func (s *Syncer) unsynced(ctx context.Context) ([]*audit.Event, error) {
	events, err := s.store.Unsynced(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading unsynced events: %w", err)
	}
	scoped := events[:0]
	for _, e := range events {
		if e.AttemptID == s.cfg.AttemptID {
			scoped = append(scoped, e)
		}
	}
	return scoped, nil
}

func (s *Syncer) syncLocked(ctx context.Context) (int, error) {
	events, err := s.unsynced(ctx)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	resp, err := s.collector.SubmitBatch(ctx, &audit.SyncPayload{
		Events:    events,
		AttemptID: s.cfg.AttemptID,
		UserID:    s.cfg.UserID,
	})
	if err != nil {
		if resp != nil {
			for _, msg := range resp.Errors {
				s.logger.Warn("collector rejected event", "reason", msg)
			}
		}
		return 0, fmt.Errorf("submitting batch: %w", err)
	}

	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	if err := s.store.MarkSynced(ctx, ids); err != nil {
		// The collector has the events; at worst the next sync resends
		// them and deduplication drops the copies.
		return resp.SyncedCount, fmt.Errorf("marking events synced: %w", err)
	}

	s.logger.Debug("sync completed", "sent", len(events), "accepted", resp.SyncedCount)
	return resp.SyncedCount, nil
}
