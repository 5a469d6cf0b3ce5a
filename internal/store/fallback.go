package store

import (
	"context"
	"log/slog"

	"github.com/groblegark/proctor/internal/audit"
)

// FallbackStore degrades every operation to a secondary medium when the
// primary fails. Callers never observe the distinction; a degraded write is
// logged and the event lands in the fallback instead of being lost.
//
// The fallback is authoritative for anything written to it, so reads merge
// both media: an event appended during an outage must still show up in
// Unsynced once the primary recovers.
type FallbackStore struct {
	primary  Store
	fallback Store
	logger   *slog.Logger
}

var _ Store = (*FallbackStore)(nil)

// NewFallbackStore wraps primary with fallback. logger may be nil.
func NewFallbackStore(primary, fallback Store, logger *slog.Logger) *FallbackStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackStore{primary: primary, fallback: fallback, logger: logger}
}

func (s *FallbackStore) Append(ctx context.Context, event *audit.Event) error {
	if err := s.primary.Append(ctx, event); err != nil {
		s.logger.Warn("primary store append failed, using fallback", "event_id", event.ID, "err", err)
		return s.fallback.Append(ctx, event)
	}
	return nil
}

func (s *FallbackStore) Unsynced(ctx context.Context) ([]*audit.Event, error) {
	primary, err := s.primary.Unsynced(ctx)
	if err != nil {
		s.logger.Warn("primary store read failed, using fallback", "err", err)
		return s.fallback.Unsynced(ctx)
	}
	secondary, err := s.fallback.Unsynced(ctx)
	if err != nil {
		return primary, nil
	}
	return mergeByID(primary, secondary), nil
}

func (s *FallbackStore) MarkSynced(ctx context.Context, ids []string) error {
	perr := s.primary.MarkSynced(ctx, ids)
	ferr := s.fallback.MarkSynced(ctx, ids)
	if perr != nil {
		s.logger.Warn("primary store mark-synced failed", "err", perr)
		return ferr
	}
	return ferr
}

func (s *FallbackStore) All(ctx context.Context) ([]*audit.Event, error) {
	primary, err := s.primary.All(ctx)
	if err != nil {
		s.logger.Warn("primary store read failed, using fallback", "err", err)
		return s.fallback.All(ctx)
	}
	secondary, err := s.fallback.All(ctx)
	if err != nil {
		return primary, nil
	}
	return mergeByID(primary, secondary), nil
}

func (s *FallbackStore) Clear(ctx context.Context) error {
	perr := s.primary.Clear(ctx)
	ferr := s.fallback.Clear(ctx)
	if perr != nil {
		return perr
	}
	return ferr
}

// mergeByID combines two result sets, preferring the primary on id clashes.
func mergeByID(primary, secondary []*audit.Event) []*audit.Event {
	if len(secondary) == 0 {
		return primary
	}
	seen := make(map[string]struct{}, len(primary))
	for _, e := range primary {
		seen[e.ID] = struct{}{}
	}
	out := primary
	for _, e := range secondary {
		if _, dup := seen[e.ID]; !dup {
			out = append(out, e)
		}
	}
	return out
}
