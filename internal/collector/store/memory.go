package store

import (
	"context"
	"sort"
	"sync"

	"github.com/groblegark/proctor/internal/audit"
)

// MemoryStore is an in-memory Store for tests and single-node deployments
// without a database.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[string]*audit.Event
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[string]*audit.Event)}
}

func (s *MemoryStore) InsertEvents(ctx context.Context, events []*audit.Event) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var inserted []string
	for _, e := range events {
		if _, exists := s.events[e.ID]; exists {
			continue
		}
		cp := *e
		s.events[e.ID] = &cp
		inserted = append(inserted, e.ID)
	}
	return inserted, nil
}

func (s *MemoryStore) ListEvents(ctx context.Context, attemptID string) ([]*audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*audit.Event, 0, len(s.events))
	for _, e := range s.events {
		if attemptID != "" && e.AttemptID != attemptID {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) DeleteEvents(ctx context.Context, attemptID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for id, e := range s.events {
		if attemptID != "" && e.AttemptID != attemptID {
			continue
		}
		delete(s.events, id)
		deleted++
	}
	return deleted, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
