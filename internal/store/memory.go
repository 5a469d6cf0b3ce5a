package store

import (
	"context"
	"sync"

	"github.com/groblegark/proctor/internal/audit"
)

// MemoryStore is an in-memory Store. It serves as the fallback medium when
// the file store is unavailable, and as the store for tests.
type MemoryStore struct {
	mu     sync.Mutex
	events map[string]*audit.Event
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{events: make(map[string]*audit.Event)}
}

func (s *MemoryStore) Append(_ context.Context, event *audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *event
	s.events[event.ID] = &cp
	return nil
}

func (s *MemoryStore) Unsynced(_ context.Context) ([]*audit.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*audit.Event, 0, len(s.events))
	for _, e := range s.events {
		if !e.Synced {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) MarkSynced(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.events, id)
	}
	return nil
}

func (s *MemoryStore) All(_ context.Context) ([]*audit.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*audit.Event, 0, len(s.events))
	for _, e := range s.events {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[string]*audit.Event)
	return nil
}
