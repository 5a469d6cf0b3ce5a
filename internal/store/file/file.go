// Package file implements the primary on-disk event store. Each event is
// one JSON document named by its id under the state directory, so MarkSynced
// is a plain delete and id-based dedup needs no index.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/groblegark/proctor/internal/audit"
	"github.com/groblegark/proctor/internal/store"
)

const eventExt = ".json"

// FileStore persists events under a directory, one file per event id.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

var _ store.Store = (*FileStore)(nil)

// New creates the state directory if needed and returns a store over it.
func New(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+eventExt)
}

// Append writes the event durably before returning: the write goes to a
// temp file in the same directory and is renamed into place, so a crash
// never leaves a half-written record under the event's id.
func (s *FileStore) Append(ctx context.Context, event *audit.Event) error {
	if event.ID == "" {
		return fmt.Errorf("append: event has no id")
	}
	if strings.ContainsAny(event.ID, `/\`) {
		return fmt.Errorf("append: invalid event id %q", event.ID)
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("append: marshal event: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+event.ID+".tmp-*")
	if err != nil {
		return fmt.Errorf("append: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("append: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("append: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("append: %w", err)
	}
	if err := os.Rename(tmpName, s.path(event.ID)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("append: %w", err)
	}
	return nil
}

func (s *FileStore) Unsynced(ctx context.Context) ([]*audit.Event, error) {
	events, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	out := events[:0]
	for _, e := range events {
		if !e.Synced {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *FileStore) MarkSynced(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if strings.ContainsAny(id, `/\`) {
			continue
		}
		if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("mark synced %s: %w", id, err)
		}
	}
	return nil
}

func (s *FileStore) All(_ context.Context) ([]*audit.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read state dir: %w", err)
	}

	var events []*audit.Event
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, eventExt) || strings.HasPrefix(name, ".") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			if os.IsNotExist(err) {
				continue // removed between readdir and read
			}
			return nil, fmt.Errorf("read event %s: %w", name, err)
		}
		var e audit.Event
		if err := json.Unmarshal(data, &e); err != nil {
			// A corrupt record must not wedge the whole sync pipeline.
			continue
		}
		events = append(events, &e)
	}
	return events, nil
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read state dir: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), eventExt) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("clear: %w", err)
		}
	}
	return nil
}
