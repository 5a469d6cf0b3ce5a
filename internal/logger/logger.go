// Package logger assembles audit events and keeps them flowing from the
// local store to the collector.
package logger

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/groblegark/proctor/internal/audit"
	"github.com/groblegark/proctor/internal/idgen"
	"github.com/groblegark/proctor/internal/probe"
	"github.com/groblegark/proctor/internal/store"
)

// Logger stamps raw audit observations into complete events and appends them
// to the durable store. It never returns an error to the caller: a recording
// failure must not disturb the assessment, so failures are logged and
// swallowed.
type Logger struct {
	store  store.Store
	probe  *probe.Probe
	cfg    audit.Config
	logger *slog.Logger

	mu         sync.Mutex
	questionID string
}

// New builds a logger for the attempt described by cfg.
func New(s store.Store, p *probe.Probe, cfg audit.Config, logger *slog.Logger) *Logger {
	return &Logger{
		store:  s,
		probe:  p,
		cfg:    cfg.Normalize(),
		logger: logger,
	}
}

// SetQuestion records the question currently on screen; subsequent events
// carry it until the next change. An empty id clears it.
func (l *Logger) SetQuestion(id string) {
	l.mu.Lock()
	l.questionID = id
	l.mu.Unlock()
}

// Question returns the current question id.
func (l *Logger) Question() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.questionID
}

// Log records one audit event of the given type. The event is stamped with
// a fresh id, the wall-clock timestamp, the attempt identity, the current
// question, and an environment snapshot merged with extra.
func (l *Logger) Log(ctx context.Context, t audit.EventType, extra map[string]any) {
	l.mu.Lock()
	questionID := l.questionID
	l.mu.Unlock()

	id, err := idgen.NewEventID()
	if err != nil {
		l.logger.Error("failed to generate event id", "type", t, "err", err)
		return
	}

	e := &audit.Event{
		ID:         id,
		Type:       t,
		Timestamp:  time.Now().UnixMilli(),
		AttemptID:  l.cfg.AttemptID,
		UserID:     l.cfg.UserID,
		QuestionID: questionID,
		Metadata:   l.probe.Snapshot(extra),
	}

	if err := l.store.Append(ctx, e); err != nil {
		l.logger.Error("failed to record audit event", "type", t, "err", err)
	}
}
