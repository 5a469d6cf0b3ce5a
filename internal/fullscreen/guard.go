// Package fullscreen manages the assessment's presentation mode and
// detects involuntary exits reported by the platform.
package fullscreen

import (
	"context"
	"fmt"
	"sync"

	"github.com/groblegark/proctor/internal/audit"
	"github.com/groblegark/proctor/internal/ui"
)

// Platform is the slice of the hosting shell the guard drives. Fullscreen
// requests can fail outside a user gesture; that failure is recoverable,
// not fatal.
type Platform interface {
	EnterFullscreen(ctx context.Context) error
	ExitFullscreen(ctx context.Context) error
}

// EventLog mirrors intercept.EventLog; redeclared here so the package
// depends only on what it uses.
type EventLog interface {
	Log(ctx context.Context, t audit.EventType, extra map[string]any)
}

const (
	warnEnterFailed = `Please click "Enter Fullscreen" to start the assessment`
	warnExited      = "Fullscreen mode exited. Please return to fullscreen to continue."
)

// Guard is a two-state machine over {Normal, Fullscreen}. Involuntary exits
// (the platform reports fullscreen gone without Exit having been called)
// are logged and warned about; voluntary exits via Exit are not logged.
type Guard struct {
	platform Platform
	log      EventLog
	warn     ui.Warner

	mu         sync.Mutex
	fullscreen bool
}

// New builds a guard in the Normal state.
func New(platform Platform, log EventLog, warn ui.Warner) *Guard {
	return &Guard{platform: platform, log: log, warn: warn}
}

// Active reports whether the guard believes fullscreen is engaged.
func (g *Guard) Active() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fullscreen
}

// Enter requests platform fullscreen. On success the guard transitions to
// Fullscreen and emits FULLSCREEN_ENTER; on failure it stays in Normal and
// surfaces a warning instructing manual action.
func (g *Guard) Enter(ctx context.Context) error {
	if err := g.platform.EnterFullscreen(ctx); err != nil {
		g.warn.Warn(warnEnterFailed)
		return fmt.Errorf("enter fullscreen: %w", err)
	}
	g.mu.Lock()
	g.fullscreen = true
	g.mu.Unlock()
	g.log.Log(ctx, audit.TypeFullscreenEnter, nil)
	return nil
}

// Exit leaves fullscreen voluntarily (submission path). The state drops to
// Normal before the platform call, so the change notification that follows
// is recognized as voluntary and produces no exit event.
func (g *Guard) Exit(ctx context.Context) error {
	g.mu.Lock()
	g.fullscreen = false
	g.mu.Unlock()
	if err := g.platform.ExitFullscreen(ctx); err != nil {
		return fmt.Errorf("exit fullscreen: %w", err)
	}
	return nil
}

// HandleChange processes a platform-reported fullscreen state change. A
// drop to inactive while the guard still believes it is in Fullscreen is an
// involuntary exit: exactly one FULLSCREEN_EXIT event plus one warning.
func (g *Guard) HandleChange(ctx context.Context, active bool) {
	g.mu.Lock()
	wasFullscreen := g.fullscreen
	g.fullscreen = active
	g.mu.Unlock()

	if !active && wasFullscreen {
		g.log.Log(ctx, audit.TypeFullscreenExit, nil)
		g.warn.Warn(warnExited)
	}
}
