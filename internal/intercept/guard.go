package intercept

import (
	"context"
	"strings"
	"sync"

	"github.com/groblegark/proctor/internal/audit"
	"github.com/groblegark/proctor/internal/ui"
)

// EventLog is the slice of the event logger the guard needs. One audit
// event is emitted per disallowed gesture, never more.
type EventLog interface {
	Log(ctx context.Context, t audit.EventType, extra map[string]any)
}

// Warning messages surfaced to the test taker.
const (
	warnCopy      = "Copying content is not allowed during the assessment"
	warnCut       = "Cutting content is not allowed during the assessment"
	warnPaste     = "Pasting is not allowed during the assessment"
	warnSelectAll = "Select all is disabled during the assessment"
	warnContext   = "Right-click is disabled during the assessment"
	warnPrint     = "Printing is not allowed during the assessment"
	warnSave      = "Saving the page is not allowed during the assessment"
	warnDevtools  = "Developer tools are not allowed during the assessment"
	warnSelection = "Text selection is disabled during the assessment"
	warnDragDrop  = "Drag and drop is not allowed during the assessment"
	warnClipboard = "Clipboard access is blocked during the assessment"
)

// Guard classifies observed actions, suppresses the disallowed ones, and
// turns each into exactly one audit event plus one user-facing warning.
type Guard struct {
	log  EventLog
	warn ui.Warner

	mu        sync.Mutex
	enabled   bool
	clipboard *Clipboard
	restore   func()
}

// New builds a guard. clipboard may be nil when the platform exposes no
// programmatic clipboard. The guard starts disabled; call Enable.
func New(log EventLog, warn ui.Warner, clipboard *Clipboard) *Guard {
	return &Guard{log: log, warn: warn, clipboard: clipboard}
}

// Enable activates monitoring and patches the clipboard provider. Calling
// Enable again without Disable is a no-op: listeners are not
// double-registered and the clipboard is not double-patched.
func (g *Guard) Enable() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.enabled {
		return
	}
	g.enabled = true
	if g.clipboard != nil {
		g.restore = g.clipboard.patch(g.log, g.warn)
	}
}

// Disable deactivates monitoring and restores the original clipboard entry
// points exactly. No effects of the guard outlive a Disable.
func (g *Guard) Disable() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.enabled {
		return
	}
	g.enabled = false
	if g.restore != nil {
		g.restore()
		g.restore = nil
	}
}

// Enabled reports whether the guard is active.
func (g *Guard) Enabled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.enabled
}

// Handle inspects one action and returns the verdict the shell must apply.
// Permitted actions pass through untouched and unlogged.
func (g *Guard) Handle(ctx context.Context, a Action) Verdict {
	if !g.Enabled() {
		return Verdict{}
	}

	switch a.Kind {
	case ActionKeyDown:
		return g.handleKeyDown(ctx, a)
	case ActionCopy:
		return g.handleClipboardEvent(ctx, a, audit.TypeCopyAttempt, warnCopy)
	case ActionCut:
		return g.handleClipboardEvent(ctx, a, audit.TypeCutAttempt, warnCut)
	case ActionPaste:
		return g.handleClipboardEvent(ctx, a, audit.TypePasteAttempt, warnPaste)
	case ActionContextMenu:
		return g.handleContextMenu(ctx, a, "mouse")
	case ActionSelectStart:
		if a.Target.TextEntry() {
			return Verdict{}
		}
		g.deny(ctx, audit.TypeSelectionAttempt, warnSelection, map[string]any{
			"targetElement": a.Target.Tag,
		})
		return Verdict{Suppress: true}
	case ActionDragStart:
		g.deny(ctx, audit.TypeDragAttempt, warnDragDrop, map[string]any{
			"targetElement": a.Target.Tag,
		})
		return Verdict{Suppress: true}
	case ActionDrop:
		g.deny(ctx, audit.TypeDropAttempt, warnDragDrop, map[string]any{
			"targetElement": a.Target.Tag,
		})
		return Verdict{Suppress: true}
	case ActionDragOver:
		// Suppressed so drop targets never activate, but it is channel
		// plumbing rather than a gesture of its own: no event, no warning.
		return Verdict{Suppress: true}
	}
	return Verdict{}
}

func (g *Guard) handleKeyDown(ctx context.Context, a Action) Verdict {
	key := strings.ToLower(a.Key)

	// Devtools and page chords are disallowed everywhere, including inside
	// input fields: typing an answer never requires F12 or ctrl+P.
	switch {
	case a.Key == "F12", a.chord() && a.Shift && (key == "i" || key == "j" || key == "c"), a.chord() && key == "u":
		g.deny(ctx, audit.TypeDevtoolsAttempt, warnDevtools, map[string]any{"key": a.Key})
		return Verdict{Suppress: true}
	case a.chord() && key == "p":
		g.deny(ctx, audit.TypePrintAttempt, warnPrint, map[string]any{"key": a.Key})
		return Verdict{Suppress: true}
	case a.chord() && key == "s":
		g.deny(ctx, audit.TypeSaveAttempt, warnSave, map[string]any{"key": a.Key})
		return Verdict{Suppress: true}
	}

	// The context-menu key mirrors the mouse path.
	if a.Key == "ContextMenu" || (a.Shift && a.Key == "F10") {
		return g.handleContextMenu(ctx, a, "keyboard")
	}

	// Clipboard chords are allowed inside text-entry surfaces so the user
	// can edit their own input.
	if !a.chord() || a.Target.TextEntry() {
		return Verdict{}
	}

	switch key {
	case "c":
		g.deny(ctx, audit.TypeCopyAttempt, warnCopy, map[string]any{"key": a.Key})
	case "v":
		g.deny(ctx, audit.TypePasteAttempt, warnPaste, map[string]any{"key": a.Key})
	case "x":
		g.deny(ctx, audit.TypeCutAttempt, warnCut, map[string]any{"key": a.Key})
	case "a":
		g.deny(ctx, audit.TypeSelectAllAttempt, warnSelectAll, map[string]any{"key": a.Key})
	default:
		return Verdict{}
	}
	return Verdict{Suppress: true}
}

func (g *Guard) handleClipboardEvent(ctx context.Context, a Action, t audit.EventType, warning string) Verdict {
	if a.Target.TextEntry() {
		return Verdict{}
	}
	g.deny(ctx, t, warning, map[string]any{
		"source":        "clipboard_event",
		"targetElement": a.Target.Tag,
	})
	return Verdict{Suppress: true}
}

func (g *Guard) handleContextMenu(ctx context.Context, a Action, source string) Verdict {
	if a.Target.TextEntry() {
		return Verdict{}
	}
	g.deny(ctx, audit.TypeRightClickAttempt, warnContext, map[string]any{
		"source":        source,
		"targetElement": a.Target.Tag,
	})
	return Verdict{Suppress: true}
}

// deny records the single event/warning pair for a disallowed gesture.
func (g *Guard) deny(ctx context.Context, t audit.EventType, warning string, extra map[string]any) {
	g.log.Log(ctx, t, extra)
	g.warn.Warn(warning)
}
