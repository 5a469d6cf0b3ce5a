package intercept

import (
	"context"
	"sync"
	"testing"

	"github.com/groblegark/proctor/internal/audit"
)

// recordingLog captures emitted events.
type recordingLog struct {
	mu     sync.Mutex
	events []audit.EventType
	extras []map[string]any
}

func (r *recordingLog) Log(_ context.Context, t audit.EventType, extra map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, t)
	r.extras = append(r.extras, extra)
}

func (r *recordingLog) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// recordingWarner captures warnings.
type recordingWarner struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingWarner) Warn(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

func (r *recordingWarner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

func newTestGuard(clip *Clipboard) (*Guard, *recordingLog, *recordingWarner) {
	log := &recordingLog{}
	warn := &recordingWarner{}
	g := New(log, warn, clip)
	g.Enable()
	return g, log, warn
}

var bodySurface = Surface{Tag: "div"}
var inputSurface = Surface{Tag: "input"}

func TestCopyChordOutsideInput(t *testing.T) {
	g, log, warn := newTestGuard(nil)
	ctx := context.Background()

	// Three copy attempts produce exactly three events and warnings.
	for i := 0; i < 3; i++ {
		v := g.Handle(ctx, Action{Kind: ActionKeyDown, Key: "c", Ctrl: true, Target: bodySurface})
		if !v.Suppress {
			t.Fatal("copy chord outside input must be suppressed")
		}
	}
	if log.count() != 3 {
		t.Fatalf("events = %d, want 3", log.count())
	}
	for _, et := range log.events {
		if et != audit.TypeCopyAttempt {
			t.Errorf("event type = %s, want COPY_ATTEMPT", et)
		}
	}
	if warn.count() != 3 {
		t.Fatalf("warnings = %d, want 3", warn.count())
	}
}

func TestChordsAllowedInTextEntry(t *testing.T) {
	g, log, warn := newTestGuard(nil)
	ctx := context.Background()

	for _, key := range []string{"c", "v", "x", "a"} {
		v := g.Handle(ctx, Action{Kind: ActionKeyDown, Key: key, Ctrl: true, Target: inputSurface})
		if v.Suppress {
			t.Errorf("ctrl+%s inside input must not be suppressed", key)
		}
	}
	if log.count() != 0 || warn.count() != 0 {
		t.Fatalf("permitted actions logged: events=%d warnings=%d", log.count(), warn.count())
	}
}

func TestMetaChordTreatedLikeCtrl(t *testing.T) {
	g, log, _ := newTestGuard(nil)
	v := g.Handle(context.Background(), Action{Kind: ActionKeyDown, Key: "v", Meta: true, Target: bodySurface})
	if !v.Suppress {
		t.Fatal("meta+v outside input must be suppressed")
	}
	if log.events[0] != audit.TypePasteAttempt {
		t.Errorf("event = %s, want PASTE_ATTEMPT", log.events[0])
	}
}

func TestNativeClipboardChannel(t *testing.T) {
	g, log, _ := newTestGuard(nil)
	ctx := context.Background()

	tests := []struct {
		kind ActionKind
		want audit.EventType
	}{
		{ActionCopy, audit.TypeCopyAttempt},
		{ActionCut, audit.TypeCutAttempt},
		{ActionPaste, audit.TypePasteAttempt},
	}
	for _, tt := range tests {
		v := g.Handle(ctx, Action{Kind: tt.kind, Target: bodySurface})
		if !v.Suppress {
			t.Errorf("%s outside input must be suppressed", tt.kind)
		}
	}
	for i, tt := range tests {
		if log.events[i] != tt.want {
			t.Errorf("event %d = %s, want %s", i, log.events[i], tt.want)
		}
		if log.extras[i]["source"] != "clipboard_event" {
			t.Errorf("event %d missing clipboard_event source", i)
		}
	}

	// Same channel inside an input surface is allowed.
	if v := g.Handle(ctx, Action{Kind: ActionPaste, Target: inputSurface}); v.Suppress {
		t.Error("paste event inside input must not be suppressed")
	}
}

func TestContextMenuBothTriggers(t *testing.T) {
	g, log, _ := newTestGuard(nil)
	ctx := context.Background()

	if v := g.Handle(ctx, Action{Kind: ActionContextMenu, Target: bodySurface}); !v.Suppress {
		t.Fatal("mouse context menu must be suppressed")
	}
	if v := g.Handle(ctx, Action{Kind: ActionKeyDown, Key: "ContextMenu", Target: bodySurface}); !v.Suppress {
		t.Fatal("context-menu key must be suppressed")
	}
	if v := g.Handle(ctx, Action{Kind: ActionKeyDown, Key: "F10", Shift: true, Target: bodySurface}); !v.Suppress {
		t.Fatal("shift+F10 must be suppressed")
	}

	if len(log.events) != 3 {
		t.Fatalf("events = %d, want 3", len(log.events))
	}
	for _, et := range log.events {
		if et != audit.TypeRightClickAttempt {
			t.Errorf("event = %s, want RIGHT_CLICK_ATTEMPT", et)
		}
	}
	if log.extras[0]["source"] != "mouse" || log.extras[1]["source"] != "keyboard" {
		t.Error("trigger source not recorded")
	}
}

func TestGlobalChordsBlockedEvenInInput(t *testing.T) {
	g, log, _ := newTestGuard(nil)
	ctx := context.Background()

	tests := []struct {
		a    Action
		want audit.EventType
	}{
		{Action{Kind: ActionKeyDown, Key: "p", Ctrl: true, Target: inputSurface}, audit.TypePrintAttempt},
		{Action{Kind: ActionKeyDown, Key: "s", Ctrl: true, Target: inputSurface}, audit.TypeSaveAttempt},
		{Action{Kind: ActionKeyDown, Key: "F12", Target: inputSurface}, audit.TypeDevtoolsAttempt},
		{Action{Kind: ActionKeyDown, Key: "I", Ctrl: true, Shift: true, Target: inputSurface}, audit.TypeDevtoolsAttempt},
		{Action{Kind: ActionKeyDown, Key: "u", Ctrl: true, Target: inputSurface}, audit.TypeDevtoolsAttempt},
	}
	for i, tt := range tests {
		if v := g.Handle(ctx, tt.a); !v.Suppress {
			t.Errorf("case %d: must be suppressed", i)
		}
		if log.events[i] != tt.want {
			t.Errorf("case %d: event = %s, want %s", i, log.events[i], tt.want)
		}
	}
}

func TestSelectionAndDragDrop(t *testing.T) {
	g, log, _ := newTestGuard(nil)
	ctx := context.Background()

	if v := g.Handle(ctx, Action{Kind: ActionSelectStart, Target: bodySurface}); !v.Suppress {
		t.Fatal("selection outside input must be suppressed")
	}
	if v := g.Handle(ctx, Action{Kind: ActionSelectStart, Target: Surface{Tag: "textarea"}}); v.Suppress {
		t.Fatal("selection inside textarea must not be suppressed")
	}
	if v := g.Handle(ctx, Action{Kind: ActionDragStart, Target: bodySurface}); !v.Suppress {
		t.Fatal("dragstart must be suppressed")
	}
	if v := g.Handle(ctx, Action{Kind: ActionDrop, Target: bodySurface}); !v.Suppress {
		t.Fatal("drop must be suppressed")
	}

	want := []audit.EventType{audit.TypeSelectionAttempt, audit.TypeDragAttempt, audit.TypeDropAttempt}
	if len(log.events) != len(want) {
		t.Fatalf("events = %d, want %d", len(log.events), len(want))
	}
	for i, et := range want {
		if log.events[i] != et {
			t.Errorf("event %d = %s, want %s", i, log.events[i], et)
		}
	}
}

func TestDragOverSuppressedSilently(t *testing.T) {
	g, log, warn := newTestGuard(nil)
	if v := g.Handle(context.Background(), Action{Kind: ActionDragOver, Target: bodySurface}); !v.Suppress {
		t.Fatal("dragover must be suppressed")
	}
	if log.count() != 0 || warn.count() != 0 {
		t.Error("dragover must not log or warn")
	}
}

func TestContentEditableIsTextEntry(t *testing.T) {
	g, log, _ := newTestGuard(nil)
	v := g.Handle(context.Background(), Action{
		Kind: ActionKeyDown, Key: "c", Ctrl: true,
		Target: Surface{Tag: "div", Editable: true},
	})
	if v.Suppress || log.count() != 0 {
		t.Fatal("contenteditable surface must be treated as text entry")
	}
}

func TestDisabledGuardPassesThrough(t *testing.T) {
	log := &recordingLog{}
	warn := &recordingWarner{}
	g := New(log, warn, nil)

	v := g.Handle(context.Background(), Action{Kind: ActionCopy, Target: bodySurface})
	if v.Suppress || log.count() != 0 || warn.count() != 0 {
		t.Fatal("disabled guard must not suppress, log, or warn")
	}
}

func TestClipboardPatchAndRestore(t *testing.T) {
	ctx := context.Background()

	var realReads, realWrites int
	clip := NewClipboard(
		func(context.Context) (string, error) { realReads++; return "secret", nil },
		func(context.Context, string) error { realWrites++; return nil },
	)

	log := &recordingLog{}
	warn := &recordingWarner{}
	g := New(log, warn, clip)
	g.Enable()

	// Patched: stubs log, warn, and return empty results.
	text, err := clip.Read(ctx)
	if err != nil || text != "" {
		t.Fatalf("patched read = (%q, %v), want empty", text, err)
	}
	if err := clip.Write(ctx, "exfil"); err != nil {
		t.Fatalf("patched write: %v", err)
	}
	if realReads != 0 || realWrites != 0 {
		t.Fatal("patched clipboard must not reach the real entry points")
	}
	if log.count() != 2 || warn.count() != 2 {
		t.Fatalf("clipboard access: events=%d warnings=%d, want 2/2", log.count(), warn.count())
	}
	if log.events[0] != audit.TypePasteAttempt || log.events[1] != audit.TypeCopyAttempt {
		t.Errorf("clipboard event types = %v", log.events)
	}

	// Teardown restores the originals exactly.
	g.Disable()
	if text, _ := clip.Read(ctx); text != "secret" {
		t.Fatalf("restored read = %q, want original behavior", text)
	}
	if err := clip.Write(ctx, "x"); err != nil {
		t.Fatal(err)
	}
	if realReads != 1 || realWrites != 1 {
		t.Fatalf("restored clipboard reached originals %d/%d times, want 1/1", realReads, realWrites)
	}
}

func TestEnableIdempotent(t *testing.T) {
	ctx := context.Background()
	clip := NewClipboard(
		func(context.Context) (string, error) { return "orig", nil },
		nil,
	)
	log := &recordingLog{}
	g := New(log, &recordingWarner{}, clip)

	g.Enable()
	g.Enable() // must not re-patch over the stub

	g.Disable()
	if text, _ := clip.Read(ctx); text != "orig" {
		t.Fatalf("double Enable broke restore: read = %q, want %q", text, "orig")
	}

	// Disable twice is also safe.
	g.Disable()
}
