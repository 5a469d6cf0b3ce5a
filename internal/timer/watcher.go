package timer

import (
	"context"

	"github.com/groblegark/proctor/internal/audit"
)

// Watcher logs tab/window focus transitions and page unload. These are
// audit-relevant whether or not the countdown is running, so the watcher is
// deliberately independent of the timer's state machine.
type Watcher struct {
	log EventLog
}

// NewWatcher builds a watcher over the given event log.
func NewWatcher(log EventLog) *Watcher {
	return &Watcher{log: log}
}

// ObserveVisibility records a tab visibility transition.
func (w *Watcher) ObserveVisibility(ctx context.Context, hidden bool) {
	if hidden {
		w.log.Log(ctx, audit.TypeTabBlur, nil)
	} else {
		w.log.Log(ctx, audit.TypeTabFocus, nil)
	}
}

// ObserveWindowFocus records a window focus transition.
func (w *Watcher) ObserveWindowFocus(ctx context.Context, focused bool) {
	if focused {
		w.log.Log(ctx, audit.TypeWindowFocus, nil)
	} else {
		w.log.Log(ctx, audit.TypeWindowBlur, nil)
	}
}

// ObserveUnload records an imminent page unload or refresh.
func (w *Watcher) ObserveUnload(ctx context.Context) {
	w.log.Log(ctx, audit.TypePageRefresh, nil)
}
