package ui

import (
	"fmt"
	"io"
	"sync"
)

// Warner surfaces a transient, user-facing warning for a detected violation
// or a fullscreen re-entry prompt. It is the toast equivalent for a
// terminal-hosted session; warnings are friction, never errors.
type Warner interface {
	Warn(message string)
}

// TerminalWarner writes one styled warning line per call.
type TerminalWarner struct {
	mu  sync.Mutex
	out io.Writer
}

// NewTerminalWarner returns a warner writing to out (usually stderr).
func NewTerminalWarner(out io.Writer) *TerminalWarner {
	return &TerminalWarner{out: out}
}

func (w *TerminalWarner) Warn(message string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.out, RenderWarning("warning: ")+message)
}

// NopWarner discards warnings. Used when the embedding shell renders its
// own toasts from the directive stream.
type NopWarner struct{}

func (NopWarner) Warn(string) {}
