package intercept

import (
	"context"
	"sync"

	"github.com/groblegark/proctor/internal/audit"
	"github.com/groblegark/proctor/internal/ui"
)

// ReadFunc reads the platform clipboard.
type ReadFunc func(ctx context.Context) (string, error)

// WriteFunc writes the platform clipboard.
type WriteFunc func(ctx context.Context, text string) error

// Clipboard wraps the platform's programmatic clipboard entry points so
// the guard can swap them for monitoring stubs and restore them exactly on
// teardown. Callers go through Read/Write and never hold the underlying
// functions directly.
type Clipboard struct {
	mu    sync.Mutex
	read  ReadFunc
	write WriteFunc
}

// NewClipboard wraps the given platform entry points. Either may be nil if
// the platform does not expose that direction.
func NewClipboard(read ReadFunc, write WriteFunc) *Clipboard {
	return &Clipboard{read: read, write: write}
}

// Read returns the clipboard text via the currently installed entry point.
func (c *Clipboard) Read(ctx context.Context) (string, error) {
	c.mu.Lock()
	read := c.read
	c.mu.Unlock()
	if read == nil {
		return "", nil
	}
	return read(ctx)
}

// Write stores text via the currently installed entry point.
func (c *Clipboard) Write(ctx context.Context, text string) error {
	c.mu.Lock()
	write := c.write
	c.mu.Unlock()
	if write == nil {
		return nil
	}
	return write(ctx, text)
}

// patch installs monitoring stubs: reads (paste direction) and writes (copy
// direction) are logged, warned about, and return empty/no-op results. The
// returned restore function reinstates the saved originals exactly.
func (c *Clipboard) patch(log EventLog, warn ui.Warner) (restore func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	origRead, origWrite := c.read, c.write

	c.read = func(ctx context.Context) (string, error) {
		log.Log(ctx, audit.TypePasteAttempt, map[string]any{"source": "clipboard_api"})
		warn.Warn(warnClipboard)
		return "", nil
	}
	c.write = func(ctx context.Context, _ string) error {
		log.Log(ctx, audit.TypeCopyAttempt, map[string]any{"source": "clipboard_api"})
		warn.Warn(warnClipboard)
		return nil
	}

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.read = origRead
		c.write = origWrite
	}
}
