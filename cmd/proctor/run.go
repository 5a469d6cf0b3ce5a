package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/groblegark/proctor/internal/audit"
	"github.com/groblegark/proctor/internal/fullscreen"
	"github.com/groblegark/proctor/internal/intercept"
	"github.com/groblegark/proctor/internal/logger"
	"github.com/groblegark/proctor/internal/probe"
	"github.com/groblegark/proctor/internal/timer"
	"github.com/groblegark/proctor/internal/ui"
)

// feedMessage is one line of the session feed: an action observed by the
// embedding shell, or a session control message.
type feedMessage struct {
	Action string `json:"action"`

	// User action fields (keydown, copy, paste, ...).
	Key    string            `json:"key,omitempty"`
	Ctrl   bool              `json:"ctrl,omitempty"`
	Meta   bool              `json:"meta,omitempty"`
	Shift  bool              `json:"shift,omitempty"`
	Target intercept.Surface `json:"target"`

	// Session state fields.
	Hidden  bool   `json:"hidden,omitempty"`  // visibility
	Focused bool   `json:"focused,omitempty"` // focus
	Active  bool   `json:"active,omitempty"`  // fullscreen_change
	ID      string `json:"id,omitempty"`      // question
}

// shellPlatform asks the embedding shell to change presentation mode by
// writing a directive line to the feed output.
type shellPlatform struct {
	enc *feedEncoder
}

func (p *shellPlatform) EnterFullscreen(context.Context) error {
	return p.enc.directive("enter_fullscreen")
}

func (p *shellPlatform) ExitFullscreen(context.Context) error {
	return p.enc.directive("exit_fullscreen")
}

// feedEncoder serializes response lines; verdicts and directives may be
// written from different goroutines.
type feedEncoder struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func newFeedEncoder(w io.Writer) *feedEncoder {
	return &feedEncoder{enc: json.NewEncoder(w)}
}

func (e *feedEncoder) verdict(v intercept.Verdict) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enc.Encode(v)
}

func (e *feedEncoder) directive(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enc.Encode(map[string]string{"directive": name})
}

// actionKinds maps feed action names onto guard channels.
var actionKinds = map[string]intercept.ActionKind{
	"keydown":     intercept.ActionKeyDown,
	"copy":        intercept.ActionCopy,
	"cut":         intercept.ActionCut,
	"paste":       intercept.ActionPaste,
	"contextmenu": intercept.ActionContextMenu,
	"selectstart": intercept.ActionSelectStart,
	"dragstart":   intercept.ActionDragStart,
	"drop":        intercept.ActionDrop,
	"dragover":    intercept.ActionDragOver,
}

// session bundles the pieces the feed loop dispatches into.
type session struct {
	guard   *intercept.Guard
	watcher *timer.Watcher
	fs      *fullscreen.Guard
	log     *logger.Logger
	enc     *feedEncoder

	mu      sync.Mutex
	focused bool
}

func (s *session) hasFocus() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focused
}

func (s *session) setFocused(v bool) {
	s.mu.Lock()
	s.focused = v
	s.mu.Unlock()
}

// dispatch routes one feed message. It returns true when the session is over.
func (s *session) dispatch(ctx context.Context, msg *feedMessage) bool {
	if kind, ok := actionKinds[msg.Action]; ok {
		v := s.guard.Handle(ctx, intercept.Action{
			Kind:   kind,
			Key:    msg.Key,
			Ctrl:   msg.Ctrl,
			Meta:   msg.Meta,
			Shift:  msg.Shift,
			Target: msg.Target,
		})
		_ = s.enc.verdict(v)
		return false
	}

	switch msg.Action {
	case "visibility":
		s.setFocused(!msg.Hidden)
		s.watcher.ObserveVisibility(ctx, msg.Hidden)
	case "focus":
		s.setFocused(msg.Focused)
		s.watcher.ObserveWindowFocus(ctx, msg.Focused)
	case "fullscreen_change":
		s.fs.HandleChange(ctx, msg.Active)
	case "question":
		s.log.SetQuestion(msg.ID)
	case "unload":
		s.watcher.ObserveUnload(ctx)
		return true
	case "submit":
		return true
	}
	return false
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an audited assessment session from a shell action feed",
	Long: `Run reads newline-delimited JSON action messages from stdin, applies the
interception policy, and writes verdicts and directives to stdout. Events
are recorded locally and synced to the collector until the feed ends, the
timer expires, or the process receives SIGINT/SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		slogger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		cfg, err := loadAgentConfig()
		if err != nil {
			return err
		}
		attempt := cfg.Attempt()
		if attempt.UserID == "" {
			return fmt.Errorf("user_id is required (config file or PROCTOR_USER_ID)")
		}
		if attempt.AttemptID == "" {
			attempt.AttemptID = "att-" + uuid.NewString()
		}
		if attempt.Duration <= 0 {
			return fmt.Errorf("duration must be positive")
		}

		st := openLocalStore(storeDir(cfg, attempt.AttemptID), slogger)
		warner := ui.NewTerminalWarner(os.Stderr)
		enc := newFeedEncoder(os.Stdout)

		// The environment probe reads focus and fullscreen through the
		// session, so every recorded event carries the live state.
		sess := &session{enc: enc, focused: true}
		var fsGuard *fullscreen.Guard
		p := probe.New(cfg.UserAgent, sess.hasFocus, func() bool {
			return fsGuard != nil && fsGuard.Active()
		})
		lg := logger.New(st, p, attempt, slogger)
		fsGuard = fullscreen.New(&shellPlatform{enc: enc}, lg, warner)

		collector := newCollectorClient(cfg)
		defer collector.Close()
		syncer := logger.NewSyncer(st, collector, attempt, slogger)

		sess.guard = intercept.New(lg, warner, intercept.NewClipboard(nil, nil))
		sess.watcher = timer.NewWatcher(lg)
		sess.fs = fsGuard
		sess.log = lg

		expired := make(chan struct{})
		tm := timer.New(attempt, lg, func() { close(expired) })

		// Session start: fullscreen first so TEST_START carries the
		// engaged state. A refused request is recoverable; the shell
		// re-reports via fullscreen_change once the user acts.
		if err := fsGuard.Enter(ctx); err != nil {
			slogger.Warn("fullscreen not engaged at start", "err", err)
		}
		sess.guard.Enable()
		lg.Log(ctx, audit.TypeTestStart, map[string]any{"totalDuration": attempt.Duration})
		tm.Start()
		syncer.Start()

		slogger.Info("session started",
			"attemptId", attempt.AttemptID,
			"duration", attempt.Duration,
			"collector", cfg.CollectorURL)

		lines := make(chan string)
		go func() {
			defer close(lines)
			scanner := bufio.NewScanner(os.Stdin)
			scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
			for scanner.Scan() {
				lines <- scanner.Text()
			}
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		reason := "feed_closed"
	loop:
		for {
			select {
			case <-expired:
				reason = "expired"
				break loop
			case sig := <-sigCh:
				slogger.Info("received signal", "signal", sig)
				reason = "signal"
				break loop
			case line, ok := <-lines:
				if !ok {
					break loop
				}
				if line == "" {
					continue
				}
				var msg feedMessage
				if err := json.Unmarshal([]byte(line), &msg); err != nil {
					slogger.Warn("malformed feed line", "err", err)
					continue
				}
				if done := sess.dispatch(ctx, &msg); done {
					reason = "submitted"
					break loop
				}
			}
		}

		// Teardown: stop recording sources, emit the terminal event, then
		// push whatever the periodic sync has not shipped yet.
		sess.guard.Disable()
		tm.Stop()
		syncer.Stop()
		lg.Log(ctx, audit.TypeTestSubmit, map[string]any{"reason": reason})
		if reason == "submitted" || reason == "expired" {
			if err := fsGuard.Exit(ctx); err != nil {
				slogger.Warn("fullscreen exit failed", "err", err)
			}
		}
		if n, err := syncer.Flush(context.Background()); err != nil {
			slogger.Error("final flush failed; events remain in the local store", "err", err)
		} else {
			slogger.Info("session closed", "flushed", n, "reason", reason)
		}
		return nil
	},
}
