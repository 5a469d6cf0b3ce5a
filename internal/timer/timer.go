// Package timer implements the assessment deadline: a one-second countdown
// with periodic heartbeats, a single terminal expiry, and the session
// focus/visibility observers that feed the same event stream.
package timer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/groblegark/proctor/internal/audit"
)

// EventLog is the slice of the event logger the timer needs.
type EventLog interface {
	Log(ctx context.Context, t audit.EventType, extra map[string]any)
}

// State is the timer's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateExpired:
		return "expired"
	}
	return "unknown"
}

// Option configures a Timer.
type Option func(*Timer)

// WithTickInterval overrides the wall-clock tick period. Zero disables the
// internal ticker entirely; ticks must then be driven through Tick, which
// is how tests simulate the clock.
func WithTickInterval(d time.Duration) Option {
	return func(t *Timer) { t.tickEvery = d }
}

// Timer counts an attempt down from its configured duration. Expiry fires
// exactly once no matter how many ticks arrive at or past zero.
type Timer struct {
	log               EventLog
	duration          int // seconds
	heartbeatInterval int // seconds between HEARTBEAT events
	onExpire          func()
	tickEvery         time.Duration

	mu        sync.Mutex
	state     State
	remaining int
	counter   int
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// New builds an Idle timer for the given attempt config. onExpire is
// invoked exactly once, after the TIME_EXPIRED event is logged; the
// surrounding assessment uses it to force-submit.
func New(cfg audit.Config, log EventLog, onExpire func(), opts ...Option) *Timer {
	cfg = cfg.Normalize()
	t := &Timer{
		log:               log,
		duration:          cfg.Duration,
		heartbeatInterval: cfg.HeartbeatInterval,
		onExpire:          onExpire,
		tickEvery:         time.Second,
		remaining:         cfg.Duration,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// State returns the current lifecycle state.
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Remaining returns the remaining time in seconds.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Formatted renders the remaining time as mm:ss, or hh:mm:ss past an hour.
func (t *Timer) Formatted() string {
	secs := t.Remaining()
	hrs := secs / 3600
	mins := (secs % 3600) / 60
	if hrs > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hrs, mins, secs%60)
	}
	return fmt.Sprintf("%02d:%02d", mins, secs%60)
}

// Start transitions Idle → Running and begins ticking. It is a no-op when
// already Running and when Expired: an expired attempt never restarts.
func (t *Timer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateIdle {
		return
	}
	t.state = StateRunning
	if t.tickEvery > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		t.cancel = cancel
		t.wg.Add(1)
		go t.run(ctx)
	}
}

// Pause transitions Running → Idle without touching the remaining time.
func (t *Timer) Pause() {
	t.mu.Lock()
	if t.state != StateRunning {
		t.mu.Unlock()
		return
	}
	t.state = StateIdle
	cancel := t.cancel
	t.cancel = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	t.wg.Wait()
}

// Reset returns to Idle with the full duration restored and the heartbeat
// counter and expiry latch cleared.
func (t *Timer) Reset() {
	t.mu.Lock()
	cancel := t.cancel
	t.cancel = nil
	t.state = StateIdle
	t.remaining = t.duration
	t.counter = 0
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	t.wg.Wait()
}

// Stop halts ticking without changing the remaining time; used at session
// teardown. Equivalent to Pause but also safe on an Expired timer.
func (t *Timer) Stop() {
	t.mu.Lock()
	cancel := t.cancel
	t.cancel = nil
	if t.state == StateRunning {
		t.state = StateIdle
	}
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	t.wg.Wait()
}

func (t *Timer) run(ctx context.Context) {
	defer t.wg.Done()
	ticker := time.NewTicker(t.tickEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Tick(ctx)
		}
	}
}

// Tick advances the countdown by one second. Heartbeats are evaluated
// before expiry, so a heartbeat landing on the final tick is still emitted,
// then TIME_EXPIRED follows. Ticks outside Running do nothing, which is
// what guards expiry against re-emission.
func (t *Timer) Tick(ctx context.Context) {
	t.mu.Lock()
	if t.state != StateRunning {
		t.mu.Unlock()
		return
	}

	t.remaining--
	t.counter++

	heartbeat := false
	if t.counter >= t.heartbeatInterval {
		t.counter = 0
		heartbeat = true
	}

	expired := t.remaining <= 0
	if expired {
		if t.remaining < 0 {
			t.remaining = 0
		}
		t.state = StateExpired
		if t.cancel != nil {
			// Stop the ticker goroutine; we cannot wait on it from
			// inside its own tick.
			t.cancel()
			t.cancel = nil
		}
	}
	remaining := t.remaining
	t.mu.Unlock()

	if heartbeat {
		t.log.Log(ctx, audit.TypeHeartbeat, map[string]any{"remainingTime": remaining})
	}
	if expired {
		t.log.Log(ctx, audit.TypeTimeExpired, map[string]any{"totalDuration": t.duration})
		if t.onExpire != nil {
			t.onExpire()
		}
	}
}
