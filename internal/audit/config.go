package audit

import "time"

// Default intervals, in seconds, applied when the session config leaves
// them unset.
const (
	DefaultHeartbeatInterval = 60
	DefaultSyncInterval      = 30
)

// Config describes one assessment attempt. It is created when the session
// starts and read-only thereafter.
type Config struct {
	AttemptID         string `json:"attemptId"`
	UserID            string `json:"userId"`
	Duration          int    `json:"duration"`          // seconds
	HeartbeatInterval int    `json:"heartbeatInterval"` // seconds
	SyncInterval      int    `json:"syncInterval"`      // seconds
}

// Normalize fills unset intervals with defaults and returns the result.
func (c Config) Normalize() Config {
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if c.SyncInterval <= 0 {
		c.SyncInterval = DefaultSyncInterval
	}
	return c
}

// SyncPeriod returns the sync interval as a duration.
func (c Config) SyncPeriod() time.Duration {
	return time.Duration(c.SyncInterval) * time.Second
}
