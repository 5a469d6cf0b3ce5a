package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/groblegark/proctor/internal/audit"
)

// AgentConfig is the agent's on-disk configuration. Environment variables
// override the file so deployments can inject identity and credentials
// without rewriting it.
type AgentConfig struct {
	CollectorURL string `toml:"collector_url"`
	Token        string `toml:"token,omitempty"`
	StoreDir     string `toml:"store_dir,omitempty"`
	UserAgent    string `toml:"user_agent,omitempty"`

	AttemptID         string `toml:"attempt_id,omitempty"`
	UserID            string `toml:"user_id,omitempty"`
	Duration          int    `toml:"duration,omitempty"`           // seconds
	HeartbeatInterval int    `toml:"heartbeat_interval,omitempty"` // seconds
	SyncInterval      int    `toml:"sync_interval,omitempty"`      // seconds
}

// AgentConfigPath returns the default agent config location,
// ~/.config/proctor/agent.toml, creating the directory if needed.
func AgentConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".config", "proctor")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "agent.toml"), nil
}

// LoadAgent reads the agent config from path (empty = default location) and
// applies environment overrides. A missing file is not an error; the zero
// config plus overrides is returned.
func LoadAgent(path string) (*AgentConfig, error) {
	if path == "" {
		var err error
		path, err = AgentConfigPath()
		if err != nil {
			return nil, err
		}
	}

	var cfg AgentConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

// SaveAgent writes the agent config to path (empty = default location).
func SaveAgent(path string, cfg *AgentConfig) error {
	if path == "" {
		var err error
		path, err = AgentConfigPath()
		if err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

func applyEnvOverrides(cfg *AgentConfig) {
	if v := os.Getenv("PROCTOR_COLLECTOR_URL"); v != "" {
		cfg.CollectorURL = v
	}
	if v := os.Getenv("PROCTOR_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("PROCTOR_STORE_DIR"); v != "" {
		cfg.StoreDir = v
	}
	if v := os.Getenv("PROCTOR_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("PROCTOR_ATTEMPT_ID"); v != "" {
		cfg.AttemptID = v
	}
	if v := os.Getenv("PROCTOR_USER_ID"); v != "" {
		cfg.UserID = v
	}
	if v := os.Getenv("PROCTOR_DURATION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Duration = n
		}
	}
	if v := os.Getenv("PROCTOR_HEARTBEAT_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.HeartbeatInterval = n
		}
	}
	if v := os.Getenv("PROCTOR_SYNC_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SyncInterval = n
		}
	}
}

// Attempt converts the agent config into the attempt settings the audit
// pipeline consumes, with defaults filled in.
func (c *AgentConfig) Attempt() audit.Config {
	return audit.Config{
		AttemptID:         c.AttemptID,
		UserID:            c.UserID,
		Duration:          c.Duration,
		HeartbeatInterval: c.HeartbeatInterval,
		SyncInterval:      c.SyncInterval,
	}.Normalize()
}
