package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/groblegark/proctor/internal/client"
	"github.com/groblegark/proctor/internal/config"
	"github.com/groblegark/proctor/internal/store"
	"github.com/groblegark/proctor/internal/store/file"
)

func loadAgentConfig() (*config.AgentConfig, error) {
	cfg, err := config.LoadAgent(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.CollectorURL == "" {
		cfg.CollectorURL = "http://localhost:8080"
	}
	return cfg, nil
}

func newCollectorClient(cfg *config.AgentConfig) *client.HTTPClient {
	return client.NewHTTPClient(cfg.CollectorURL, cfg.Token)
}

// storeDir resolves the local event directory: the configured store_dir, or
// a per-attempt directory under the user cache dir.
func storeDir(cfg *config.AgentConfig, attemptID string) string {
	if cfg.StoreDir != "" {
		return cfg.StoreDir
	}
	cache, err := os.UserCacheDir()
	if err != nil {
		cache = os.TempDir()
	}
	return filepath.Join(cache, "proctor", "events", attemptID)
}

// openLocalStore opens the durable file store with an in-memory fallback, so
// a broken disk degrades the session instead of ending it.
func openLocalStore(dir string, logger *slog.Logger) store.Store {
	primary, err := file.New(dir)
	if err != nil {
		logger.Warn("file store unavailable, events are memory-only", "dir", dir, "err", err)
		return store.NewMemoryStore()
	}
	return store.NewFallbackStore(primary, store.NewMemoryStore(), logger)
}
