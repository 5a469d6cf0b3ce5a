// Package config loads configuration for the collector daemon (environment
// variables) and the agent (TOML file with environment overrides).
package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	DatabaseURL string // PROCTOR_DATABASE_URL (optional, empty = in-memory archive)
	HTTPAddr    string // PROCTOR_HTTP_ADDR (default ":8080")
	NATSURL     string // PROCTOR_NATS_URL (optional, empty = no events)
	AuthToken   string // PROCTOR_AUTH_TOKEN (optional, empty = auth disabled)

	// Export settings
	ExportInterval   time.Duration // PROCTOR_EXPORT_INTERVAL (default 3m; 0 = disabled)
	ExportS3Bucket   string        // PROCTOR_EXPORT_S3_BUCKET (enables S3 when set)
	ExportS3Endpoint string        // PROCTOR_EXPORT_S3_ENDPOINT (custom endpoint for MinIO)
	ExportS3Region   string        // PROCTOR_EXPORT_S3_REGION (default "us-east-1")
	ExportS3Key      string        // PROCTOR_EXPORT_S3_KEY (default "proctor/audit.jsonl")
	ExportGitRepo    string        // PROCTOR_EXPORT_GIT_REPO (enables git when set; path to clone)
	ExportGitFile    string        // PROCTOR_EXPORT_GIT_FILE (default "audit.jsonl")
	ExportGitBranch  string        // PROCTOR_EXPORT_GIT_BRANCH (default "main")
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:      os.Getenv("PROCTOR_DATABASE_URL"),
		HTTPAddr:         envOrDefault("PROCTOR_HTTP_ADDR", ":8080"),
		NATSURL:          os.Getenv("PROCTOR_NATS_URL"),
		AuthToken:        os.Getenv("PROCTOR_AUTH_TOKEN"),
		ExportS3Bucket:   os.Getenv("PROCTOR_EXPORT_S3_BUCKET"),
		ExportS3Endpoint: os.Getenv("PROCTOR_EXPORT_S3_ENDPOINT"),
		ExportS3Region:   envOrDefault("PROCTOR_EXPORT_S3_REGION", "us-east-1"),
		ExportS3Key:      envOrDefault("PROCTOR_EXPORT_S3_KEY", "proctor/audit.jsonl"),
		ExportGitRepo:    os.Getenv("PROCTOR_EXPORT_GIT_REPO"),
		ExportGitFile:    envOrDefault("PROCTOR_EXPORT_GIT_FILE", "audit.jsonl"),
		ExportGitBranch:  envOrDefault("PROCTOR_EXPORT_GIT_BRANCH", "main"),
	}

	intervalStr := envOrDefault("PROCTOR_EXPORT_INTERVAL", "3m")
	if intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("PROCTOR_EXPORT_INTERVAL: %w", err)
		}
		c.ExportInterval = d
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
