package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/groblegark/proctor/internal/logger"
)

var statusAttemptID string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show local queue depth and collector health",
	RunE: func(cmd *cobra.Command, args []string) error {
		slogger := slog.New(slog.NewTextHandler(io.Discard, nil))

		cfg, err := loadAgentConfig()
		if err != nil {
			return err
		}
		attempt := cfg.Attempt()
		if statusAttemptID != "" {
			attempt.AttemptID = statusAttemptID
		}

		pending := -1
		if attempt.AttemptID != "" {
			st := openLocalStore(storeDir(cfg, attempt.AttemptID), slogger)
			collector := newCollectorClient(cfg)
			syncer := logger.NewSyncer(st, collector, attempt, slogger)
			if n, err := syncer.UnsyncedCount(cmd.Context()); err == nil {
				pending = n
			}
			collector.Close()
		}

		collector := newCollectorClient(cfg)
		defer collector.Close()
		health, err := collector.Health(cmd.Context())
		if err != nil {
			health = "unreachable"
		}

		if jsonOutput {
			out := map[string]any{
				"collector": cfg.CollectorURL,
				"health":    health,
			}
			if pending >= 0 {
				out["pendingEvents"] = pending
				out["attemptId"] = attempt.AttemptID
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		}

		fmt.Fprintf(os.Stdout, "collector: %s (%s)\n", cfg.CollectorURL, health)
		if pending >= 0 {
			fmt.Fprintf(os.Stdout, "attempt %s: %d events pending upload\n", attempt.AttemptID, pending)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusAttemptID, "attempt", "", "attempt id to inspect (default: configured attempt)")
}
