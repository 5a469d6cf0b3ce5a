package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/groblegark/proctor/internal/logger"
)

var syncAttemptID string

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Upload locally stored events to the collector",
	Long: `Sync pushes events left behind by an interrupted session (collector down,
process killed before the final flush) to the collector. The attempt id
selects which local event directory to drain.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		slogger := slog.New(slog.NewTextHandler(io.Discard, nil))

		cfg, err := loadAgentConfig()
		if err != nil {
			return err
		}
		attempt := cfg.Attempt()
		if syncAttemptID != "" {
			attempt.AttemptID = syncAttemptID
		}
		if attempt.AttemptID == "" {
			return fmt.Errorf("attempt id is required (--attempt or config)")
		}
		if attempt.UserID == "" {
			return fmt.Errorf("user_id is required (config file or PROCTOR_USER_ID)")
		}

		st := openLocalStore(storeDir(cfg, attempt.AttemptID), slogger)
		collector := newCollectorClient(cfg)
		defer collector.Close()

		syncer := logger.NewSyncer(st, collector, attempt, slogger)
		pending, err := syncer.UnsyncedCount(cmd.Context())
		if err != nil {
			return err
		}
		if pending == 0 {
			fmt.Fprintln(os.Stdout, "nothing to sync")
			return nil
		}

		n, err := syncer.Sync(cmd.Context())
		if err != nil {
			return fmt.Errorf("sync failed, %d events still queued: %w", pending, err)
		}
		fmt.Fprintf(os.Stdout, "synced %d events (%d newly accepted)\n", pending, n)
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncAttemptID, "attempt", "", "attempt id to sync (default: configured attempt)")
}
