package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	clearAttemptID string
	clearYes       bool
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete events stored on the collector",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadAgentConfig()
		if err != nil {
			return err
		}
		attemptID := clearAttemptID
		if attemptID == "" {
			attemptID = cfg.AttemptID
		}

		if !clearYes {
			scope := "ALL attempts"
			if attemptID != "" {
				scope = "attempt " + attemptID
			}
			fmt.Fprintf(os.Stderr, "This deletes the collector's events for %s. Continue? [y/N] ", scope)
			var answer string
			fmt.Fscanln(os.Stdin, &answer)
			if answer != "y" && answer != "Y" {
				fmt.Fprintln(os.Stdout, "aborted")
				return nil
			}
		}

		collector := newCollectorClient(cfg)
		defer collector.Close()

		if err := collector.Clear(cmd.Context(), attemptID); err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, "cleared")
		return nil
	},
}

func init() {
	clearCmd.Flags().StringVar(&clearAttemptID, "attempt", "", "attempt id to clear (default: configured attempt; empty clears all)")
	clearCmd.Flags().BoolVar(&clearYes, "yes", false, "skip the confirmation prompt")
}
