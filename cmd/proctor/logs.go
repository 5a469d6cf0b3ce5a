package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var logsAttemptID string

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "List events stored on the collector",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadAgentConfig()
		if err != nil {
			return err
		}
		attemptID := logsAttemptID
		if attemptID == "" {
			attemptID = cfg.AttemptID
		}

		collector := newCollectorClient(cfg)
		defer collector.Close()

		resp, err := collector.Logs(cmd.Context(), attemptID)
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tTYPE\tQUESTION\tATTEMPT")
		for _, e := range resp.Logs {
			ts := time.UnixMilli(e.Timestamp).UTC().Format(time.RFC3339)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", ts, e.Type, e.QuestionID, e.AttemptID)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%d events\n", resp.Count)
		return nil
	},
}

func init() {
	logsCmd.Flags().StringVar(&logsAttemptID, "attempt", "", "attempt id to list (default: configured attempt; empty lists all)")
}
