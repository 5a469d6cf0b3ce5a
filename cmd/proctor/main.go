// Command proctor runs the client-side audit agent for a timed assessment
// and the administrative commands for inspecting the collector.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/groblegark/proctor/internal/ui"
)

var (
	configPath string
	noColor    bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "proctor <command>",
	Short: "Assessment audit agent",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor || !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "agent config file (default ~/.config/proctor/agent.toml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
