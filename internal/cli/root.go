// Package cli implements the almctl command tree.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "almctl",
	Short: "Agent lifecycle monitoring toolkit",
	Long:  "Instruments agent runs, tasks, and tool calls with structured telemetry, and enforces tool policy with allow/deny lists and per-run budgets.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
