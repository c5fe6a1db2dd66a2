package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/r3fresh/alm-go/internal/event"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the almctl version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("almctl %s (schema %s)\n", event.SDKVersion, event.SchemaVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
