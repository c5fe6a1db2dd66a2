package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/r3fresh/alm-go/internal/sink"
)

var verifyLog string

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the hash chain of a telemetry capture file",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := runVerify(verifyLog, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if !result.Valid {
			os.Exit(1)
		}
		return nil
	},
}

func runVerify(path string, out io.Writer) (sink.VerifyResult, error) {
	result := sink.Verify(path)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return result, fmt.Errorf("marshal result: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return result, nil
}

func init() {
	verifyCmd.Flags().StringVarP(&verifyLog, "log", "l", "", "Path to capture file (required)")
	verifyCmd.MarkFlagRequired("log")
	rootCmd.AddCommand(verifyCmd)
}
