// Package cli wires the dwellmetrics commands: the HTTP API server and an
// offline report runner.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	envFiles []string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "dwellmetrics",
		Short: "Behavioral analytics API and reporting",
		Long: `dwellmetrics ingests client interaction events and reconstructs sessions,
per-page dwell time and aggregate statistics from them.

Run "dwellmetrics serve" for the HTTP API or "dwellmetrics report" for a
one-off report printed as JSON.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "Env files to load before reading configuration (default .env)")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newReportCmd(opts))
	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
