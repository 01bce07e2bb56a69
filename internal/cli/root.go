// Package cli wires the qbench commands.
package cli

import (
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "qbench",
	Short:   "Database query benchmark harness",
	Version: version,
	Long: `qbench drives a fixed set of point-lookup query workloads against
PostgreSQL, MySQL, or a JSON HTTP API through many concurrent workers,
for a warmup period followed by a measured period, and reports the
aggregated latency distribution and throughput per query.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command. It returns an error for the caller to
// turn into a process exit code.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.AddCommand(runCmd)
}
