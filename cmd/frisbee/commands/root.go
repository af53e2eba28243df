// Package commands implements the frisbee CLI's subcommands (spec.md §4.3):
// run, peers, and version.
package commands

import (
	"github.com/spf13/cobra"
)

var (
	// configPath is the path to the environment topology YAML file.
	configPath string

	// diagnosticsDB is the path to the SQLite diagnostics database. Left
	// empty, no spawn/envelope/handshake history is recorded.
	diagnosticsDB string
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "frisbee",
	Short: "Run and inspect frisbee actor programs",
	Long: `frisbee loads a module graph, starts one environment's actor bus, and
runs the program's Main active object until it exits.`,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&configPath, "config", "topology.yaml",
		"Path to the environment topology YAML file",
	)
	rootCmd.PersistentFlags().StringVar(
		&diagnosticsDB, "diagnostics-db", "",
		"Path to a SQLite database recording actor/envelope diagnostics (default: disabled)",
	)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(peersCmd)
	rootCmd.AddCommand(versionCmd)
}
