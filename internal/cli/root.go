// Package cli implements the cfdshell commands.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cfdshell",
	Short: "Desktop shell for the local CFD trading service",
	Long: `cfdshell starts the local trading service on a free port, waits until it
answers and shows its UI in a desktop window with a tray icon.

Running cfdshell without a subcommand is the same as "cfdshell run".`,
	SilenceUsage: true,
	RunE:         runShell,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the service and open the trading window",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	registerRunFlags(rootCmd)
	registerRunFlags(runCmd)

	// Add subcommands (alphabetical)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}
