// Package cmd provides the command-line interface of eventsim.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// NewRootCommand creates the eventsim command with all its subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "eventsim",
		Short: "eventsim runs discrete event simulations.",
		Long: `eventsim runs discrete event simulations. A scenario file ` +
			`lists the actions to schedule and the time range to simulate.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newOrderCommand())
	rootCmd.AddCommand(newReportCommand())

	return rootCmd
}

// Execute runs the command line and exits. The handlers registered with
// atexit, such as the recording flush, run before the process exits.
func Execute() {
	err := NewRootCommand().Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
