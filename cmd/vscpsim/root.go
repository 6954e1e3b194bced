package main

import (
	"github.com/spf13/cobra"
)

var debug bool

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vscpsim",
		Short: "Simulate a VSCP Level 1 node",
		Long: "vscpsim wires a single vscpcore.Core up to an in-memory bus and " +
			"either runs it headless or hands it to an interactive monitor.",
	}

	root.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable development (human-readable) logging")

	root.AddCommand(newRunCmd())
	root.AddCommand(newMonitorCmd())
	return root
}
