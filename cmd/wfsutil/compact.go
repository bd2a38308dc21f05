package main

import (
	"github.com/spf13/cobra"
)

var compactCmd = &cobra.Command{
	Use:   "compact <image>",
	Short: "Rewrite the log, keeping only the latest live entry per inode (alias for check)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCompact(args[0])
	},
}
