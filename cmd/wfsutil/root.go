package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "wfsutil",
	Short: "Format, inspect, mount and snapshot wfs images",
	Long: `wfsutil operates on wfs image files: a log-structured, single-file
filesystem image designed to be mounted over FUSE or manipulated offline.`,
}

func init() {
	rootCmd.AddCommand(formatCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(mountCmd)
	rootCmd.AddCommand(compactCmd)
	rootCmd.AddCommand(snapshotCmd)
}
