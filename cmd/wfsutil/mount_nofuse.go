//go:build !fuse

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var mountCmd = &cobra.Command{
	Use:   "mount <image> <mountpoint>",
	Short: "Mount an image over FUSE (requires building with -tags fuse)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return fmt.Errorf("wfsutil was built without FUSE support; rebuild with -tags fuse")
	},
}
