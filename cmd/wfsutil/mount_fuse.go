//go:build fuse

package main

import (
	"github.com/spf13/cobra"
	"github.com/wfsfs/wfs"
)

var mountCmd = &cobra.Command{
	Use:   "mount <image> <mountpoint>",
	Short: "Mount an image over FUSE",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, err := wfs.OpenDevice(args[0])
		if err != nil {
			return err
		}
		defer dev.Close()

		ls, err := wfs.Open(dev)
		if err != nil {
			return err
		}
		return wfs.Mount(args[1], wfs.NewFS(ls))
	},
}
