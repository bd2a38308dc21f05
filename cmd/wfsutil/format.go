package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wfsfs/wfs"
)

var formatSize int64

var formatCmd = &cobra.Command{
	Use:   "format <image>",
	Short: "Create a new wfs image of a fixed size",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.OpenFile(args[0], os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return fmt.Errorf("creating image: %w", err)
		}
		if err := f.Truncate(formatSize); err != nil {
			f.Close()
			return fmt.Errorf("sizing image: %w", err)
		}
		dev := wfs.NewDevice(f)
		if _, err := wfs.Format(dev); err != nil {
			dev.Close()
			return err
		}
		return dev.Close()
	},
}

func init() {
	formatCmd.Flags().Int64Var(&formatSize, "size", 64<<20, "image size in bytes")
}
