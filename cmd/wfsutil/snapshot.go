package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wfsfs/wfs"
	"github.com/wfsfs/wfs/internal/snapshot"
)

var snapshotCompName string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Export or import a compressed archive of an image's live tree",
}

var snapshotExportCmd = &cobra.Command{
	Use:   "export <image> <archive>",
	Short: "Write a compressed archive of an image's live tree",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		comp, err := compressionByName(snapshotCompName)
		if err != nil {
			return err
		}

		dev, err := wfs.OpenDevice(args[0])
		if err != nil {
			return err
		}
		defer dev.Close()

		ls, err := wfs.Open(dev)
		if err != nil {
			return err
		}

		out, err := os.Create(args[1])
		if err != nil {
			return err
		}
		defer out.Close()

		return snapshot.Export(out, wfs.NewFS(ls), comp)
	},
}

var snapshotImportCmd = &cobra.Command{
	Use:   "import <archive> <image>",
	Short: "Format a new image from a compressed archive",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer in.Close()

		f, err := os.OpenFile(args[1], os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		if err := f.Truncate(formatSize); err != nil {
			f.Close()
			return err
		}
		dev := wfs.NewDevice(f)
		defer dev.Close()

		return snapshot.Import(in, dev)
	},
}

func compressionByName(name string) (wfs.CompressionID, error) {
	switch name {
	case "gzip", "":
		return wfs.GZip, nil
	case "xz":
		return wfs.XZ, nil
	case "zstd":
		return wfs.ZSTD, nil
	}
	return 0, fmt.Errorf("unknown compression %q", name)
}

func init() {
	snapshotExportCmd.Flags().StringVar(&snapshotCompName, "comp", "gzip", "compression: gzip, xz or zstd")
	snapshotImportCmd.Flags().Int64Var(&formatSize, "size", 64<<20, "image size in bytes")
	snapshotCmd.AddCommand(snapshotExportCmd)
	snapshotCmd.AddCommand(snapshotImportCmd)
}
