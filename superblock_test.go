package wfs_test

import (
	"os"
	"testing"

	"github.com/wfsfs/wfs"
)

func TestOpenRejectsBadMagic(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "wfs-*.img")
	if err != nil {
		t.Fatalf("create temp file: %s", err)
	}
	if err := f.Truncate(1 << 16); err != nil {
		t.Fatalf("truncate: %s", err)
	}
	dev := wfs.NewDevice(f)

	if _, err := wfs.Open(dev); err != wfs.ErrBadMagic {
		t.Errorf("open on zeroed image err = %v, want ErrBadMagic", err)
	}
}

func TestOpenRejectsTruncatedImage(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "wfs-*.img")
	if err != nil {
		t.Fatalf("create temp file: %s", err)
	}
	if err := f.Truncate(1 << 20); err != nil {
		t.Fatalf("truncate: %s", err)
	}
	dev := wfs.NewDevice(f)
	if _, err := wfs.Format(dev); err != nil {
		t.Fatalf("format: %s", err)
	}

	// Shrink the backing file out from under the claimed head.
	if err := f.Truncate(wfs.SBSize); err != nil {
		t.Fatalf("shrink: %s", err)
	}

	if _, err := wfs.Open(dev); err == nil {
		t.Errorf("open on truncated image succeeded, want error")
	}
}
