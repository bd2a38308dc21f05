package wfs

import (
	"fmt"
	"io"
	"os"
)

// Device is fixed-offset, synchronous byte-addressable access to the image
// backing a WFS filesystem. It owns the underlying file handle for the
// process lifetime and is single-threaded: callers must not issue concurrent
// reads/writes, matching the cooperative scheduling model of spec §5.
type Device struct {
	f *os.File
}

// OpenDevice opens path for reading and writing and wraps it as a Device.
func OpenDevice(path string) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("wfs: opening image: %w", err)
	}
	return &Device{f: f}, nil
}

// NewDevice wraps an already-open file as a Device. Used by tests and by
// format, which needs the file open before a WFS superblock exists.
func NewDevice(f *os.File) *Device {
	return &Device{f: f}
}

// ReadAt reads exactly len(p) bytes at off, or returns an error. A short
// read (including hitting EOF early) is reported, never silently padded.
func (d *Device) ReadAt(p []byte, off int64) error {
	n, err := d.f.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil || err == io.EOF {
		return fmt.Errorf("%w: short read at %d (%d/%d bytes)", ErrTruncated, off, n, len(p))
	}
	return fmt.Errorf("wfs: read at %d: %w", off, err)
}

// WriteAt writes exactly len(p) bytes at off, or returns an error.
func (d *Device) WriteAt(p []byte, off int64) error {
	n, err := d.f.WriteAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil {
		return fmt.Errorf("wfs: short write at %d (%d/%d bytes)", off, n, len(p))
	}
	return fmt.Errorf("wfs: write at %d: %w", off, err)
}

// Flush persists all writes made so far to stable storage.
func (d *Device) Flush() error {
	if err := d.f.Sync(); err != nil {
		return fmt.Errorf("wfs: flush: %w", err)
	}
	return nil
}

// Size returns the current byte length of the underlying image.
func (d *Device) Size() (int64, error) {
	fi, err := d.f.Stat()
	if err != nil {
		return 0, fmt.Errorf("wfs: stat image: %w", err)
	}
	return fi.Size(), nil
}

// Close releases the underlying file handle.
func (d *Device) Close() error {
	return d.f.Close()
}
