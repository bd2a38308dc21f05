package wfs

import (
	"encoding/binary"
	"fmt"
	"io/fs"
	"time"
)

// POSIX-style type bits for Inode.Mode, matching the values Linux uses
// (see mode.go for the permission-bit conversions these compose with).
const (
	ModeTypeMask = 0xf000
	ModeDir      = 0x4000
	ModeReg      = 0x8000
)

// Inode is the fixed-width record that begins every log entry.
type Inode struct {
	InodeNumber uint32
	Deleted     bool
	Mode        uint32
	Uid         uint32
	Gid         uint32
	Flags       uint32
	Size        uint32 // payload bytes following this inode in its log entry
	Atime       uint32
	Mtime       uint32
	Ctime       uint32
	Links       uint32
}

// IsDir reports whether the inode's mode bits mark it as a directory.
func (i *Inode) IsDir() bool {
	return i.Mode&ModeTypeMask == ModeDir
}

// IsRegular reports whether the inode's mode bits mark it as a regular file.
func (i *Inode) IsRegular() bool {
	return i.Mode&ModeTypeMask == ModeReg
}

func boolToU32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// MarshalBinary serializes the inode to its fixed SizeofInode extent.
func (i *Inode) MarshalBinary() ([]byte, error) {
	buf := make([]byte, SizeofInode)
	order := binary.LittleEndian
	order.PutUint32(buf[0:4], i.InodeNumber)
	order.PutUint32(buf[4:8], boolToU32(i.Deleted))
	order.PutUint32(buf[8:12], i.Mode)
	order.PutUint32(buf[12:16], i.Uid)
	order.PutUint32(buf[16:20], i.Gid)
	order.PutUint32(buf[20:24], i.Flags)
	order.PutUint32(buf[24:28], i.Size)
	order.PutUint32(buf[28:32], i.Atime)
	order.PutUint32(buf[32:36], i.Mtime)
	order.PutUint32(buf[36:40], i.Ctime)
	order.PutUint32(buf[40:44], i.Links)
	// remaining bytes are reserved padding, left zero
	return buf, nil
}

// UnmarshalBinary parses an inode from its fixed SizeofInode extent.
func (i *Inode) UnmarshalBinary(data []byte) error {
	if len(data) < SizeofInode {
		return fmt.Errorf("%w: inode shorter than %d bytes", ErrTruncated, SizeofInode)
	}
	order := binary.LittleEndian
	i.InodeNumber = order.Uint32(data[0:4])
	i.Deleted = order.Uint32(data[4:8]) != 0
	i.Mode = order.Uint32(data[8:12])
	i.Uid = order.Uint32(data[12:16])
	i.Gid = order.Uint32(data[16:20])
	i.Flags = order.Uint32(data[20:24])
	i.Size = order.Uint32(data[24:28])
	i.Atime = order.Uint32(data[28:32])
	i.Mtime = order.Uint32(data[32:36])
	i.Ctime = order.Uint32(data[36:40])
	i.Links = order.Uint32(data[40:44])
	return nil
}

// FileMode returns an fs.FileMode reflecting this inode's type and
// permission bits, for callers (Getattr, the host gateway) that want the
// standard library's representation instead of the raw POSIX bits.
func (i *Inode) FileMode() fs.FileMode {
	return UnixToMode(i.Mode)
}

func nowUnix() uint32 {
	return uint32(time.Now().Unix())
}
