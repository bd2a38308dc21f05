package wfs

import (
	"encoding/binary"
	"fmt"
)

// On-disk layout constants, per spec §6. All integers are little-endian.
const (
	// WFSMagic is the fixed constant every valid superblock must carry.
	WFSMagic uint32 = 0x31534657 // little-endian bytes "WFS1"

	// SBSize is the fixed extent of the superblock region, including reserved
	// padding after magic+head.
	SBSize = 512

	// SizeofInode is the fixed width of a serialized Inode, including its
	// reserved padding (the fields below total 44 bytes).
	SizeofInode = 64

	// MaxFileNameLen bounds a directory entry's NUL-terminated name,
	// including the terminator.
	MaxFileNameLen = 32

	// DentrySize is the fixed width of a directory entry: a MaxFileNameLen
	// name plus a widened 64-bit child inode number, per spec §6.
	DentrySize = MaxFileNameLen + 8

	// RootIno is the inode number of the root directory, created by format
	// and always live.
	RootIno uint32 = 0
)

// Superblock is the fixed-size record at offset 0 of a WFS image.
//
// Head is widened to 64 bits on the wire, unlike spec.md §6's literal
// "u32 head" layout, so that a single image can exceed 4GiB; see
// DESIGN.md's Open Question ledger for this decision. Both fields still
// fit entirely inside the reserved SBSize extent, so the deviation does
// not otherwise disturb the layout.
type Superblock struct {
	Magic uint32
	Head  uint64
}

// MarshalBinary serializes the superblock to its fixed SBSize extent,
// zero-padding the reserved tail.
func (sb *Superblock) MarshalBinary() ([]byte, error) {
	buf := make([]byte, SBSize)
	binary.LittleEndian.PutUint32(buf[0:4], sb.Magic)
	binary.LittleEndian.PutUint64(buf[4:12], sb.Head)
	return buf, nil
}

// UnmarshalBinary parses a superblock from its fixed SBSize extent.
func (sb *Superblock) UnmarshalBinary(data []byte) error {
	if len(data) < 12 {
		return fmt.Errorf("%w: superblock shorter than header", ErrTruncated)
	}
	sb.Magic = binary.LittleEndian.Uint32(data[0:4])
	sb.Head = binary.LittleEndian.Uint64(data[4:12])
	if sb.Magic != WFSMagic {
		return ErrBadMagic
	}
	return nil
}

// readSuperblock reads and validates the superblock at offset 0 of dev.
// It does not yet check Head against the device size — callers that need
// that (LogStore.Open) do so explicitly since a fresh, not-yet-sized device
// is a valid intermediate state during format.
func readSuperblock(dev *Device) (*Superblock, error) {
	buf := make([]byte, SBSize)
	if err := dev.ReadAt(buf, 0); err != nil {
		return nil, err
	}
	sb := &Superblock{}
	if err := sb.UnmarshalBinary(buf); err != nil {
		return nil, err
	}
	return sb, nil
}

// writeSuperblock serializes and writes sb at offset 0, then flushes.
// Per spec §4.2, append_entry writes payload, then superblock, then flush,
// in that order — this helper is only ever called after the payload write.
func writeSuperblock(dev *Device, sb *Superblock) error {
	data, _ := sb.MarshalBinary()
	if err := dev.WriteAt(data, 0); err != nil {
		return err
	}
	return dev.Flush()
}
