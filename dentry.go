package wfs

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Dentry is a fixed-width directory entry: a NUL-terminated child name
// bounded by MaxFileNameLen, followed by the child's inode number widened
// to 64 bits on the wire (spec §6), even though this implementation only
// ever produces values that fit in uint32 (see DESIGN.md).
type Dentry struct {
	Name       string
	InodeNumber uint32
}

// MarshalBinary serializes the dentry to its fixed DentrySize extent.
func (d *Dentry) MarshalBinary() ([]byte, error) {
	if len(d.Name) > MaxFileNameLen-1 {
		return nil, ErrNameTooLong
	}
	buf := make([]byte, DentrySize)
	copy(buf[0:MaxFileNameLen], d.Name)
	binary.LittleEndian.PutUint64(buf[MaxFileNameLen:], uint64(d.InodeNumber))
	return buf, nil
}

// UnmarshalBinary parses a dentry from its fixed DentrySize extent.
func (d *Dentry) UnmarshalBinary(data []byte) error {
	if len(data) < DentrySize {
		return fmt.Errorf("%w: dentry shorter than %d bytes", ErrTruncated, DentrySize)
	}
	nameBuf := data[0:MaxFileNameLen]
	if i := bytes.IndexByte(nameBuf, 0); i >= 0 {
		nameBuf = nameBuf[:i]
	}
	d.Name = string(nameBuf)
	d.InodeNumber = uint32(binary.LittleEndian.Uint64(data[MaxFileNameLen:]))
	return nil
}

// decodeDentries interprets a directory payload as a dense array of
// directory entries, per spec §3 (payload size is always a multiple of
// DentrySize).
func decodeDentries(payload []byte) ([]Dentry, error) {
	if len(payload)%DentrySize != 0 {
		return nil, fmt.Errorf("%w: directory payload %d not a multiple of %d", ErrCorrupt, len(payload), DentrySize)
	}
	n := len(payload) / DentrySize
	out := make([]Dentry, n)
	for i := 0; i < n; i++ {
		if err := out[i].UnmarshalBinary(payload[i*DentrySize : (i+1)*DentrySize]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// encodeDentries serializes a slice of directory entries back into a
// directory payload, preserving array order.
func encodeDentries(entries []Dentry) ([]byte, error) {
	buf := make([]byte, 0, len(entries)*DentrySize)
	for i := range entries {
		b, err := entries[i].MarshalBinary()
		if err != nil {
			return nil, err
		}
		buf = append(buf, b...)
	}
	return buf, nil
}
