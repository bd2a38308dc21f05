package wfs

// LogEntry is one inode record plus its contiguous payload: for regular
// files, opaque bytes; for directories, a dense array of Dentry records
// (spec §3). Ownership of a parsed LogEntry is exclusive to the operation
// that requested it, mirroring the teacher's read-then-own inodeReader
// pattern generalized from squashfs's compressed metadata blocks to a
// flat append-only log.
type LogEntry struct {
	Inode   Inode
	Payload []byte
}

// Size returns the total on-disk size of the entry: the fixed inode prefix
// plus its payload.
func (e *LogEntry) Size() int64 {
	return SizeofInode + int64(len(e.Payload))
}

// MarshalBinary serializes the entry as it is written to the log: the
// inode, immediately followed by exactly Inode.Size payload bytes.
func (e *LogEntry) MarshalBinary() ([]byte, error) {
	e.Inode.Size = uint32(len(e.Payload))
	head, err := e.Inode.MarshalBinary()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, len(head)+len(e.Payload))
	buf = append(buf, head...)
	buf = append(buf, e.Payload...)
	return buf, nil
}

// Dentries interprets the entry's payload as a directory listing. It is
// the caller's responsibility to have checked Inode.IsDir() first.
func (e *LogEntry) Dentries() ([]Dentry, error) {
	return decodeDentries(e.Payload)
}
