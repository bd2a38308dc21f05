package wfs

import (
	"fmt"
	"log"
)

// LogStore provides typed access to the log region of a WFS image: parsing
// a record at a given offset, iterating records from the head of the log,
// appending a record, and persisting the updated superblock head. It caches
// the superblock in memory, as a mount session's single owned context
// (spec §9's "Global mutable ... state becomes a LogStore value owned by
// the mount session" design note).
type LogStore struct {
	dev *Device
	sb  Superblock

	// inoIdx is a best-effort inode_number -> last known offset cache,
	// rebuilt incrementally on every successful append. Per spec §9,
	// correctness never depends on it: Resolver always has the option to
	// fall back to a full scan and must get the same answer.
	inoIdx map[uint32]int64
}

// Open reads the superblock from dev, validates its magic, and checks the
// image is not shorter than Head claims.
func Open(dev *Device) (*LogStore, error) {
	sb, err := readSuperblock(dev)
	if err != nil {
		return nil, err
	}
	size, err := dev.Size()
	if err != nil {
		return nil, err
	}
	if uint64(size) < sb.Head {
		return nil, fmt.Errorf("%w: image is %d bytes, head claims %d", ErrTruncated, size, sb.Head)
	}
	ls := &LogStore{dev: dev, sb: *sb, inoIdx: make(map[uint32]int64)}
	if err := ls.rebuildIndex(); err != nil {
		return nil, err
	}
	log.Printf("wfs: opened image, head=%d size=%d", sb.Head, size)
	return ls, nil
}

// rebuildIndex performs the one full scan spec §9 allows at open time to
// seed the inode_number -> last-occurrence-offset cache. Every entry after
// this is kept current incrementally by AppendEntry; nothing past this
// point depends on rebuildIndex for correctness, only for speed.
func (ls *LogStore) rebuildIndex() error {
	return ls.IterFromStart(func(rec LogRecord) bool {
		ls.inoIdx[rec.Entry.Inode.InodeNumber] = rec.Offset
		return true
	})
}

// Format overwrites dev with a fresh superblock and a single live root
// directory inode, per spec §4.2.
func Format(dev *Device) (*LogStore, error) {
	sb := &Superblock{Magic: WFSMagic, Head: SBSize + SizeofInode}

	now := nowUnix()
	root := LogEntry{Inode: Inode{
		InodeNumber: RootIno,
		Mode:        ModeDir | 0755,
		Size:        0,
		Deleted:     false,
		Links:       1,
		Atime:       now,
		Mtime:       now,
		Ctime:       now,
	}}
	data, err := root.MarshalBinary()
	if err != nil {
		return nil, err
	}
	if err := dev.WriteAt(data, SBSize); err != nil {
		return nil, err
	}
	if err := writeSuperblock(dev, sb); err != nil {
		return nil, err
	}
	log.Printf("wfs: formatted image, head=%d", sb.Head)
	return &LogStore{dev: dev, sb: *sb, inoIdx: map[uint32]int64{RootIno: SBSize}}, nil
}

// Head returns the current head offset: the byte offset of the first free
// byte after the last appended entry.
func (ls *LogStore) Head() int64 {
	return int64(ls.sb.Head)
}

// Device exposes the underlying device, for callers (FS.Statfs) that need
// the device itself rather than log entries.
func (ls *LogStore) Device() *Device {
	return ls.dev
}

// ReadEntryAt reads an inode from off, computes its payload length, and
// returns the owned record.
func (ls *LogStore) ReadEntryAt(off int64) (*LogEntry, error) {
	if off < SBSize || uint64(off) >= ls.sb.Head {
		return nil, fmt.Errorf("%w: offset %d out of log range [%d,%d)", ErrCorrupt, off, SBSize, ls.sb.Head)
	}
	head := make([]byte, SizeofInode)
	if err := ls.dev.ReadAt(head, off); err != nil {
		return nil, err
	}
	entry := &LogEntry{}
	if err := entry.Inode.UnmarshalBinary(head); err != nil {
		return nil, err
	}
	if entry.Inode.Size > 0 {
		payload := make([]byte, entry.Inode.Size)
		if err := ls.dev.ReadAt(payload, off+SizeofInode); err != nil {
			return nil, err
		}
		entry.Payload = payload
	}
	return entry, nil
}

// LogRecord pairs an entry with the offset it was read from, as yielded by
// IterFromStart.
type LogRecord struct {
	Offset int64
	Entry  *LogEntry
}

// IterFromStart returns entries in ascending offset order starting at
// SBSize, stopping exactly when the next offset would equal Head. It never
// reads past Head and is restartable (each call produces an independent
// walk, there is no shared cursor).
func (ls *LogStore) IterFromStart(yield func(LogRecord) bool) error {
	off := int64(SBSize)
	for uint64(off) < ls.sb.Head {
		entry, err := ls.ReadEntryAt(off)
		if err != nil {
			return err
		}
		if !yield(LogRecord{Offset: off, Entry: entry}) {
			return nil
		}
		off += entry.Size()
	}
	return nil
}

// AppendEntry serializes entry at the current head, writes it, advances and
// persists Head, and flushes — in that order, which is the sole source of
// append atomicity (spec §4.2): if the superblock write or flush fails, the
// trailing payload bytes past the last-persisted Head are simply forgotten
// on next open.
func (ls *LogStore) AppendEntry(entry *LogEntry) (int64, error) {
	data, err := entry.MarshalBinary()
	if err != nil {
		return 0, err
	}

	size, err := ls.dev.Size()
	if err != nil {
		return 0, err
	}
	off := int64(ls.sb.Head)
	if off+int64(len(data)) > size {
		return 0, fmt.Errorf("%w: need %d bytes past head %d, image is %d bytes", ErrNoSpace, len(data), off, size)
	}

	if err := ls.dev.WriteAt(data, off); err != nil {
		return 0, err
	}

	newSB := ls.sb
	newSB.Head = uint64(off) + uint64(len(data))
	if err := writeSuperblock(ls.dev, &newSB); err != nil {
		return 0, fmt.Errorf("wfs: appended payload but failed to persist head: %w", err)
	}
	ls.sb = newSB
	ls.inoIdx[entry.Inode.InodeNumber] = off

	log.Printf("wfs: appended entry for inode %d at offset %d (%d bytes), new head %d", entry.Inode.InodeNumber, off, len(data), ls.sb.Head)
	return off, nil
}
