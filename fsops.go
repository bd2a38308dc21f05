package wfs

import (
	"io/fs"
	"log"
)

// FS is the filesystem operations layer: each method is a small sequence
// of Resolver + LogStore calls, exactly as spec §4.4 describes. It is the
// type a host gateway (FUSE shim, CLI) drives; nothing here knows about
// FUSE or any transport.
type FS struct {
	ls *LogStore
	r  *Resolver
}

// NewFS wraps an opened LogStore with the filesystem operations layer.
func NewFS(ls *LogStore) *FS {
	return &FS{ls: ls, r: NewResolver(ls)}
}

// Stat is the result of Getattr: a deliberately narrow projection of Inode,
// independent of any host gateway's attribute struct.
type Stat struct {
	InodeNumber uint32
	Mode        uint32
	FileMode    fs.FileMode
	Uid         uint32
	Gid         uint32
	Size        uint64
	Links       uint32
	Atime       uint32
	Mtime       uint32
	Ctime       uint32
}

// Getattr resolves path and returns its current attributes.
func (fsys *FS) Getattr(path string) (*Stat, error) {
	ino, err := fsys.r.ResolvePath(path)
	if err != nil {
		return nil, err
	}
	entry, err := fsys.r.LatestEntryFor(ino)
	if err != nil {
		return nil, ErrNotFound
	}
	return &Stat{
		InodeNumber: entry.Inode.InodeNumber,
		Mode:        entry.Inode.Mode,
		FileMode:    entry.Inode.FileMode(),
		Uid:         entry.Inode.Uid,
		Gid:         entry.Inode.Gid,
		Size:        uint64(entry.Inode.Size),
		Links:       entry.Inode.Links,
		Atime:       entry.Inode.Atime,
		Mtime:       entry.Inode.Mtime,
		Ctime:       entry.Inode.Ctime,
	}, nil
}

// Readdir resolves path, requires directory mode, and streams each
// directory entry's name to accumulate until it returns false (signaling
// full). It never synthesizes "." or "..": the host gateway may add them.
func (fsys *FS) Readdir(path string, accumulate func(name string) bool) error {
	ino, err := fsys.r.ResolvePath(path)
	if err != nil {
		return err
	}
	entry, err := fsys.r.LatestEntryFor(ino)
	if err != nil {
		return ErrNotFound
	}
	if !entry.Inode.IsDir() {
		return ErrNotADirectory
	}
	dentries, err := entry.Dentries()
	if err != nil {
		return err
	}
	for _, d := range dentries {
		if !accumulate(d.Name) {
			return nil
		}
	}
	return nil
}

// Read resolves path, requires regular-file mode, and returns the payload
// slice [offset, min(offset+size, fileLen)). Returns zero bytes if offset
// is at or past the current file length.
func (fsys *FS) Read(path string, offset int64, size int) ([]byte, error) {
	ino, err := fsys.r.ResolvePath(path)
	if err != nil {
		return nil, err
	}
	entry, err := fsys.r.LatestEntryFor(ino)
	if err != nil {
		return nil, ErrNotFound
	}
	if entry.Inode.IsDir() {
		return nil, ErrIsADirectory
	}
	l := int64(len(entry.Payload))
	if offset >= l {
		return nil, nil
	}
	end := offset + int64(size)
	if end > l {
		end = l
	}
	out := make([]byte, end-offset)
	copy(out, entry.Payload[offset:end])
	return out, nil
}

// Write resolves path, requires regular-file mode, and appends a fresh log
// entry for the same inode with the existing payload overlaid by data at
// offset (zero-extended first if offset is past the current length).
func (fsys *FS) Write(path string, offset int64, data []byte) (int, error) {
	ino, err := fsys.r.ResolvePath(path)
	if err != nil {
		return 0, err
	}
	entry, err := fsys.r.LatestEntryFor(ino)
	if err != nil {
		return 0, ErrNotFound
	}
	if entry.Inode.IsDir() {
		return 0, ErrIsADirectory
	}

	newLen := int64(len(entry.Payload))
	if need := offset + int64(len(data)); need > newLen {
		newLen = need
	}
	payload := make([]byte, newLen)
	copy(payload, entry.Payload)
	copy(payload[offset:], data)

	inode := entry.Inode
	inode.Deleted = false
	inode.Mtime = nowUnix()
	if _, err := fsys.ls.AppendEntry(&LogEntry{Inode: inode, Payload: payload}); err != nil {
		return 0, err
	}
	return len(data), nil
}

// Truncate resolves path, requires regular-file mode, and appends a fresh
// entry whose payload is either cut to newSize or zero-extended to it.
func (fsys *FS) Truncate(path string, newSize int64) error {
	ino, err := fsys.r.ResolvePath(path)
	if err != nil {
		return err
	}
	entry, err := fsys.r.LatestEntryFor(ino)
	if err != nil {
		return ErrNotFound
	}
	if entry.Inode.IsDir() {
		return ErrIsADirectory
	}

	payload := make([]byte, newSize)
	copy(payload, entry.Payload)

	inode := entry.Inode
	inode.Deleted = false
	inode.Mtime = nowUnix()
	_, err = fsys.ls.AppendEntry(&LogEntry{Inode: inode, Payload: payload})
	return err
}

// allocateInode picks the smallest strictly positive integer that does not
// occur as InodeNumber in any live entry of the current log, purely derived
// from log state (spec §4.4 step 3).
func (fsys *FS) allocateInode() uint32 {
	for n := uint32(1); ; n++ {
		if !fsys.r.IsLive(n) {
			return n
		}
	}
}

// create is the shared protocol behind Mknod and Mkdir: both append a new
// child inode, then append an updated parent directory entry, in that
// order, so a crash between the two leaves only an unreachable (and thus
// harmless) child inode — never a dangling directory reference. mode is
// already in on-disk wire format (type bits plus permission bits); Mknod
// and Mkdir are responsible for producing that from an fs.FileMode.
func (fsys *FS) create(path string, mode uint32, uid, gid uint32) (uint32, error) {
	if _, err := fsys.r.ResolvePath(path); err == nil {
		return 0, ErrExists
	}

	parentPath, base := splitParentBase(path)
	if len(base) > MaxFileNameLen-1 {
		return 0, ErrNameTooLong
	}

	parentIno, err := fsys.r.ResolvePath(parentPath)
	if err != nil {
		return 0, err
	}
	parentEntry, err := fsys.r.LatestEntryFor(parentIno)
	if err != nil {
		return 0, ErrNotFound
	}
	if !parentEntry.Inode.IsDir() {
		return 0, ErrNotADirectory
	}

	childIno := fsys.allocateInode()
	now := nowUnix()
	child := LogEntry{Inode: Inode{
		InodeNumber: childIno,
		Mode:        mode,
		Uid:         uid,
		Gid:         gid,
		Size:        0,
		Deleted:     false,
		Links:       1,
		Atime:       now,
		Mtime:       now,
		Ctime:       now,
	}}
	if _, err := fsys.ls.AppendEntry(&child); err != nil {
		return 0, err
	}

	dentries, err := parentEntry.Dentries()
	if err != nil {
		return 0, err
	}
	dentries = append(dentries, Dentry{Name: base, InodeNumber: childIno})
	payload, err := encodeDentries(dentries)
	if err != nil {
		return 0, err
	}

	parentInode := parentEntry.Inode
	parentInode.Mtime = now
	if _, err := fsys.ls.AppendEntry(&LogEntry{Inode: parentInode, Payload: payload}); err != nil {
		return 0, err
	}

	log.Printf("wfs: created inode %d (%q) under parent %d", childIno, base, parentIno)
	return childIno, nil
}

// Mknod creates a new regular file at path. perm is interpreted as an
// idiomatic fs.FileMode; any type bits it carries are ignored, since a
// regular file is always what Mknod produces.
func (fsys *FS) Mknod(path string, perm fs.FileMode, uid, gid uint32) (uint32, error) {
	return fsys.create(path, ModeToUnix(perm&fs.ModePerm), uid, gid)
}

// Mkdir creates a new, empty directory at path.
func (fsys *FS) Mkdir(path string, perm fs.FileMode, uid, gid uint32) (uint32, error) {
	return fsys.create(path, ModeToUnix((perm&fs.ModePerm)|fs.ModeDir), uid, gid)
}

// unlinkCommon is shared by Unlink and Rmdir: append a deleted tombstone
// for the target, then append an updated parent with the matching entry
// removed (array order of survivors preserved).
func (fsys *FS) unlinkCommon(path string) error {
	ino, err := fsys.r.ResolvePath(path)
	if err != nil {
		return err
	}
	entry, err := fsys.r.LatestEntryFor(ino)
	if err != nil {
		return ErrNotFound
	}

	parentPath, base := splitParentBase(path)
	parentIno, err := fsys.r.ResolvePath(parentPath)
	if err != nil {
		return err
	}
	parentEntry, err := fsys.r.LatestEntryFor(parentIno)
	if err != nil {
		return ErrNotFound
	}

	tombstone := entry.Inode
	tombstone.Deleted = true
	tombstone.Size = 0
	tombstone.Mtime = nowUnix()
	if _, err := fsys.ls.AppendEntry(&LogEntry{Inode: tombstone}); err != nil {
		return err
	}

	dentries, err := parentEntry.Dentries()
	if err != nil {
		return err
	}
	survivors := make([]Dentry, 0, len(dentries))
	for _, d := range dentries {
		if d.Name != base {
			survivors = append(survivors, d)
		}
	}
	payload, err := encodeDentries(survivors)
	if err != nil {
		return err
	}

	parentInode := parentEntry.Inode
	parentInode.Mtime = nowUnix()
	_, err = fsys.ls.AppendEntry(&LogEntry{Inode: parentInode, Payload: payload})
	return err
}

// Unlink removes a regular-file directory entry. Directory removal must go
// through Rmdir; this rejects it with ErrIsADirectory.
func (fsys *FS) Unlink(path string) error {
	ino, err := fsys.r.ResolvePath(path)
	if err != nil {
		return err
	}
	entry, err := fsys.r.LatestEntryFor(ino)
	if err != nil {
		return ErrNotFound
	}
	if entry.Inode.IsDir() {
		return ErrIsADirectory
	}
	return fsys.unlinkCommon(path)
}

// Rmdir removes an empty directory entry. The root cannot be removed.
func (fsys *FS) Rmdir(path string) error {
	ino, err := fsys.r.ResolvePath(path)
	if err != nil {
		return err
	}
	if ino == RootIno {
		return ErrPermissionDenied
	}
	entry, err := fsys.r.LatestEntryFor(ino)
	if err != nil {
		return ErrNotFound
	}
	if !entry.Inode.IsDir() {
		return ErrNotADirectory
	}
	if len(entry.Payload) > 0 {
		return ErrDirNotEmpty
	}
	return fsys.unlinkCommon(path)
}

// Rename moves a directory entry to a new name within the same parent
// directory. Cross-directory rename is deliberately unsupported (see
// SPEC_FULL.md §4.8) because the log format has no way to express a
// two-parent-rewrite transaction atomically.
func (fsys *FS) Rename(oldPath, newPath string) error {
	oldParent, oldBase := splitParentBase(oldPath)
	newParent, newBase := splitParentBase(newPath)
	if oldParent != newParent {
		return ErrNotSupported
	}
	if len(newBase) > MaxFileNameLen-1 {
		return ErrNameTooLong
	}

	parentIno, err := fsys.r.ResolvePath(oldParent)
	if err != nil {
		return err
	}
	parentEntry, err := fsys.r.LatestEntryFor(parentIno)
	if err != nil {
		return ErrNotFound
	}

	dentries, err := parentEntry.Dentries()
	if err != nil {
		return err
	}

	foundOld := false
	for _, d := range dentries {
		if d.Name == newBase {
			return ErrExists
		}
		if d.Name == oldBase {
			foundOld = true
		}
	}
	if !foundOld {
		return ErrNotFound
	}

	for i := range dentries {
		if dentries[i].Name == oldBase {
			dentries[i].Name = newBase
		}
	}
	payload, err := encodeDentries(dentries)
	if err != nil {
		return err
	}

	parentInode := parentEntry.Inode
	parentInode.Mtime = nowUnix()
	_, err = fsys.ls.AppendEntry(&LogEntry{Inode: parentInode, Payload: payload})
	return err
}

// FSStat reports coarse space usage, as a host gateway's statfs would want.
type FSStat struct {
	BlockSize  int64
	TotalBytes int64
	UsedBytes  int64
	FreeBytes  int64
}

// Statfs reports space usage derived from already-available quantities.
func (fsys *FS) Statfs() (*FSStat, error) {
	total, err := fsys.ls.Device().Size()
	if err != nil {
		return nil, err
	}
	used := fsys.ls.Head()
	return &FSStat{
		BlockSize:  SBSize,
		TotalBytes: total,
		UsedBytes:  used,
		FreeBytes:  total - used,
	}, nil
}

// Resolver exposes the underlying Resolver for callers that need direct
// path/inode resolution without the FS-level policy.
func (fsys *FS) Resolver() *Resolver {
	return fsys.r
}

// LogStore exposes the underlying LogStore for callers that operate below
// the filesystem-operations layer.
func (fsys *FS) LogStore() *LogStore {
	return fsys.ls
}
