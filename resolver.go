package wfs

import "strings"

// Resolver answers "what is the current log entry for inode N?" and "what
// inode number does this path name?" by a forward scan of the log — the
// canonical algorithm per spec §9; the index cache on LogStore is used as a
// fast path: a hit is trusted as the last-occurrence offset, and a miss
// falls back to a scan.
type Resolver struct {
	ls *LogStore
}

// NewResolver wraps a LogStore for path/inode resolution.
func NewResolver(ls *LogStore) *Resolver {
	return &Resolver{ls: ls}
}

// LatestEntryFor scans the log and returns the entry with the largest
// offset whose Inode.InodeNumber matches ino. A later deleted record
// invalidates the inode entirely for lookup purposes even if an earlier
// live record exists — the last record always wins (spec §4.3).
//
// The LogStore's inode index, rebuilt at open time and kept current on
// every append, already names the offset of that last occurrence; this is
// consulted first and falls back to a full scan only when the index has
// nothing for ino (which a scan would also report as NotFound).
func (r *Resolver) LatestEntryFor(ino uint32) (*LogEntry, error) {
	if off, ok := r.ls.inoIdx[ino]; ok {
		entry, err := r.ls.ReadEntryAt(off)
		if err != nil {
			return nil, err
		}
		if entry.Inode.Deleted {
			return nil, ErrNotFound
		}
		return entry, nil
	}
	return r.scanFor(ino)
}

func (r *Resolver) scanFor(ino uint32) (*LogEntry, error) {
	var latest *LogEntry
	err := r.ls.IterFromStart(func(rec LogRecord) bool {
		if rec.Entry.Inode.InodeNumber == ino {
			latest = rec.Entry
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if latest == nil || latest.Inode.Deleted {
		return nil, ErrNotFound
	}
	return latest, nil
}

// IsLive reports whether ino currently resolves to a live entry, used by
// the inode allocator in fsops.go.
func (r *Resolver) IsLive(ino uint32) bool {
	_, err := r.LatestEntryFor(ino)
	return err == nil
}

// ResolvePath resolves an absolute path to its current inode number.
func (r *Resolver) ResolvePath(path string) (uint32, error) {
	if path == "/" || path == "" {
		return RootIno, nil
	}

	cur := RootIno
	for _, name := range splitPath(path) {
		entry, err := r.LatestEntryFor(cur)
		if err != nil {
			return 0, ErrNotFound
		}
		if !entry.Inode.IsDir() {
			return 0, ErrNotADirectory
		}
		dentries, err := entry.Dentries()
		if err != nil {
			return 0, err
		}
		found := false
		for _, d := range dentries {
			if d.Name == name {
				cur = d.InodeNumber
				found = true
				break
			}
		}
		if !found {
			return 0, ErrNotFound
		}
	}
	return cur, nil
}

// splitPath splits an absolute path into non-empty components without
// mutating or retaining references into any shared tokenizer state — a
// pure function over its input, per spec §9's tokenizer design note.
func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitParentBase splits an absolute path into its parent directory path
// and basename. Used by create/unlink/rename operations.
func splitParentBase(path string) (parent, base string) {
	comps := splitPath(path)
	if len(comps) == 0 {
		return "/", ""
	}
	base = comps[len(comps)-1]
	if len(comps) == 1 {
		return "/", base
	}
	parent = "/" + strings.Join(comps[:len(comps)-1], "/")
	return parent, base
}
