package wfs_test

import (
	"os"
	"testing"

	"github.com/wfsfs/wfs"
)

// newTestImage creates a temporary, freshly formatted image of the given
// size and returns an FS over it. The backing file is removed when the
// test completes.
func newTestImage(t *testing.T, size int64) *wfs.FS {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "wfs-*.img")
	if err != nil {
		t.Fatalf("create temp file: %s", err)
	}
	if err := f.Truncate(size); err != nil {
		t.Fatalf("truncate: %s", err)
	}
	dev := wfs.NewDevice(f)
	ls, err := wfs.Format(dev)
	if err != nil {
		t.Fatalf("format: %s", err)
	}
	return wfs.NewFS(ls)
}

func TestFormatCreatesRoot(t *testing.T) {
	fsys := newTestImage(t, 1<<20)
	st, err := fsys.Getattr("/")
	if err != nil {
		t.Fatalf("getattr /: %s", err)
	}
	if st.InodeNumber != 0 {
		t.Errorf("root inode = %d, want 0", st.InodeNumber)
	}
	if st.Mode&wfs.ModeTypeMask != wfs.ModeDir {
		t.Errorf("root is not a directory: mode=%#x", st.Mode)
	}
}

func TestMkdirAndLookup(t *testing.T) {
	fsys := newTestImage(t, 1<<20)
	ino, err := fsys.Mkdir("/a", 0755, 1, 1)
	if err != nil {
		t.Fatalf("mkdir: %s", err)
	}
	if ino == 0 {
		t.Fatalf("mkdir allocated root inode")
	}

	st, err := fsys.Getattr("/a")
	if err != nil {
		t.Fatalf("getattr /a: %s", err)
	}
	if st.InodeNumber != ino {
		t.Errorf("getattr inode = %d, want %d", st.InodeNumber, ino)
	}

	var names []string
	err = fsys.Readdir("/", func(name string) bool {
		names = append(names, name)
		return true
	})
	if err != nil {
		t.Fatalf("readdir /: %s", err)
	}
	if len(names) != 1 || names[0] != "a" {
		t.Errorf("readdir / = %v, want [a]", names)
	}
}

func TestMkdirDuplicateFails(t *testing.T) {
	fsys := newTestImage(t, 1<<20)
	if _, err := fsys.Mkdir("/a", 0755, 0, 0); err != nil {
		t.Fatalf("mkdir: %s", err)
	}
	if _, err := fsys.Mkdir("/a", 0755, 0, 0); err != wfs.ErrExists {
		t.Errorf("second mkdir /a err = %v, want ErrExists", err)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	fsys := newTestImage(t, 1<<20)
	if _, err := fsys.Mknod("/f", 0644, 0, 0); err != nil {
		t.Fatalf("mknod: %s", err)
	}

	data := []byte("hello world")
	n, err := fsys.Write("/f", 0, data)
	if err != nil {
		t.Fatalf("write: %s", err)
	}
	if n != len(data) {
		t.Errorf("write returned %d, want %d", n, len(data))
	}

	got, err := fsys.Read("/f", 0, len(data))
	if err != nil {
		t.Fatalf("read: %s", err)
	}
	if string(got) != string(data) {
		t.Errorf("read = %q, want %q", got, data)
	}
}

func TestWriteAppendPastEnd(t *testing.T) {
	fsys := newTestImage(t, 1<<20)
	if _, err := fsys.Mknod("/f", 0644, 0, 0); err != nil {
		t.Fatalf("mknod: %s", err)
	}
	if _, err := fsys.Write("/f", 0, []byte("AAAA")); err != nil {
		t.Fatalf("write 1: %s", err)
	}
	if _, err := fsys.Write("/f", 10, []byte("BB")); err != nil {
		t.Fatalf("write 2: %s", err)
	}
	got, err := fsys.Read("/f", 0, 12)
	if err != nil {
		t.Fatalf("read: %s", err)
	}
	want := "AAAA\x00\x00\x00\x00\x00\x00BB"
	if string(got) != want {
		t.Errorf("read = %q, want %q", got, want)
	}
}

func TestTruncateShrinkAndGrow(t *testing.T) {
	fsys := newTestImage(t, 1<<20)
	if _, err := fsys.Mknod("/f", 0644, 0, 0); err != nil {
		t.Fatalf("mknod: %s", err)
	}
	if _, err := fsys.Write("/f", 0, []byte("0123456789")); err != nil {
		t.Fatalf("write: %s", err)
	}

	if err := fsys.Truncate("/f", 4); err != nil {
		t.Fatalf("truncate shrink: %s", err)
	}
	got, err := fsys.Read("/f", 0, 10)
	if err != nil {
		t.Fatalf("read after shrink: %s", err)
	}
	if string(got) != "0123" {
		t.Errorf("read after shrink = %q, want %q", got, "0123")
	}

	if err := fsys.Truncate("/f", 6); err != nil {
		t.Fatalf("truncate grow: %s", err)
	}
	got, err = fsys.Read("/f", 0, 6)
	if err != nil {
		t.Fatalf("read after grow: %s", err)
	}
	if string(got) != "0123\x00\x00" {
		t.Errorf("read after grow = %q", got)
	}
}

func TestUnlinkRemovesEntry(t *testing.T) {
	fsys := newTestImage(t, 1<<20)
	if _, err := fsys.Mknod("/f", 0644, 0, 0); err != nil {
		t.Fatalf("mknod: %s", err)
	}
	if err := fsys.Unlink("/f"); err != nil {
		t.Fatalf("unlink: %s", err)
	}
	if _, err := fsys.Getattr("/f"); err != wfs.ErrNotFound {
		t.Errorf("getattr after unlink err = %v, want ErrNotFound", err)
	}
}

func TestUnlinkRejectsDirectory(t *testing.T) {
	fsys := newTestImage(t, 1<<20)
	if _, err := fsys.Mkdir("/d", 0755, 0, 0); err != nil {
		t.Fatalf("mkdir: %s", err)
	}
	if err := fsys.Unlink("/d"); err != wfs.ErrIsADirectory {
		t.Errorf("unlink directory err = %v, want ErrIsADirectory", err)
	}
}

func TestRmdirRequiresEmpty(t *testing.T) {
	fsys := newTestImage(t, 1<<20)
	if _, err := fsys.Mkdir("/d", 0755, 0, 0); err != nil {
		t.Fatalf("mkdir: %s", err)
	}
	if _, err := fsys.Mknod("/d/f", 0644, 0, 0); err != nil {
		t.Fatalf("mknod: %s", err)
	}
	if err := fsys.Rmdir("/d"); err != wfs.ErrDirNotEmpty {
		t.Errorf("rmdir non-empty err = %v, want ErrDirNotEmpty", err)
	}
	if err := fsys.Unlink("/d/f"); err != nil {
		t.Fatalf("unlink: %s", err)
	}
	if err := fsys.Rmdir("/d"); err != nil {
		t.Errorf("rmdir empty: %s", err)
	}
}

func TestRmdirRootRejected(t *testing.T) {
	fsys := newTestImage(t, 1<<20)
	if err := fsys.Rmdir("/"); err != wfs.ErrPermissionDenied {
		t.Errorf("rmdir / err = %v, want ErrPermissionDenied", err)
	}
}

func TestRenamePreservesInode(t *testing.T) {
	fsys := newTestImage(t, 1<<20)
	ino, err := fsys.Mknod("/a", 0644, 0, 0)
	if err != nil {
		t.Fatalf("mknod: %s", err)
	}
	if _, err := fsys.Write("/a", 0, []byte("data")); err != nil {
		t.Fatalf("write: %s", err)
	}
	if err := fsys.Rename("/a", "/b"); err != nil {
		t.Fatalf("rename: %s", err)
	}
	st, err := fsys.Getattr("/b")
	if err != nil {
		t.Fatalf("getattr /b: %s", err)
	}
	if st.InodeNumber != ino {
		t.Errorf("renamed inode = %d, want %d", st.InodeNumber, ino)
	}
	if _, err := fsys.Getattr("/a"); err != wfs.ErrNotFound {
		t.Errorf("getattr /a after rename err = %v, want ErrNotFound", err)
	}
	got, err := fsys.Read("/b", 0, 4)
	if err != nil || string(got) != "data" {
		t.Errorf("read /b after rename = %q, %v", got, err)
	}
}

func TestRenameCrossDirectoryUnsupported(t *testing.T) {
	fsys := newTestImage(t, 1<<20)
	if _, err := fsys.Mkdir("/d", 0755, 0, 0); err != nil {
		t.Fatalf("mkdir: %s", err)
	}
	if _, err := fsys.Mknod("/a", 0644, 0, 0); err != nil {
		t.Fatalf("mknod: %s", err)
	}
	if err := fsys.Rename("/a", "/d/a"); err != wfs.ErrNotSupported {
		t.Errorf("cross-directory rename err = %v, want ErrNotSupported", err)
	}
}

func TestStatfsReportsUsage(t *testing.T) {
	fsys := newTestImage(t, 1<<20)
	st, err := fsys.Statfs()
	if err != nil {
		t.Fatalf("statfs: %s", err)
	}
	if st.TotalBytes != 1<<20 {
		t.Errorf("total = %d, want %d", st.TotalBytes, 1<<20)
	}
	if st.UsedBytes <= 0 || st.UsedBytes >= st.TotalBytes {
		t.Errorf("used = %d out of expected range", st.UsedBytes)
	}
}

func TestInodeReuseAfterDelete(t *testing.T) {
	fsys := newTestImage(t, 1<<20)
	ino1, err := fsys.Mknod("/a", 0644, 0, 0)
	if err != nil {
		t.Fatalf("mknod a: %s", err)
	}
	if err := fsys.Unlink("/a"); err != nil {
		t.Fatalf("unlink a: %s", err)
	}
	ino2, err := fsys.Mknod("/b", 0644, 0, 0)
	if err != nil {
		t.Fatalf("mknod b: %s", err)
	}
	if ino2 != ino1 {
		t.Errorf("reused inode = %d, want reuse of %d", ino2, ino1)
	}
}
