package wfs_test

import (
	"os"
	"testing"

	"github.com/wfsfs/wfs"
)

func TestCompactReclaimsSupersededEntries(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "wfs-*.img")
	if err != nil {
		t.Fatalf("create temp file: %s", err)
	}
	if err := f.Truncate(1 << 20); err != nil {
		t.Fatalf("truncate: %s", err)
	}
	dev := wfs.NewDevice(f)

	ls, err := wfs.Format(dev)
	if err != nil {
		t.Fatalf("format: %s", err)
	}
	fsys := wfs.NewFS(ls)

	if _, err := fsys.Mknod("/f", 0644, 0, 0); err != nil {
		t.Fatalf("mknod: %s", err)
	}
	for i := 0; i < 10; i++ {
		if _, err := fsys.Write("/f", 0, []byte("revision")); err != nil {
			t.Fatalf("write %d: %s", i, err)
		}
	}
	if _, err := fsys.Mknod("/gone", 0644, 0, 0); err != nil {
		t.Fatalf("mknod gone: %s", err)
	}
	if err := fsys.Unlink("/gone"); err != nil {
		t.Fatalf("unlink gone: %s", err)
	}

	headBeforeCompact := ls.Head()

	report, err := wfs.Compact(dev)
	if err != nil {
		t.Fatalf("compact: %s", err)
	}
	if report.NewHead >= headBeforeCompact {
		t.Errorf("compact did not shrink the log: %d -> %d", headBeforeCompact, report.NewHead)
	}
	if report.BytesReclaimed <= 0 {
		t.Errorf("bytes reclaimed = %d, want > 0", report.BytesReclaimed)
	}

	ls2, err := wfs.Open(dev)
	if err != nil {
		t.Fatalf("reopen after compact: %s", err)
	}
	fsys2 := wfs.NewFS(ls2)

	st, err := fsys2.Getattr("/f")
	if err != nil {
		t.Fatalf("getattr /f after compact: %s", err)
	}
	if st.Size != uint64(len("revision")) {
		t.Errorf("size after compact = %d, want %d", st.Size, len("revision"))
	}
	got, err := fsys2.Read("/f", 0, int(st.Size))
	if err != nil || string(got) != "revision" {
		t.Errorf("read /f after compact = %q, %v", got, err)
	}

	if _, err := fsys2.Getattr("/gone"); err != wfs.ErrNotFound {
		t.Errorf("getattr /gone after compact err = %v, want ErrNotFound", err)
	}
}
