package snapshot_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/wfsfs/wfs"
	"github.com/wfsfs/wfs/internal/snapshot"
)

func newImage(t *testing.T, size int64) (*wfs.Device, *wfs.FS) {
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
	return dev, wfs.NewFS(ls)
}

func TestExportImportRoundTrip(t *testing.T) {
	_, src := newImage(t, 1<<20)

	if _, err := src.Mkdir("/dir", 0755, 1, 2); err != nil {
		t.Fatalf("mkdir: %s", err)
	}
	if _, err := src.Mknod("/dir/f", 0644, 1, 2); err != nil {
		t.Fatalf("mknod: %s", err)
	}
	if _, err := src.Write("/dir/f", 0, []byte("snapshot payload")); err != nil {
		t.Fatalf("write: %s", err)
	}
	if _, err := src.Mknod("/top", 0644, 1, 2); err != nil {
		t.Fatalf("mknod top: %s", err)
	}

	var archive bytes.Buffer
	if err := snapshot.Export(&archive, src, wfs.GZip); err != nil {
		t.Fatalf("export: %s", err)
	}

	dstFile, err := os.CreateTemp(t.TempDir(), "wfs-dst-*.img")
	if err != nil {
		t.Fatalf("create temp file: %s", err)
	}
	if err := dstFile.Truncate(1 << 20); err != nil {
		t.Fatalf("truncate: %s", err)
	}
	dstDev := wfs.NewDevice(dstFile)

	if err := snapshot.Import(bytes.NewReader(archive.Bytes()), dstDev); err != nil {
		t.Fatalf("import: %s", err)
	}

	dstLs, err := wfs.Open(dstDev)
	if err != nil {
		t.Fatalf("open imported image: %s", err)
	}
	dst := wfs.NewFS(dstLs)

	st, err := dst.Getattr("/dir/f")
	if err != nil {
		t.Fatalf("getattr /dir/f: %s", err)
	}
	got, err := dst.Read("/dir/f", 0, int(st.Size))
	if err != nil || string(got) != "snapshot payload" {
		t.Fatalf("read /dir/f = %q, %v", got, err)
	}

	if _, err := dst.Getattr("/top"); err != nil {
		t.Fatalf("getattr /top: %s", err)
	}
}
