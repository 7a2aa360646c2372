package devfs_test

import (
	"testing"

	"github.com/Catrol-s-Forks/lunaix-os/pkg/vfs"
	"github.com/Catrol-s-Forks/lunaix-os/pkg/vfs/devfs"
	"github.com/Catrol-s-Forks/lunaix-os/pkg/vfs/ramfs"
)

func mustMount(t *testing.T) *vfs.VFS {
	t.Helper()
	v := vfs.NewVFS(vfs.Config{})
	if err := v.RegisterFilesystemType("ramfs", ramfs.ManifestJSON, ramfs.FSType{}); err != nil {
		t.Fatalf("register ramfs: %v", err)
	}
	if err := v.RegisterFilesystemType("devfs", devfs.ManifestJSON, devfs.FSType{}); err != nil {
		t.Fatalf("register devfs: %v", err)
	}
	if _, errno := v.NewMount("ramfs", "/", "", nil); errno != 0 {
		t.Fatalf("mount ramfs at /: %v", errno)
	}
	if errno := v.Mkdir(v.Root(), "/dev", 0755); errno != 0 {
		t.Fatalf("mkdir /dev: %v", errno)
	}
	if _, errno := v.NewMount("devfs", "/dev", "", nil); errno != 0 {
		t.Fatalf("mount devfs at /dev: %v", errno)
	}
	return v
}

func TestNullDeviceDiscardsWritesAndReadsEmpty(t *testing.T) {
	v := mustMount(t)
	f, errno := v.Open(v.Root(), "/dev/null", 0, 0)
	if errno != 0 {
		t.Fatalf("open /dev/null: %v", errno)
	}
	n, errno := v.Write(f, []byte("discarded"))
	if errno != 0 || n != len("discarded") {
		t.Fatalf("write: got %d, %v", n, errno)
	}
	buf := make([]byte, 16)
	n, errno = v.Read(f, buf)
	if errno != 0 || n != 0 {
		t.Fatalf("read from null: expected 0 bytes, got %d, %v", n, errno)
	}
}

func TestZeroDeviceFillsReadsWithZero(t *testing.T) {
	v := mustMount(t)
	f, errno := v.Open(v.Root(), "/dev/zero", 0, 0)
	if errno != 0 {
		t.Fatalf("open /dev/zero: %v", errno)
	}
	buf := make([]byte, 8)
	for i := range buf {
		buf[i] = 0xff
	}
	n, errno := v.Read(f, buf)
	if errno != 0 || n != len(buf) {
		t.Fatalf("read: got %d, %v", n, errno)
	}
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte %d not zeroed: %v", i, buf)
		}
	}
}

func TestDevfsHasNoMkdirSupport(t *testing.T) {
	v := mustMount(t)
	if errno := v.Mkdir(v.Root(), "/dev/sub", 0755); errno != vfs.ENOTSUP {
		t.Fatalf("expected ENOTSUP for mkdir under devfs, got %v", errno)
	}
}
