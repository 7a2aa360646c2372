package vfs_test

import (
	"testing"

	"github.com/Catrol-s-Forks/lunaix-os/pkg/vfs"
	"github.com/Catrol-s-Forks/lunaix-os/pkg/vfs/ramfs"
)

func mustMount(t *testing.T) (*vfs.VFS, *vfs.Task) {
	t.Helper()
	v := vfs.NewVFS(vfs.Config{})
	if err := v.RegisterFilesystemType("ramfs", ramfs.ManifestJSON, ramfs.FSType{}); err != nil {
		t.Fatalf("register ramfs: %v", err)
	}
	if _, errno := v.NewMount("ramfs", "/", "", nil); errno != 0 {
		t.Fatalf("mount /: %v", errno)
	}
	return v, vfs.NewTask(v.Root(), v.RootMount())
}

func writeFile(t *testing.T, v *vfs.VFS, task *vfs.Task, path, content string) {
	t.Helper()
	f, errno := v.Open(task.Cwd(), path, vfs.FOCreate|vfs.FOTruncate, 0644)
	if errno != 0 {
		t.Fatalf("open %s: %v", path, errno)
	}
	if _, errno := v.Write(f, []byte(content)); errno != 0 {
		t.Fatalf("write %s: %v", path, errno)
	}
	fd, errno := task.AllocFD(f)
	if errno != 0 {
		t.Fatalf("allocFD: %v", errno)
	}
	if errno := v.Close(task, fd); errno != 0 {
		t.Fatalf("close %s: %v", path, errno)
	}
}

func readFile(t *testing.T, v *vfs.VFS, task *vfs.Task, path string) string {
	t.Helper()
	f, errno := v.Open(task.Cwd(), path, 0, 0)
	if errno != 0 {
		t.Fatalf("open %s: %v", path, errno)
	}
	buf := make([]byte, 4096)
	n, errno := v.Read(f, buf)
	if errno != 0 {
		t.Fatalf("read %s: %v", path, errno)
	}
	fd, _ := task.AllocFD(f)
	v.Close(task, fd)
	return string(buf[:n])
}

func TestMkdirOpenWriteReadRoundTrip(t *testing.T) {
	v, task := mustMount(t)

	if errno := v.Mkdir(task.Cwd(), "/a", 0755); errno != 0 {
		t.Fatalf("mkdir /a: %v", errno)
	}
	if errno := v.Mkdir(task.Cwd(), "/a", 0755); errno != vfs.EEXIST {
		t.Fatalf("mkdir /a again: expected EEXIST, got %v", errno)
	}

	writeFile(t, v, task, "/a/b.txt", "hello world")
	if got := readFile(t, v, task, "/a/b.txt"); got != "hello world" {
		t.Fatalf("round trip: got %q", got)
	}
}

func TestSymlinkFollowedByDefault(t *testing.T) {
	v, task := mustMount(t)
	if errno := v.Mkdir(task.Cwd(), "/a", 0755); errno != 0 {
		t.Fatalf("mkdir: %v", errno)
	}
	writeFile(t, v, task, "/a/b.txt", "via symlink")

	if errno := v.Symlink(task.Cwd(), "/link", "/a/b.txt"); errno != 0 {
		t.Fatalf("symlink: %v", errno)
	}
	target, errno := v.Readlink(task.Cwd(), "/link")
	if errno != 0 || target != "/a/b.txt" {
		t.Fatalf("readlink: got %q, %v", target, errno)
	}
	if got := readFile(t, v, task, "/link"); got != "via symlink" {
		t.Fatalf("open through symlink: got %q", got)
	}
}

func TestRenameMovesEntry(t *testing.T) {
	v, task := mustMount(t)
	if errno := v.Mkdir(task.Cwd(), "/a", 0755); errno != 0 {
		t.Fatalf("mkdir: %v", errno)
	}
	writeFile(t, v, task, "/a/old.txt", "payload")

	if errno := v.Rename(task.Cwd(), "/a/old.txt", "/a/new.txt"); errno != 0 {
		t.Fatalf("rename: %v", errno)
	}
	if _, errno := v.Open(task.Cwd(), "/a/old.txt", 0, 0); errno != vfs.ENOENT {
		t.Fatalf("old path should be gone, got %v", errno)
	}
	if got := readFile(t, v, task, "/a/new.txt"); got != "payload" {
		t.Fatalf("renamed content: got %q", got)
	}
}

func TestRmdirRequiresEmpty(t *testing.T) {
	v, task := mustMount(t)
	if errno := v.Mkdir(task.Cwd(), "/a", 0755); errno != 0 {
		t.Fatalf("mkdir: %v", errno)
	}
	writeFile(t, v, task, "/a/f.txt", "x")

	if errno := v.Rmdir(task.Cwd(), "/a"); errno != vfs.ENOTEMPTY {
		t.Fatalf("expected ENOTEMPTY, got %v", errno)
	}
	if errno := v.Unlink(task.Cwd(), "/a/f.txt"); errno != 0 {
		t.Fatalf("unlink: %v", errno)
	}
	if errno := v.Rmdir(task.Cwd(), "/a"); errno != 0 {
		t.Fatalf("rmdir after empty: %v", errno)
	}
}

func TestDupAndDup2(t *testing.T) {
	v, task := mustMount(t)
	writeFile(t, v, task, "/f.txt", "dup-me")

	f, errno := v.Open(task.Cwd(), "/f.txt", 0, 0)
	if errno != 0 {
		t.Fatalf("open: %v", errno)
	}
	fd, errno := task.AllocFD(f)
	if errno != 0 {
		t.Fatalf("allocFD: %v", errno)
	}

	dupFD, errno := v.Dup(task, fd)
	if errno != 0 || dupFD == fd {
		t.Fatalf("dup: got fd %d, %v", dupFD, errno)
	}

	if _, errno := v.Dup2(task, fd, dupFD); errno != 0 {
		t.Fatalf("dup2: %v", errno)
	}
	if errno := v.Close(task, fd); errno != 0 {
		t.Fatalf("close fd: %v", errno)
	}
	if errno := v.Close(task, dupFD); errno != 0 {
		t.Fatalf("close dupFD: %v", errno)
	}
}

func TestChdirAndGetcwd(t *testing.T) {
	v, task := mustMount(t)
	if errno := v.Mkdir(task.Cwd(), "/a", 0755); errno != 0 {
		t.Fatalf("mkdir: %v", errno)
	}
	if errno := v.Chdir(task, task.Cwd(), "/a"); errno != 0 {
		t.Fatalf("chdir: %v", errno)
	}
	cwd, errno := v.Getcwd(task)
	if errno != 0 || cwd != "/a" {
		t.Fatalf("getcwd: got %q, %v", cwd, errno)
	}
	writeFile(t, v, task, "relative.txt", "cwd-relative write")
	if got := readFile(t, v, task, "/a/relative.txt"); got != "cwd-relative write" {
		t.Fatalf("relative path under cwd: got %q", got)
	}
}

func TestUnlinkOpenFileReturnsEBUSY(t *testing.T) {
	v, task := mustMount(t)
	writeFile(t, v, task, "/a.txt", "x")

	f, errno := v.Open(task.Cwd(), "/a.txt", 0, 0)
	if errno != 0 {
		t.Fatalf("open: %v", errno)
	}
	fd, _ := task.AllocFD(f)

	if errno := v.Unlink(task.Cwd(), "/a.txt"); errno != vfs.EBUSY {
		t.Fatalf("expected EBUSY unlinking an open file, got %v", errno)
	}

	if errno := v.Close(task, fd); errno != 0 {
		t.Fatalf("close: %v", errno)
	}
	if errno := v.Unlink(task.Cwd(), "/a.txt"); errno != 0 {
		t.Fatalf("unlink after close: %v", errno)
	}
}

func TestRmdirOpenDirectoryReturnsEBUSY(t *testing.T) {
	v, task := mustMount(t)
	if errno := v.Mkdir(task.Cwd(), "/a", 0755); errno != 0 {
		t.Fatalf("mkdir: %v", errno)
	}

	f, errno := v.Open(task.Cwd(), "/a", 0, 0)
	if errno != 0 {
		t.Fatalf("open dir: %v", errno)
	}
	fd, _ := task.AllocFD(f)

	if errno := v.Rmdir(task.Cwd(), "/a"); errno != vfs.EBUSY {
		t.Fatalf("expected EBUSY rmdir-ing an open directory, got %v", errno)
	}

	if errno := v.Close(task, fd); errno != 0 {
		t.Fatalf("close: %v", errno)
	}
	if errno := v.Rmdir(task.Cwd(), "/a"); errno != 0 {
		t.Fatalf("rmdir after close: %v", errno)
	}
}

func TestReadOnlyMountRejectsWrites(t *testing.T) {
	v := vfs.NewVFS(vfs.Config{})
	if err := v.RegisterFilesystemType("ramfs", ramfs.ManifestJSON, ramfs.FSType{}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, errno := v.NewMount("ramfs", "/", "", map[string]string{"ro": "true"}); errno != 0 {
		t.Fatalf("mount ro: %v", errno)
	}

	if errno := v.Mkdir(v.Root(), "/a", 0755); errno != vfs.EROFS {
		t.Fatalf("expected EROFS on mkdir, got %v", errno)
	}
	if errno := v.Symlink(v.Root(), "/link", "/a"); errno != vfs.EROFS {
		t.Fatalf("expected EROFS on symlink, got %v", errno)
	}
	if _, errno := v.Open(v.Root(), "/f.txt", vfs.FOCreate, 0644); errno != vfs.EROFS {
		t.Fatalf("expected EROFS on create, got %v", errno)
	}
}

func TestRenameSameInodeIsNoop(t *testing.T) {
	v, task := mustMount(t)
	writeFile(t, v, task, "/a.txt", "payload")

	if errno := v.Rename(task.Cwd(), "/a.txt", "/a.txt"); errno != 0 {
		t.Fatalf("rename onto self: %v", errno)
	}
	if got := readFile(t, v, task, "/a.txt"); got != "payload" {
		t.Fatalf("content should survive a self-rename, got %q", got)
	}
}

func TestRenameOntoNonEmptyDirectoryReturnsENOTEMPTY(t *testing.T) {
	v, task := mustMount(t)
	if errno := v.Mkdir(task.Cwd(), "/src", 0755); errno != 0 {
		t.Fatalf("mkdir /src: %v", errno)
	}
	if errno := v.Mkdir(task.Cwd(), "/dst", 0755); errno != 0 {
		t.Fatalf("mkdir /dst: %v", errno)
	}
	writeFile(t, v, task, "/dst/f.txt", "x")

	if errno := v.Rename(task.Cwd(), "/src", "/dst"); errno != vfs.ENOTEMPTY {
		t.Fatalf("expected ENOTEMPTY, got %v", errno)
	}
}

func TestRealpathAt(t *testing.T) {
	v, task := mustMount(t)
	if errno := v.Mkdir(task.Cwd(), "/a", 0755); errno != 0 {
		t.Fatalf("mkdir: %v", errno)
	}
	writeFile(t, v, task, "/a/f.txt", "x")
	if errno := v.Symlink(task.Cwd(), "/link", "/a/f.txt"); errno != 0 {
		t.Fatalf("symlink: %v", errno)
	}
	path, errno := v.RealpathAt(task.Cwd(), "/link")
	if errno != 0 || path != "/a/f.txt" {
		t.Fatalf("realpathat: got %q, %v", path, errno)
	}
}
