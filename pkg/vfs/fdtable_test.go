package vfs

import "testing"

func newTestFile() *File {
	return &File{dnode: &Dnode{}, inode: &Inode{}, ops: UnsupportedFileOps{}}
}

func TestAllocFDLowestFree(t *testing.T) {
	task := &Task{}
	f1 := newTestFile()
	f2 := newTestFile()

	fd1, errno := task.allocFD(f1)
	if errno != 0 || fd1 != 0 {
		t.Fatalf("expected fd 0, got %d, %v", fd1, errno)
	}
	fd2, errno := task.allocFD(f2)
	if errno != 0 || fd2 != 1 {
		t.Fatalf("expected fd 1, got %d, %v", fd2, errno)
	}

	if _, errno := task.releaseFD(fd1); errno != 0 {
		t.Fatalf("release: %v", errno)
	}
	fd3, errno := task.allocFD(f1)
	if errno != 0 || fd3 != 0 {
		t.Fatalf("expected freed slot 0 reused, got %d, %v", fd3, errno)
	}
}

func TestDupAllocatesDistinctLowestFreeSlot(t *testing.T) {
	task := &Task{}
	f := newTestFile()
	fd, _ := task.allocFD(f)

	dupFD, errno := task.dup(fd)
	if errno != 0 {
		t.Fatalf("dup: %v", errno)
	}
	if dupFD == fd {
		t.Fatalf("dup should allocate a distinct fd")
	}
	got, errno := task.getfd(dupFD)
	if errno != 0 || got != f {
		t.Fatalf("dup'd fd should reference the same File, got %v, %v", got, errno)
	}
}

func TestDup2InstallsAtExactSlot(t *testing.T) {
	task := &Task{}
	f1 := newTestFile()
	f2 := newTestFile()
	fd1, _ := task.allocFD(f1)
	fd2, _ := task.allocFD(f2)

	got, errno := task.dup2(fd1, fd2)
	if errno != 0 || got != fd2 {
		t.Fatalf("dup2: got %d, %v", got, errno)
	}
	installed, errno := task.getfd(fd2)
	if errno != 0 || installed != f1 {
		t.Fatalf("expected fd %d to now reference f1, got %v", fd2, installed)
	}
}

func TestDup2SelfIsNoop(t *testing.T) {
	task := &Task{}
	f := newTestFile()
	fd, _ := task.allocFD(f)

	got, errno := task.dup2(fd, fd)
	if errno != 0 || got != fd {
		t.Fatalf("dup2(fd, fd): got %d, %v", got, errno)
	}
}

func TestGetfdOutOfRange(t *testing.T) {
	task := &Task{}
	if _, errno := task.getfd(-1); errno != EBADF {
		t.Fatalf("expected EBADF for negative fd, got %v", errno)
	}
	if _, errno := task.getfd(MaxFD); errno != EBADF {
		t.Fatalf("expected EBADF for out-of-range fd, got %v", errno)
	}
	if _, errno := task.getfd(3); errno != EBADF {
		t.Fatalf("expected EBADF for unallocated fd, got %v", errno)
	}
}

func TestAllocFDExhaustion(t *testing.T) {
	task := &Task{}
	f := newTestFile()
	for i := 0; i < MaxFD; i++ {
		if _, errno := task.allocFD(f); errno != 0 {
			t.Fatalf("unexpected error filling table at %d: %v", i, errno)
		}
	}
	if _, errno := task.allocFD(f); errno != EMFILE {
		t.Fatalf("expected EMFILE once table is full, got %v", errno)
	}
}
