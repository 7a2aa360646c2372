package vfs

import "sync"

// Task is the per-process VFS context: its current working directory, its
// file-descriptor table, and (spec.md §4.I) an optional root override for a
// chroot-style jail. It is the Go analogue of the fixed-size fd array the
// spec describes rather than a growable slice, so fd numbers stay stable
// and dup2's "install at an exact slot" semantics fall out naturally.
type Task struct {
	mu  sync.Mutex
	cwd *Dnode
	cwdMnt *Mount
	root *Dnode

	fds [MaxFD]*File
}

// NewTask creates a task rooted and positioned at cwd (normally the VFS
// system root, spec.md §4.I).
func NewTask(cwd *Dnode, mnt *Mount) *Task {
	cwd.incRef()
	return &Task{cwd: cwd, cwdMnt: mnt}
}

// getfd validates fd and returns its File without altering its ref count;
// the VFS_MAX_FD bound and the "closed slots are nil" invariant of
// spec.md §4.H are both enforced here (the __vfs_getfd equivalent).
func (t *Task) getfd(fd int) (*File, Errno) {
	if fd < 0 || fd >= MaxFD {
		return nil, EBADF
	}
	t.mu.Lock()
	f := t.fds[fd]
	t.mu.Unlock()
	if f == nil {
		return nil, EBADF
	}
	return f, 0
}

// allocFD installs f at the lowest free slot, per the conventional POSIX
// "lowest available descriptor" rule spec.md §4.H assumes for a bare open().
func (t *Task) allocFD(f *File) (int, Errno) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := 0; i < MaxFD; i++ {
		if t.fds[i] == nil {
			t.fds[i] = f
			f.incRef()
			return i, 0
		}
	}
	return -1, EMFILE
}

// AllocFD installs an already-open File at the lowest free descriptor,
// for callers (like open()) that construct a File directly rather than
// going through dup/dup2. The slot takes over the reference the File was
// opened with, so closing that descriptor tears the File down.
func (t *Task) AllocFD(f *File) (int, Errno) {
	fd, errno := t.allocFD(f)
	if errno == 0 {
		f.decRef()
	}
	return fd, errno
}

// dup allocates a new lowest-free descriptor referring to the same open
// file as fd (spec.md §4.G dup).
func (t *Task) dup(fd int) (int, Errno) {
	f, errno := t.getfd(fd)
	if errno != 0 {
		return -1, errno
	}
	return t.allocFD(f)
}

// dup2 installs fd's open file at newfd, closing whatever newfd previously
// held (spec.md §4.G dup2). dup2(fd, fd) is a no-op success.
func (t *Task) dup2(fd, newfd int) (int, Errno) {
	if newfd < 0 || newfd >= MaxFD {
		return -1, EBADF
	}
	f, errno := t.getfd(fd)
	if errno != 0 {
		return -1, errno
	}
	if fd == newfd {
		return newfd, 0
	}

	t.mu.Lock()
	old := t.fds[newfd]
	t.fds[newfd] = f
	t.mu.Unlock()
	f.incRef()

	if old != nil {
		closeFile(old)
	}
	return newfd, 0
}

// releaseFD clears slot fd and returns the File that was there, for close()
// to finish tearing down (ops.go).
func (t *Task) releaseFD(fd int) (*File, Errno) {
	if fd < 0 || fd >= MaxFD {
		return nil, EBADF
	}
	t.mu.Lock()
	f := t.fds[fd]
	t.fds[fd] = nil
	t.mu.Unlock()
	if f == nil {
		return nil, EBADF
	}
	return f, 0
}

// Cwd returns the task's current working directory dnode; callers must not
// retain it past a concurrent chdir without their own reference.
func (t *Task) Cwd() *Dnode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cwd
}

// Root returns the task's root override, or nil if it uses the system root
// (spec.md §4.I chroot-style jail).
func (t *Task) Root() *Dnode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.root
}
