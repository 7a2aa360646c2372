package vfs

// This file implements the syscall-level operations of spec.md §4.G on top
// of Walk (walk.go), the object model (object.go) and the fd table
// (fdtable.go). Every operation takes an explicit start dnode for relative
// resolution (a task's cwd, or its root override); a nil start resolves
// against the VFS system root, matching Walk's own convention.

// createChild runs create against parent's inode (already known to be a
// directory) and binds the resulting inode into a freshly allocated dnode
// under parent, mirroring spec.md §4.D's alloc-then-bind sequence used by
// mkdir, create, and symlink alike. It returns a dnode already registered in
// the dcache; the caller decides whether to keep a reference on it.
func (vfs *VFS) createChild(parent *Dnode, name string, create func(pi *Inode) (uint64, Errno)) (*Dnode, Errno) {
	if parent.sb.ReadOnly() {
		return nil, EROFS
	}
	pi := parent.Inode()
	if pi == nil {
		return nil, ENOENT
	}
	if pi.Type() != TypeDirectory {
		return nil, ENOTDIR
	}

	pi.mu.Lock()
	childID, errno := create(pi)
	pi.mu.Unlock()
	if errno != 0 {
		return nil, errno
	}

	ino, hit := vfs.findInode(parent.sb, childID)
	if !hit {
		return nil, ENOENT
	}

	d, errno := vfs.allocDnode(name, parent, parent.sb)
	if errno != 0 {
		return nil, errno
	}
	assignInode(d, ino)
	vfs.dcache.add(parent, d)
	return d, 0
}

// Open implements open()/creat() (spec.md §4.G open). flags&FOCreate causes
// a missing leaf to be created via the parent inode's Create; mode is
// ignored unless a new inode is actually created.
func (vfs *VFS) Open(start *Dnode, path string, flags OpenFlags, mode uint32) (*File, Errno) {
	d, _, errno := vfs.Walk(start, path, 0)
	if errno == 0 {
		if flags&FOTruncate != 0 && d.Inode() != nil && d.Inode().Type() == TypeDirectory {
			vfs.PutDnode(d)
			return nil, EISDIR
		}
		return vfs.openDnode(d, flags)
	}
	if errno != ENOENT || flags&FOCreate == 0 {
		return nil, errno
	}

	parent, name, errno := vfs.Walk(start, path, WalkParent)
	if errno != 0 {
		return nil, errno
	}
	d, errno = vfs.createChild(parent, name, func(pi *Inode) (uint64, Errno) {
		return pi.ops.Create(pi, name, mode)
	})
	vfs.PutDnode(parent)
	if errno != 0 {
		return nil, errno
	}
	d.incRef()
	return vfs.openDnode(d, flags)
}

// openDnode consumes one reference on d (whether inherited from Walk or
// taken explicitly by Open's create path) and turns it into an open File.
func (vfs *VFS) openDnode(d *Dnode, flags OpenFlags) (*File, Errno) {
	ino := d.Inode()
	if ino == nil {
		vfs.PutDnode(d)
		return nil, ENOENT
	}

	ino.mu.Lock()
	errno := ino.ops.Open(ino, flags)
	if errno == ENOTSUP {
		errno = 0 // a driver that doesn't override Open accepts every open
	}
	if errno == 0 {
		ino.openCount++
	}
	ino.mu.Unlock()
	if errno != 0 {
		vfs.PutDnode(d)
		return nil, errno
	}

	if flags&FOTruncate != 0 && ino.Type() == TypeRegular {
		ino.SetSize(0)
		if pc := ino.PageCache(); pc != nil {
			pc.Release()
		}
	}

	f := &File{dnode: d, inode: ino, mnt: d.mnt, flags: flags, ops: ino.fileOps}
	f.incRef()
	vfs.dnodeLRU.use(d)
	return f, 0
}

// closeFile drops one reference on f, tearing it down at zero: calling the
// driver's Close (logged, not propagated, matching the eviction-time sync
// policy of spec.md §7/§9), decrementing the inode's open count, and
// releasing the dnode reference the File held since openDnode.
func closeFile(f *File) {
	if f.decRef() > 0 {
		return
	}
	if errno := f.ops.Close(f); errno != 0 && errno != ENOTSUP {
		logOps.WithField("errno", errno).Warn("driver close failed; file torn down anyway")
	}
	f.inode.mu.Lock()
	f.inode.openCount--
	f.inode.mu.Unlock()
	f.dnode.decRef()
}

// Close implements close() (spec.md §4.G close): releases fd from t's table
// and, once the File's own refcount reaches zero, tears it down.
func (vfs *VFS) Close(t *Task, fd int) Errno {
	f, errno := t.releaseFD(fd)
	if errno != 0 {
		return errno
	}
	closeFile(f)
	return 0
}

// Read implements read() (spec.md §4.G read): reads at the file's current
// position and advances it by the number of bytes actually transferred.
// The transfer itself flows through InodeOps.Read: bytes belong to the
// inode, not to any one open file description, so two descriptors opened
// on the same file see the same underlying storage.
func (vfs *VFS) Read(f *File, buf []byte) (int, Errno) {
	f.mu.Lock()
	pos := f.pos
	f.mu.Unlock()

	n, errno := f.inode.ops.Read(f.inode, buf, pos)
	if errno != 0 {
		return 0, errno
	}
	f.mu.Lock()
	f.pos += int64(n)
	f.mu.Unlock()
	return n, 0
}

// Write implements write() (spec.md §4.G write): FOAppend forces every
// write to the current end-of-file regardless of the descriptor's stored
// position, then advances the position past what was written.
func (vfs *VFS) Write(f *File, buf []byte) (int, Errno) {
	f.mu.Lock()
	pos := f.pos
	if f.flags&FOAppend != 0 {
		pos = f.inode.Size()
	}
	f.mu.Unlock()

	n, errno := f.inode.ops.Write(f.inode, buf, pos)
	if errno != 0 {
		return 0, errno
	}
	f.mu.Lock()
	f.pos = pos + int64(n)
	f.mu.Unlock()
	return n, 0
}

// Lseek implements lseek() (spec.md §4.G lseek). A driver that doesn't
// override Seek gets the ordinary set/cur/end arithmetic against the
// inode's recorded size.
func (vfs *VFS) Lseek(f *File, offset int64, whence SeekWhence) (int64, Errno) {
	newPos, errno := f.ops.Seek(f, offset, whence)
	if errno != ENOTSUP {
		if errno != 0 {
			return 0, errno
		}
		f.mu.Lock()
		f.pos = newPos
		f.mu.Unlock()
		return newPos, 0
	}

	f.mu.Lock()
	switch whence {
	case SeekSet:
		newPos = offset
	case SeekCur:
		newPos = f.pos + offset
	case SeekEnd:
		newPos = f.inode.Size() + offset
	default:
		f.mu.Unlock()
		return 0, EINVAL
	}
	if newPos < 0 {
		f.mu.Unlock()
		return 0, EINVAL
	}
	f.pos = newPos
	f.mu.Unlock()
	return newPos, 0
}

// Readdir implements readdir() (spec.md §4.G readdir). A driver that
// doesn't override FileOps.Readdir gets a default backed directly by the
// dcache's ordered child index. That default lists only children currently
// bound in the dcache; an entry the driver holds that no walk has looked up
// yet (or that has left the dcache) is not listed.
func (vfs *VFS) Readdir(f *File, sink DirentSink, startIdx int) Errno {
	errno := f.ops.Readdir(f, sink, startIdx)
	if errno != ENOTSUP {
		return errno
	}
	children := orderedChildren(f.dnode)
	for i := startIdx; i < len(children); i++ {
		ino := children[i].Inode()
		if ino == nil {
			continue
		}
		if !sink.Handle(Dirent{Name: children[i].Name(), Ino: ino.ID(), Type: ino.Type()}) {
			return 0
		}
	}
	return 0
}

// Mkdir implements mkdir() (spec.md §4.G mkdir).
func (vfs *VFS) Mkdir(start *Dnode, path string, mode uint32) Errno {
	parent, name, errno := vfs.Walk(start, path, WalkParent)
	if errno != 0 {
		return errno
	}
	defer vfs.PutDnode(parent)
	_, errno = vfs.createChild(parent, name, func(pi *Inode) (uint64, Errno) {
		return pi.ops.Mkdir(pi, name, mode)
	})
	return errno
}

// dnodeBusyRefCount is the ref_count a dnode carries while Unlink/Rmdir/
// Rename hold it purely for the duration of their own Walk call: one for
// the dcache's own binding (dcache.add's "cached by parent" reference) and
// one for the temporary reference Walk itself returns to the caller. A
// ref_count above this means something else (a cwd, an open file, a mount
// point) is also holding the dnode; spec.md §4.G's "ref_count > 1" is read
// net of the op's own transient reference.
const dnodeBusyRefCount = 2

// Rmdir implements rmdir() (spec.md §4.G rmdir): fails with EBUSY if the
// directory is referenced elsewhere or currently open, ENOTDIR if not a
// directory, EROFS if the owning filesystem is read-only, and otherwise
// leaves "not empty" to the driver (ENOTEMPTY). On success the dnode is
// unhashed immediately rather than waiting for LRU eviction, since it can
// never be looked up again.
func (vfs *VFS) Rmdir(start *Dnode, path string) Errno {
	d, _, errno := vfs.Walk(start, path, WalkNofollow)
	if errno != 0 {
		return errno
	}
	defer vfs.PutDnode(d)

	ino := d.Inode()
	if ino == nil {
		return ENOENT
	}
	if ino.Type() != TypeDirectory {
		return ENOTDIR
	}
	parent := d.Parent()
	if parent == nil {
		return EBUSY // system root
	}
	if parent.sb.ReadOnly() {
		return EROFS
	}
	if d.RefCount() > dnodeBusyRefCount || ino.OpenCount() > 0 {
		return EBUSY
	}
	parentInode := parent.Inode()

	parentInode.mu.Lock()
	errno = parentInode.ops.Rmdir(parentInode, d.Name())
	parentInode.mu.Unlock()
	if errno != 0 {
		return errno
	}

	vfs.dnodeLRU.remove(d)
	vfs.dcache.detachFromCache(d)
	return 0
}

// Unlink implements unlink() (spec.md §4.G unlink/unlinkat): removes a
// non-directory entry. Refuses directories (EISDIR) and open files
// (EBUSY, spec.md §8 scenario 5), and validates the owning filesystem
// isn't read-only before calling the driver. UnlinkAt distinguishes
// AT_REMOVEDIR-style directory removal by dispatching to Rmdir instead,
// matching unlinkat(2)'s flag.
func (vfs *VFS) Unlink(start *Dnode, path string) Errno {
	d, _, errno := vfs.Walk(start, path, WalkNofollow)
	if errno != 0 {
		return errno
	}
	defer vfs.PutDnode(d)

	ino := d.Inode()
	if ino != nil && ino.Type() == TypeDirectory {
		return EISDIR
	}
	parent := d.Parent()
	if parent == nil {
		return EBUSY
	}
	if parent.sb.ReadOnly() {
		return EROFS
	}
	if ino != nil && ino.OpenCount() > 0 {
		return EBUSY
	}
	parentInode := parent.Inode()

	parentInode.mu.Lock()
	errno = parentInode.ops.Unlink(parentInode, d.Name())
	parentInode.mu.Unlock()
	if errno != 0 {
		return errno
	}

	vfs.dnodeLRU.remove(d)
	vfs.dcache.detachFromCache(d)
	return 0
}

// UnlinkAt implements unlinkat(): removeDir selects the AT_REMOVEDIR
// behavior of unlinkat(2), delegating to Rmdir.
func (vfs *VFS) UnlinkAt(start *Dnode, path string, removeDir bool) Errno {
	if removeDir {
		return vfs.Rmdir(start, path)
	}
	return vfs.Unlink(start, path)
}

// Link implements link() (spec.md §4.G link): binds targetPath's inode
// under a new name at linkPath, incrementing its link count. Cross-mount
// hardlinks are rejected, matching link(2)'s EXDEV.
func (vfs *VFS) Link(start *Dnode, targetPath, linkPath string) Errno {
	target, _, errno := vfs.Walk(start, targetPath, 0)
	if errno != 0 {
		return errno
	}
	defer vfs.PutDnode(target)

	parent, name, errno := vfs.Walk(start, linkPath, WalkParent)
	if errno != 0 {
		return errno
	}
	defer vfs.PutDnode(parent)

	if target.sb != parent.sb {
		return EXDEV
	}
	pi := parent.Inode()
	if pi == nil {
		return ENOENT
	}
	if pi.Type() != TypeDirectory {
		return ENOTDIR
	}

	pi.mu.Lock()
	errno = pi.ops.Link(pi, name, target.Inode())
	pi.mu.Unlock()
	if errno != 0 {
		return errno
	}

	d, errno := vfs.allocDnode(name, parent, parent.sb)
	if errno != 0 {
		return errno
	}
	assignInode(d, target.Inode())
	vfs.dcache.add(parent, d)
	return 0
}

// Symlink implements symlink() (spec.md §4.G symlink).
func (vfs *VFS) Symlink(start *Dnode, linkPath, target string) Errno {
	parent, name, errno := vfs.Walk(start, linkPath, WalkParent)
	if errno != 0 {
		return errno
	}
	defer vfs.PutDnode(parent)
	_, errno = vfs.createChild(parent, name, func(pi *Inode) (uint64, Errno) {
		return pi.ops.Symlink(pi, name, target)
	})
	return errno
}

// Readlink implements readlink() (spec.md §4.G readlink): the symlink
// itself is the final component and must not be dereferenced.
func (vfs *VFS) Readlink(start *Dnode, path string) (string, Errno) {
	d, _, errno := vfs.Walk(start, path, WalkNofollow)
	if errno != 0 {
		return "", errno
	}
	defer vfs.PutDnode(d)
	if d.Inode() == nil || d.Inode().Type() != TypeSymlink {
		return "", EINVAL
	}
	return d.Inode().ops.ReadSymlink(d.Inode())
}

// ReadlinkAt is the *at() form: dirfd resolution is expressed by the caller
// passing the corresponding dnode as start.
func (vfs *VFS) ReadlinkAt(start *Dnode, path string) (string, Errno) {
	return vfs.Readlink(start, path)
}

// RealpathAt resolves path fully, following every symlink including the
// final component, and returns its canonical absolute path by walking
// parent pointers back to the system root (SPEC_FULL.md §3, supplementing
// lunaix-os's realpathat).
func (vfs *VFS) RealpathAt(start *Dnode, path string) (string, Errno) {
	d, _, errno := vfs.Walk(start, path, 0)
	if errno != 0 {
		return "", errno
	}
	defer vfs.PutDnode(d)
	return dnodePath(d)
}

// dnodePath reconstructs an absolute path by walking parent pointers to the
// root, failing with ELOOP past GetcwdMaxDepth levels (spec.md §4.G
// chdir/getcwd).
func dnodePath(d *Dnode) (string, Errno) {
	var names []string
	cur := d
	for cur.Parent() != nil {
		if len(names) >= GetcwdMaxDepth {
			return "", ELOOP
		}
		names = append(names, cur.Name())
		cur = cur.Parent()
	}
	if len(names) == 0 {
		return "/", 0
	}
	out := ""
	for i := len(names) - 1; i >= 0; i-- {
		out += "/" + names[i]
	}
	return out, 0
}

// Rename implements rename() (spec.md §4.G rename): moves oldPath to
// newPath, displacing an existing non-directory (or empty directory) at
// newPath if present. A no-op if source and target already refer to the
// same inode (a hardlink to itself). Rejects a read-only owning
// filesystem (EROFS), a cross-superblock move (EXDEV), either endpoint
// being referenced or open elsewhere (EBUSY), and a non-empty directory
// at the destination (ENOTEMPTY). Lock order follows spec.md §4.F
// (current, target, old parent, new parent).
func (vfs *VFS) Rename(start *Dnode, oldPath, newPath string) Errno {
	oldParent, oldName, errno := vfs.Walk(start, oldPath, WalkParent)
	if errno != 0 {
		return errno
	}
	defer vfs.PutDnode(oldParent)
	newParent, newName, errno := vfs.Walk(start, newPath, WalkParent)
	if errno != 0 {
		return errno
	}
	defer vfs.PutDnode(newParent)

	if oldParent.sb.ReadOnly() {
		return EROFS
	}
	if oldParent.sb != newParent.sb {
		return EXDEV
	}

	current, _, errno := vfs.Walk(oldParent, oldName, WalkNofollow)
	if errno != 0 {
		return errno
	}
	defer vfs.PutDnode(current)

	var target *Dnode
	if existing, _, errno := vfs.Walk(newParent, newName, WalkNofollow); errno == 0 {
		target = existing
		defer vfs.PutDnode(target)

		if current.Inode() != nil && target.Inode() != nil && current.Inode().ID() == target.Inode().ID() {
			return 0 // hard link to itself; nothing to do
		}
		if target.Inode() != nil && target.Inode().Type() == TypeDirectory {
			if current.Inode() != nil && current.Inode().Type() != TypeDirectory {
				return EISDIR
			}
			if len(orderedChildren(target)) > 0 {
				return ENOTEMPTY
			}
		}
	}

	if current.RefCount() > dnodeBusyRefCount || (target != nil && target.RefCount() > dnodeBusyRefCount) {
		return EBUSY
	}

	// The dnode locks cover the driver call only: dcache.rehash and
	// detachFromCache below take these same dnode mutexes themselves.
	locked := lockRename(current, target, oldParent, newParent)
	oldParentInode := oldParent.Inode()
	errno = oldParentInode.ops.Rename(oldParentInode, oldName, newParent.Inode(), newName)
	unlockRename(locked)
	if errno != 0 {
		return errno
	}

	if target != nil {
		vfs.dnodeLRU.remove(target)
		vfs.dcache.detachFromCache(target)
	}
	vfs.dcache.rehash(current, newParent, newName)
	return 0
}

// Dup implements dup() (spec.md §4.G dup).
func (vfs *VFS) Dup(t *Task, fd int) (int, Errno) { return t.dup(fd) }

// Dup2 implements dup2() (spec.md §4.G dup2).
func (vfs *VFS) Dup2(t *Task, fd, newfd int) (int, Errno) { return t.dup2(fd, newfd) }

// Fsync implements fsync() (spec.md §4.G fsync): flushes the page cache (if
// any) and asks the driver to persist metadata.
func (vfs *VFS) Fsync(f *File) Errno {
	if pc := f.inode.PageCache(); pc != nil {
		pc.CommitAll()
	}
	if errno := f.inode.ops.Sync(f.inode); errno != 0 && errno != ENOTSUP {
		return errno
	}
	return 0
}

// Chdir implements chdir() (spec.md §4.G chdir): resolves path and installs
// it as t's cwd, releasing the previous cwd's reference.
func (vfs *VFS) Chdir(t *Task, start *Dnode, path string) Errno {
	d, _, errno := vfs.Walk(start, path, 0)
	if errno != 0 {
		return errno
	}
	if d.Inode() == nil || d.Inode().Type() != TypeDirectory {
		vfs.PutDnode(d)
		return ENOTDIR
	}
	t.mu.Lock()
	old := t.cwd
	t.cwd = d
	t.mu.Unlock()
	vfs.PutDnode(old)
	return 0
}

// Fchdir implements fchdir() (spec.md §4.G fchdir): chdir to an
// already-open descriptor's dnode.
func (vfs *VFS) Fchdir(t *Task, fd int) Errno {
	f, errno := t.getfd(fd)
	if errno != 0 {
		return errno
	}
	if f.Inode() == nil || f.Inode().Type() != TypeDirectory {
		return ENOTDIR
	}
	f.dnode.incRef()
	t.mu.Lock()
	old := t.cwd
	t.cwd = f.dnode
	t.mu.Unlock()
	vfs.PutDnode(old)
	return 0
}

// Getcwd implements getcwd() (spec.md §4.G getcwd): reconstructs t's
// current working directory as an absolute path.
func (vfs *VFS) Getcwd(t *Task) (string, Errno) {
	return dnodePath(t.Cwd())
}
