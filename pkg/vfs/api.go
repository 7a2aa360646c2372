package vfs

// This file is the driver-facing half of the VFS API: the constructors a
// FilesystemType.Mount implementation needs to build a Superblock and its
// root dnode/inode, wrapping the package-internal allocation and cache
// machinery (object.go, inodecache.go) that ordinary path-walking and
// syscalls already go through. spec.md §6 describes the driver contract in
// terms of the method tables (SuperblockOps/InodeOps/FileOps); these
// constructors are the missing "how a driver actually stands one up" half.

// NewSuperblock allocates an empty superblock for a driver's Mount to
// populate. readOnly is enforced by ops.go's destructive operations
// (mkdir, create, symlink, unlink, rmdir, rename) before any driver call,
// matching spec.md §7's "validate read-only filesystems first".
func (vfs *VFS) NewSuperblock(fsType string, ops SuperblockOps, readOnly bool) *Superblock {
	sb := &Superblock{ops: ops, fsType: fsType, readOnly: readOnly}
	initInodeCache(sb)
	return sb
}

// NewRootInode allocates and binds the root inode of a freshly created
// superblock, then wires sb.root to a fresh root dnode. Call this once from
// within Mount, after NewSuperblock.
func (vfs *VFS) NewRootInode(sb *Superblock, id uint64, ops InodeOps, fileOps FileOps) (*Dnode, Errno) {
	ino, errno := vfs.allocInode(sb, id, TypeDirectory, ops, fileOps)
	if errno != 0 {
		return nil, errno
	}
	vfs.addHashedInode(sb, ino)

	root := newDnode("", nil, sb)
	root.inode = ino
	ino.linkCount++
	root.incRef() // the superblock's own permanent reference to its root
	sb.root = root
	return root, 0
}

// AllocInode allocates and registers a new inode within sb, calling the
// superblock's InitInode. Drivers use this from DirLookup/Mkdir/Create/
// Symlink to produce the id they hand back to the VFS.
func (vfs *VFS) AllocInode(sb *Superblock, id uint64, typ InodeType, ops InodeOps, fileOps FileOps) (*Inode, Errno) {
	ino, errno := vfs.allocInode(sb, id, typ, ops, fileOps)
	if errno != 0 {
		return nil, errno
	}
	vfs.addHashedInode(sb, ino)
	return ino, 0
}

// FindInode looks up an already-registered inode by id within sb.
func (vfs *VFS) FindInode(sb *Superblock, id uint64) (*Inode, bool) {
	return vfs.findInode(sb, id)
}
