package ramfs

import "github.com/Catrol-s-Forks/lunaix-os/pkg/vfs"

// inodeOps is ramfs's single, shared vfs.InodeOps implementation; every
// ramfs inode uses the same table and dispatches on its own type field
// (spec.md §6 assumes one driver method table per superblock, not one per
// object).
type inodeOps struct {
	vfs.UnsupportedInodeOps
	fs *filesystem
}

func (o *inodeOps) DirLookup(ino *vfs.Inode, name string) (uint64, vfs.Errno) {
	n := o.fs.nodeOf(ino)
	if n == nil || ino.Type() != vfs.TypeDirectory {
		return 0, vfs.ENOTDIR
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	id, ok := n.children[name]
	if !ok {
		return 0, vfs.ENOENT
	}
	return id, 0
}

func (o *inodeOps) Mkdir(ino *vfs.Inode, name string, mode uint32) (uint64, vfs.Errno) {
	return o.createChild(ino, name, vfs.TypeDirectory)
}

func (o *inodeOps) Create(ino *vfs.Inode, name string, mode uint32) (uint64, vfs.Errno) {
	return o.createChild(ino, name, vfs.TypeRegular)
}

func (o *inodeOps) Symlink(ino *vfs.Inode, name string, target string) (uint64, vfs.Errno) {
	id, errno := o.createChild(ino, name, vfs.TypeSymlink)
	if errno != 0 {
		return 0, errno
	}
	child, _ := o.fs.vfs.FindInode(o.fs.sb, id)
	cn := o.fs.nodeOf(child)
	cn.mu.Lock()
	cn.symlink = target
	cn.mu.Unlock()
	return id, 0
}

// createChild is shared by Mkdir/Create/Symlink: it allocates a new inode
// of typ, registers ramfs-private state for it, and links it into parent's
// directory listing.
func (o *inodeOps) createChild(parent *vfs.Inode, name string, typ vfs.InodeType) (uint64, vfs.Errno) {
	pn := o.fs.nodeOf(parent)
	if pn == nil || parent.Type() != vfs.TypeDirectory {
		return 0, vfs.ENOTDIR
	}
	pn.mu.Lock()
	defer pn.mu.Unlock()
	if _, exists := pn.children[name]; exists {
		return 0, vfs.EEXIST
	}

	id := o.fs.alloc()
	_, errno := o.fs.vfs.AllocInode(o.fs.sb, id, typ, o, &fileOps{fs: o.fs})
	if errno != 0 {
		return 0, errno
	}

	child := &node{}
	if typ == vfs.TypeDirectory {
		child.children = make(map[string]uint64)
	}
	o.fs.mu.Lock()
	o.fs.nodes[id] = child
	o.fs.mu.Unlock()

	pn.children[name] = id
	return id, 0
}

func (o *inodeOps) Unlink(ino *vfs.Inode, name string) vfs.Errno {
	n := o.fs.nodeOf(ino)
	if n == nil || ino.Type() != vfs.TypeDirectory {
		return vfs.ENOTDIR
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.children[name]; !ok {
		return vfs.ENOENT
	}
	delete(n.children, name)
	return 0
}

func (o *inodeOps) Rmdir(ino *vfs.Inode, name string) vfs.Errno {
	n := o.fs.nodeOf(ino)
	if n == nil || ino.Type() != vfs.TypeDirectory {
		return vfs.ENOTDIR
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	id, ok := n.children[name]
	if !ok {
		return vfs.ENOENT
	}
	child, _ := o.fs.vfs.FindInode(o.fs.sb, id)
	if child == nil || child.Type() != vfs.TypeDirectory {
		return vfs.ENOTDIR
	}
	cn := o.fs.nodeOf(child)
	cn.mu.Lock()
	empty := len(cn.children) == 0
	cn.mu.Unlock()
	if !empty {
		return vfs.ENOTEMPTY
	}
	delete(n.children, name)
	return 0
}

func (o *inodeOps) Link(ino *vfs.Inode, name string, target *vfs.Inode) vfs.Errno {
	n := o.fs.nodeOf(ino)
	if n == nil || ino.Type() != vfs.TypeDirectory {
		return vfs.ENOTDIR
	}
	if target.Type() == vfs.TypeDirectory {
		return vfs.EISDIR // no hardlinks to directories, matches link(2)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, exists := n.children[name]; exists {
		return vfs.EEXIST
	}
	n.children[name] = target.ID()
	return 0
}

func (o *inodeOps) Rename(ino *vfs.Inode, oldName string, newParent *vfs.Inode, newName string) vfs.Errno {
	src := o.fs.nodeOf(ino)
	dst := o.fs.nodeOf(newParent)
	if src == nil || dst == nil {
		return vfs.ENOTDIR
	}
	if ino == newParent {
		src.mu.Lock()
		defer src.mu.Unlock()
	} else {
		// Fixed lock order by inode id (mirrors lock.go's lockInodePair) so
		// that concurrent renames crossing the same two directories in
		// opposite directions never deadlock against each other.
		first, second := src, dst
		if newParent.ID() < ino.ID() {
			first, second = dst, src
		}
		first.mu.Lock()
		defer first.mu.Unlock()
		second.mu.Lock()
		defer second.mu.Unlock()
	}

	id, ok := src.children[oldName]
	if !ok {
		return vfs.ENOENT
	}
	if _, exists := dst.children[newName]; exists {
		delete(dst.children, newName)
	}
	delete(src.children, oldName)
	dst.children[newName] = id
	return 0
}

func (o *inodeOps) Read(ino *vfs.Inode, buf []byte, pos int64) (int, vfs.Errno) {
	if ino.Type() != vfs.TypeRegular {
		return 0, vfs.EISDIR
	}
	return ino.PageCache().Read(buf, pos), 0
}

func (o *inodeOps) Write(ino *vfs.Inode, buf []byte, pos int64) (int, vfs.Errno) {
	if ino.Type() != vfs.TypeRegular {
		return 0, vfs.EISDIR
	}
	n := ino.PageCache().Write(buf, pos)
	if end := pos + int64(n); end > ino.Size() {
		ino.SetSize(end)
	}
	return n, 0
}

func (o *inodeOps) Sync(ino *vfs.Inode) vfs.Errno {
	return 0
}

func (o *inodeOps) ReadSymlink(ino *vfs.Inode) (string, vfs.Errno) {
	if ino.Type() != vfs.TypeSymlink {
		return "", vfs.EINVAL
	}
	n := o.fs.nodeOf(ino)
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.symlink, 0
}

func (o *inodeOps) SetSymlink(ino *vfs.Inode, target string) vfs.Errno {
	if ino.Type() != vfs.TypeSymlink {
		return vfs.EINVAL
	}
	n := o.fs.nodeOf(ino)
	n.mu.Lock()
	n.symlink = target
	n.mu.Unlock()
	return 0
}
