// Package devfs is a minimal device-node driver: a fixed set of character
// devices (null, zero) rooted at mount time, exercising vfs.TypeCharDevice
// rather than ramfs's regular-file/directory/symlink path. Grounded on the same tmpfs directory pattern as ramfs, cut
// down to a flat, pre-populated root with no mkdir/create support.
package devfs

import "github.com/Catrol-s-Forks/lunaix-os/pkg/vfs"

// ManifestJSON declares devfs supports only lookup and I/O; it has no
// mkdir/create/symlink/link/rename/unlink of its own.
const ManifestJSON = `{"name":"devfs","ops":["dir_lookup","open","read","write","sync","seek"]}`

// FSType registers devfs under the name "devfs".
type FSType struct{}

type device interface {
	Read(buf []byte, pos int64) int
	Write(buf []byte, pos int64) int
}

type nullDevice struct{}

func (nullDevice) Read(buf []byte, pos int64) int  { return 0 }
func (nullDevice) Write(buf []byte, pos int64) int { return len(buf) }

type zeroDevice struct{}

func (zeroDevice) Read(buf []byte, pos int64) int {
	for i := range buf {
		buf[i] = 0
	}
	return len(buf)
}
func (zeroDevice) Write(buf []byte, pos int64) int { return len(buf) }

type filesystem struct {
	vfs      *vfs.VFS
	sb       *vfs.Superblock
	devices  map[uint64]device
	children map[string]uint64
}

// Mount implements vfs.FilesystemType: it populates a flat root directory
// with the fixed device set at mount time and never grows afterward.
func (FSType) Mount(v *vfs.VFS, source string, opts map[string]string) (*vfs.Superblock, vfs.Errno) {
	fs := &filesystem{vfs: v, devices: make(map[uint64]device), children: make(map[string]uint64)}
	sb := v.NewSuperblock("devfs", fs, false)
	fs.sb = sb

	ops := &inodeOps{fs: fs}
	if _, errno := v.NewRootInode(sb, 1, ops, &vfs.UnsupportedFileOps{}); errno != 0 {
		return nil, errno
	}

	nextID := uint64(2)
	for name, dev := range map[string]device{"null": nullDevice{}, "zero": zeroDevice{}} {
		id := nextID
		nextID++
		ino, errno := v.AllocInode(sb, id, vfs.TypeCharDevice, ops, &vfs.UnsupportedFileOps{})
		if errno != 0 {
			return nil, errno
		}
		fs.devices[ino.ID()] = dev
		fs.children[name] = ino.ID()
	}
	return sb, 0
}

func (fs *filesystem) InitInode(sb *vfs.Superblock, ino *vfs.Inode) vfs.Errno { return 0 }
func (fs *filesystem) ReleaseInode(sb *vfs.Superblock, ino *vfs.Inode)        {}
func (fs *filesystem) WriteInode(sb *vfs.Superblock, ino *vfs.Inode) vfs.Errno { return 0 }

// inodeOps implements vfs.InodeOps for devfs's root directory and its
// device nodes alike, dispatching on ino.Type().
type inodeOps struct {
	vfs.UnsupportedInodeOps
	fs *filesystem
}

func (o *inodeOps) DirLookup(ino *vfs.Inode, name string) (uint64, vfs.Errno) {
	if ino.Type() != vfs.TypeDirectory {
		return 0, vfs.ENOTDIR
	}
	id, ok := o.fs.children[name]
	if !ok {
		return 0, vfs.ENOENT
	}
	return id, 0
}

func (o *inodeOps) Read(ino *vfs.Inode, buf []byte, pos int64) (int, vfs.Errno) {
	dev, ok := o.fs.devices[ino.ID()]
	if !ok {
		return 0, vfs.EISDIR
	}
	return dev.Read(buf, pos), 0
}

func (o *inodeOps) Write(ino *vfs.Inode, buf []byte, pos int64) (int, vfs.Errno) {
	dev, ok := o.fs.devices[ino.ID()]
	if !ok {
		return 0, vfs.EISDIR
	}
	return dev.Write(buf, pos), 0
}

func (o *inodeOps) Sync(ino *vfs.Inode) vfs.Errno { return 0 }
