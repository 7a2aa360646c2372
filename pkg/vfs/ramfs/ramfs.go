// Package ramfs is an in-memory filesystem driver exercising the full
// vfs.SuperblockOps/InodeOps/FileOps surface: regular files, directories
// and symlinks backed by nothing but process memory, grounded on the
// teacher's pkg/sentry/fsimpl/tmpfs (directory.go, regular_file.go,
// symlink.go) but expressed against this repository's driver contract
// instead of gvisor's.
package ramfs

import (
	"sync"
	"sync/atomic"

	"github.com/Catrol-s-Forks/lunaix-os/pkg/vfs"
)

// FSType registers ramfs under the name "ramfs" (spec.md §6). Each Mount
// call produces an independent, empty in-memory filesystem instance.
type FSType struct{}

// ManifestJSON is FSType's capability manifest, validated against the
// schema in manifest.go at registration time.
const ManifestJSON = `{"name":"ramfs","ops":["dir_lookup","open","mkdir","rmdir","create","symlink","unlink","link","rename","read","write","sync","seek","read_symlink","set_symlink"]}`

type filesystem struct {
	vfs *vfs.VFS
	sb  *vfs.Superblock

	mu     sync.Mutex
	nodes  map[uint64]*node
	nextID uint64
}

// node is ramfs's driver-private per-inode state, kept in filesystem.nodes
// keyed by inode id and retrieved with nodeOf.
type node struct {
	mu       sync.Mutex
	children map[string]uint64 // directories only: name -> child inode id
	symlink  string            // symlinks only
}

func (fs *filesystem) alloc() uint64 {
	return atomic.AddUint64(&fs.nextID, 1)
}

// Mount implements vfs.FilesystemType. opts["ro"] == "true" mounts the
// instance read-only, rejecting every destructive operation with EROFS
// at the VFS layer (ops.go) before any driver call is made.
func (FSType) Mount(v *vfs.VFS, source string, opts map[string]string) (*vfs.Superblock, vfs.Errno) {
	fs := &filesystem{vfs: v, nodes: make(map[uint64]*node)}
	sb := v.NewSuperblock("ramfs", fs, opts["ro"] == "true")
	fs.sb = sb

	ops := &inodeOps{fs: fs}
	fops := &fileOps{fs: fs}
	root, errno := v.NewRootInode(sb, fs.alloc(), ops, fops)
	if errno != 0 {
		return nil, errno
	}
	fs.mu.Lock()
	fs.nodes[root.Inode().ID()] = &node{children: make(map[string]uint64)}
	fs.mu.Unlock()
	return sb, 0
}

func (fs *filesystem) nodeOf(ino *vfs.Inode) *node {
	fs.mu.Lock()
	n := fs.nodes[ino.ID()]
	fs.mu.Unlock()
	return n
}

// --- SuperblockOps ---

func (fs *filesystem) InitInode(sb *vfs.Superblock, ino *vfs.Inode) vfs.Errno {
	return 0
}

func (fs *filesystem) ReleaseInode(sb *vfs.Superblock, ino *vfs.Inode) {
	fs.mu.Lock()
	delete(fs.nodes, ino.ID())
	fs.mu.Unlock()
}

func (fs *filesystem) WriteInode(sb *vfs.Superblock, ino *vfs.Inode) vfs.Errno {
	return 0 // nothing to flush; ramfs has no backing store beyond process memory
}
