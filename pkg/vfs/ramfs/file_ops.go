package ramfs

import "github.com/Catrol-s-Forks/lunaix-os/pkg/vfs"

// fileOps is ramfs's vfs.FileOps implementation. Actual byte transfer goes
// through InodeOps.Read/Write (inode_ops.go) since it doesn't depend on
// which open file description issued the call; FileOps here only needs to
// exist to satisfy Close. Readdir and Seek fall back to the generic
// dcache-backed and size-based defaults ops.go supplies for any driver
// whose FileOps returns ENOTSUP.
type fileOps struct {
	vfs.UnsupportedFileOps
	fs *filesystem
}

func (o *fileOps) Close(f *vfs.File) vfs.Errno {
	return 0
}
