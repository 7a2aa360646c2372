package vfs

// InodeType enumerates the kinds of filesystem object an inode can
// represent (spec.md §3, Inode).
type InodeType int

const (
	TypeRegular InodeType = iota
	TypeDirectory
	TypeSymlink
	TypeCharDevice
	TypeBlockDevice
)

func (t InodeType) String() string {
	switch t {
	case TypeRegular:
		return "regular"
	case TypeDirectory:
		return "directory"
	case TypeSymlink:
		return "symlink"
	case TypeCharDevice:
		return "chardev"
	case TypeBlockDevice:
		return "blockdev"
	default:
		return "unknown"
	}
}

// OpenFlags mirror the FO_* flags of spec.md §4.G.
type OpenFlags uint32

const (
	FOCreate OpenFlags = 1 << iota
	FOAppend
	FODirect
	FOTruncate
)

// SeekWhence mirrors lseek(2)'s whence argument (spec.md §4.G lseek).
type SeekWhence int

const (
	SeekSet SeekWhence = iota
	SeekCur
	SeekEnd
)

// Dirent is one entry produced by a driver's Readdir callback.
type Dirent struct {
	Name string
	Ino  uint64
	Type InodeType
}

// DirentSink receives directory entries from a driver's Readdir
// implementation; Handle returns false once the caller has consumed enough
// entries (e.g. the user's buffer is full), at which point Readdir must stop
// and leave its internal iteration position such that the next call resumes
// after the last entry accepted.
type DirentSink interface {
	Handle(d Dirent) bool
}

// SuperblockOps is the per-mounted-filesystem method table a driver
// supplies (spec.md §3 Superblock, §6).
type SuperblockOps interface {
	// InitInode installs driver-private state on a freshly allocated inode.
	InitInode(sb *Superblock, ino *Inode) Errno
	// ReleaseInode is called once an inode is about to be destroyed by the
	// inode LRU zone (link_count == 0 && open_count == 0).
	ReleaseInode(sb *Superblock, ino *Inode)
	// WriteInode persists an inode's metadata. Nothing in this package calls
	// it; inode eviction calls InodeOps.Sync instead (tryEvictInode).
	WriteInode(sb *Superblock, ino *Inode) Errno
}

// InodeOps is the per-inode driver method table (spec.md §6). Drivers embed
// UnsupportedInodeOps and override only the methods they implement; every
// other call surfaces as ENOTSUP automatically, matching the "missing
// operations map to ENOTSUP" rule without a hand-rolled nil-function-pointer
// check at every call site (spec.md §9, Polymorphism over drivers).
type InodeOps interface {
	DirLookup(ino *Inode, name string) (childID uint64, err Errno)
	Open(ino *Inode, flags OpenFlags) Errno
	Mkdir(ino *Inode, name string, mode uint32) (childID uint64, err Errno)
	Rmdir(ino *Inode, name string) Errno
	Create(ino *Inode, name string, mode uint32) (childID uint64, err Errno)
	// Symlink creates a new symlink-typed child named name, bound to target,
	// under ino (spec.md §4.G symlink). Distinct from Create because the
	// resulting inode's type and initial target must be set atomically.
	Symlink(ino *Inode, name string, target string) (childID uint64, err Errno)
	Unlink(ino *Inode, name string) Errno
	Link(ino *Inode, name string, target *Inode) Errno
	Rename(ino *Inode, oldName string, newParent *Inode, newName string) Errno
	Read(ino *Inode, buf []byte, pos int64) (int, Errno)
	Write(ino *Inode, buf []byte, pos int64) (int, Errno)
	Sync(ino *Inode) Errno
	Seek(ino *Inode, offset int64, whence SeekWhence) (int64, Errno)
	ReadSymlink(ino *Inode) (string, Errno)
	SetSymlink(ino *Inode, target string) Errno
}

// UnsupportedInodeOps is embedded by drivers so that any InodeOps method
// they don't override returns ENOTSUP.
type UnsupportedInodeOps struct{}

func (UnsupportedInodeOps) DirLookup(*Inode, string) (uint64, Errno)    { return 0, ENOTSUP }
func (UnsupportedInodeOps) Open(*Inode, OpenFlags) Errno                { return ENOTSUP }
func (UnsupportedInodeOps) Mkdir(*Inode, string, uint32) (uint64, Errno) { return 0, ENOTSUP }
func (UnsupportedInodeOps) Rmdir(*Inode, string) Errno                  { return ENOTSUP }
func (UnsupportedInodeOps) Create(*Inode, string, uint32) (uint64, Errno) { return 0, ENOTSUP }
func (UnsupportedInodeOps) Symlink(*Inode, string, string) (uint64, Errno) { return 0, ENOTSUP }
func (UnsupportedInodeOps) Unlink(*Inode, string) Errno                 { return ENOTSUP }
func (UnsupportedInodeOps) Link(*Inode, string, *Inode) Errno           { return ENOTSUP }
func (UnsupportedInodeOps) Rename(*Inode, string, *Inode, string) Errno { return ENOTSUP }
func (UnsupportedInodeOps) Read(*Inode, []byte, int64) (int, Errno)     { return 0, ENOTSUP }
func (UnsupportedInodeOps) Write(*Inode, []byte, int64) (int, Errno)    { return 0, ENOTSUP }
func (UnsupportedInodeOps) Sync(*Inode) Errno                           { return ENOTSUP }
func (UnsupportedInodeOps) Seek(*Inode, int64, SeekWhence) (int64, Errno) { return 0, ENOTSUP }
func (UnsupportedInodeOps) ReadSymlink(*Inode) (string, Errno)          { return "", ENOTSUP }
func (UnsupportedInodeOps) SetSymlink(*Inode, string) Errno             { return ENOTSUP }

// FileOps is the per-file-description method table (spec.md §6). Like
// InodeOps, drivers embed UnsupportedFileOps to pick up ENOTSUP defaults.
type FileOps interface {
	Read(f *File, buf []byte, pos int64) (int, Errno)
	Write(f *File, buf []byte, pos int64) (int, Errno)
	Readdir(f *File, sink DirentSink, startIdx int) Errno
	Seek(f *File, offset int64, whence SeekWhence) (int64, Errno)
	Sync(f *File) Errno
	Close(f *File) Errno
}

// UnsupportedFileOps is embedded by drivers so any FileOps method they don't
// override returns ENOTSUP.
type UnsupportedFileOps struct{}

func (UnsupportedFileOps) Read(*File, []byte, int64) (int, Errno)       { return 0, ENOTSUP }
func (UnsupportedFileOps) Write(*File, []byte, int64) (int, Errno)      { return 0, ENOTSUP }
func (UnsupportedFileOps) Readdir(*File, DirentSink, int) Errno         { return ENOTSUP }
func (UnsupportedFileOps) Seek(*File, int64, SeekWhence) (int64, Errno) { return 0, ENOTSUP }
func (UnsupportedFileOps) Sync(*File) Errno                             { return ENOTSUP }
func (UnsupportedFileOps) Close(*File) Errno                            { return ENOTSUP }

// MountOps is the mount contract of spec.md §6: two opaque busy-counter
// calls. The VFS never inspects mount internals beyond these two calls and
// the mount's root dnode.
type MountOps interface {
	MkBusy()
	Chillax()
}
