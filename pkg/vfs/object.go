package vfs

import (
	"container/list"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/google/btree"
)

// Tunable constants (spec.md §4, §8).
const (
	// HashtableSize is the dcache bucket count; must be a power of two so
	// the mixed hash can be masked instead of modulo'd (spec.md §4.A).
	HashtableSize = 1024
	// NameMaxlen bounds a single path component, including the trailing
	// NUL the original C implementation reserves (spec.md §4.E).
	NameMaxlen = 256
	// SymlinkDepthLimit is VFS_SYMLINK_DEPTH (spec.md §4.E).
	SymlinkDepthLimit = 16
	// MaxFD is VFS_MAX_FD, the fixed-length per-task descriptor array
	// (spec.md §4.H).
	MaxFD = 256
	// GetcwdMaxDepth bounds the parent-walk getcwd performs before
	// failing with ELOOP (spec.md §4.G chdir/getcwd).
	GetcwdMaxDepth = 64
	// bumpArenaSize is the per-walk name arena of spec.md §4.E.
	bumpArenaSize = 2048
)

// childItem is one entry in a Dnode's ordered child index (spec.md §3,
// "ordered child list"), backed by a google/btree.BTreeG so that readdir and
// the other orderedChildren callers see a deterministic, name-sorted order
// instead of hash-bucket order.
type childItem struct {
	name string
	d    *Dnode
}

func childLess(a, b childItem) bool { return a.name < b.name }

// Dnode is one cached name binding (spec.md §3, Directory-node).
type Dnode struct {
	mu sync.Mutex

	// id is a monotonically assigned identity used as the dnode's "stable
	// address" when mixing dcache bucket hashes (spec.md §4.A); Go doesn't
	// expose pointer values for hashing purposes the way the original C
	// implementation used the in-memory address.
	id uint64

	name     string
	nameHash uint32

	parent *Dnode // nil only for the system root
	sb     *Superblock
	mnt    *Mount

	// mountedHere is non-nil when another filesystem is mounted on top of
	// this dnode; the path walker crosses into mountedHere.sb.root instead
	// of descending into this dnode's own children (spec.md §4.I).
	mountedHere *Mount

	inode *Inode

	refCount int32 // atomic; see spec.md invariant (c)

	children *btree.BTreeG[childItem] // protected by mu

	lruElem *list.Element // protected by the dnode LRU zone's mutex
}

var dnodeIDCounter uint64

func newDnode(name string, parent *Dnode, sb *Superblock) *Dnode {
	d := &Dnode{
		id:       atomic.AddUint64(&dnodeIDCounter, 1),
		name:     name,
		nameHash: hashName(name),
		parent:   parent,
		sb:       sb,
		children: btree.NewG(32, childLess),
	}
	return d
}

// RefCount returns the current reference count (spec.md invariant (c)/(d)).
func (d *Dnode) RefCount() int32 { return atomic.LoadInt32(&d.refCount) }

func (d *Dnode) incRef() { atomic.AddInt32(&d.refCount, 1) }

// decRef returns the post-decrement value.
func (d *Dnode) decRef() int32 { return atomic.AddInt32(&d.refCount, -1) }

func (d *Dnode) getLRUElem() *list.Element  { return d.lruElem }
func (d *Dnode) setLRUElem(e *list.Element) { d.lruElem = e }

// Name returns the dnode's bound name (empty for the system root).
func (d *Dnode) Name() string { return d.name }

// Parent returns the dnode's parent, or nil at the system root.
func (d *Dnode) Parent() *Dnode { return d.parent }

// Inode returns the dnode's bound inode.
func (d *Dnode) Inode() *Inode { return d.inode }

// Inode represents one filesystem-visible object (spec.md §3, Inode).
type Inode struct {
	mu sync.Mutex

	id  uint64
	sb  *Superblock
	typ InodeType

	size      int64
	linkCount int32 // protected by mu
	openCount int32 // protected by mu

	ops     InodeOps
	fileOps FileOps

	driverData interface{}
	pageCache  *PageCache // lazily created for regular files

	ctime, atime, mtime int64

	lruElem *list.Element // protected by the inode LRU zone's mutex
}

func (i *Inode) getLRUElem() *list.Element  { return i.lruElem }
func (i *Inode) setLRUElem(e *list.Element) { i.lruElem = e }

// ID returns the inode's superblock-unique id.
func (i *Inode) ID() uint64 { return i.id }

// Type returns the inode's InodeType.
func (i *Inode) Type() InodeType { return i.typ }

// Superblock returns the inode's owning superblock.
func (i *Inode) Superblock() *Superblock { return i.sb }

// DriverData returns the driver-private pointer installed by InitInode.
func (i *Inode) DriverData() interface{} { return i.driverData }

// SetDriverData installs the driver-private pointer. Called by a driver's
// InitInode implementation.
func (i *Inode) SetDriverData(v interface{}) { i.driverData = v }

// Size returns the inode's recorded size.
func (i *Inode) Size() int64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.size
}

// SetSize updates the inode's recorded size; called by drivers after a
// write extends a file.
func (i *Inode) SetSize(n int64) {
	i.mu.Lock()
	i.size = n
	i.mu.Unlock()
}

// OpenCount returns the inode's current open-file-description count, used
// by unlink/rmdir's EBUSY guard (spec.md §4.G).
func (i *Inode) OpenCount() int32 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.openCount
}

// PageCache returns the inode's page cache, creating it on first use for a
// regular file (spec.md §3 Inode invariants).
func (i *Inode) PageCache() *PageCache {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.pageCache == nil && i.typ == TypeRegular {
		i.pageCache = NewPageCache()
	}
	return i.pageCache
}

// Superblock represents a mounted file system instance (spec.md §3).
type Superblock struct {
	root *Dnode
	ops  SuperblockOps

	fsType   string
	readOnly bool

	mu         sync.Mutex
	inodes     map[uint64]*Inode // keyed by the full inode id, see inodecache.go
	nextInoHit int64             // diagnostic counter; Stats does not report it

	mnt *Mount
}

// FSType reports the registered filesystem type name.
func (sb *Superblock) FSType() string { return sb.fsType }

// ReadOnly reports whether destructive operations must fail with EROFS.
func (sb *Superblock) ReadOnly() bool { return sb.readOnly }

// Root returns the superblock's root dnode.
func (sb *Superblock) Root() *Dnode { return sb.root }

// Mount represents an attachment of a superblock at a dnode (spec.md §3,
// §4.I, §6 Mount contract). The busy counter itself is an opaque external
// collaborator (mnt_mkbusy/mnt_chillax); this type only remembers enough to
// route those two calls and to find the mounted root.
type Mount struct {
	sb    *Superblock
	point *Dnode // the dnode this filesystem is mounted on top of; nil for the initial root mount
	ops   MountOps
}

func (m *Mount) mkBusy() {
	if m.ops != nil {
		m.ops.MkBusy()
	}
}

func (m *Mount) chillax() {
	if m.ops != nil {
		m.ops.Chillax()
	}
}

// File represents one open() result (spec.md §3, Open-file object).
type File struct {
	dnode *Dnode
	inode *Inode
	mnt   *Mount

	mu    sync.Mutex
	pos   int64
	flags OpenFlags

	refCount int32 // atomic
	ops      FileOps
}

// Dnode returns the file's bound dnode.
func (f *File) Dnode() *Dnode { return f.dnode }

// Inode returns the file's bound inode.
func (f *File) Inode() *Inode { return f.inode }

// Pos returns the current byte offset.
func (f *File) Pos() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pos
}

func (f *File) incRef() { atomic.AddInt32(&f.refCount, 1) }
func (f *File) decRef() int32 { return atomic.AddInt32(&f.refCount, -1) }

// --- allocation (spec.md §4.D Object lifecycle) ---

// allocDnode allocates a dnode, retrying once against the dnode LRU zone on
// exhaustion (spec.md: "first tries the slab; on failure it calls
// evict_half ... and retries once; a second failure yields out of memory").
// The retry policy itself is expressed with backoff.WithMaxRetries(..., 1)
// (two tries, EvictHalf before the second) rather than a hand-rolled loop.
func (vfs *VFS) allocDnode(name string, parent *Dnode, sb *Superblock) (*Dnode, Errno) {
	var d *Dnode
	tries := 0
	op := func() error {
		if tries > 0 {
			vfs.dnodeLRU.EvictHalf()
		}
		tries++
		if vfs.dnodeSlab.tryReserve() {
			d = newDnode(name, parent, sb)
			return nil
		}
		return ENOMEM
	}
	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(0), 1)
	if err := backoff.Retry(op, b); err != nil {
		return nil, ENOMEM
	}
	d.lruElem = vfs.dnodeLRU.pushMRU(d)
	return d, 0
}

// allocInode allocates an inode and asks the superblock's driver to install
// its state via InitInode (spec.md §4.D).
func (vfs *VFS) allocInode(sb *Superblock, id uint64, typ InodeType, ops InodeOps, fileOps FileOps) (*Inode, Errno) {
	var ino *Inode
	tries := 0
	op := func() error {
		if tries > 0 {
			vfs.inodeLRU.EvictHalf()
		}
		tries++
		if vfs.inodeSlab.tryReserve() {
			ino = &Inode{id: id, sb: sb, typ: typ, ops: ops, fileOps: fileOps}
			return nil
		}
		return ENOMEM
	}
	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(0), 1)
	if err := backoff.Retry(op, b); err != nil {
		return nil, ENOMEM
	}
	now := time.Now().Unix()
	ino.ctime, ino.atime, ino.mtime = now, now, now
	if errno := sb.ops.InitInode(sb, ino); errno != 0 {
		vfs.inodeSlab.release()
		return nil, errno
	}
	ino.lruElem = vfs.inodeLRU.pushMRU(ino)
	return ino, 0
}

// assignInode rebinds d's inode, per spec.md §4.D vfs_assign_inode:
// decrementing the old inode's link count and incrementing the new one's.
func assignInode(d *Dnode, ino *Inode) {
	d.mu.Lock()
	old := d.inode
	d.inode = ino
	d.mu.Unlock()

	if ino != nil {
		ino.mu.Lock()
		ino.linkCount++
		ino.mu.Unlock()
	}
	if old != nil {
		old.mu.Lock()
		old.linkCount--
		old.mu.Unlock()
	}
}

// freeDnodeLocked frees d: asserts ref_count == 1, decrements its bound
// inode's link count, removes itself from the dcache, and unhashes every
// child so evicting a subtree root eventually unroots the whole subtree
// (spec.md §4.D, invariant 4). Caller must not hold d.mu.
func (vfs *VFS) freeDnodeLocked(d *Dnode) {
	invariant(d.RefCount() == 1, "freeDnode: ref_count != 1")

	vfs.dcache.remove(d)

	d.mu.Lock()
	ino := d.inode
	d.inode = nil
	var childDnodes []*Dnode
	d.children.Ascend(func(it childItem) bool {
		childDnodes = append(childDnodes, it.d)
		return true
	})
	d.mu.Unlock()

	for _, c := range childDnodes {
		vfs.dcache.detachFromCache(c)
	}

	if ino != nil {
		ino.mu.Lock()
		ino.linkCount--
		ino.mu.Unlock()
	}
	vfs.dnodeSlab.release()
}
