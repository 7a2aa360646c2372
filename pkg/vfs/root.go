package vfs

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// FilesystemType is what a driver registers under a name (spec.md §6,
// File-system driver contract). Mount constructs a new Superblock rooted at
// a fresh directory inode; the driver is responsible for producing inode
// ids unique within that superblock.
type FilesystemType interface {
	Mount(vfs *VFS, source string, opts map[string]string) (*Superblock, Errno)
}

// busyCounter is the default MountOps: an atomic counter satisfying the
// mnt_mkbusy/mnt_chillax contract of spec.md §6 when a driver doesn't supply
// its own mount-bookkeeping object (spec.md §1 calls the real bookkeeping an
// external collaborator; this is the minimal stand-in, same spirit as
// boundedSlab in slab.go).
type busyCounter struct{ n int32 }

func (b *busyCounter) MkBusy()  { atomic.AddInt32(&b.n, 1) }
func (b *busyCounter) Chillax() { atomic.AddInt32(&b.n, -1) }
func (b *busyCounter) count() int32 { return atomic.LoadInt32(&b.n) }

// VFS is the process-wide VFS context: the global root, the two LRU zones,
// the object slabs, the dcache, and the global mount list (spec.md §4.I,
// §9 "Global mutable state" — encapsulated here as an explicit context
// created at init and passed explicitly, per the design note's first
// option, rather than as package-level singletons).
type VFS struct {
	dcache    *dcache
	dnodeLRU  *LRUZone
	inodeLRU  *LRUZone
	dnodeSlab *boundedSlab
	inodeSlab *boundedSlab

	mu        sync.Mutex
	mounts    []*Mount // global mount list; sibling-linked in spec.md, a slice here
	root      *Dnode
	rootMount *Mount

	typesMu   sync.Mutex
	types     map[string]FilesystemType
	manifests map[string]CapabilityManifest
}

// Config bounds the two slabs; a zero value in either field falls back to a
// sane default.
type Config struct {
	MaxDnodes int
	MaxInodes int
}

const (
	defaultMaxDnodes = 8192
	defaultMaxInodes = 8192
)

// NewVFS constructs an empty VFS context. Call RegisterFilesystemType for
// each driver, then NewMount (directly, or via Init with a mount table) to
// establish the system root.
func NewVFS(cfg Config) *VFS {
	if cfg.MaxDnodes <= 0 {
		cfg.MaxDnodes = defaultMaxDnodes
	}
	if cfg.MaxInodes <= 0 {
		cfg.MaxInodes = defaultMaxInodes
	}
	vfs := &VFS{
		dcache:    newDcache(),
		dnodeSlab: newBoundedSlab(cfg.MaxDnodes),
		inodeSlab: newBoundedSlab(cfg.MaxInodes),
		types:     make(map[string]FilesystemType),
		manifests: make(map[string]CapabilityManifest),
	}
	vfs.dnodeLRU = newLRUZone("dnode", vfs.tryEvictDnode)
	vfs.inodeLRU = newLRUZone("inode", vfs.tryEvictInode)
	return vfs
}

// tryEvictDnode is the dnode LRU predicate of spec.md §4.C: evicted iff
// ref_count == 0. Eviction frees the dnode, which cascades child detachment.
func (vfs *VFS) tryEvictDnode(entry lruEntry) bool {
	d := entry.(*Dnode)
	if d.RefCount() != 0 {
		return false
	}
	// A cached-but-unreferenced dnode is held by exactly the dcache's own
	// reference; bump it to 1 so freeDnodeLocked's invariant holds, mirroring
	// "the cache holds the last ref" framing of spec.md §4.A remove().
	d.incRef()
	vfs.freeDnodeLocked(d)
	return true
}

// tryEvictInode is the inode LRU predicate of spec.md §4.C: evicted iff
// link_count == 0 && open_count == 0. It writes the driver's sync, logs (but
// does not propagate) a failure, and then releases storage (spec.md §7, §9).
func (vfs *VFS) tryEvictInode(entry lruEntry) bool {
	ino := entry.(*Inode)
	ino.mu.Lock()
	evictable := ino.linkCount == 0 && ino.openCount == 0
	ino.mu.Unlock()
	if !evictable {
		return false
	}

	if errno := ino.ops.Sync(ino); errno != 0 {
		logLRU.WithField("inode", ino.id).WithField("errno", errno).
			Warn("driver sync failed during inode eviction; proceeding anyway")
	}
	ino.sb.ops.ReleaseInode(ino.sb, ino)
	if ino.pageCache != nil {
		ino.pageCache.Release()
	}
	vfs.removeHashedInode(ino.sb, ino)
	vfs.inodeSlab.release()
	return true
}

// RegisterFilesystemType makes a driver available to NewMount under name,
// after validating its capability manifest (manifest.go) against the fixed
// schema.
func (vfs *VFS) RegisterFilesystemType(name string, manifestJSON string, ft FilesystemType) error {
	m, err := validateManifest(manifestJSON)
	if err != nil {
		return err
	}
	if m.Name != name {
		return fmt.Errorf("vfs: manifest name %q does not match registration name %q", m.Name, name)
	}
	vfs.typesMu.Lock()
	defer vfs.typesMu.Unlock()
	vfs.types[name] = ft
	vfs.manifests[name] = m
	return nil
}

// Manifest returns the capability manifest a driver registered under name.
func (vfs *VFS) Manifest(name string) (CapabilityManifest, bool) {
	vfs.typesMu.Lock()
	defer vfs.typesMu.Unlock()
	m, ok := vfs.manifests[name]
	return m, ok
}

// NewMount mounts driverName at target ("/" mounts the system root; any
// other absolute path mounts onto an existing dnode reached by walking from
// the current root). opts is deep-copied (github.com/mohae/deepcopy) before
// being handed to the driver so the caller's map can't alias mount state
// afterward.
func (vfs *VFS) NewMount(driverName, target, source string, opts map[string]string) (*Mount, Errno) {
	vfs.typesMu.Lock()
	ft, ok := vfs.types[driverName]
	vfs.typesMu.Unlock()
	if !ok {
		return nil, ENOTSUP
	}

	sb, errno := ft.Mount(vfs, source, cloneOpts(opts))
	if errno != 0 {
		return nil, errno
	}

	mnt := &Mount{sb: sb, ops: &busyCounter{}}
	sb.mnt = mnt
	sb.root.mnt = mnt

	vfs.mu.Lock()
	defer vfs.mu.Unlock()

	if vfs.root == nil {
		if target != "/" {
			return nil, EINVAL
		}
		sb.root.incRef() // system root's pre-incremented reference (spec.md §4.I)
		vfs.root = sb.root
		vfs.rootMount = mnt
		vfs.mounts = append(vfs.mounts, mnt)
		logMount.WithField("driver", driverName).Info("mounted system root")
		return mnt, 0
	}

	targetDnode, _, errno := vfs.walk(vfs.root, vfs.root, target, 0, 0)
	if errno != 0 {
		return nil, errno
	}
	targetDnode.mu.Lock()
	if targetDnode.mountedHere != nil {
		targetDnode.mu.Unlock()
		targetDnode.decRef()
		return nil, EBUSY
	}
	targetDnode.mountedHere = mnt
	mnt.point = targetDnode
	targetDnode.mu.Unlock()

	vfs.mounts = append(vfs.mounts, mnt)
	logMount.WithField("driver", driverName).WithField("target", target).Info("mounted filesystem")
	return mnt, 0
}

// Init boots the VFS from a static mount table, mirroring lunaix-os's
// fs_setup.c: the first entry must target "/" and establishes the system
// root; subsequent entries mount onto dnodes already reachable from it
// (SPEC_FULL.md §3).
func (vfs *VFS) Init(table MountTable) Errno {
	for _, entry := range table.Mount {
		if _, errno := vfs.NewMount(entry.Driver, entry.Target, entry.Source, entry.Opts); errno != 0 {
			return errno
		}
	}
	return 0
}

// Root returns the system root dnode (nil until the first NewMount).
func (vfs *VFS) Root() *Dnode {
	vfs.mu.Lock()
	defer vfs.mu.Unlock()
	return vfs.root
}

// RootMount returns the mount backing the system root.
func (vfs *VFS) RootMount() *Mount {
	vfs.mu.Lock()
	defer vfs.mu.Unlock()
	return vfs.rootMount
}

// Stats reports current cache occupancy, for tests and the vfsshell "stat"
// command.
type Stats struct {
	Dnodes         int
	Inodes         int
	DnodeSlabInUse int
	InodeSlabInUse int
}

func (vfs *VFS) Stats() Stats {
	return Stats{
		Dnodes:         vfs.dnodeLRU.Len(),
		Inodes:         vfs.inodeLRU.Len(),
		DnodeSlabInUse: vfs.dnodeSlab.len(),
		InodeSlabInUse: vfs.inodeSlab.len(),
	}
}
