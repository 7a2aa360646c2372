package vfs

import (
	"golang.org/x/sync/singleflight"
)

// inodeHashMask is the id bucket mask of a fixed power-of-two inode hash
// table (spec.md §3, Superblock; §4.B). The per-superblock cache below is a
// Go map keyed by the full id, so no id is masked with it.
const inodeHashMask = 255

// initInodeCache prepares sb's per-superblock id->inode map (spec.md §4.B).
func initInodeCache(sb *Superblock) {
	sb.inodes = make(map[uint64]*Inode, 64)
}

// findInode implements spec.md §4.B find(sb, id) -> inode | miss. A hit promotes
// the inode in the inode LRU.
func (vfs *VFS) findInode(sb *Superblock, id uint64) (*Inode, bool) {
	sb.mu.Lock()
	ino, ok := sb.inodes[id]
	sb.mu.Unlock()
	if ok {
		vfs.inodeLRU.use(ino)
	}
	return ino, ok
}

// addHashedInode implements spec.md §4.B add_hashed(inode): idempotent, removing
// then inserting so a rehash-on-id-change is safe.
func (vfs *VFS) addHashedInode(sb *Superblock, ino *Inode) {
	sb.mu.Lock()
	for id, v := range sb.inodes {
		if v == ino && id != ino.id {
			delete(sb.inodes, id)
		}
	}
	sb.inodes[ino.id] = ino
	sb.mu.Unlock()
}

func (vfs *VFS) removeHashedInode(sb *Superblock, ino *Inode) {
	sb.mu.Lock()
	delete(sb.inodes, ino.id)
	sb.mu.Unlock()
}

// dirLookupGroup collapses concurrent cache-miss walks for the same
// (parent dnode, name) pair into a single driver DirLookup/Mkdir call
// (spec.md §4.E step 4). Without this, two goroutines racing to open a path
// that isn't cached yet would both allocate a dnode and both call into the
// driver for the same name; singleflight makes the second one wait for and
// reuse the first's result instead.
var dirLookupGroup singleflight.Group
