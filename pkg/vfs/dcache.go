package vfs

import (
	"sync"

	"github.com/OneOfOne/xxhash"
)

// hashName computes the 32-bit name hash a dnode carries (spec.md §3, §4.A).
// xxhash.Checksum32 is the same 32-bit hash family the wider example corpus
// reaches for (OneOfOne/xxhash, cespare/xxhash) rather than a hand-rolled
// hash function.
func hashName(name string) uint32 {
	return xxhash.Checksum32([]byte(name))
}

// bucketIndex mixes a name hash with the parent's identity so that
// same-named siblings of different parents don't collide on the same chain
// (spec.md §4.A).
func bucketIndex(parent *Dnode, hash uint32) int {
	var pid uint64
	if parent != nil {
		pid = parent.id
	}
	mixed := hash + uint32(pid) + uint32(pid>>32)
	mixed ^= mixed >> 16
	return int(mixed & (HashtableSize - 1))
}

// dcache is the hashed name cache of spec.md §4.A: parent-relative lookup of
// child dnodes by name-hash. The bucket chains are the "hash-linked list"
// spec.md §1 treats as an external primitive; here they're plain
// mutex-guarded slices, which is the idiomatic Go rendering of the same
// structure rather than a borrowed generic linked-list package.
type dcache struct {
	mu      sync.Mutex
	buckets [HashtableSize][]*Dnode
}

func newDcache() *dcache {
	return &dcache{}
}

// lookup implements spec.md §4.A lookup(parent, name) -> dnode | miss.
// "." is identity, ".." is the parent (or self at the root), and the empty
// name is identity. Otherwise it compares the full 32-bit hash only, per the
// documented reference behavior (spec.md §4.A, §9): a hash collision would
// return the wrong dnode, and this implementation deliberately does not
// paper over that with an extra byte compare.
func (c *dcache) lookup(parent *Dnode, name string) (*Dnode, bool) {
	switch name {
	case "", ".":
		return parent, true
	case "..":
		if parent == nil || parent.parent == nil {
			return parent, true
		}
		return parent.parent, true
	}
	hash := hashName(name)
	idx := bucketIndex(parent, hash)

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, d := range c.buckets[idx] {
		if d.parent == parent && d.nameHash == hash {
			return d, true
		}
	}
	return nil, false
}

// add implements spec.md §4.A add(parent, dnode): requires a non-null
// parent, links into the parent's ordered child list, registers in the hash
// bucket, and bumps ref_count by one (representing "cached by parent").
func (c *dcache) add(parent *Dnode, d *Dnode) {
	invariant(parent != nil, "dcache.add: nil parent")

	idx := bucketIndex(parent, d.nameHash)
	c.mu.Lock()
	c.buckets[idx] = append(c.buckets[idx], d)
	c.mu.Unlock()

	parent.mu.Lock()
	parent.children.ReplaceOrInsert(childItem{name: d.name, d: d})
	parent.mu.Unlock()

	d.incRef()
}

// remove implements spec.md §4.A remove(dnode): requires ref_count == 1
// (only the cache holds it), unlinks from siblings and hash, zeroes the
// parent pointer, decrements the count to zero.
func (c *dcache) remove(d *Dnode) {
	invariant(d.RefCount() == 1, "dcache.remove: ref_count != 1")

	parent := d.parent
	if parent != nil {
		idx := bucketIndex(parent, d.nameHash)
		c.mu.Lock()
		c.unlinkBucketLocked(idx, d)
		c.mu.Unlock()

		parent.mu.Lock()
		parent.children.Delete(childItem{name: d.name})
		parent.mu.Unlock()
	}

	d.mu.Lock()
	d.parent = nil
	d.mu.Unlock()

	d.decRef()
}

// detachFromCache unhashes a child whose parent is being destroyed, without
// asserting ref_count == 1: the child may still be referenced by an open
// file, cwd, or mount (spec.md §4.D: "on free, all children are
// unhashed/unparented (they will cascade-evict)"). Detached children are
// left with parent == nil and out of every bucket/child-list, so they
// naturally become unreachable once their own remaining references drop.
func (c *dcache) detachFromCache(d *Dnode) {
	parent := d.parent
	if parent == nil {
		return
	}
	idx := bucketIndex(parent, d.nameHash)
	c.mu.Lock()
	c.unlinkBucketLocked(idx, d)
	c.mu.Unlock()

	parent.mu.Lock()
	parent.children.Delete(childItem{name: d.name})
	parent.mu.Unlock()

	d.mu.Lock()
	d.parent = nil
	d.mu.Unlock()
}

func (c *dcache) unlinkBucketLocked(idx int, d *Dnode) {
	bucket := c.buckets[idx]
	for i, e := range bucket {
		if e == d {
			c.buckets[idx] = append(bucket[:i], bucket[i+1:]...)
			return
		}
	}
}

// rehash implements spec.md §4.A rehash(new_parent, dnode): rehashes on a
// fresh name then removes and re-adds under a new parent.
func (c *dcache) rehash(d *Dnode, newParent *Dnode, newName string) {
	oldParent := d.parent
	if oldParent != nil {
		idx := bucketIndex(oldParent, d.nameHash)
		c.mu.Lock()
		c.unlinkBucketLocked(idx, d)
		c.mu.Unlock()

		oldParent.mu.Lock()
		oldParent.children.Delete(childItem{name: d.name})
		oldParent.mu.Unlock()
	}

	d.mu.Lock()
	d.name = newName
	d.nameHash = hashName(newName)
	d.parent = newParent
	d.mu.Unlock()

	if newParent != nil {
		newIdx := bucketIndex(newParent, d.nameHash)
		c.mu.Lock()
		c.buckets[newIdx] = append(c.buckets[newIdx], d)
		c.mu.Unlock()

		newParent.mu.Lock()
		newParent.children.ReplaceOrInsert(childItem{name: d.name, d: d})
		newParent.mu.Unlock()
	}
}

// orderedChildren returns d's children in name order, used by readdir and
// by rmdir/rename's "children remain" checks.
func orderedChildren(d *Dnode) []*Dnode {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*Dnode, 0, d.children.Len())
	d.children.Ascend(func(it childItem) bool {
		out = append(out, it.d)
		return true
	})
	return out
}
