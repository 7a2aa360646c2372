package vfs

// This file names the locking discipline spec.md §4.F requires rather than
// introducing new machinery: dnode and inode each already carry their own
// sync.Mutex (object.go), and walk.go/ops.go already acquire them directly
// in the orders documented here. lockRename is the one helper worth
// factoring out, since getting its ordering wrong is the classic way to
// deadlock a rename implementation.

// lockRename acquires, in a fixed global order, the up-to-four dnodes a
// rename touches: the current (source) dnode, the target dnode being
// displaced (if any), the source's parent, and the destination's parent
// (spec.md §4.F: "rename acquires current, then target, then old parent,
// then new parent"). Duplicate dnodes among the four are locked once.
// unlockRename releases them in the reverse order.
func lockRename(current, target, oldParent, newParent *Dnode) []*Dnode {
	order := []*Dnode{current, target, oldParent, newParent}
	seen := make(map[*Dnode]bool, 4)
	var locked []*Dnode
	for _, d := range order {
		if d == nil || seen[d] {
			continue
		}
		seen[d] = true
		d.mu.Lock()
		locked = append(locked, d)
	}
	return locked
}

func unlockRename(locked []*Dnode) {
	for i := len(locked) - 1; i >= 0; i-- {
		locked[i].mu.Unlock()
	}
}

// lockInodePair locks two inodes (e.g. a rename's source and destination
// parent directories) in a fixed order derived from their ids, so that two
// concurrent renames crossing the same pair of directories in opposite
// directions can't deadlock against each other. Returns a function that
// unlocks both.
func lockInodePair(a, b *Inode) func() {
	if a == b {
		a.mu.Lock()
		return func() { a.mu.Unlock() }
	}
	first, second := a, b
	if b.id < a.id {
		first, second = b, a
	}
	first.mu.Lock()
	second.mu.Lock()
	return func() {
		second.mu.Unlock()
		first.mu.Unlock()
	}
}
