package vfs

import "testing"

func TestLockRenameDeduplicatesSharedDnodes(t *testing.T) {
	a := newDnode("a", nil, nil)
	b := newDnode("b", nil, nil)

	// current == oldParent exercises the self-rename-into-own-dir edge case;
	// target is nil (no displaced entry).
	locked := lockRename(a, nil, a, b)
	if len(locked) != 2 {
		t.Fatalf("expected 2 distinct dnodes locked, got %d", len(locked))
	}
	unlockRename(locked)

	// All four distinct: every one should be locked exactly once.
	c := newDnode("c", nil, nil)
	d := newDnode("d", nil, nil)
	locked = lockRename(a, b, c, d)
	if len(locked) != 4 {
		t.Fatalf("expected 4 distinct dnodes locked, got %d", len(locked))
	}
	unlockRename(locked)
}

func TestLockInodePairOrdersByID(t *testing.T) {
	sb := &Superblock{}
	lo := &Inode{id: 5, sb: sb}
	hi := &Inode{id: 9, sb: sb}

	// Regardless of argument order, both must end up locked; calling with
	// the high id first exercises the swap branch.
	unlock := lockInodePair(hi, lo)
	unlock()

	unlock = lockInodePair(lo, hi)
	unlock()
}

func TestLockInodePairSameInode(t *testing.T) {
	sb := &Superblock{}
	ino := &Inode{id: 1, sb: sb}
	unlock := lockInodePair(ino, ino)
	unlock()
}
