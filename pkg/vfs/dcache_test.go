package vfs

import "testing"

func TestDcacheLookupAddRemove(t *testing.T) {
	c := newDcache()
	parent := newDnode("parent", nil, nil)

	child := newDnode("child", parent, nil)
	if _, hit := c.lookup(parent, "child"); hit {
		t.Fatalf("expected miss before add")
	}
	c.add(parent, child)

	got, hit := c.lookup(parent, "child")
	if !hit || got != child {
		t.Fatalf("lookup after add: got %v, hit %v", got, hit)
	}
	if got.RefCount() != 1 {
		t.Fatalf("add should bump ref_count to 1, got %d", got.RefCount())
	}

	if got, hit := c.lookup(parent, "."); !hit || got != parent {
		t.Fatalf(". should resolve to parent, got %v hit %v", got, hit)
	}
	if got, hit := c.lookup(child, ".."); !hit || got != parent {
		t.Fatalf(".. should resolve to parent, got %v hit %v", got, hit)
	}

	c.remove(child)
	if _, hit := c.lookup(parent, "child"); hit {
		t.Fatalf("expected miss after remove")
	}
	if child.RefCount() != 0 {
		t.Fatalf("remove should drop ref_count to 0, got %d", child.RefCount())
	}
}

func TestDcacheRehashMovesEntry(t *testing.T) {
	c := newDcache()
	oldParent := newDnode("old", nil, nil)
	newParent := newDnode("new", nil, nil)
	d := newDnode("leaf", oldParent, nil)
	c.add(oldParent, d)

	c.rehash(d, newParent, "renamed")

	if _, hit := c.lookup(oldParent, "leaf"); hit {
		t.Fatalf("old binding should be gone after rehash")
	}
	got, hit := c.lookup(newParent, "renamed")
	if !hit || got != d {
		t.Fatalf("expected rehashed entry under new parent, got %v hit %v", got, hit)
	}
	if d.Parent() != newParent {
		t.Fatalf("rehash should update d.parent")
	}
}
