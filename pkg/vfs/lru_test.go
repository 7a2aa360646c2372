package vfs

import "testing"

func TestLRUZoneEvictHalf(t *testing.T) {
	evicted := make(map[*Dnode]bool)
	z := newLRUZone("test", func(e lruEntry) bool {
		d := e.(*Dnode)
		evicted[d] = true
		return true
	})

	var ds []*Dnode
	for i := 0; i < 10; i++ {
		d := newDnode("n", nil, nil)
		d.lruElem = z.pushMRU(d)
		ds = append(ds, d)
	}

	n := z.EvictHalf()
	if n != 5 {
		t.Fatalf("expected 5 evicted, got %d", n)
	}
	if z.Len() != 5 {
		t.Fatalf("expected 5 remaining, got %d", z.Len())
	}
	// The five evicted must be the five pushed first (LRU end).
	for i := 0; i < 5; i++ {
		if !evicted[ds[i]] {
			t.Fatalf("expected ds[%d] to be evicted", i)
		}
	}
	for i := 5; i < 10; i++ {
		if evicted[ds[i]] {
			t.Fatalf("did not expect ds[%d] to be evicted", i)
		}
	}
}

func TestLRUZoneUsePromotesToMRU(t *testing.T) {
	z := newLRUZone("test", func(lruEntry) bool { return false })
	a := newDnode("a", nil, nil)
	a.lruElem = z.pushMRU(a)
	b := newDnode("b", nil, nil)
	b.lruElem = z.pushMRU(b)

	z.use(a) // a should move past b toward MRU

	var order []*Dnode
	for e := z.list.Front(); e != nil; e = e.Next() {
		order = append(order, e.Value.(*Dnode))
	}
	if len(order) != 2 || order[0] != b || order[1] != a {
		t.Fatalf("expected [b, a] after using a, got %v", order)
	}
}

func TestLRUZoneRemove(t *testing.T) {
	z := newLRUZone("test", func(lruEntry) bool { return false })
	a := newDnode("a", nil, nil)
	a.lruElem = z.pushMRU(a)
	z.remove(a)
	if z.Len() != 0 {
		t.Fatalf("expected zone empty after remove, got %d", z.Len())
	}
	if a.getLRUElem() != nil {
		t.Fatalf("remove should clear the entry's lruElem")
	}
}
