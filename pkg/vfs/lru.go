package vfs

import (
	"container/list"
	"sync"
)

// lruEntry is implemented by Dnode and Inode: anything an LRUZone tracks
// needs a slot to remember its position in the zone's recency list
// (spec.md §4.C).
type lruEntry interface {
	getLRUElem() *list.Element
	setLRUElem(*list.Element)
}

// LRUZone is a bounded pool wrapping a recency list and a "try evict"
// predicate (spec.md §4.C, Glossary "LRU zone"). The two zones the VFS
// maintains (dnodes, inodes) are independent instances of this type.
type LRUZone struct {
	mu        sync.Mutex
	name      string
	list      *list.List
	predicate func(entry lruEntry) bool
}

func newLRUZone(name string, predicate func(lruEntry) bool) *LRUZone {
	return &LRUZone{
		name:      name,
		list:      list.New(),
		predicate: predicate,
	}
}

// pushMRU registers a freshly allocated entry at the most-recently-used end
// (spec.md §4.D: "registers with the dnode/inode LRU at MRU").
func (z *LRUZone) pushMRU(entry lruEntry) *list.Element {
	z.mu.Lock()
	e := z.list.PushBack(entry)
	z.mu.Unlock()
	return e
}

// use moves entry to the MRU end. Called on dcache hits during a walk, on
// inode cache hits (findInode), and when a dnode is opened; allocation
// registers at the MRU end through pushMRU instead, and lock acquisition
// does not call it.
func (z *LRUZone) use(entry lruEntry) {
	elem := entry.getLRUElem()
	if elem == nil {
		return
	}
	z.mu.Lock()
	z.list.MoveToBack(elem)
	z.mu.Unlock()
}

// remove unlinks entry from the zone immediately, used by operations that
// destroy an object outside of EvictHalf's scan (unlink, rmdir, a rename's
// displaced target).
func (z *LRUZone) remove(entry lruEntry) {
	elem := entry.getLRUElem()
	if elem == nil {
		return
	}
	z.mu.Lock()
	z.list.Remove(elem)
	z.mu.Unlock()
	entry.setLRUElem(nil)
}

// EvictHalf scans from the LRU end calling the zone's predicate until at
// least half the current length has been freed or the list empties
// (spec.md §4.C). The predicate is invoked without z.mu held so that it may
// itself acquire dnode/inode/dcache locks without nesting under the zone
// lock; elements it elects to evict are unlinked from the list only after it
// returns, here.
func (z *LRUZone) EvictHalf() int {
	z.mu.Lock()
	n := z.list.Len()
	target := (n + 1) / 2
	victims := make([]*list.Element, 0, n)
	for e := z.list.Front(); e != nil; e = e.Next() {
		victims = append(victims, e)
	}
	z.mu.Unlock()

	evicted := 0
	for _, e := range victims {
		if evicted >= target {
			break
		}
		entry := e.Value.(lruEntry)
		if z.predicate(entry) {
			z.mu.Lock()
			z.list.Remove(e)
			z.mu.Unlock()
			entry.setLRUElem(nil)
			evicted++
		}
	}
	if evicted > 0 {
		logLRU.WithField("zone", z.name).WithField("evicted", evicted).Debug("lru eviction pass")
	}
	return evicted
}

// Len reports the zone's current length, for tests and Stats.
func (z *LRUZone) Len() int {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.list.Len()
}
