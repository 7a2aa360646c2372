package vfs

import "sync"

// The slab-like object allocator is an external collaborator of the VFS
// (spec.md §1, Out of scope): the VFS only needs to know whether a slot is
// available and to give one back. boundedSlab is the minimal stand-in this
// package uses so allocDnode/allocInode's "try slab, evict_half, retry once"
// policy (spec.md §4.D) has something concrete to call; a kernel's real slab
// allocator would satisfy the same two methods.
type boundedSlab struct {
	mu       sync.Mutex
	capacity int
	inUse    int
}

func newBoundedSlab(capacity int) *boundedSlab {
	return &boundedSlab{capacity: capacity}
}

func (s *boundedSlab) tryReserve() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inUse >= s.capacity {
		return false
	}
	s.inUse++
	return true
}

func (s *boundedSlab) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inUse > 0 {
		s.inUse--
	}
}

func (s *boundedSlab) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inUse
}
