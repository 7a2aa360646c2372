package vfs

import "sync"

// PageCache is the external per-inode byte-range cache contract of
// spec.md §6: pcache_init/pcache_read/pcache_write/pcache_commit_all/
// pcache_release. The production page cache is an external collaborator
// (spec.md §1, Out of scope); this file provides the minimal reference
// implementation regular-file inodes use so that read/write operations have
// something concrete to flow through end-to-end (spec.md §4.G, §8 scenario
// 1). Inode.PageCache always returns this concrete type.
type PageCache struct {
	mu    sync.Mutex
	bytes []byte
	dirty bool
}

// NewPageCache implements the pcache_init(p) call of spec.md §6.
func NewPageCache() *PageCache {
	return &PageCache{}
}

// Read implements pcache_read(inode, buf, n, pos) -> count.
func (p *PageCache) Read(buf []byte, pos int64) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pos < 0 || pos >= int64(len(p.bytes)) {
		return 0
	}
	n := copy(buf, p.bytes[pos:])
	return n
}

// Write implements pcache_write(inode, buf, n, pos) -> count.
func (p *PageCache) Write(buf []byte, pos int64) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	end := pos + int64(len(buf))
	if end > int64(len(p.bytes)) {
		grown := make([]byte, end)
		copy(grown, p.bytes)
		p.bytes = grown
	}
	n := copy(p.bytes[pos:end], buf)
	p.dirty = true
	return n
}

// Size reports the current cached size. Lseek's SEEK_END and the inode's
// reported size use Inode.Size, not this value.
func (p *PageCache) Size() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return int64(len(p.bytes))
}

// CommitAll implements pcache_commit_all(inode): in this reference
// implementation the backing store *is* the cache, so committing only
// clears the dirty bit.
func (p *PageCache) CommitAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dirty = false
}

// Release implements pcache_release(p).
func (p *PageCache) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bytes = nil
}

// Dirty reports whether there are uncommitted pages, the inode "dirty"
// condition of spec.md §4.G state machines.
func (p *PageCache) Dirty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dirty
}
