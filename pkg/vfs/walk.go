package vfs

import "strings"

// WalkOptions is the options bitset accepted by Walk (spec.md §4.E).
type WalkOptions uint8

const (
	// WalkParent stops at the last component, returning its parent; the
	// component name itself is reported via the lastComponent return value.
	WalkParent WalkOptions = 1 << iota
	// WalkMkparent creates missing directories along the way.
	WalkMkparent
	// WalkNofollow does not dereference a symlink as the final component.
	WalkNofollow
	// WalkFSRelative makes a leading '/' resolve against start's
	// superblock root instead of the system root.
	WalkFSRelative
)

// Walk resolves path against start (nil meaning the system root),
// implementing spec.md §4.E. On success it returns a dnode with one
// reference that the caller now owns and must eventually release (via
// PutDnode); on WalkParent it returns the parent so referenced, plus the
// final component's raw name.
func (vfs *VFS) Walk(start *Dnode, path string, opts WalkOptions) (result *Dnode, lastComponent string, errno Errno) {
	vfs.mu.Lock()
	root := vfs.root
	vfs.mu.Unlock()
	if root == nil {
		return nil, "", ENOENT
	}

	if start == nil {
		start = root
	}
	if strings.HasPrefix(path, "/") {
		if opts&WalkFSRelative != 0 {
			start = start.sb.root
		} else {
			start = root
		}
	}
	if path == "" {
		start.incRef()
		return start, "", 0
	}
	return vfs.walk(root, start, path, opts, 0)
}

// walk is the recursion-bearing core; root is the system root (needed when a
// symlink target is itself absolute), start is where relative resolution
// begins, depth counts symlink expansions across the whole call chain
// (spec.md §4.E, VFS_SYMLINK_DEPTH = 16).
func (vfs *VFS) walk(root, start *Dnode, path string, opts WalkOptions, depth int) (*Dnode, string, Errno) {
	if depth > SymlinkDepthLimit {
		return nil, "", ENAMETOOLONG
	}

	comps, trailing, errno := splitComponents(path)
	if errno != 0 {
		return nil, "", errno
	}
	if len(comps) == 0 {
		start.incRef()
		return start, "", 0
	}

	cur := start
	cur.incRef()

	for i, name := range comps {
		last := i == len(comps)-1

		if last && opts&WalkParent != 0 {
			return cur, name, 0
		}

		next, errno := vfs.resolveComponent(cur, name, opts&WalkMkparent != 0)
		if errno != 0 {
			cur.decRef()
			return nil, "", errno
		}

		if next.sb != nil {
			next.mu.Lock()
			mounted := next.mountedHere
			next.mu.Unlock()
			if mounted != nil {
				mounted.sb.root.incRef()
				next.decRef()
				next = mounted.sb.root
			}
		}

		followSymlink := !last || !(opts&WalkNofollow != 0) || trailing
		if followSymlink && next.Inode() != nil && next.Inode().Type() == TypeSymlink {
			target, errno := next.Inode().ops.ReadSymlink(next.Inode())
			if errno != 0 {
				next.decRef()
				cur.decRef()
				return nil, "", errno
			}
			symParent := next.parent
			base := symParent
			if strings.HasPrefix(target, "/") {
				base = root
			}
			resolved, _, errno := vfs.walk(root, base, target, opts&^(WalkParent|WalkMkparent), depth+1)
			if errno != 0 {
				next.decRef()
				cur.decRef()
				return nil, "", errno
			}
			// Rehash the resolved target under the symlink's own parent and
			// name so future walks short-circuit; spec.md §9 flags this as a
			// possibly-surprising behavior (it can rebind resolved under an
			// "alien" parent), preserved here deliberately rather than fixed.
			vfs.dcache.rehash(resolved, symParent, next.name)
			next.decRef()
			next = resolved
		}

		cur.decRef()
		cur = next
	}

	return cur, "", 0
}

// resolveComponent implements spec.md §4.E steps 3–5 for a single name under
// cur: dcache lookup, and on miss a driver DirLookup (or Mkdir, under
// mkparent) followed by dcache insertion. The returned dnode carries one
// reference the caller owns.
func (vfs *VFS) resolveComponent(cur *Dnode, name string, mkparent bool) (*Dnode, Errno) {
	cur.mu.Lock()
	child, hit := vfs.dcache.lookup(cur, name)
	cur.mu.Unlock()

	if hit {
		child.incRef()
		vfs.dnodeLRU.use(child)
		return child, 0
	}

	curInode := cur.Inode()
	if curInode == nil {
		return nil, ENOENT
	}
	if curInode.Type() != TypeDirectory {
		return nil, ENOTDIR
	}

	key := name + "\x00" + itoa(cur.id)
	v, err, _ := dirLookupGroup.Do(key, func() (interface{}, error) {
		return vfs.populateChild(cur, curInode, name, mkparent)
	})
	if err != nil {
		return nil, err.(Errno)
	}
	d := v.(*Dnode)
	d.incRef()
	return d, 0
}

// populateChild performs the actual driver call and dcache insertion for a
// cache miss; it is only ever invoked once per (cur, name) key at a time via
// singleflight (inodecache.go).
func (vfs *VFS) populateChild(cur *Dnode, curInode *Inode, name string, mkparent bool) (*Dnode, error) {
	if again, hit := func() (*Dnode, bool) {
		cur.mu.Lock()
		defer cur.mu.Unlock()
		return vfs.dcache.lookup(cur, name)
	}(); hit {
		vfs.dnodeLRU.use(again)
		return again, nil
	}

	curInode.mu.Lock()
	childID, errno := curInode.ops.DirLookup(curInode, name)
	if errno == ENOENT && mkparent {
		childID, errno = curInode.ops.Mkdir(curInode, name, 0755)
	}
	curInode.mu.Unlock()
	if errno != 0 {
		return nil, errno
	}

	// The driver is expected to have already allocated and registered (via
	// addHashedInode, inodecache.go) any inode id it hands back from
	// DirLookup/Mkdir — drivers create inodes eagerly at mkdir/create time
	// (see ramfs). A miss here means the driver returned an id it never
	// bound.
	ino, hit := vfs.findInode(cur.sb, childID)
	if !hit {
		return nil, ENOENT
	}

	d, errno := vfs.allocDnode(name, cur, cur.sb)
	if errno != 0 {
		return nil, errno
	}
	assignInode(d, ino)
	vfs.dcache.add(cur, d)
	return d, nil
}

// splitComponents parses a slash-delimited path into components, collapsing
// repeated slashes and tolerating a trailing slash (spec.md §4.E). It
// enforces the NameMaxlen bound and rejects NUL bytes (spec.md §4.E edge
// cases: driver decides legality beyond that; the VFS itself rejects NUL).
func splitComponents(path string) (comps []string, trailingSlash bool, errno Errno) {
	if strings.IndexByte(path, 0) >= 0 {
		return nil, false, EINVAL
	}
	// The original C walker bump-allocates component names out of a fixed
	// 2048-byte per-walk arena (spec.md §4.E); Go's GC makes the arena itself
	// unnecessary, but the overall bound it enforced is still worth keeping.
	if len(path) > bumpArenaSize {
		return nil, false, ENAMETOOLONG
	}
	raw := strings.Split(path, "/")
	for i, c := range raw {
		if c == "" {
			if i == len(raw)-1 && len(raw) > 1 {
				trailingSlash = true
			}
			continue
		}
		if len(c) > NameMaxlen-1 {
			return nil, false, ENAMETOOLONG
		}
		comps = append(comps, c)
	}
	return comps, trailingSlash, 0
}

func itoa(n uint64) string {
	if n == 0 {
		return "0"
	}
	buf := [20]byte{}
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// PutDnode releases a reference obtained from Walk (or from another
// operation that returns an owned dnode reference). It does not free the
// dnode immediately even at ref_count == 0: eviction is left to the LRU zone
// (spec.md §4.D).
func (vfs *VFS) PutDnode(d *Dnode) {
	if d == nil {
		return
	}
	d.decRef()
}
