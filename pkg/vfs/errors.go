// Package vfs implements the in-memory virtual file system core: the
// dentry/inode object model and its bounded caches, the path walker, and the
// syscall-level operations built on top of them.
package vfs

import "fmt"

// Errno is a VFS error kind. Operations return Errno by value rather than
// wrapping errors, matching the "no retries, value-returned kinds" error
// model: a caller inspects the kind directly instead of unwrapping a chain.
//
// Errno implements error so it still composes with errors.Is and
// fmt.Errorf("%w", ...) for callers that prefer that idiom.
type Errno int

// Error kinds from the external syscall surface (spec.md §6).
const (
	ENOMEM Errno = -(iota + 1)
	ENOENT
	ENOTDIR
	EISDIR
	ENOTSUP
	EINVAL
	EBADF
	EEXIST
	EBUSY
	EXDEV
	ENOTEMPTY
	ENAMETOOLONG
	EROFS
	EMFILE
	ELOOP
	ERANGE
)

var errnoNames = map[Errno]string{
	ENOMEM:       "ENOMEM",
	ENOENT:       "ENOENT",
	ENOTDIR:      "ENOTDIR",
	EISDIR:       "EISDIR",
	ENOTSUP:      "ENOTSUP",
	EINVAL:       "EINVAL",
	EBADF:        "EBADF",
	EEXIST:       "EEXIST",
	EBUSY:        "EBUSY",
	EXDEV:        "EXDEV",
	ENOTEMPTY:    "ENOTEMPTY",
	ENAMETOOLONG: "ENAMETOOLONG",
	EROFS:        "EROFS",
	EMFILE:       "EMFILE",
	ELOOP:        "ELOOP",
	ERANGE:       "ERANGE",
}

func (e Errno) Error() string {
	if name, ok := errnoNames[e]; ok {
		return name
	}
	return fmt.Sprintf("vfs: errno(%d)", int(e))
}

// Is allows errors.Is(err, vfs.ENOENT) to work when err has been wrapped with
// fmt.Errorf("%w", ...) by a caller.
func (e Errno) Is(target error) bool {
	other, ok := target.(Errno)
	return ok && other == e
}

// InvariantError is panicked, never returned, when an internal invariant
// listed in spec.md §3/§7 is violated (e.g. freeing a dnode whose refcount is
// not 1). These are bugs in a driver or in this package, not runtime errors a
// caller can recover from.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string { return "vfs: invariant violated: " + e.Msg }

func invariant(cond bool, msg string) {
	if !cond {
		panic(&InvariantError{Msg: msg})
	}
}
