// Package access decides whether the running process may read, write or
// execute a path by comparing the file's owner, group and mode bits with the
// process identity.
//
// The check is a pure function of stat metadata. It does not call access(2),
// so a process running as root is treated like any other owner.
package access

import (
	"io/fs"
	"os"
)

// Mode is a permission bitmask in the rwx order used by mode bits.
type Mode uint32

const (
	Exists  Mode = 0 // path only has to be stat-able
	Execute Mode = 1
	Write   Mode = 2
	Read    Mode = 4
)

// Stater returns metadata for a path. afero.Fs and os satisfy it.
type Stater interface {
	Stat(name string) (os.FileInfo, error)
}

type osStater struct{}

func (osStater) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }

// Checker evaluates mode bits for a fixed identity.
type Checker struct {
	UID uint32
	GID uint32
	fs  Stater
}

// ForProcess returns a checker bound to the effective identity of the
// current process.
func ForProcess(fsys Stater) *Checker {
	uid, gid := processIdentity()
	return New(uid, gid, fsys)
}

// New returns a checker for an explicit identity. A nil fsys stats through os.
func New(uid, gid uint32, fsys Stater) *Checker {
	if fsys == nil {
		fsys = osStater{}
	}
	return &Checker{UID: uid, GID: gid, fs: fsys}
}

// CanAccess reports whether every bit of mask is granted on path.
// A stat failure always reports false.
func (c *Checker) CanAccess(path string, mask Mode) bool {
	info, err := c.fs.Stat(path)
	if err != nil {
		return false
	}
	return c.Allows(info, mask)
}

// Allows applies the owner/group/other selection to already fetched metadata.
func (c *Checker) Allows(info fs.FileInfo, mask Mode) bool {
	if mask == Exists {
		return true
	}

	perm := uint32(info.Mode().Perm())
	uid, gid, ok := ownerOf(info)

	var bits uint32
	switch {
	case !ok || uid == c.UID:
		bits = (perm >> 6) & 0x7
	case gid == c.GID:
		bits = (perm >> 3) & 0x7
	default:
		bits = perm & 0x7
	}

	return bits&uint32(mask) == uint32(mask)
}
