package paths

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"
)

// ErrOutsideRoot is returned when a virtual path escapes the root jail.
var ErrOutsideRoot = errors.New("path is outside the root directory")

// Resolver confines virtual paths to a root directory.
type Resolver struct {
	root     string
	realRoot string
}

// NewResolver returns a resolver for root. The root is made absolute and
// cleaned once so IsRoot can compare by string equality.
func NewResolver(root string) (*Resolver, error) {
	if root == "" {
		return nil, fmt.Errorf("root directory cannot be empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", root, err)
	}
	abs = filepath.Clean(abs)
	realRoot, err := realPath(abs)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", root, err)
	}
	return &Resolver{root: abs, realRoot: realRoot}, nil
}

// Root returns the absolute root directory.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve maps a virtual path to an absolute path under the root. Besides
// the lexical check, symlinks along the existing part of the path are
// followed and must stay under the root too; a dangling link is rejected
// because writing through it would create its target.
func (r *Resolver) Resolve(virtual string) (string, error) {
	full := filepath.Join(r.root, filepath.FromSlash(virtual))
	if !r.Contains(full) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, virtual)
	}

	target, err := realPath(full)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrOutsideRoot, virtual, err)
	}
	if !within(r.realRoot, target) {
		return "", fmt.Errorf("%w: %s links to %s", ErrOutsideRoot, virtual, target)
	}
	return full, nil
}

// Contains reports whether abs is the root or lies below it. The check is
// lexical; Resolve also follows symlinks.
func (r *Resolver) Contains(abs string) bool {
	return within(r.root, abs)
}

func within(root, abs string) bool {
	rel, err := filepath.Rel(root, filepath.Clean(abs))
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

var errDanglingLink = errors.New("dangling symlink")

// realPath evaluates symlinks in the deepest existing ancestor of p and
// appends the missing remainder unchanged.
func realPath(p string) (string, error) {
	existing, rest := p, ""
	for {
		resolved, err := filepath.EvalSymlinks(existing)
		if err == nil {
			return filepath.Join(resolved, rest), nil
		}
		if !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, syscall.ENOTDIR) {
			return "", err
		}
		if info, lerr := os.Lstat(existing); lerr == nil && info.Mode()&fs.ModeSymlink != 0 {
			return "", fmt.Errorf("%w: %s", errDanglingLink, existing)
		}

		parent := filepath.Dir(existing)
		if parent == existing {
			return p, nil
		}
		rest = filepath.Join(filepath.Base(existing), rest)
		existing = parent
	}
}

// IsRoot reports whether abs denotes the root directory itself.
func (r *Resolver) IsRoot(abs string) bool {
	return filepath.Clean(abs) == r.root
}

// Virtual converts an absolute path under the root back to its virtual form.
func (r *Resolver) Virtual(abs string) (string, error) {
	if !r.Contains(abs) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, abs)
	}
	rel, err := filepath.Rel(r.root, filepath.Clean(abs))
	if err != nil {
		return "", err
	}
	if rel == "." {
		return "/", nil
	}
	return "/" + filepath.ToSlash(rel), nil
}

// Join joins virtual path elements with forward slashes, keeping a leading
// slash when the first element has one.
func Join(elem ...string) string {
	parts := make([]string, len(elem))
	for i, e := range elem {
		parts[i] = filepath.ToSlash(e)
	}
	return path.Join(parts...)
}

// Dir returns the virtual parent of p with a trailing slash. A trailing
// slash on p itself is ignored, so the parent of "/a/b/" is "/a/".
func Dir(p string) string {
	dir := path.Dir(trimSlash(filepath.ToSlash(p)))
	if strings.HasSuffix(dir, "/") {
		return dir
	}
	return dir + "/"
}

// Base returns the last element of p, or "" for the root.
func Base(p string) string {
	p = trimSlash(filepath.ToSlash(p))
	if p == "" || p == "/" {
		return ""
	}
	return path.Base(p)
}

func trimSlash(p string) string {
	if len(p) > 1 {
		return strings.TrimRight(p, "/")
	}
	return p
}
