// Package paths maps client-supplied virtual paths onto the filesystem.
//
// Every virtual path is interpreted relative to a single root directory
// (the root jail). A virtual path that would resolve above the root after
// cleaning is rejected with ErrOutsideRoot instead of being silently
// accepted. Symlinks in the existing part of a path are followed, and a
// path whose target lies outside the root, or that ends in a dangling link,
// is rejected the same way.
//
// # Layout
//
//	virtual "/"             -> <root>
//	virtual "/docs/a.txt"   -> <root>/docs/a.txt
//	virtual "docs/../a.txt" -> <root>/a.txt
//	virtual "/../etc"       -> ErrOutsideRoot
//	virtual "/link/x" where link -> /etc is ErrOutsideRoot
//
// # Usage
//
//	r, err := paths.NewResolver("/srv/userfiles")
//	abs, err := r.Resolve("/docs/report.pdf")
//	if r.IsRoot(abs) {
//	    // refuse to mutate the jail itself
//	}
package paths
