// Package filemanager implements the file manager connector operations on
// top of a root-jailed filesystem.
//
// This package is organized by concern:
//   - info: descriptors and folder listings
//   - edit: reading and saving file content for the in-browser editor
//   - operations: rename, move, delete and folder creation
//   - upload: placing uploaded files (add, replace)
//   - download: download eligibility
//
// Every operation resolves its virtual paths under the root, checks the
// action allow-list, mode-bit access and extension policy, and only then
// calls the filesystem. Failures are returned as *Error values carrying a
// Kind and a message key; Adapter.Status renders them into the localized
// {Error, Code} record the browser expects.
//
// Example Usage:
//
//	fm, err := filemanager.New(cfg, filemanager.Options{Logger: logger})
//	listing, err := fm.List(ctx, "/images/")
//	if err != nil {
//		return fm.Status(err)
//	}
package filemanager
