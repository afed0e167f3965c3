// Package archive streams directory trees as ZIP archives.
//
// Folder downloads are built on the fly: the tree is walked with fastwalk,
// the entries are sorted, and each file is compressed straight into the
// response writer. Nothing is staged on disk.
//
// Example Usage:
//
//	stats, err := archive.WriteZip(ctx, w, "/srv/files/photos", archive.Options{})
package archive
