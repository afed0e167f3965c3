package archive

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/klauspost/compress/zip"
)

// Filter reports whether an entry is left out. rel is slash separated and
// relative to the archived directory; a skipped directory drops its subtree.
type Filter func(rel string, isDir bool) bool

// Options tunes archive creation.
type Options struct {
	// Prefix is the top-level folder of every entry. Defaults to the base
	// name of the archived directory.
	Prefix string
	Skip   Filter
}

// Stats summarizes a written archive.
type Stats struct {
	Files     int
	Dirs      int
	TotalSize int64
}

type entry struct {
	rel   string
	isDir bool
}

// WriteZip writes dir to w as a ZIP archive whose entries live under
// Options.Prefix.
func WriteZip(ctx context.Context, w io.Writer, dir string, opts Options) (Stats, error) {
	var stats Stats

	root := filepath.Clean(dir)
	info, err := os.Stat(root)
	if err != nil {
		return stats, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return stats, fmt.Errorf("%s is not a directory", dir)
	}

	prefix := opts.Prefix
	if prefix == "" {
		prefix = filepath.Base(root)
	}

	entries, err := collect(ctx, root, opts.Skip)
	if err != nil {
		return stats, err
	}

	zw := zip.NewWriter(w)
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			zw.Close()
			return stats, err
		}

		name := path.Join(prefix, e.rel)
		if e.isDir {
			if _, err := zw.Create(name + "/"); err != nil {
				zw.Close()
				return stats, err
			}
			stats.Dirs++
			continue
		}

		n, err := addFile(zw, filepath.Join(root, filepath.FromSlash(e.rel)), name)
		if err != nil {
			zw.Close()
			return stats, err
		}
		stats.Files++
		stats.TotalSize += n
	}

	if err := zw.Close(); err != nil {
		return stats, fmt.Errorf("finish zip: %w", err)
	}
	return stats, nil
}

// collect walks root concurrently and returns its entries in stable order.
func collect(ctx context.Context, root string, skip Filter) ([]entry, error) {
	var (
		mu      sync.Mutex
		entries []entry
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(p string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil || p == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		isDir := d.IsDir()
		if !isDir && !d.Type().IsRegular() {
			return nil
		}
		if skip != nil && skip(rel, isDir) {
			if isDir {
				return fs.SkipDir
			}
			return nil
		}

		mu.Lock()
		entries = append(entries, entry{rel: rel, isDir: isDir})
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].rel < entries[j].rel })
	return entries, nil
}

func addFile(zw *zip.Writer, src, name string) (int64, error) {
	f, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return 0, err
	}
	header.Name = name
	header.Method = zip.Deflate

	writer, err := zw.CreateHeader(header)
	if err != nil {
		return 0, err
	}
	return io.Copy(writer, f)
}
