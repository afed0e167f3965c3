package filemanager

import (
	"context"
	"path"
	"strings"

	"github.com/GriffinCanCode/filemanager-connector/internal/domain/policy"
	"github.com/GriffinCanCode/filemanager-connector/internal/infrastructure/config"
	"github.com/GriffinCanCode/filemanager-connector/internal/infrastructure/logging"
	"github.com/GriffinCanCode/filemanager-connector/internal/shared/access"
	"github.com/GriffinCanCode/filemanager-connector/internal/shared/paths"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Info describes a single path. It never fails: a missing path yields a
// bare descriptor, an unreadable or out-of-root one a protected descriptor.
func (a *Adapter) Info(ctx context.Context, virtual string) Descriptor {
	base := paths.Base(virtual)
	d := Descriptor{
		Path:     virtual,
		Filename: base,
		FileType: strings.ToLower(policy.Extension(base)),
		Preview:  a.icons.fallback,
		Code:     CodeOK,
	}

	abs, ferr := a.resolve(virtual)
	if ferr != nil {
		return a.protected(d)
	}

	info, err := a.fs.Stat(abs)
	if err != nil {
		return d
	}

	if !a.access.Allows(info, access.Read|access.Write) {
		return a.protected(d)
	}

	if info.IsDir() {
		d.FileType = dirType
		d.Preview = a.icons.directory
		if !strings.HasSuffix(d.Path, "/") {
			d.Path += "/"
		}
	}

	if info.Mode().IsRegular() {
		size := info.Size()
		d.Properties.Size = &size
		if icon, ok := a.icons.byType[d.FileType]; ok {
			d.Preview = icon
		}
	}

	d.Properties.DateModified = formatDate(info.ModTime(), a.dateFormat)
	d.Properties.DateCreated = formatDate(birthTime(abs, info), a.dateFormat)

	return d
}

func (a *Adapter) protected(d Descriptor) Descriptor {
	d.Protected = 1
	d.Preview = a.icons.locked
	return d
}

// List describes every child of a folder, keyed by virtual path. Excluded
// entries are left out.
func (a *Adapter) List(ctx context.Context, folder string) (Listing, error) {
	abs, ferr := a.resolve(folder)
	if ferr != nil {
		return nil, ferr
	}

	info, err := a.fs.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, wrapError(KindNotFound, err, keyDirNotExist, folder)
	}

	if !a.access.Allows(info, access.Read) {
		return nil, NewError(KindAccessDenied, keyNotAllowedSystem)
	}

	entries, err := afero.ReadDir(a.fs, abs)
	if err != nil {
		return nil, wrapError(KindIO, err, keyUnableToOpenDir, folder)
	}

	results := make([]Descriptor, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.listConcurrency)

	for i, entry := range entries {
		i, child := i, paths.Join(folder, entry.Name())
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = a.Info(gctx, child)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, wrapError(KindIO, err, keyUnableToOpenDir, folder)
	}

	listing := make(Listing, len(results))
	for _, d := range results {
		if a.policy.IsExcluded(d.Path, d.IsDir()) {
			continue
		}
		listing[d.Path] = d
	}

	a.logger.Debug("sending info for folder", zap.String("path", abs), zap.Int("entries", len(listing)))
	return listing, nil
}

// iconSet holds preview icon references.
type iconSet struct {
	fallback  string
	locked    string
	directory string
	byType    map[string]string
}

// loadIcons scans the file icon directory once. Icon files are named after
// the extension they stand for, e.g. pdf.png.
func loadIcons(fsys afero.Fs, cfg *config.Connector, logger *logging.Logger) *iconSet {
	icons := &iconSet{
		fallback:  cfg.Icons.Path + cfg.Icons.Default,
		locked:    cfg.Icons.Path + "locked_" + cfg.Icons.Default,
		directory: cfg.Icons.Path + cfg.Icons.Directory,
		byType:    make(map[string]string),
	}

	entries, err := afero.ReadDir(fsys, cfg.IconDir())
	if err != nil {
		logger.Warn("file icons unavailable", zap.String("dir", cfg.IconDir()), zap.Error(err))
		return icons
	}

	webDir := path.Join("/", strings.ReplaceAll(cfg.Connector.FmSrcPath, "\\", "/"), "images", "fileicons")
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := path.Ext(name)
		if ext == "" {
			continue
		}
		icons.byType[strings.TrimSuffix(name, ext)] = path.Join(webDir, name)
	}

	return icons
}
