package filemanager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/GriffinCanCode/filemanager-connector/internal/domain/policy"
	"github.com/GriffinCanCode/filemanager-connector/internal/shared/paths"
	"go.uber.org/zap"
)

// Add moves an uploaded file into dir. Without overwrite, a name that is
// already taken gets a numeric suffix.
func (a *Adapter) Add(ctx context.Context, dir string, upload Upload) (*UploadResult, error) {
	if ferr := a.checkUpload(upload); ferr != nil {
		return nil, ferr
	}

	name := uploadName(upload.Name)
	if !validName(name) {
		return nil, NewError(KindInvalidInput, keyInvalidFileType)
	}

	destAbs, ferr := a.resolve(dir)
	if ferr != nil {
		return nil, ferr
	}

	// The directory lock covers choosing the name, the file lock covers the
	// write, so a concurrent Save or Replace of the same file waits.
	unlockDir := a.lock(destAbs)
	defer unlockDir()

	if !a.overwrite {
		if _, ok := a.exists(filepath.Join(destAbs, name)); ok {
			name = Dedupe(name)
		}
	}

	newAbs, ferr := a.resolve(paths.Join(dir, name))
	if ferr != nil {
		return nil, ferr
	}

	unlockFile := a.lock(newAbs)
	defer unlockFile()

	if err := a.moveFile(upload.TempPath, newAbs); err != nil {
		return nil, wrapError(KindIO, err, keyErrorRenamingFile, name)
	}

	if err := a.fs.Chmod(newAbs, 0644); err != nil {
		a.logger.Warn("chmod failed", zap.String("path", newAbs), zap.Error(err))
	}

	a.logger.Debug("upload file", zap.String("path", newAbs), zap.Int64("size", upload.Size))

	return &UploadResult{Path: dir, Name: name}, nil
}

// Replace swaps the content of an existing file for an upload with the
// same extension. The new file keeps the replaced file's name.
func (a *Adapter) Replace(ctx context.Context, target string, upload Upload) (*UploadResult, error) {
	if ferr := a.checkSize(upload); ferr != nil {
		return nil, ferr
	}

	name := uploadName(upload.Name)
	oldExt, newExt := dotExtension(target), dotExtension(name)
	if oldExt != newExt {
		return nil, NewError(KindPolicy, keyErrorReplacingFile, newExt)
	}

	if !a.policy.IsExtensionAllowed(name) {
		return nil, NewError(KindPolicy, keyInvalidFileType)
	}

	if ferr := a.allowed(policy.ActionReplace); ferr != nil {
		return nil, ferr
	}

	abs, ferr := a.resolve(target)
	if ferr != nil {
		return nil, ferr
	}

	if a.resolver.IsRoot(abs) {
		return nil, NewError(KindRootProtected, keyNotAllowed)
	}

	unlock := a.lock(abs)
	defer unlock()

	info, err := a.fs.Stat(abs)
	if err != nil {
		return nil, wrapError(KindNotFound, err, keyFileNotExist)
	}
	if info.IsDir() {
		return nil, NewError(KindInvalidInput, keyNotAllowed)
	}

	if err := a.fs.Remove(abs); err != nil {
		return nil, wrapError(KindIO, err, keyErrorSavingFile, target)
	}

	if err := a.moveFile(upload.TempPath, abs); err != nil {
		return nil, wrapError(KindIO, err, keyErrorRenamingFile, name)
	}

	if err := a.fs.Chmod(abs, 0644); err != nil {
		a.logger.Warn("chmod failed", zap.String("path", abs), zap.Error(err))
	}

	a.logger.Debug("file replaced", zap.String("path", abs), zap.String("upload", name))

	parent := paths.Dir(target)
	if len(parent) > 1 {
		parent = strings.TrimSuffix(parent, "/")
	}

	return &UploadResult{Path: parent, Name: paths.Base(target)}, nil
}

func (a *Adapter) checkSize(upload Upload) *Error {
	if upload.Size > a.UploadLimit() {
		return a.ErrUploadTooLarge()
	}
	return nil
}

func (a *Adapter) checkUpload(upload Upload) *Error {
	if ferr := a.checkSize(upload); ferr != nil {
		return ferr
	}
	if !a.policy.IsExtensionAllowed(uploadName(upload.Name)) {
		return NewError(KindPolicy, keyInvalidFileType)
	}
	return nil
}

// moveFile renames src to dst, copying when the staging directory is on
// another device.
func (a *Adapter) moveFile(src, dst string) error {
	err := a.fs.Rename(src, dst)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}

	in, err := a.fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := a.fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy upload: %w", err)
	}
	if err := out.Close(); err != nil {
		return err
	}

	return a.fs.Remove(src)
}

// uploadName strips any client-side directory from a declared file name.
func uploadName(name string) string {
	return path.Base(strings.ReplaceAll(name, "\\", "/"))
}

// dotExtension returns the extension of a name including the dot.
func dotExtension(name string) string {
	if ext := policy.Extension(name); ext != "" {
		return "." + ext
	}
	return ""
}
