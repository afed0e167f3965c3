package filemanager

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/GriffinCanCode/filemanager-connector/internal/domain/policy"
	"github.com/GriffinCanCode/filemanager-connector/internal/shared/access"
	"github.com/GriffinCanCode/filemanager-connector/internal/shared/paths"
	"go.uber.org/zap"
)

// Rename gives a file or directory a new name in the same folder.
func (a *Adapter) Rename(ctx context.Context, file, newName string) (*RenameResult, error) {
	oldAbs, ferr := a.resolve(file)
	if ferr != nil {
		return nil, ferr
	}

	if a.resolver.IsRoot(oldAbs) {
		return nil, NewError(KindRootProtected, keyNotAllowed)
	}

	if ferr := a.allowed(policy.ActionRename); ferr != nil {
		return nil, ferr
	}

	if !validName(newName) {
		return nil, NewError(KindInvalidInput, keyNotAllowed)
	}

	info, err := a.fs.Stat(oldAbs)
	if err != nil {
		return nil, wrapError(KindNotFound, err, keyFileNotExist)
	}

	if info.Mode().IsRegular() && a.policy.ChangeExtensionsChecked() && !a.policy.IsExtensionAllowed(newName) {
		return nil, NewError(KindPolicy, keyInvalidFileType)
	}

	if !a.access.Allows(info, access.Write) {
		return nil, NewError(KindAccessDenied, keyNotAllowedSystem)
	}

	newAbs := filepath.Join(filepath.Dir(oldAbs), newName)

	unlock := a.lock(oldAbs, newAbs)
	defer unlock()

	if existing, ok := a.exists(newAbs); ok {
		return nil, NewError(KindCollision, collisionKey(existing.IsDir()), newName)
	}

	if err := a.fs.Rename(oldAbs, newAbs); err != nil {
		key := keyErrorRenamingFile
		if info.IsDir() {
			key = keyErrorRenamingDir
		}
		return nil, wrapError(KindIO, err, key, newName)
	}

	a.logger.Debug("renamed", zap.String("from", oldAbs), zap.String("to", newAbs))

	return &RenameResult{
		OldPath: file,
		OldName: paths.Base(file),
		NewPath: paths.Join(paths.Dir(file), newName),
		NewName: newName,
	}, nil
}

// Move places a file or directory in another folder. newDir is taken from
// root when it starts with a slash and from the item's parent otherwise;
// the folder is created when missing.
func (a *Adapter) Move(ctx context.Context, file, newDir, root string) (*RenameResult, error) {
	oldAbs, ferr := a.resolve(file)
	if ferr != nil {
		return nil, ferr
	}

	if a.resolver.IsRoot(oldAbs) {
		return nil, NewError(KindRootProtected, keyNotAllowed)
	}

	if ferr := a.allowed(policy.ActionMove); ferr != nil {
		return nil, ferr
	}

	oldPath := paths.Dir(file)
	newPath := moveDestination(file, newDir, root)
	fileName := paths.Base(file)

	destAbs, ferr := a.resolve(newPath)
	if ferr != nil {
		return nil, ferr
	}
	newAbs := filepath.Join(destAbs, fileName)
	if a.resolver.IsRoot(newAbs) || !a.resolver.Contains(newAbs) {
		return nil, NewError(KindOutsideRoot, keyNotAllowed)
	}

	info, err := a.fs.Stat(oldAbs)
	if err != nil || !a.access.Allows(info, access.Write) {
		return nil, wrapError(KindAccessDenied, err, keyNotAllowedSystem)
	}

	if ferr := canceled(ctx); ferr != nil {
		return nil, ferr
	}

	unlock := a.lock(oldAbs, newAbs)
	defer unlock()

	if existing, ok := a.exists(newAbs); ok {
		return nil, NewError(KindCollision, collisionKey(existing.IsDir()), newPath+fileName)
	}

	dest, ok := a.exists(destAbs)
	switch {
	case !ok:
		if err := a.fs.MkdirAll(destAbs, 0755); err != nil {
			return nil, wrapError(KindIO, err, keyUnableToCreateDir)
		}
	case !dest.IsDir():
		return nil, NewError(KindCollision, keyFileExists, newPath)
	}

	if err := a.fs.Rename(oldAbs, newAbs); err != nil {
		key := keyErrorRenamingFile
		if info.IsDir() {
			key = keyErrorRenamingDir
		}
		return nil, wrapError(KindIO, err, key, file)
	}

	a.logger.Debug("moved", zap.String("from", oldAbs), zap.String("to", newAbs))

	return &RenameResult{
		OldPath: oldPath + fileName,
		OldName: fileName,
		NewPath: newPath + fileName,
		NewName: fileName,
	}, nil
}

// moveDestination computes the virtual destination folder of a move, with
// a trailing slash.
func moveDestination(file, newDir, root string) string {
	root = strings.ReplaceAll(root, "//", "/")

	var dest string
	if strings.HasPrefix(newDir, "/") {
		dest = paths.Join(root, newDir)
	} else {
		dest = paths.Join(paths.Dir(file), newDir)
	}

	if !strings.HasSuffix(dest, "/") {
		dest += "/"
	}
	return dest
}

// Delete removes a file or a directory tree.
func (a *Adapter) Delete(ctx context.Context, file string) (*PathResult, error) {
	if ferr := a.allowed(policy.ActionDelete); ferr != nil {
		return nil, ferr
	}

	abs, ferr := a.resolve(file)
	if ferr != nil {
		return nil, ferr
	}

	if a.resolver.IsRoot(abs) {
		return nil, NewError(KindRootProtected, keyNotAllowed)
	}

	if !a.access.CanAccess(abs, access.Write) {
		return nil, NewError(KindAccessDenied, keyNotAllowedSystem)
	}

	unlock := a.lock(abs)
	defer unlock()

	a.logger.Debug("delete", zap.String("path", abs))

	// Removal is best effort once access was granted.
	if err := a.fs.RemoveAll(abs); err != nil {
		a.logger.Warn("delete incomplete", zap.String("path", abs), zap.Error(err))
	}

	return &PathResult{Path: file}, nil
}

// AddFolder creates a directory below parent.
func (a *Adapter) AddFolder(ctx context.Context, parent, name string) (*FolderResult, error) {
	if !validName(name) {
		return nil, NewError(KindInvalidInput, keyUnableToCreateDir)
	}

	abs, ferr := a.resolve(paths.Join(parent, name))
	if ferr != nil {
		return nil, ferr
	}

	unlock := a.lock(abs)
	defer unlock()

	if existing, ok := a.exists(abs); ok {
		return nil, NewError(KindCollision, collisionKey(existing.IsDir()), name)
	}

	if err := a.fs.Mkdir(abs, 0755); err != nil {
		return nil, wrapError(KindIO, err, keyUnableToCreateDir)
	}

	a.logger.Debug("create folder", zap.String("path", abs))

	return &FolderResult{Parent: parent, Name: name}, nil
}

func collisionKey(isDir bool) string {
	if isDir {
		return keyDirExists
	}
	return keyFileExists
}
