package filemanager

import (
	"context"
	"html"

	"github.com/GriffinCanCode/filemanager-connector/internal/domain/policy"
	"github.com/GriffinCanCode/filemanager-connector/internal/shared/access"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Edit returns the HTML-escaped content of a file for the editor.
func (a *Adapter) Edit(ctx context.Context, file string) (*EditResult, error) {
	if ferr := a.allowed(policy.ActionEdit); ferr != nil {
		return nil, ferr
	}

	abs, ferr := a.resolve(file)
	if ferr != nil {
		return nil, ferr
	}

	if !a.access.CanAccess(abs, access.Read|access.Write) {
		return nil, NewError(KindAccessDenied, keyNotAllowedSystem)
	}

	content, err := afero.ReadFile(a.fs, abs)
	if err != nil {
		return nil, wrapError(KindIO, err, keyErrorOpeningFile, file)
	}

	a.logger.Debug("editing file", zap.String("path", abs))

	return &EditResult{
		Path:    file,
		Content: html.EscapeString(string(content)),
	}, nil
}

// Save overwrites a file with HTML-unescaped content. A nil content means
// the request carried none.
func (a *Adapter) Save(ctx context.Context, file string, content *string) (*PathResult, error) {
	if content == nil {
		return nil, NewError(KindInvalidInput, keyContentMissing)
	}

	if ferr := a.allowed(policy.ActionEdit); ferr != nil {
		return nil, ferr
	}

	abs, ferr := a.resolve(file)
	if ferr != nil {
		return nil, ferr
	}

	if !a.access.CanAccess(abs, access.Write) {
		return nil, NewError(KindAccessDenied, keyErrorWritingPerm, file)
	}

	unlock := a.lock(abs)
	defer unlock()

	if err := afero.WriteFile(a.fs, abs, []byte(html.UnescapeString(*content)), 0644); err != nil {
		return nil, wrapError(KindIO, err, keyErrorSavingFile, file)
	}

	a.logger.Debug("saving file", zap.String("path", abs))

	return &PathResult{Path: file}, nil
}
