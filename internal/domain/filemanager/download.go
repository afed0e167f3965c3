package filemanager

import (
	"context"

	"github.com/GriffinCanCode/filemanager-connector/internal/domain/policy"
	"github.com/GriffinCanCode/filemanager-connector/internal/shared/access"
)

// CanDownload returns the absolute path to serve, or "" when downloading
// is disabled, the path is outside the root, or it is not readable. The
// caller decides between streaming a file and zipping a directory.
func (a *Adapter) CanDownload(ctx context.Context, file string) string {
	if !a.policy.IsActionAllowed(policy.ActionDownload) {
		return ""
	}

	abs, ferr := a.resolve(file)
	if ferr != nil {
		return ""
	}

	if !a.access.CanAccess(abs, access.Read) {
		return ""
	}
	return abs
}

// ErrDownloadRefused is reported when CanDownload returned "".
func ErrDownloadRefused() *Error {
	return NewError(KindPermissionDenied, keyNotAllowed)
}
