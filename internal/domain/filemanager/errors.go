package filemanager

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation failed.
type Kind int

const (
	// KindPermissionDenied means the action is not in the allow-list.
	KindPermissionDenied Kind = iota + 1
	// KindAccessDenied means the mode bits refuse the process.
	KindAccessDenied
	KindNotFound
	KindCollision
	// KindPolicy covers disallowed extensions, oversize uploads and
	// extension changes on replace.
	KindPolicy
	KindRootProtected
	KindOutsideRoot
	KindIO
	KindInvalidInput
)

var kindNames = map[Kind]string{
	KindPermissionDenied: "permission_denied",
	KindAccessDenied:     "access_denied",
	KindNotFound:         "not_found",
	KindCollision:        "collision",
	KindPolicy:           "policy",
	KindRootProtected:    "root_protected",
	KindOutsideRoot:      "outside_root",
	KindIO:               "io",
	KindInvalidInput:     "invalid_input",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Message keys. Keys without a translation render as themselves.
const (
	keyNoWay              = "No way."
	keyContentMissing     = "File content missing."
	keyFileNotExist       = "File does not exist."
	keyDirNotExist        = "DIRECTORY_NOT_EXIST"
	keyNotAllowedSystem   = "NOT_ALLOWED_SYSTEM"
	keyUnableToOpenDir    = "UNABLE_TO_OPEN_DIRECTORY"
	keyErrorOpeningFile   = "ERROR_OPENING_FILE"
	keyErrorWritingPerm   = "ERROR_WRITING_PERM"
	keyErrorSavingFile    = "ERROR_SAVING_FILE"
	keyNotAllowed         = "NOT_ALLOWED"
	keyInvalidFileType    = "INVALID_FILE_TYPE"
	keyFileExists         = "FILE_ALREADY_EXISTS"
	keyDirExists          = "DIRECTORY_ALREADY_EXISTS"
	keyErrorRenamingFile  = "ERROR_RENAMING_FILE"
	keyErrorRenamingDir   = "ERROR_RENAMING_DIRECTORY"
	keyUnableToCreateDir  = "UNABLE_TO_CREATE_DIRECTORY"
	keyUploadTooLarge     = "UPLOAD_FILES_SMALLER_THAN"
	keyErrorReplacingFile = "ERROR_REPLACING_FILE"
	keyModeError          = "MODE_ERROR"
	keyMegabytes          = "mb"
)

// Error is an operation failure. Key and Params are rendered through the
// locale catalog only when the failure is reported to the client.
type Error struct {
	Kind   Kind
	Key    string
	Params []interface{}
	Err    error
}

// NewError builds an Error without an underlying cause.
func NewError(kind Kind, key string, params ...interface{}) *Error {
	return &Error{Kind: kind, Key: key, Params: params}
}

func wrapError(kind Kind, err error, key string, params ...interface{}) *Error {
	return &Error{Kind: kind, Key: key, Params: params, Err: err}
}

func (e *Error) Error() string {
	msg := e.Key
	if len(e.Params) > 0 {
		msg = fmt.Sprintf("%s %v", e.Key, e.Params)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or KindIO for foreign errors.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindIO
}

// ErrModeNotSupported is returned for a request mode outside the known set.
func ErrModeNotSupported() *Error {
	return NewError(KindInvalidInput, keyModeError)
}

// sizeLimit is a megabyte limit rendered with the localized unit suffix.
type sizeLimit float64

// ErrUploadMissing is returned when an upload request carries no file.
func ErrUploadMissing() *Error {
	return NewError(KindInvalidInput, keyContentMissing)
}
