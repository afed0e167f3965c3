package filemanager

// Status is the Error/Code pair every response carries.
type Status struct {
	Error string `json:"Error"`
	Code  int    `json:"Code"`
}

// Response codes.
const (
	CodeOK    = 0
	CodeError = -1
)

// Descriptor describes one file or directory.
type Descriptor struct {
	Path       string     `json:"Path"`
	Filename   string     `json:"Filename"`
	FileType   string     `json:"File Type"`
	Protected  int        `json:"Protected"`
	Preview    string     `json:"Preview"`
	Properties Properties `json:"Properties"`
	Error      string     `json:"Error"`
	Code       int        `json:"Code"`
}

// IsDir reports whether the descriptor is for a directory.
func (d Descriptor) IsDir() bool {
	return d.FileType == dirType
}

// Properties holds stat details. Size is only set for regular files.
type Properties struct {
	Size         *int64 `json:"Size,omitempty"`
	DateCreated  string `json:"Date Created,omitempty"`
	DateModified string `json:"Date Modified,omitempty"`
}

// Listing maps virtual paths to descriptors.
type Listing map[string]Descriptor

// EditResult carries file content for the editor.
type EditResult struct {
	Status
	Path    string `json:"Path"`
	Content string `json:"Content"`
}

// PathResult is returned by save and delete.
type PathResult struct {
	Status
	Path string `json:"Path"`
}

// RenameResult is returned by rename and move.
type RenameResult struct {
	Status
	OldPath string `json:"Old Path"`
	OldName string `json:"Old Name"`
	NewPath string `json:"New Path"`
	NewName string `json:"New Name"`
}

// UploadResult is returned by add and replace.
type UploadResult struct {
	Status
	Path string `json:"Path"`
	Name string `json:"Name"`
}

// FolderResult is returned by addfolder.
type FolderResult struct {
	Status
	Parent string `json:"Parent"`
	Name   string `json:"Name"`
}

// Upload is a file staged by the upload collaborator.
type Upload struct {
	Name     string
	TempPath string
	Size     int64
}

const dirType = "dir"
