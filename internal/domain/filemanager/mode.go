package filemanager

// Mode is a connector request mode.
type Mode int

const (
	ModeGetInfo Mode = iota + 1
	ModeGetFolder
	ModeEditFile
	ModeSaveFile
	ModeRename
	ModeMove
	ModeDelete
	ModeAdd
	ModeReplace
	ModeAddFolder
	ModeDownload
)

var modeNames = [...]string{
	ModeGetInfo:   "getinfo",
	ModeGetFolder: "getfolder",
	ModeEditFile:  "editfile",
	ModeSaveFile:  "savefile",
	ModeRename:    "rename",
	ModeMove:      "move",
	ModeDelete:    "delete",
	ModeAdd:       "add",
	ModeReplace:   "replace",
	ModeAddFolder: "addfolder",
	ModeDownload:  "download",
}

// ParseMode maps the mode request parameter to a Mode.
func ParseMode(s string) (Mode, bool) {
	for m := ModeGetInfo; m <= ModeDownload; m++ {
		if modeNames[m] == s {
			return m, true
		}
	}
	return 0, false
}

func (m Mode) String() string {
	if m >= ModeGetInfo && m <= ModeDownload {
		return modeNames[m]
	}
	return "unknown"
}

// Upload reports whether the mode is submitted as a multipart upload and
// answered inside a textarea.
func (m Mode) Upload() bool {
	return m == ModeAdd || m == ModeReplace
}
