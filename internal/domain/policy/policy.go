package policy

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/GriffinCanCode/filemanager-connector/internal/infrastructure/config"
	"github.com/bmatcuk/doublestar/v4"
)

// Action is a capability name as written in the connector configuration.
type Action string

const (
	ActionSelect   Action = "select"
	ActionDownload Action = "download"
	ActionRename   Action = "rename"
	ActionMove     Action = "move"
	ActionDelete   Action = "delete"
	ActionReplace  Action = "replace"
	ActionEdit     Action = "edit"
)

// Upload policy modes.
const (
	DisallowAll = "DISALLOW_ALL"
	AllowAll    = "ALLOW_ALL"
)

// Engine evaluates action, extension and exclude rules.
type Engine struct {
	actions               map[Action]bool
	allowNoExtension      bool
	allowChangeExtensions bool
	uploadPolicy          string
	restrictions          map[string]bool
	files                 *excludeSet
	dirs                  *excludeSet
}

// New builds an engine from the connector configuration.
func New(cfg *config.Connector) (*Engine, error) {
	e := &Engine{
		actions:               make(map[Action]bool, len(cfg.Options.Capabilities)+1),
		allowNoExtension:      cfg.Security.AllowNoExtension,
		allowChangeExtensions: cfg.Security.AllowChangeExtensions,
		uploadPolicy:          cfg.Security.UploadPolicy,
		restrictions:          make(map[string]bool, len(cfg.Security.UploadRestrictions)),
	}

	for _, c := range cfg.Options.Capabilities {
		e.actions[Action(c)] = true
	}
	if cfg.Edit.Enabled {
		e.actions[ActionEdit] = true
	}

	for _, ext := range cfg.Security.UploadRestrictions {
		e.restrictions[strings.ToLower(ext)] = true
	}

	var err error
	if e.files, err = newExcludeSet(cfg.Exclude.UnallowedFiles, cfg.Exclude.UnallowedFilesRegexp); err != nil {
		return nil, fmt.Errorf("unallowed_files: %w", err)
	}
	if e.dirs, err = newExcludeSet(cfg.Exclude.UnallowedDirs, cfg.Exclude.UnallowedDirsRegexp); err != nil {
		return nil, fmt.Errorf("unallowed_dirs: %w", err)
	}

	return e, nil
}

// IsActionAllowed reports whether action is in the allow-list.
func (e *Engine) IsActionAllowed(action Action) bool {
	return e.actions[action]
}

// AllowedActions returns the enabled actions.
func (e *Engine) AllowedActions() []Action {
	out := make([]Action, 0, len(e.actions))
	for a := range e.actions {
		out = append(out, a)
	}
	return out
}

// ChangeExtensionsChecked reports whether renames must pass the extension
// policy.
func (e *Engine) ChangeExtensionsChecked() bool {
	return e.allowChangeExtensions
}

// IsExtensionAllowed applies the upload policy to a file name.
func (e *Engine) IsExtensionAllowed(name string) bool {
	ext := Extension(name)
	if ext == "" {
		return e.allowNoExtension
	}

	listed := e.restrictions[strings.ToLower(ext)]
	switch e.uploadPolicy {
	case DisallowAll:
		return listed
	case AllowAll:
		return !listed
	default:
		return true
	}
}

// IsExcluded reports whether a listing entry must be hidden. virtual is the
// entry's path inside the root; directories may carry a trailing slash.
func (e *Engine) IsExcluded(virtual string, isDir bool) bool {
	if isDir {
		return e.dirs.match(virtual)
	}
	return e.files.match(virtual)
}

// Extension returns the extension of name without the dot. Leading-dot
// names such as ".htaccess" have none.
func Extension(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	i := strings.LastIndexByte(base, '.')
	if i <= 0 {
		return ""
	}
	return base[i+1:]
}

type excludeSet struct {
	exact    map[string]bool
	patterns []string
	re       *regexp.Regexp
}

func newExcludeSet(entries []string, expr string) (*excludeSet, error) {
	s := &excludeSet{exact: make(map[string]bool, len(entries))}

	for _, entry := range entries {
		entry = strings.Trim(entry, "/")
		if entry == "" {
			continue
		}
		if strings.ContainsAny(entry, "*?[{") {
			if !doublestar.ValidatePattern(entry) {
				return nil, fmt.Errorf("invalid pattern %q", entry)
			}
			s.patterns = append(s.patterns, entry)
			continue
		}
		s.exact[entry] = true
	}

	if expr != "" {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid regexp %q: %w", expr, err)
		}
		s.re = re
	}

	return s, nil
}

func (s *excludeSet) match(virtual string) bool {
	clean := strings.Trim(virtual, "/")
	if clean == "" {
		return false
	}
	base := path.Base(clean)

	if s.exact[clean] || s.exact[base] {
		return true
	}

	for _, p := range s.patterns {
		if ok, _ := doublestar.Match(p, clean); ok {
			return true
		}
		if ok, _ := doublestar.Match(p, base); ok {
			return true
		}
	}

	return s.re != nil && s.re.MatchString(base)
}
