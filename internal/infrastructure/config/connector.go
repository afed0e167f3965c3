package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
)

// Connector is the file-manager configuration shared with the browser UI,
// extended with the connector-only section. It is loaded once at startup
// and never mutated afterwards.
type Connector struct {
	Options   Options        `json:"options" yaml:"options" toml:"options"`
	Security  Security       `json:"security" yaml:"security" toml:"security"`
	Upload    Upload         `json:"upload" yaml:"upload" toml:"upload"`
	Exclude   Exclude        `json:"exclude" yaml:"exclude" toml:"exclude"`
	Edit      Edit           `json:"edit" yaml:"edit" toml:"edit"`
	Icons     Icons          `json:"icons" yaml:"icons" toml:"icons"`
	Connector ConnectorPaths `json:"connector" yaml:"connector" toml:"connector"`
}

// Options holds the general UI options the connector honours.
type Options struct {
	Culture      string   `json:"culture" yaml:"culture" toml:"culture" validate:"omitempty,min=2,max=10"`
	FileRoot     RootPath `json:"fileRoot" yaml:"fileRoot" toml:"fileRoot"`
	ServerRoot   bool     `json:"serverRoot" yaml:"serverRoot" toml:"serverRoot"`
	DateFormat   string   `json:"dateFormat" yaml:"dateFormat" toml:"dateFormat"`
	Capabilities []string `json:"capabilities" yaml:"capabilities" toml:"capabilities" validate:"dive,oneof=select download rename move delete replace edit"`
}

// Security holds the upload extension policy.
type Security struct {
	AllowNoExtension      bool     `json:"allowNoExtension" yaml:"allowNoExtension" toml:"allowNoExtension"`
	AllowChangeExtensions bool     `json:"allowChangeExtensions" yaml:"allowChangeExtensions" toml:"allowChangeExtensions"`
	UploadPolicy          string   `json:"uploadPolicy" yaml:"uploadPolicy" toml:"uploadPolicy"`
	UploadRestrictions    []string `json:"uploadRestrictions" yaml:"uploadRestrictions" toml:"uploadRestrictions"`
}

// Upload holds upload limits. FileSizeLimit is in megabytes.
type Upload struct {
	Overwrite     bool    `json:"overwrite" yaml:"overwrite" toml:"overwrite"`
	FileSizeLimit float64 `json:"fileSizeLimit" yaml:"fileSizeLimit" toml:"fileSizeLimit" validate:"gt=0"`
}

// Exclude lists virtual paths hidden from folder listings. Plain entries
// may be exact paths or doublestar globs.
type Exclude struct {
	UnallowedFiles       []string `json:"unallowed_files" yaml:"unallowed_files" toml:"unallowed_files"`
	UnallowedDirs        []string `json:"unallowed_dirs" yaml:"unallowed_dirs" toml:"unallowed_dirs"`
	UnallowedFilesRegexp string   `json:"unallowed_files_REGEXP" yaml:"unallowed_files_REGEXP" toml:"unallowed_files_REGEXP"`
	UnallowedDirsRegexp  string   `json:"unallowed_dirs_REGEXP" yaml:"unallowed_dirs_REGEXP" toml:"unallowed_dirs_REGEXP"`
}

// Edit toggles the in-browser editor.
type Edit struct {
	Enabled bool `json:"enabled" yaml:"enabled" toml:"enabled"`
}

// Icons locates preview icons relative to the web root.
type Icons struct {
	Path      string `json:"path" yaml:"path" toml:"path"`
	Directory string `json:"directory" yaml:"directory" toml:"directory"`
	Default   string `json:"default" yaml:"default" toml:"default"`
}

// ConnectorPaths is the connector-only section: where the web root and the
// file-manager sources live, and where uploads are staged.
type ConnectorPaths struct {
	ServerRoot string `json:"serverRoot" yaml:"serverRoot" toml:"serverRoot"`
	FmSrcPath  string `json:"fmSrcPath" yaml:"fmSrcPath" toml:"fmSrcPath"`
	UploadDir  string `json:"uploadDir" yaml:"uploadDir" toml:"uploadDir"`
}

// RootPath is options.fileRoot. The UI config writes `false` to mean "use
// the userfiles folder next to the file-manager sources".
type RootPath string

// UnmarshalJSON accepts a string or the literal false.
func (p *RootPath) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch string(data) {
	case "false", "null":
		*p = ""
		return nil
	case "true":
		return fmt.Errorf("fileRoot must be a path or false")
	}
	var s string
	if err := sonic.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("fileRoot: %w", err)
	}
	*p = RootPath(s)
	return nil
}

// UnmarshalYAML accepts a string or false.
func (p *RootPath) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var v interface{}
	if err := unmarshal(&v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*p = ""
	case bool:
		if t {
			return fmt.Errorf("fileRoot must be a path or false")
		}
		*p = ""
	case string:
		*p = RootPath(t)
	default:
		return fmt.Errorf("fileRoot: unexpected %T", v)
	}
	return nil
}

// DefaultConnector returns the configuration shipped with the file manager.
func DefaultConnector() *Connector {
	return &Connector{
		Options: Options{
			Culture:      "en",
			DateFormat:   "d M Y H:i",
			Capabilities: []string{"select", "download", "rename", "move", "delete", "replace"},
		},
		Security: Security{
			AllowChangeExtensions: false,
			UploadPolicy:          "DISALLOW_ALL",
			UploadRestrictions: []string{
				"jpg", "jpeg", "gif", "png", "svg", "txt", "pdf", "odp", "ods", "odt", "rtf",
				"doc", "docx", "xls", "xlsx", "ppt", "pptx", "csv", "ogv", "mp4", "webm", "m4v",
				"ogg", "mp3", "wav",
			},
		},
		Upload: Upload{
			Overwrite:     false,
			FileSizeLimit: 16,
		},
		Exclude: Exclude{
			UnallowedFiles:       []string{".htaccess", "web.config"},
			UnallowedDirs:        []string{"_thumbs", ".CDN_ACCESS_LOGS", "cloudservers"},
			UnallowedFilesRegexp: `^\.`,
			UnallowedDirsRegexp:  `^\.`,
		},
		Edit: Edit{Enabled: true},
		Icons: Icons{
			Path:      "images/fileicons/",
			Directory: "_Open.png",
			Default:   "default.png",
		},
		Connector: ConnectorPaths{
			ServerRoot: "./public",
			FmSrcPath:  "/Filemanager",
		},
	}
}

// LoadConnector reads the connector configuration file. The format is
// chosen by extension; .js is treated as JSON because the UI config is a
// JSON document with a .js name.
func LoadConnector(path string) (*Connector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read connector config: %w", err)
	}

	cfg := DefaultConnector()
	if err := decodeConnector(filepath.Ext(path), data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse connector config %s: %w", path, err)
	}

	if err := ValidateConnector(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeConnector(ext string, data []byte, cfg *Connector) error {
	switch strings.ToLower(ext) {
	case ".json", ".js":
		return sonic.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".toml":
		return toml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("unsupported config format %q", ext)
	}
}

// RootDir returns the root jail directory derived from options.fileRoot.
func (c *Connector) RootDir() string {
	fileRoot := string(c.Options.FileRoot)
	switch {
	case fileRoot == "":
		return filepath.Join(c.Connector.ServerRoot, c.Connector.FmSrcPath, "userfiles")
	case c.Options.ServerRoot && !filepath.IsAbs(fileRoot):
		return filepath.Join(c.Connector.ServerRoot, fileRoot)
	default:
		return filepath.Clean(fileRoot)
	}
}

// SourceDir returns the directory holding the file-manager UI sources.
func (c *Connector) SourceDir() string {
	return filepath.Join(c.Connector.ServerRoot, c.Connector.FmSrcPath)
}

// LanguageFile returns the path of the locale table for the configured culture.
func (c *Connector) LanguageFile() string {
	culture := c.Options.Culture
	if culture == "" {
		culture = "en"
	}
	return filepath.Join(c.SourceDir(), "scripts", "languages", culture+".js")
}

// IconDir returns the directory scanned for per-extension preview icons.
func (c *Connector) IconDir() string {
	return filepath.Join(c.SourceDir(), "images", "fileicons")
}

// WithOverrides applies environment overrides on a copy of the config.
func (c *Connector) WithOverrides(env ConnectorConfig) *Connector {
	out := *c
	if env.FileRoot != "" {
		out.Options.FileRoot = RootPath(env.FileRoot)
		out.Options.ServerRoot = false
	}
	if env.UploadDir != "" {
		out.Connector.UploadDir = env.UploadDir
	}
	return &out
}
