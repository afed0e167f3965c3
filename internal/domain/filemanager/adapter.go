package filemanager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/GriffinCanCode/filemanager-connector/internal/domain/locale"
	"github.com/GriffinCanCode/filemanager-connector/internal/domain/policy"
	"github.com/GriffinCanCode/filemanager-connector/internal/infrastructure/config"
	"github.com/GriffinCanCode/filemanager-connector/internal/infrastructure/logging"
	"github.com/GriffinCanCode/filemanager-connector/internal/shared/access"
	"github.com/GriffinCanCode/filemanager-connector/internal/shared/paths"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// DefaultListConcurrency bounds the stat fan-out of a folder listing.
const DefaultListConcurrency = 16

// Options carries the collaborators of an Adapter. Zero values select the
// process defaults.
type Options struct {
	Fs               afero.Fs
	Access           *access.Checker
	Catalog          *locale.Catalog
	Logger           *logging.Logger
	ListConcurrency  int
	DisablePathLocks bool
}

// Adapter performs connector operations under a root directory.
type Adapter struct {
	fs       afero.Fs
	resolver *paths.Resolver
	access   *access.Checker
	policy   *policy.Engine
	catalog  *locale.Catalog
	icons    *iconSet
	logger   *logging.Logger
	locks    *keyedMutex

	dateFormat      string
	uploadLimitMB   float64
	overwrite       bool
	listConcurrency int
}

// New builds an adapter from the connector configuration.
func New(cfg *config.Connector, opts Options) (*Adapter, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Access == nil {
		opts.Access = access.ForProcess(opts.Fs)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.ListConcurrency <= 0 {
		opts.ListConcurrency = DefaultListConcurrency
	}

	resolver, err := paths.NewResolver(cfg.RootDir())
	if err != nil {
		return nil, fmt.Errorf("failed to set file root: %w", err)
	}

	engine, err := policy.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build policy: %w", err)
	}

	catalog := opts.Catalog
	if catalog == nil {
		catalog = loadCatalog(cfg, opts.Logger)
	}

	a := &Adapter{
		fs:              opts.Fs,
		resolver:        resolver,
		access:          opts.Access,
		policy:          engine,
		catalog:         catalog,
		icons:           loadIcons(opts.Fs, cfg, opts.Logger),
		logger:          opts.Logger.Named("filemanager"),
		dateFormat:      cfg.Options.DateFormat,
		uploadLimitMB:   cfg.Upload.FileSizeLimit,
		overwrite:       cfg.Upload.Overwrite,
		listConcurrency: opts.ListConcurrency,
	}
	if !opts.DisablePathLocks {
		a.locks = newKeyedMutex()
	}

	a.logger.Debug("filemanager root set", zap.String("root", resolver.Root()))
	return a, nil
}

func loadCatalog(cfg *config.Connector, logger *logging.Logger) *locale.Catalog {
	culture := cfg.Options.Culture
	if culture == "" {
		culture = "en"
	}

	catalog, err := locale.Load(culture, cfg.LanguageFile())
	if err != nil {
		logger.Warn("using built-in English messages",
			zap.String("culture", culture),
			zap.Error(err))
		return locale.English()
	}
	return catalog
}

// Root returns the absolute root directory.
func (a *Adapter) Root() string {
	return a.resolver.Root()
}

// Policy returns the policy engine the adapter enforces.
func (a *Adapter) Policy() *policy.Engine {
	return a.policy
}

// UploadLimit returns the upload size limit in bytes.
func (a *Adapter) UploadLimit() int64 {
	return int64(a.uploadLimitMB * 1024 * 1024)
}

// ErrUploadTooLarge is the failure reported for an oversize upload.
func (a *Adapter) ErrUploadTooLarge() *Error {
	return NewError(KindPolicy, keyUploadTooLarge, sizeLimit(a.uploadLimitMB))
}

// Status renders err into the record sent to the client and logs it. A nil
// err renders success.
func (a *Adapter) Status(err error) Status {
	if err == nil {
		return Status{Code: CodeOK}
	}

	var fe *Error
	if !errors.As(err, &fe) {
		fe = wrapError(KindIO, err, err.Error())
	}

	msg := a.catalog.Format(fe.Key, a.renderParams(fe.Params)...)
	fields := []zap.Field{zap.String("message", msg), zap.Stringer("kind", fe.Kind)}
	if fe.Err != nil {
		fields = append(fields, zap.NamedError("cause", fe.Err))
	}
	a.logger.Error("sending error", fields...)

	return Status{Error: msg, Code: CodeError}
}

func (a *Adapter) renderParams(params []interface{}) []interface{} {
	if len(params) == 0 {
		return nil
	}
	out := make([]interface{}, len(params))
	for i, p := range params {
		if limit, ok := p.(sizeLimit); ok {
			out[i] = strconv.FormatFloat(float64(limit), 'f', -1, 64) + a.catalog.Lookup(keyMegabytes)
			continue
		}
		out[i] = p
	}
	return out
}

// resolve maps a virtual path into the root, rejecting escapes.
func (a *Adapter) resolve(virtual string) (string, *Error) {
	abs, err := a.resolver.Resolve(virtual)
	if err != nil {
		return "", wrapError(KindOutsideRoot, err, keyNotAllowed)
	}
	return abs, nil
}

func (a *Adapter) allowed(action policy.Action) *Error {
	if !a.policy.IsActionAllowed(action) {
		return NewError(KindPermissionDenied, keyNoWay)
	}
	return nil
}

func (a *Adapter) lock(keys ...string) func() {
	if a.locks == nil {
		return func() {}
	}
	return a.locks.Lock(keys...)
}

func (a *Adapter) exists(abs string) (os.FileInfo, bool) {
	info, err := a.fs.Stat(abs)
	if err != nil {
		return nil, false
	}
	return info, true
}

func canceled(ctx context.Context) *Error {
	if err := ctx.Err(); err != nil {
		return wrapError(KindIO, err, keyNotAllowedSystem)
	}
	return nil
}
