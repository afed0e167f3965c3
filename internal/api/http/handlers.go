package http

import (
	"errors"
	"mime"
	"net/http"
	"os"
	"time"

	"github.com/GriffinCanCode/filemanager-connector/internal/domain/filemanager"
	"github.com/GriffinCanCode/filemanager-connector/internal/infrastructure/logging"
	"github.com/GriffinCanCode/filemanager-connector/internal/infrastructure/monitoring"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// multipartMemory is held in memory before form files spill to disk.
const multipartMemory = 8 << 20

// formOverhead is allowed on top of the upload limit for the non-file parts
// of a multipart body.
const formOverhead = 1 << 20

// Handlers serves the file-manager connector.
type Handlers struct {
	adapter   *filemanager.Adapter
	metrics   *monitoring.Metrics
	logger    *logging.Logger
	uploadDir string
	startTime time.Time
}

// NewHandlers creates the connector handlers. Uploads are staged in
// uploadDir, or the system temp directory when it is empty.
func NewHandlers(adapter *filemanager.Adapter, metrics *monitoring.Metrics, logger *logging.Logger, uploadDir string) *Handlers {
	if uploadDir == "" {
		uploadDir = os.TempDir()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{
		adapter:   adapter,
		metrics:   metrics,
		logger:    logger.Named("connector"),
		uploadDir: uploadDir,
		startTime: time.Now(),
	}
}

// Connector dispatches a request on its mode parameter.
func (h *Handlers) Connector(c *gin.Context) {
	if err := h.parseForm(c); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.recordFailure(c.Query("mode"), h.adapter.ErrUploadTooLarge())
			h.textarea(c, h.adapter.Status(h.adapter.ErrUploadTooLarge()))
			return
		}
		h.logger.Warn("malformed request body", zap.Error(err))
	}

	raw := param(c, "mode")
	mode, ok := filemanager.ParseMode(raw)
	if !ok {
		h.logger.Debug("unsupported mode", zap.String("mode", raw))
		h.json(c, h.adapter.Status(filemanager.ErrModeNotSupported()))
		return
	}

	timer := monitoring.NewTimer(h.metrics, mode.String())
	err := h.dispatch(c, mode)
	if err != nil {
		h.recordFailure(mode.String(), err)
		timer.Stop(monitoring.StatusError)
		return
	}
	timer.Stop(monitoring.StatusSuccess)
}

// dispatch runs one mode and writes its response. The returned error has
// already been reported to the client.
func (h *Handlers) dispatch(c *gin.Context, mode filemanager.Mode) error {
	ctx := c.Request.Context()

	switch mode {
	case filemanager.ModeGetInfo:
		info := h.adapter.Info(ctx, param(c, "path"))
		h.logger.Info("sending info for file", zap.String("path", info.Path))
		h.json(c, info)
		return nil

	case filemanager.ModeGetFolder:
		listing, err := h.adapter.List(ctx, param(c, "path"))
		if err != nil {
			h.json(c, h.adapter.Status(err))
			return err
		}
		h.json(c, listing)
		return nil

	case filemanager.ModeEditFile:
		res, err := h.adapter.Edit(ctx, param(c, "path"))
		if err != nil {
			h.json(c, h.adapter.Status(err))
			return err
		}
		h.json(c, res)
		return nil

	case filemanager.ModeSaveFile:
		var content *string
		if v, ok := optionalParam(c, "content"); ok {
			content = &v
		}
		res, err := h.adapter.Save(ctx, param(c, "path"), content)
		if err != nil {
			h.json(c, h.adapter.Status(err))
			return err
		}
		h.json(c, res)
		return nil

	case filemanager.ModeRename:
		res, err := h.adapter.Rename(ctx, param(c, "old"), param(c, "new"))
		if err != nil {
			h.json(c, h.adapter.Status(err))
			return err
		}
		h.json(c, res)
		return nil

	case filemanager.ModeMove:
		res, err := h.adapter.Move(ctx, param(c, "old"), param(c, "new"), param(c, "root"))
		if err != nil {
			h.json(c, h.adapter.Status(err))
			return err
		}
		h.json(c, res)
		return nil

	case filemanager.ModeDelete:
		res, err := h.adapter.Delete(ctx, param(c, "path"))
		if err != nil {
			h.json(c, h.adapter.Status(err))
			return err
		}
		h.json(c, res)
		return nil

	case filemanager.ModeAddFolder:
		res, err := h.adapter.AddFolder(ctx, param(c, "path"), param(c, "name"))
		if err != nil {
			h.json(c, h.adapter.Status(err))
			return err
		}
		h.json(c, res)
		return nil

	case filemanager.ModeAdd:
		return h.add(c)

	case filemanager.ModeReplace:
		return h.replace(c)

	case filemanager.ModeDownload:
		return h.download(c)
	}

	err := filemanager.ErrModeNotSupported()
	h.json(c, h.adapter.Status(err))
	return err
}

func (h *Handlers) recordFailure(mode string, err error) {
	if h.metrics == nil {
		return
	}
	if mode == "" {
		mode = "unknown"
	}
	h.metrics.RecordOperationError(mode, filemanager.KindOf(err).String())
}

// parseForm reads urlencoded and multipart bodies up front so that an
// oversize upload is detected before any parameter is looked at.
func (h *Handlers) parseForm(c *gin.Context) error {
	req := c.Request
	if req.Method != http.MethodPost {
		return nil
	}

	ct, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	if ct != "multipart/form-data" {
		return req.ParseForm()
	}

	req.Body = http.MaxBytesReader(c.Writer, req.Body, h.adapter.UploadLimit()+formOverhead)
	return req.ParseMultipartForm(multipartMemory)
}

// param reads a request parameter from the query string, then the form.
func param(c *gin.Context, key string) string {
	v, _ := optionalParam(c, key)
	return v
}

func optionalParam(c *gin.Context, key string) (string, bool) {
	if v, ok := c.GetQuery(key); ok {
		return v, true
	}
	return c.GetPostForm(key)
}

// Health reports liveness and a metrics snapshot.
func (h *Handlers) Health(c *gin.Context) {
	body := gin.H{
		"status":  "healthy",
		"service": "filemanager-connector",
		"uptime":  time.Since(h.startTime).String(),
		"root":    h.adapter.Root(),
	}
	if h.metrics != nil {
		body["metrics"] = h.metrics.Snapshot()
	}
	c.JSON(http.StatusOK, body)
}
