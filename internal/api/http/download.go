package http

import (
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/GriffinCanCode/filemanager-connector/internal/domain/filemanager"
	"github.com/GriffinCanCode/filemanager-connector/internal/providers/archive"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Download kinds used as the metrics label.
const (
	downloadFile   = "file"
	downloadFolder = "folder"
)

func (h *Handlers) download(c *gin.Context) error {
	virtual := param(c, "path")

	abs := h.adapter.CanDownload(c.Request.Context(), virtual)
	if abs == "" {
		return h.refuseDownload(c)
	}

	info, err := os.Stat(abs)
	if err != nil {
		h.logger.Debug("download target missing", zap.String("path", abs), zap.Error(err))
		return h.refuseDownload(c)
	}

	if info.IsDir() {
		return h.downloadFolder(c, virtual, abs)
	}

	if mt, err := mimetype.DetectFile(abs); err == nil {
		c.Header("Content-Type", mt.String())
	}
	c.FileAttachment(abs, filepath.Base(abs))
	if h.metrics != nil {
		h.metrics.RecordDownload(downloadFile)
	}
	return nil
}

// downloadFolder streams dir as <name>.zip. Excluded entries are left out.
func (h *Handlers) downloadFolder(c *gin.Context, virtual, abs string) error {
	name := filepath.Base(abs)
	policy := h.adapter.Policy()

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", "attachment; filename="+name+".zip")
	c.Status(http.StatusOK)

	stats, err := archive.WriteZip(c.Request.Context(), c.Writer, abs, archive.Options{
		Prefix: name,
		Skip: func(rel string, isDir bool) bool {
			return policy.IsExcluded(path.Join(virtual, rel), isDir)
		},
	})
	if err != nil {
		// Headers are gone; the client sees a truncated archive.
		h.logger.Error("zip folder", zap.String("path", abs), zap.Error(err))
		return err
	}

	h.logger.Debug("zipped folder",
		zap.String("path", abs),
		zap.Int("files", stats.Files),
		zap.Int64("bytes", stats.TotalSize),
	)
	if h.metrics != nil {
		h.metrics.RecordDownload(downloadFolder)
	}
	return nil
}

func (h *Handlers) refuseDownload(c *gin.Context) error {
	err := filemanager.ErrDownloadRefused()
	h.textarea(c, h.adapter.Status(err))
	return err
}
