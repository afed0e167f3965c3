package http

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/GriffinCanCode/filemanager-connector/internal/domain/filemanager"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	addField     = "newfile"
	replaceField = "fileR"
)

func (h *Handlers) add(c *gin.Context) error {
	upload, cleanup, err := h.receive(c, addField)
	if err != nil {
		h.textarea(c, h.adapter.Status(err))
		return err
	}
	defer cleanup()

	res, err := h.adapter.Add(c.Request.Context(), param(c, "currentpath"), upload)
	if err != nil {
		h.textarea(c, h.adapter.Status(err))
		return err
	}
	if h.metrics != nil {
		h.metrics.RecordUpload(upload.Size)
	}
	h.textarea(c, res)
	return nil
}

func (h *Handlers) replace(c *gin.Context) error {
	upload, cleanup, err := h.receive(c, replaceField)
	if err != nil {
		h.textarea(c, h.adapter.Status(err))
		return err
	}
	defer cleanup()

	res, err := h.adapter.Replace(c.Request.Context(), param(c, "newfilepath"), upload)
	if err != nil {
		h.textarea(c, h.adapter.Status(err))
		return err
	}
	if h.metrics != nil {
		h.metrics.RecordUpload(upload.Size)
	}
	h.textarea(c, res)
	return nil
}

// receive stages the named multipart file in the upload directory. The
// returned cleanup removes the staged file if the adapter left it behind.
func (h *Handlers) receive(c *gin.Context, field string) (filemanager.Upload, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return filemanager.Upload{}, nil, filemanager.ErrUploadMissing()
	}

	// Oversize files never reach the upload directory.
	if fh.Size > h.adapter.UploadLimit() {
		return filemanager.Upload{}, nil, h.adapter.ErrUploadTooLarge()
	}

	tmp := filepath.Join(h.uploadDir, uuid.New().String())
	if err := c.SaveUploadedFile(fh, tmp); err != nil {
		h.logger.Error("stage upload", zap.String("file", fh.Filename), zap.Error(err))
		return filemanager.Upload{}, nil, err
	}

	cleanup := func() {
		if err := os.Remove(tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
			h.logger.Warn("remove staged upload", zap.String("path", tmp), zap.Error(err))
		}
	}

	return filemanager.Upload{Name: fh.Filename, TempPath: tmp, Size: fh.Size}, cleanup, nil
}
