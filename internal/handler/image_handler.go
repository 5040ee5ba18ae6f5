package handler

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/it-dept/dept-cms-api/internal/service"
	appErrors "github.com/it-dept/dept-cms-api/pkg/errors"
	"github.com/it-dept/dept-cms-api/pkg/response"
	"github.com/it-dept/dept-cms-api/pkg/storage"
)

// ImageHandler serves uploaded images from local storage.
type ImageHandler struct {
	uploads *service.UploadService
}

// NewImageHandler constructs an image handler.
func NewImageHandler(uploads *service.UploadService) *ImageHandler {
	return &ImageHandler{uploads: uploads}
}

// Serve godoc
// @Summary Serve a stored image
// @Tags Images
// @Produce image/jpeg
// @Produce image/png
// @Param path path string true "Relative image path"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /images/{path} [get]
func (h *ImageHandler) Serve(c *gin.Context) {
	relPath := strings.TrimPrefix(c.Param("path"), "/")
	if !storage.SafeRelPath(relPath) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid file path"))
		return
	}

	file, info, err := h.uploads.Open(relPath)
	if err != nil {
		if os.IsNotExist(err) || errors.Is(err, storage.ErrUnsafePath) {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "image not found"))
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open image"))
		return
	}
	defer file.Close() //nolint:errcheck

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.Header("Last-Modified", info.ModTime.UTC().Format(http.TimeFormat))
	c.Header("ETag", fmt.Sprintf(`"%x-%x"`, info.ModTime.UnixNano(), info.Size))

	c.DataFromReader(http.StatusOK, info.Size, info.ContentType, file, nil)
}
