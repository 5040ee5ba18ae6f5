package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/it-dept/dept-cms-api/internal/service"
	appErrors "github.com/it-dept/dept-cms-api/pkg/errors"
	"github.com/it-dept/dept-cms-api/pkg/response"
)

// UploadHandler accepts multipart image uploads.
type UploadHandler struct {
	service *service.UploadService
}

// NewUploadHandler constructs an upload handler.
func NewUploadHandler(svc *service.UploadService) *UploadHandler {
	return &UploadHandler{service: svc}
}

// Upload godoc
// @Summary Upload a blog image
// @Description Accepts only image/* files up to the configured size limit
// @Tags Upload
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image file"
// @Param activityBlogId formData int false "Blog to attach the image to"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "no file provided"))
		return
	}

	var activityBlogID int64
	if raw := c.PostForm("activityBlogId"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid activityBlogId"))
			return
		}
		activityBlogID = parsed
	}

	result, err := h.service.Save(c.Request.Context(), header, activityBlogID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}
