package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/it-dept/dept-cms-api/internal/service"
	appErrors "github.com/it-dept/dept-cms-api/pkg/errors"
	"github.com/it-dept/dept-cms-api/pkg/export"
	"github.com/it-dept/dept-cms-api/pkg/response"
)

// SubjectHandler handles subject endpoints for both course tracks.
type SubjectHandler struct {
	service     *service.SubjectService
	pdfFontPath string
}

// NewSubjectHandler constructs a subject handler. pdfFontPath names a
// Thai-capable TTF for PDF exports; empty uses the built-in core font.
func NewSubjectHandler(svc *service.SubjectService, pdfFontPath string) *SubjectHandler {
	return &SubjectHandler{service: svc, pdfFontPath: pdfFontPath}
}

// List godoc
// @Summary List subjects of a course track
// @Tags Subjects
// @Produce json
// @Param type query string false "Course type (bachelor|diploma)"
// @Success 200 {object} response.Envelope
// @Router /subjects [get]
func (h *SubjectHandler) List(c *gin.Context) {
	subjects, err := h.service.ListPublic(c.Request.Context(), courseTypeFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// Create godoc
// @Summary Create subject
// @Tags Subjects
// @Accept json
// @Produce json
// @Param type query string false "Course type (bachelor|diploma)"
// @Param payload body service.CreateSubjectRequest true "Subject payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /subjects [post]
func (h *SubjectHandler) Create(c *gin.Context) {
	var req service.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	subject, err := h.service.Create(c.Request.Context(), courseTypeFrom(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, subject)
}

// Update godoc
// @Summary Update subject
// @Tags Subjects
// @Accept json
// @Produce json
// @Param id path int true "Subject ID"
// @Param payload body service.UpdateSubjectRequest true "Subject payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /subjects/{id} [put]
func (h *SubjectHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	subject, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subject, nil)
}

// Delete godoc
// @Summary Delete subject
// @Tags Subjects
// @Produce json
// @Param id path int true "Subject ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /subjects/{id} [delete]
func (h *SubjectHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export a track's curriculum table
// @Tags Subjects
// @Produce text/csv
// @Produce application/pdf
// @Param type query string false "Course type (bachelor|diploma)"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /subjects/export [get]
func (h *SubjectHandler) Export(c *gin.Context) {
	courseType := courseTypeFrom(c)
	dataset, err := h.service.ExportDataset(c.Request.Context(), courseType)
	if err != nil {
		response.Error(c, err)
		return
	}

	switch c.DefaultQuery("format", "csv") {
	case "csv":
		body, err := export.RenderCSV(dataset)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export"))
			return
		}
		c.Header("Content-Disposition", `attachment; filename="subjects-`+courseType+`.csv"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", body)
	case "pdf":
		body, err := export.RenderPDF(dataset, "Curriculum ("+courseType+")", h.pdfFontPath)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export"))
			return
		}
		c.Header("Content-Disposition", `attachment; filename="subjects-`+courseType+`.pdf"`)
		c.Data(http.StatusOK, "application/pdf", body)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown export format"))
	}
}
