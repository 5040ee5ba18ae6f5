package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/it-dept/dept-cms-api/internal/service"
	appErrors "github.com/it-dept/dept-cms-api/pkg/errors"
	"github.com/it-dept/dept-cms-api/pkg/response"
)

// SubjectDetailHandler handles the per-subject detail records.
type SubjectDetailHandler struct {
	service *service.SubjectDetailService
}

// NewSubjectDetailHandler constructs a subject detail handler.
func NewSubjectDetailHandler(svc *service.SubjectDetailService) *SubjectDetailHandler {
	return &SubjectDetailHandler{service: svc}
}

// List godoc
// @Summary List subject details of a course track
// @Tags SubjectDetails
// @Produce json
// @Param type query string false "Course type (bachelor|diploma)"
// @Success 200 {object} response.Envelope
// @Router /subject-details [get]
func (h *SubjectDetailHandler) List(c *gin.Context) {
	details, err := h.service.List(c.Request.Context(), courseTypeFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, details, nil)
}

// Create godoc
// @Summary Attach a detail record to a subject
// @Tags SubjectDetails
// @Accept json
// @Produce json
// @Param payload body service.CreateSubjectDetailRequest true "Detail payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /subject-details [post]
func (h *SubjectDetailHandler) Create(c *gin.Context) {
	var req service.CreateSubjectDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	detail, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, detail)
}

// Update godoc
// @Summary Overwrite a detail record
// @Tags SubjectDetails
// @Accept json
// @Produce json
// @Param id path int true "Detail ID"
// @Param payload body service.UpdateSubjectDetailRequest true "Detail payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /subject-details/{id} [put]
func (h *SubjectDetailHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateSubjectDetailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	detail, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Delete godoc
// @Summary Delete a detail record
// @Tags SubjectDetails
// @Produce json
// @Param id path int true "Detail ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /subject-details/{id} [delete]
func (h *SubjectDetailHandler) Delete(c *gin.Context) {
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
