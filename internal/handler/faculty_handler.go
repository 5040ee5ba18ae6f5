package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/it-dept/dept-cms-api/internal/service"
	appErrors "github.com/it-dept/dept-cms-api/pkg/errors"
	"github.com/it-dept/dept-cms-api/pkg/response"
)

// FacultyHandler handles faculty member endpoints.
type FacultyHandler struct {
	service *service.FacultyService
}

// NewFacultyHandler constructs a faculty handler.
func NewFacultyHandler(svc *service.FacultyService) *FacultyHandler {
	return &FacultyHandler{service: svc}
}

// List godoc
// @Summary List faculty members
// @Tags Faculty
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /faculty [get]
func (h *FacultyHandler) List(c *gin.Context) {
	faculty, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faculty, nil)
}

// Create godoc
// @Summary Create faculty member
// @Tags Faculty
// @Accept json
// @Produce json
// @Param payload body service.FacultyRequest true "Faculty payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /faculty [post]
func (h *FacultyHandler) Create(c *gin.Context) {
	var req service.FacultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	member, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, member)
}

// Update godoc
// @Summary Update faculty member
// @Tags Faculty
// @Accept json
// @Produce json
// @Param id path int true "Faculty ID"
// @Param payload body service.FacultyRequest true "Faculty payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /faculty/{id} [put]
func (h *FacultyHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.FacultyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	member, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, member, nil)
}

// Delete godoc
// @Summary Delete faculty member
// @Tags Faculty
// @Produce json
// @Param id path int true "Faculty ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /faculty/{id} [delete]
func (h *FacultyHandler) Delete(c *gin.Context) {
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
