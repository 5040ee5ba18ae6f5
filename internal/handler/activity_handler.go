package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/it-dept/dept-cms-api/internal/service"
	appErrors "github.com/it-dept/dept-cms-api/pkg/errors"
	"github.com/it-dept/dept-cms-api/pkg/response"
)

// ActivityHandler handles department activity endpoints.
type ActivityHandler struct {
	service *service.ActivityService
}

// NewActivityHandler constructs an activity handler.
func NewActivityHandler(svc *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: svc}
}

// List godoc
// @Summary List activities with blog references
// @Tags Activities
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /activities [get]
func (h *ActivityHandler) List(c *gin.Context) {
	activities, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activities, nil)
}

// Get godoc
// @Summary Get activity by id
// @Tags Activities
// @Produce json
// @Param id path int true "Activity ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /activities/{id} [get]
func (h *ActivityHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	activity, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activity, nil)
}

// Create godoc
// @Summary Create activity
// @Tags Activities
// @Accept json
// @Produce json
// @Param payload body service.ActivityRequest true "Activity payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /activities [post]
func (h *ActivityHandler) Create(c *gin.Context) {
	var req service.ActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	activity, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, activity)
}

// Update godoc
// @Summary Update activity title
// @Tags Activities
// @Accept json
// @Produce json
// @Param id path int true "Activity ID"
// @Param payload body service.ActivityRequest true "Activity payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /activities/{id} [put]
func (h *ActivityHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.ActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	activity, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, activity, nil)
}

// Delete godoc
// @Summary Delete activity and its blog content
// @Tags Activities
// @Produce json
// @Param id path int true "Activity ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /activities/{id} [delete]
func (h *ActivityHandler) Delete(c *gin.Context) {
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
