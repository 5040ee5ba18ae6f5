package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/it-dept/dept-cms-api/internal/service"
	appErrors "github.com/it-dept/dept-cms-api/pkg/errors"
	"github.com/it-dept/dept-cms-api/pkg/response"
)

// BlogHandler handles admin activity blog endpoints.
type BlogHandler struct {
	service *service.BlogService
}

// NewBlogHandler constructs a blog handler.
func NewBlogHandler(svc *service.BlogService) *BlogHandler {
	return &BlogHandler{service: svc}
}

// List godoc
// @Summary List activity blogs
// @Tags ActivityBlogs
// @Produce json
// @Param activityId query int false "Filter by activity"
// @Success 200 {object} response.Envelope
// @Router /activity-blogs [get]
func (h *BlogHandler) List(c *gin.Context) {
	var activityID int64
	if raw := c.Query("activityId"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid activityId"))
			return
		}
		activityID = parsed
	}

	blogs, err := h.service.List(c.Request.Context(), activityID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, blogs, nil)
}

// Get godoc
// @Summary Get activity blog by id
// @Tags ActivityBlogs
// @Produce json
// @Param id path int true "Blog ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /activity-blogs/{id} [get]
func (h *BlogHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	blog, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, blog, nil)
}

// Create godoc
// @Summary Create activity blog
// @Description Each activity may hold at most one blog
// @Tags ActivityBlogs
// @Accept json
// @Produce json
// @Param payload body service.CreateBlogRequest true "Blog payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /activity-blogs [post]
func (h *BlogHandler) Create(c *gin.Context) {
	var req service.CreateBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	blog, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, blog)
}

// Update godoc
// @Summary Patch activity blog fields
// @Description Title, content and published flag are each optional
// @Tags ActivityBlogs
// @Accept json
// @Produce json
// @Param id path int true "Blog ID"
// @Param payload body service.UpdateBlogRequest true "Patch payload"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /activity-blogs/{id} [put]
func (h *BlogHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	blog, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, blog, nil)
}

// Delete godoc
// @Summary Delete activity blog and its image rows
// @Tags ActivityBlogs
// @Produce json
// @Param id path int true "Blog ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /activity-blogs/{id} [delete]
func (h *BlogHandler) Delete(c *gin.Context) {
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
