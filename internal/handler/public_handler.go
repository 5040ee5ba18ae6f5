package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/it-dept/dept-cms-api/internal/service"
	"github.com/it-dept/dept-cms-api/pkg/response"
)

// PublicHandler serves the unauthenticated site projections.
type PublicHandler struct {
	faculty *service.FacultyService
	blogs   *service.BlogService
}

// NewPublicHandler constructs a public handler.
func NewPublicHandler(faculty *service.FacultyService, blogs *service.BlogService) *PublicHandler {
	return &PublicHandler{faculty: faculty, blogs: blogs}
}

// Faculty godoc
// @Summary List faculty for the public site
// @Tags Public
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /public/faculty [get]
func (h *PublicHandler) Faculty(c *gin.Context) {
	faculty, err := h.faculty.ListPublic(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, faculty, nil)
}

// Blogs godoc
// @Summary List published activity blogs
// @Tags Public
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /public/activity-blogs [get]
func (h *PublicHandler) Blogs(c *gin.Context) {
	blogs, err := h.blogs.ListPublished(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, blogs, nil)
}

// ActivityBlog godoc
// @Summary Get the first published blog of an activity
// @Tags Public
// @Produce json
// @Param id path int true "Activity ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /public/activity/{id} [get]
func (h *PublicHandler) ActivityBlog(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	blog, err := h.blogs.GetPublicByActivity(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, blog, nil)
}

// Carousel godoc
// @Summary Carousel images extracted from recent blog content
// @Description Always responds 200; failures degrade to an empty list
// @Tags Public
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /activity-images [get]
func (h *PublicHandler) Carousel(c *gin.Context) {
	images := h.blogs.Carousel(c.Request.Context())
	response.JSON(c, http.StatusOK, images, nil)
}
