package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/it-dept/dept-cms-api/internal/middleware"
	"github.com/it-dept/dept-cms-api/internal/models"
	"github.com/it-dept/dept-cms-api/internal/service"
)

// Handlers groups the route handlers for registration.
type Handlers struct {
	Auth           *AuthHandler
	Subjects       *SubjectHandler
	SubjectDetails *SubjectDetailHandler
	Faculty        *FacultyHandler
	Activities     *ActivityHandler
	Blogs          *BlogHandler
	Public         *PublicHandler
	Upload         *UploadHandler
	Images         *ImageHandler
	Stats          *StatsHandler
}

// Register wires the API routes onto the engine under the given prefix
// (empty means "/api"). Read endpoints are open; every mutating endpoint
// sits behind the JWT middleware.
func Register(r *gin.Engine, prefix string, h Handlers, auth *service.AuthService) {
	if prefix == "" {
		prefix = "/api"
	}
	api := r.Group(prefix)

	api.POST("/auth/login", h.Auth.Login)

	// Public reads.
	api.GET("/subjects", h.Subjects.List)
	api.GET("/subjects/export", h.Subjects.Export)
	api.GET("/subject-details", h.SubjectDetails.List)
	api.GET("/activities", h.Activities.List)
	api.GET("/activities/:id", h.Activities.Get)
	api.GET("/activity-images", h.Public.Carousel)
	api.GET("/public/faculty", h.Public.Faculty)
	api.GET("/public/activity-blogs", h.Public.Blogs)
	api.GET("/public/activity/:id", h.Public.ActivityBlog)
	api.GET("/images/*path", h.Images.Serve)
	api.GET("/stats", h.Stats.Get)

	// Diploma track aliases pin the course type regardless of query params.
	diploma := api.Group("/diploma-subjects", ForceCourseType(models.CourseTypeDiploma))
	{
		diploma.GET("", h.Subjects.List)
		diploma.GET("/export", h.Subjects.Export)

		protected := diploma.Group("", middleware.JWT(auth))
		protected.POST("", h.Subjects.Create)
		protected.PUT("/:id", h.Subjects.Update)
		protected.DELETE("/:id", h.Subjects.Delete)
	}

	diplomaDetails := api.Group("/diploma-subject-details", ForceCourseType(models.CourseTypeDiploma))
	{
		diplomaDetails.GET("", h.SubjectDetails.List)

		protected := diplomaDetails.Group("", middleware.JWT(auth))
		protected.POST("", h.SubjectDetails.Create)
		protected.PUT("/:id", h.SubjectDetails.Update)
		protected.DELETE("/:id", h.SubjectDetails.Delete)
	}

	admin := api.Group("", middleware.JWT(auth))
	{
		admin.GET("/auth/me", h.Auth.Me)

		admin.POST("/subjects", h.Subjects.Create)
		admin.PUT("/subjects/:id", h.Subjects.Update)
		admin.DELETE("/subjects/:id", h.Subjects.Delete)

		admin.POST("/subject-details", h.SubjectDetails.Create)
		admin.PUT("/subject-details/:id", h.SubjectDetails.Update)
		admin.DELETE("/subject-details/:id", h.SubjectDetails.Delete)

		admin.GET("/faculty", h.Faculty.List)
		admin.POST("/faculty", h.Faculty.Create)
		admin.PUT("/faculty/:id", h.Faculty.Update)
		admin.DELETE("/faculty/:id", h.Faculty.Delete)

		admin.POST("/activities", h.Activities.Create)
		admin.PUT("/activities/:id", h.Activities.Update)
		admin.DELETE("/activities/:id", h.Activities.Delete)

		admin.GET("/activity-blogs", h.Blogs.List)
		admin.GET("/activity-blogs/:id", h.Blogs.Get)
		admin.POST("/activity-blogs", h.Blogs.Create)
		admin.PUT("/activity-blogs/:id", h.Blogs.Update)
		admin.DELETE("/activity-blogs/:id", h.Blogs.Delete)

		admin.POST("/upload", h.Upload.Upload)
	}
}
