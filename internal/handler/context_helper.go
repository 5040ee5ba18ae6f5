package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/it-dept/dept-cms-api/internal/middleware"
	"github.com/it-dept/dept-cms-api/internal/models"
	appErrors "github.com/it-dept/dept-cms-api/pkg/errors"
)

// contextCourseTypeKey forces a course type on alias route groups.
const contextCourseTypeKey = "courseType"

// ForceCourseType pins the course type for a route group, overriding the
// query parameter. Used by the diploma alias routes.
func ForceCourseType(courseType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(contextCourseTypeKey, courseType)
		c.Next()
	}
}

func courseTypeFrom(c *gin.Context) string {
	if forced, ok := c.Get(contextCourseTypeKey); ok {
		if courseType, ok := forced.(string); ok {
			return courseType
		}
	}
	if courseType := c.Query("type"); courseType != "" {
		return courseType
	}
	return models.CourseTypeBachelor
}

func parseIDParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid id")
	}
	return id, nil
}

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}
