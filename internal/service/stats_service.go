package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/it-dept/dept-cms-api/internal/models"
	appErrors "github.com/it-dept/dept-cms-api/pkg/errors"
)

type statsSubjectCounter interface {
	CountByCourseType(ctx context.Context, courseType string) (int, error)
}

type statsActivityCounter interface {
	Count(ctx context.Context) (int, error)
}

type statsBlogCounter interface {
	CountPublished(ctx context.Context) (int, error)
}

// StatsService aggregates the dashboard counters.
type StatsService struct {
	subjects   statsSubjectCounter
	activities statsActivityCounter
	blogs      statsBlogCounter
	logger     *zap.Logger
}

// NewStatsService creates a new stats service.
func NewStatsService(subjects statsSubjectCounter, activities statsActivityCounter, blogs statsBlogCounter, logger *zap.Logger) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{subjects: subjects, activities: activities, blogs: blogs, logger: logger}
}

// Collect gathers all counters.
func (s *StatsService) Collect(ctx context.Context) (*models.Stats, error) {
	bachelor, err := s.subjects.CountByCourseType(ctx, models.CourseTypeBachelor)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to collect stats")
	}
	diploma, err := s.subjects.CountByCourseType(ctx, models.CourseTypeDiploma)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to collect stats")
	}
	activities, err := s.activities.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to collect stats")
	}
	published, err := s.blogs.CountPublished(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to collect stats")
	}

	return &models.Stats{
		BachelorSubjects: bachelor,
		DiplomaSubjects:  diploma,
		Activities:       activities,
		PublishedBlogs:   published,
	}, nil
}
