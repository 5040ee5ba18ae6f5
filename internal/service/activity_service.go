package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/it-dept/dept-cms-api/internal/models"
	appErrors "github.com/it-dept/dept-cms-api/pkg/errors"
)

type activityRepository interface {
	List(ctx context.Context) ([]models.ActivityWithBlogs, error)
	FindByID(ctx context.Context, id int64) (*models.Activity, error)
	Create(ctx context.Context, activity *models.Activity) error
	Update(ctx context.Context, activity *models.Activity) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// ActivityRequest carries the single editable activity field.
type ActivityRequest struct {
	Title string `json:"title" validate:"required"`
}

// ActivityService handles activity workflows.
type ActivityService struct {
	repo      activityRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewActivityService creates a new activity service.
func NewActivityService(repo activityRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ActivityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns activities with nested blog references, newest first.
func (s *ActivityService) List(ctx context.Context) ([]models.ActivityWithBlogs, error) {
	activities, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activities")
	}
	return activities, nil
}

// Get returns an activity by id.
func (s *ActivityService) Get(ctx context.Context, id int64) (*models.Activity, error) {
	activity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}
	return activity, nil
}

// Create adds a new activity.
func (s *ActivityService) Create(ctx context.Context, req ActivityRequest) (*models.Activity, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "activity title is required")
	}

	activity := &models.Activity{Title: req.Title}
	if err := s.repo.Create(ctx, activity); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create activity")
	}
	return activity, nil
}

// Update renames an activity.
func (s *ActivityService) Update(ctx context.Context, id int64, req ActivityRequest) (*models.Activity, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "activity title is required")
	}

	activity, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}

	activity.Title = req.Title
	if err := s.repo.Update(ctx, activity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update activity")
	}

	s.cache.Invalidate(ctx, CacheKeyPublicBlogs, CacheKeyCarousel)
	return activity, nil
}

// Delete removes an activity, cascading blog and image rows.
func (s *ActivityService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete activity")
	}

	s.cache.Invalidate(ctx, CacheKeyPublicBlogs, CacheKeyCarousel)
	return nil
}
