package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/it-dept/dept-cms-api/internal/models"
	appErrors "github.com/it-dept/dept-cms-api/pkg/errors"
)

// Carousel scan limits. Published blogs are preferred; when none of them
// carries a usable image the scan falls back to drafts with tighter caps.
const (
	carouselPublishedBlogLimit = 10
	carouselPublishedImageCap  = 10
	carouselFallbackBlogLimit  = 5
	carouselFallbackImageCap   = 5
)

// carouselPathPrefix marks images served from the blog uploads route.
const carouselPathPrefix = "/api/images/activity-blogs/"

var imgSrcPattern = regexp.MustCompile(`<img[^>]+src="([^"]+)"[^>]*>`)

type blogRepository interface {
	List(ctx context.Context, activityID int64) ([]models.ActivityBlogAdmin, error)
	FindByID(ctx context.Context, id int64) (*models.ActivityBlogWithActivity, error)
	CountByActivity(ctx context.Context, activityID int64) (int, error)
	Create(ctx context.Context, blog *models.ActivityBlog) error
	Update(ctx context.Context, blog *models.ActivityBlog) error
	Delete(ctx context.Context, id int64) error
	ListPublished(ctx context.Context) ([]models.ActivityBlogWithActivity, error)
	FindFirstPublishedByActivity(ctx context.Context, activityID int64) (*models.ActivityBlogWithActivity, error)
	ListRecentWithImageMarkup(ctx context.Context, publishedOnly bool, limit int) ([]models.ActivityBlogWithActivity, error)
	CountPublished(ctx context.Context) (int, error)
}

type blogActivityLookup interface {
	FindByID(ctx context.Context, id int64) (*models.Activity, error)
}

// CreateBlogRequest captures fields for creating a blog article.
type CreateBlogRequest struct {
	ActivityID  int64  `json:"activity_id" validate:"required,gt=0"`
	Title       string `json:"title" validate:"required"`
	Content     string `json:"content" validate:"required"`
	IsPublished bool   `json:"is_published"`
}

// UpdateBlogRequest is a partial patch; nil fields keep their stored value.
type UpdateBlogRequest struct {
	Title       *string `json:"title"`
	Content     *string `json:"content"`
	IsPublished *bool   `json:"is_published"`
}

// BlogService handles the activity blog publishing workflow.
type BlogService struct {
	repo       blogRepository
	activities blogActivityLookup
	cache      *CacheService
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewBlogService creates a new blog service.
func NewBlogService(repo blogRepository, activities blogActivityLookup, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *BlogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BlogService{repo: repo, activities: activities, cache: cache, validator: validate, logger: logger}
}

// List returns the admin blog view, optionally filtered by activity.
func (s *BlogService) List(ctx context.Context, activityID int64) ([]models.ActivityBlogAdmin, error) {
	blogs, err := s.repo.List(ctx, activityID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list blogs")
	}
	return blogs, nil
}

// Get returns a blog with its activity reference.
func (s *BlogService) Get(ctx context.Context, id int64) (*models.ActivityBlogWithActivity, error) {
	blog, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "blog not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load blog")
	}
	return blog, nil
}

// Create attaches a blog to an activity that does not yet have one.
func (s *BlogService) Create(ctx context.Context, req CreateBlogRequest) (*models.ActivityBlog, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "activity id, title and content are required")
	}

	if _, err := s.activities.FindByID(ctx, req.ActivityID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "activity not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}

	count, err := s.repo.CountByActivity(ctx, req.ActivityID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing blog")
	}
	if count > 0 {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, "activity already has a blog")
	}

	blog := &models.ActivityBlog{
		ActivityID:  req.ActivityID,
		Title:       req.Title,
		Content:     req.Content,
		IsPublished: req.IsPublished,
	}
	if err := s.repo.Create(ctx, blog); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create blog")
	}

	s.invalidatePublic(ctx)
	return blog, nil
}

// Update applies the provided fields, leaving absent ones untouched.
func (s *BlogService) Update(ctx context.Context, id int64, req UpdateBlogRequest) (*models.ActivityBlog, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "blog not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load blog")
	}

	blog := existing.ActivityBlog
	if req.Title != nil {
		blog.Title = *req.Title
	}
	if req.Content != nil {
		blog.Content = *req.Content
	}
	if req.IsPublished != nil {
		blog.IsPublished = *req.IsPublished
	}

	if err := s.repo.Update(ctx, &blog); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "blog not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update blog")
	}

	s.invalidatePublic(ctx)
	return &blog, nil
}

// Delete removes a blog and its image rows.
func (s *BlogService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "blog not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete blog")
	}

	s.invalidatePublic(ctx)
	return nil
}

// ListPublished serves the public blog listing through the cache.
func (s *BlogService) ListPublished(ctx context.Context) ([]models.ActivityBlogWithActivity, error) {
	var cached []models.ActivityBlogWithActivity
	if s.cache.Get(ctx, CacheKeyPublicBlogs, &cached) {
		return cached, nil
	}

	blogs, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list published blogs")
	}
	s.cache.Set(ctx, CacheKeyPublicBlogs, blogs)
	return blogs, nil
}

// GetPublicByActivity returns the activity's first published blog.
func (s *BlogService) GetPublicByActivity(ctx context.Context, activityID int64) (*models.ActivityBlogWithActivity, error) {
	blog, err := s.repo.FindFirstPublishedByActivity(ctx, activityID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no published blog for activity")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load published blog")
	}
	return blog, nil
}

// Carousel extracts homepage carousel images from recent blog HTML. The scan
// prefers published blogs and falls back to drafts when they yield nothing.
// Failures degrade to an empty list.
func (s *BlogService) Carousel(ctx context.Context) []models.CarouselImage {
	var cached []models.CarouselImage
	if s.cache.Get(ctx, CacheKeyCarousel, &cached) {
		return cached
	}

	blogs, err := s.repo.ListRecentWithImageMarkup(ctx, true, carouselPublishedBlogLimit)
	if err != nil {
		s.logger.Error("carousel scan failed", zap.Error(err))
		return []models.CarouselImage{}
	}
	images := extractCarouselImages(blogs, carouselPublishedImageCap)

	if len(images) == 0 {
		blogs, err = s.repo.ListRecentWithImageMarkup(ctx, false, carouselFallbackBlogLimit)
		if err != nil {
			s.logger.Error("carousel fallback scan failed", zap.Error(err))
			return []models.CarouselImage{}
		}
		images = extractCarouselImages(blogs, carouselFallbackImageCap)
	}

	s.cache.Set(ctx, CacheKeyCarousel, images)
	return images
}

func (s *BlogService) invalidatePublic(ctx context.Context) {
	s.cache.Invalidate(ctx, CacheKeyPublicBlogs, CacheKeyCarousel)
}

func extractCarouselImages(blogs []models.ActivityBlogWithActivity, limit int) []models.CarouselImage {
	images := make([]models.CarouselImage, 0, limit)
	for _, blog := range blogs {
		for _, match := range imgSrcPattern.FindAllStringSubmatch(blog.Content, -1) {
			if len(images) >= limit {
				return images
			}
			url := match[1]
			if !strings.Contains(url, carouselPathPrefix) {
				continue
			}
			images = append(images, models.CarouselImage{
				ID:  fmt.Sprintf("%d-%d", blog.ID, len(images)),
				URL: url,
				ActivityBlog: models.CarouselBlogInfo{
					Title:    blog.Title,
					Activity: models.CarouselActivity{Title: blog.Activity.Title},
				},
			})
		}
	}
	return images
}
