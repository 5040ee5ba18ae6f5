package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/it-dept/dept-cms-api/internal/models"
	appErrors "github.com/it-dept/dept-cms-api/pkg/errors"
	"github.com/it-dept/dept-cms-api/pkg/export"
)

type subjectRepository interface {
	ListByCourseType(ctx context.Context, courseType string) ([]models.SubjectWithRelations, error)
	FindByID(ctx context.Context, id int64) (*models.Subject, error)
	ExistsByCode(ctx context.Context, code string, excludeID int64) (bool, error)
	ResolveCodes(ctx context.Context, courseType string, codes []string) ([]int64, error)
	Create(ctx context.Context, subject *models.Subject, prereqIDs []int64) error
	Update(ctx context.Context, subject *models.Subject, prereqIDs []int64) error
	Delete(ctx context.Context, id int64) error
	CountByCourseType(ctx context.Context, courseType string) (int, error)
}

// CreateSubjectRequest captures fields for creating subjects.
type CreateSubjectRequest struct {
	GroupName     string   `json:"group_name"`
	Code          string   `json:"code" validate:"required"`
	Title         string   `json:"title" validate:"required"`
	Credits       int      `json:"credits" validate:"gte=0"`
	Prerequisites []string `json:"prerequisites"`
}

// UpdateSubjectRequest modifies subject fields. The prerequisite list fully
// replaces the stored set.
type UpdateSubjectRequest struct {
	GroupName     string   `json:"group_name"`
	Code          string   `json:"code" validate:"required"`
	Title         string   `json:"title" validate:"required"`
	Credits       int      `json:"credits" validate:"gte=0"`
	Prerequisites []string `json:"prerequisites"`
}

// SubjectService handles the course subject domain.
type SubjectService struct {
	repo      subjectRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService creates a new subject service.
func NewSubjectService(repo subjectRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns a track's subjects in the fixed group display order, ties
// broken by ascending code.
func (s *SubjectService) List(ctx context.Context, courseType string) ([]models.SubjectWithRelations, error) {
	if err := validateCourseType(courseType); err != nil {
		return nil, err
	}

	subjects, err := s.repo.ListByCourseType(ctx, courseType)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}

	SortSubjects(subjects)
	return subjects, nil
}

// ListPublic serves the public projection through the cache when enabled.
func (s *SubjectService) ListPublic(ctx context.Context, courseType string) ([]models.SubjectWithRelations, error) {
	key := publicSubjectsCacheKey(courseType)
	var cached []models.SubjectWithRelations
	if s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	subjects, err := s.List(ctx, courseType)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, subjects)
	return subjects, nil
}

// Create adds a new subject, enforcing global code uniqueness and resolving
// prerequisite codes within the same course type. Unknown codes are dropped.
func (s *SubjectService) Create(ctx context.Context, courseType string, req CreateSubjectRequest) (*models.Subject, error) {
	if err := validateCourseType(courseType); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}

	req.Code = strings.TrimSpace(req.Code)

	exists, err := s.repo.ExistsByCode(ctx, req.Code, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, "subject code already exists")
	}

	prereqIDs, err := s.resolvePrereqs(ctx, courseType, req.Prerequisites)
	if err != nil {
		return nil, err
	}

	subject := &models.Subject{
		CourseType: courseType,
		GroupName:  req.GroupName,
		Code:       req.Code,
		Title:      req.Title,
		Credits:    req.Credits,
	}

	if err := s.repo.Create(ctx, subject, prereqIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}

	s.cache.Invalidate(ctx, publicSubjectsCacheKey(courseType))
	return subject, nil
}

// Update modifies a subject and fully replaces its prerequisite set.
func (s *SubjectService) Update(ctx context.Context, id int64, req UpdateSubjectRequest) (*models.Subject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}

	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	req.Code = strings.TrimSpace(req.Code)

	exists, err := s.repo.ExistsByCode(ctx, req.Code, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject code")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, "subject code already exists")
	}

	prereqIDs, err := s.resolvePrereqs(ctx, subject.CourseType, req.Prerequisites)
	if err != nil {
		return nil, err
	}

	subject.GroupName = req.GroupName
	subject.Code = req.Code
	subject.Title = req.Title
	subject.Credits = req.Credits

	if err := s.repo.Update(ctx, subject, prereqIDs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subject")
	}

	s.cache.Invalidate(ctx, publicSubjectsCacheKey(subject.CourseType))
	return subject, nil
}

// Delete removes a subject and every prerequisite link referencing it.
func (s *SubjectService) Delete(ctx context.Context, id int64) error {
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subject")
	}

	s.cache.Invalidate(ctx, publicSubjectsCacheKey(subject.CourseType))
	return nil
}

// ExportDataset renders the track's curriculum as a tabular dataset.
func (s *SubjectService) ExportDataset(ctx context.Context, courseType string) (export.Dataset, error) {
	subjects, err := s.List(ctx, courseType)
	if err != nil {
		return export.Dataset{}, err
	}

	dataset := export.Dataset{
		Headers: []string{"Group", "Code", "Title", "Credits", "Prerequisites"},
		Rows:    make([]map[string]string, 0, len(subjects)),
	}
	for _, subject := range subjects {
		codes := make([]string, len(subject.Prereqs))
		for i, prereq := range subject.Prereqs {
			codes[i] = prereq.Code
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Group":         subject.GroupName,
			"Code":          subject.Code,
			"Title":         subject.Title,
			"Credits":       strconv.Itoa(subject.Credits),
			"Prerequisites": strings.Join(codes, ", "),
		})
	}
	return dataset, nil
}

func (s *SubjectService) resolvePrereqs(ctx context.Context, courseType string, codes []string) ([]int64, error) {
	cleaned := make([]string, 0, len(codes))
	for _, code := range codes {
		if trimmed := strings.TrimSpace(code); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	if len(cleaned) == 0 {
		return nil, nil
	}

	ids, err := s.repo.ResolveCodes(ctx, courseType, cleaned)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve prerequisites")
	}
	if len(ids) < len(cleaned) {
		s.logger.Debug("dropped unknown prerequisite codes",
			zap.Int("requested", len(cleaned)),
			zap.Int("resolved", len(ids)))
	}
	return ids, nil
}

// SortSubjects orders subjects by the fixed group rank, then by code.
func SortSubjects(subjects []models.SubjectWithRelations) {
	sort.SliceStable(subjects, func(i, j int) bool {
		a, b := models.GroupOrder(subjects[i].GroupName), models.GroupOrder(subjects[j].GroupName)
		if a != b {
			return a < b
		}
		return subjects[i].Code < subjects[j].Code
	})
}

func validateCourseType(courseType string) error {
	switch courseType {
	case models.CourseTypeBachelor, models.CourseTypeDiploma:
		return nil
	default:
		return appErrors.Clone(appErrors.ErrValidation, "unknown course type")
	}
}

func publicSubjectsCacheKey(courseType string) string {
	if courseType == models.CourseTypeDiploma {
		return CacheKeyPublicSubjectsDiploma
	}
	return CacheKeyPublicSubjectsBachelor
}
