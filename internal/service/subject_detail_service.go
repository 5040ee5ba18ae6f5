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

type subjectDetailRepository interface {
	ListByCourseType(ctx context.Context, courseType string) ([]models.SubjectDetailWithSubject, error)
	FindByID(ctx context.Context, id int64) (*models.SubjectDetail, error)
	ExistsForSubject(ctx context.Context, subjectID int64) (bool, error)
	Create(ctx context.Context, detail *models.SubjectDetail) error
	Update(ctx context.Context, detail *models.SubjectDetail) error
	Delete(ctx context.Context, id int64) error
}

type detailSubjectLookup interface {
	FindByID(ctx context.Context, id int64) (*models.Subject, error)
}

// CreateSubjectDetailRequest captures fields for attaching a detail record.
type CreateSubjectDetailRequest struct {
	SubjectID      int64   `json:"subject_id" validate:"required,gt=0"`
	TheoryHours    *int    `json:"theory_hours"`
	PracticalHours *int    `json:"practical_hours"`
	SelfStudyHours *int    `json:"self_study_hours"`
	EnglishTitle   *string `json:"english_title"`
	OriginalCode   *string `json:"original_code"`
	OriginalTitle  *string `json:"original_title"`
	Description    *string `json:"description"`
}

// UpdateSubjectDetailRequest overwrites every detail field.
type UpdateSubjectDetailRequest struct {
	TheoryHours    *int    `json:"theory_hours"`
	PracticalHours *int    `json:"practical_hours"`
	SelfStudyHours *int    `json:"self_study_hours"`
	EnglishTitle   *string `json:"english_title"`
	OriginalCode   *string `json:"original_code"`
	OriginalTitle  *string `json:"original_title"`
	Description    *string `json:"description"`
}

// SubjectDetailService handles the 1:1 subject detail records.
type SubjectDetailService struct {
	repo      subjectDetailRepository
	subjects  detailSubjectLookup
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectDetailService creates a new service instance.
func NewSubjectDetailService(repo subjectDetailRepository, subjects detailSubjectLookup, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *SubjectDetailService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectDetailService{repo: repo, subjects: subjects, cache: cache, validator: validate, logger: logger}
}

// invalidateOwnerTrack drops the cached public listing for the track owning
// the subject. The cached payload embeds detail records, so detail writes
// must drop it too. When the owner cannot be resolved both tracks are
// dropped, trading extra misses for consistency.
func (s *SubjectDetailService) invalidateOwnerTrack(ctx context.Context, subjectID int64) {
	subject, err := s.subjects.FindByID(ctx, subjectID)
	if err != nil {
		s.cache.Invalidate(ctx, CacheKeyPublicSubjectsBachelor, CacheKeyPublicSubjectsDiploma)
		return
	}
	s.cache.Invalidate(ctx, publicSubjectsCacheKey(subject.CourseType))
}

// List returns detail records of one track ordered by subject code.
func (s *SubjectDetailService) List(ctx context.Context, courseType string) ([]models.SubjectDetailWithSubject, error) {
	if err := validateCourseType(courseType); err != nil {
		return nil, err
	}
	details, err := s.repo.ListByCourseType(ctx, courseType)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subject details")
	}
	return details, nil
}

// Create attaches a detail record to a subject that does not have one yet.
func (s *SubjectDetailService) Create(ctx context.Context, req CreateSubjectDetailRequest) (*models.SubjectDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid detail payload")
	}

	subject, err := s.subjects.FindByID(ctx, req.SubjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	exists, err := s.repo.ExistsForSubject(ctx, req.SubjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject detail")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, "subject already has a detail record")
	}

	detail := &models.SubjectDetail{
		SubjectID:      req.SubjectID,
		TheoryHours:    req.TheoryHours,
		PracticalHours: req.PracticalHours,
		SelfStudyHours: req.SelfStudyHours,
		EnglishTitle:   req.EnglishTitle,
		OriginalCode:   req.OriginalCode,
		OriginalTitle:  req.OriginalTitle,
		Description:    req.Description,
	}
	if err := s.repo.Create(ctx, detail); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject detail")
	}
	s.cache.Invalidate(ctx, publicSubjectsCacheKey(subject.CourseType))
	return detail, nil
}

// Update overwrites all detail fields of an existing record.
func (s *SubjectDetailService) Update(ctx context.Context, id int64, req UpdateSubjectDetailRequest) (*models.SubjectDetail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject detail not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject detail")
	}

	detail.TheoryHours = req.TheoryHours
	detail.PracticalHours = req.PracticalHours
	detail.SelfStudyHours = req.SelfStudyHours
	detail.EnglishTitle = req.EnglishTitle
	detail.OriginalCode = req.OriginalCode
	detail.OriginalTitle = req.OriginalTitle
	detail.Description = req.Description

	if err := s.repo.Update(ctx, detail); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject detail not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subject detail")
	}
	s.invalidateOwnerTrack(ctx, detail.SubjectID)
	return detail, nil
}

// Delete removes a detail record.
func (s *SubjectDetailService) Delete(ctx context.Context, id int64) error {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "subject detail not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject detail")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "subject detail not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subject detail")
	}
	s.invalidateOwnerTrack(ctx, detail.SubjectID)
	return nil
}
