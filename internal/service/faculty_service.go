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

type facultyRepository interface {
	List(ctx context.Context) ([]models.Faculty, error)
	ListPublic(ctx context.Context) ([]models.PublicFaculty, error)
	FindByID(ctx context.Context, id int64) (*models.Faculty, error)
	Create(ctx context.Context, faculty *models.Faculty) error
	Update(ctx context.Context, faculty *models.Faculty) error
	Delete(ctx context.Context, id int64) error
}

// FacultyRequest captures the editable staff profile fields.
type FacultyRequest struct {
	FirstName string  `json:"first_name" validate:"required"`
	LastName  string  `json:"last_name" validate:"required"`
	ImageURL  *string `json:"image_url"`
}

// FacultyService handles staff profile workflows.
type FacultyService struct {
	repo      facultyRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFacultyService creates a new faculty service.
func NewFacultyService(repo facultyRepository, validate *validator.Validate, logger *zap.Logger) *FacultyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FacultyService{repo: repo, validator: validate, logger: logger}
}

// List returns the admin staff listing, newest first.
func (s *FacultyService) List(ctx context.Context) ([]models.Faculty, error) {
	faculties, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faculties")
	}
	return faculties, nil
}

// ListPublic returns the visitor projection ordered by last name.
func (s *FacultyService) ListPublic(ctx context.Context) ([]models.PublicFaculty, error) {
	faculties, err := s.repo.ListPublic(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list faculties")
	}
	return faculties, nil
}

// Create adds a new staff profile.
func (s *FacultyService) Create(ctx context.Context, req FacultyRequest) (*models.Faculty, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "first and last name are required")
	}

	faculty := &models.Faculty{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		ImageURL:  req.ImageURL,
	}
	if err := s.repo.Create(ctx, faculty); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create faculty")
	}
	return faculty, nil
}

// Update overwrites the profile fields of an existing staff member.
func (s *FacultyService) Update(ctx context.Context, id int64, req FacultyRequest) (*models.Faculty, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "first and last name are required")
	}

	faculty, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load faculty")
	}

	faculty.FirstName = req.FirstName
	faculty.LastName = req.LastName
	faculty.ImageURL = req.ImageURL

	if err := s.repo.Update(ctx, faculty); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update faculty")
	}
	return faculty, nil
}

// Delete removes a staff profile.
func (s *FacultyService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "faculty not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete faculty")
	}
	return nil
}
