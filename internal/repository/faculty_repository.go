package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/it-dept/dept-cms-api/internal/models"
)

// FacultyRepository handles persistence for staff profiles.
type FacultyRepository struct {
	db *sqlx.DB
}

// NewFacultyRepository creates a new repository instance.
func NewFacultyRepository(db *sqlx.DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

const facultyColumns = "id, first_name, last_name, image_url, created_at, updated_at"

// List returns every staff profile, newest first.
func (r *FacultyRepository) List(ctx context.Context) ([]models.Faculty, error) {
	query := fmt.Sprintf("SELECT %s FROM faculties ORDER BY created_at DESC", facultyColumns)
	var faculties []models.Faculty
	if err := r.db.SelectContext(ctx, &faculties, query); err != nil {
		return nil, fmt.Errorf("list faculties: %w", err)
	}
	return faculties, nil
}

// ListPublic returns the visitor projection ordered by last name.
func (r *FacultyRepository) ListPublic(ctx context.Context) ([]models.PublicFaculty, error) {
	const query = "SELECT id, first_name, last_name, image_url FROM faculties ORDER BY last_name ASC"
	var faculties []models.PublicFaculty
	if err := r.db.SelectContext(ctx, &faculties, query); err != nil {
		return nil, fmt.Errorf("list public faculties: %w", err)
	}
	return faculties, nil
}

// FindByID returns a staff profile by id.
func (r *FacultyRepository) FindByID(ctx context.Context, id int64) (*models.Faculty, error) {
	query := fmt.Sprintf("SELECT %s FROM faculties WHERE id = $1", facultyColumns)
	var faculty models.Faculty
	if err := r.db.GetContext(ctx, &faculty, query, id); err != nil {
		return nil, err
	}
	return &faculty, nil
}

// Create inserts a new staff profile.
func (r *FacultyRepository) Create(ctx context.Context, faculty *models.Faculty) error {
	now := time.Now().UTC()
	faculty.CreatedAt = now
	faculty.UpdatedAt = now
	row := r.db.QueryRowxContext(ctx,
		"INSERT INTO faculties (first_name, last_name, image_url, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		faculty.FirstName, faculty.LastName, faculty.ImageURL, faculty.CreatedAt, faculty.UpdatedAt)
	if err := row.Scan(&faculty.ID); err != nil {
		return fmt.Errorf("insert faculty: %w", err)
	}
	return nil
}

// Update overwrites the editable profile fields.
func (r *FacultyRepository) Update(ctx context.Context, faculty *models.Faculty) error {
	faculty.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		"UPDATE faculties SET first_name = $1, last_name = $2, image_url = $3, updated_at = $4 WHERE id = $5",
		faculty.FirstName, faculty.LastName, faculty.ImageURL, faculty.UpdatedAt, faculty.ID)
	if err != nil {
		return fmt.Errorf("update faculty: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a staff profile.
func (r *FacultyRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM faculties WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete faculty: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
