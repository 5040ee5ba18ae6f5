package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/it-dept/dept-cms-api/internal/models"
)

// SubjectDetailRepository handles persistence for subject detail records.
type SubjectDetailRepository struct {
	db *sqlx.DB
}

// NewSubjectDetailRepository creates a new repository instance.
func NewSubjectDetailRepository(db *sqlx.DB) *SubjectDetailRepository {
	return &SubjectDetailRepository{db: db}
}

const detailColumns = "id, subject_id, theory_hours, practical_hours, self_study_hours, english_title, original_code, original_title, description"

// ListByCourseType returns detail records of one track joined with their
// subjects, ordered by subject code.
func (r *SubjectDetailRepository) ListByCourseType(ctx context.Context, courseType string) ([]models.SubjectDetailWithSubject, error) {
	const query = `SELECT d.id, d.subject_id, d.theory_hours, d.practical_hours, d.self_study_hours, d.english_title, d.original_code, d.original_title, d.description,
		s.id AS "subject.id", s.course_type AS "subject.course_type", s.group_name AS "subject.group_name", s.code AS "subject.code", s.title AS "subject.title", s.credits AS "subject.credits", s.created_at AS "subject.created_at", s.updated_at AS "subject.updated_at"
		FROM subject_details d JOIN subjects s ON s.id = d.subject_id WHERE s.course_type = $1 ORDER BY s.code ASC`
	var details []models.SubjectDetailWithSubject
	if err := r.db.SelectContext(ctx, &details, query, courseType); err != nil {
		return nil, fmt.Errorf("list subject details: %w", err)
	}
	return details, nil
}

// FindByID returns a detail record by id.
func (r *SubjectDetailRepository) FindByID(ctx context.Context, id int64) (*models.SubjectDetail, error) {
	query := fmt.Sprintf("SELECT %s FROM subject_details WHERE id = $1", detailColumns)
	var detail models.SubjectDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ExistsForSubject reports whether the subject already has a detail record.
func (r *SubjectDetailRepository) ExistsForSubject(ctx context.Context, subjectID int64) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM subject_details WHERE subject_id = $1 LIMIT 1", subjectID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check subject detail: %w", err)
	}
	return true, nil
}

// Create inserts a new detail record.
func (r *SubjectDetailRepository) Create(ctx context.Context, detail *models.SubjectDetail) error {
	row := r.db.QueryRowxContext(ctx,
		"INSERT INTO subject_details (subject_id, theory_hours, practical_hours, self_study_hours, english_title, original_code, original_title, description) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id",
		detail.SubjectID, detail.TheoryHours, detail.PracticalHours, detail.SelfStudyHours, detail.EnglishTitle, detail.OriginalCode, detail.OriginalTitle, detail.Description)
	if err := row.Scan(&detail.ID); err != nil {
		return fmt.Errorf("insert subject detail: %w", err)
	}
	return nil
}

// Update overwrites every detail field of the record.
func (r *SubjectDetailRepository) Update(ctx context.Context, detail *models.SubjectDetail) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE subject_details SET theory_hours = $1, practical_hours = $2, self_study_hours = $3, english_title = $4, original_code = $5, original_title = $6, description = $7 WHERE id = $8",
		detail.TheoryHours, detail.PracticalHours, detail.SelfStudyHours, detail.EnglishTitle, detail.OriginalCode, detail.OriginalTitle, detail.Description, detail.ID)
	if err != nil {
		return fmt.Errorf("update subject detail: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a detail record.
func (r *SubjectDetailRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM subject_details WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete subject detail: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
