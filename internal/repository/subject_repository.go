package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/it-dept/dept-cms-api/internal/models"
)

// SubjectRepository handles persistence for subjects, their prerequisite
// links and detail records.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new repository instance.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

const subjectColumns = "id, course_type, group_name, code, title, credits, created_at, updated_at"

// ListByCourseType returns all subjects of a track with prerequisite
// subjects and detail records attached.
func (r *SubjectRepository) ListByCourseType(ctx context.Context, courseType string) ([]models.SubjectWithRelations, error) {
	query := fmt.Sprintf("SELECT %s FROM subjects WHERE course_type = $1 ORDER BY group_name ASC, code ASC", subjectColumns)
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, courseType); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}

	out := make([]models.SubjectWithRelations, len(subjects))
	ids := make([]int64, len(subjects))
	index := make(map[int64]int, len(subjects))
	for i, subject := range subjects {
		out[i] = models.SubjectWithRelations{Subject: subject, Prereqs: []models.Subject{}}
		ids[i] = subject.ID
		index[subject.ID] = i
	}
	if len(ids) == 0 {
		return out, nil
	}

	prereqQuery, args, err := sqlx.In(
		"SELECT sp.subject_id AS owner_id, s.id, s.course_type, s.group_name, s.code, s.title, s.credits, s.created_at, s.updated_at FROM subject_prereqs sp JOIN subjects s ON s.id = sp.prereq_id WHERE sp.subject_id IN (?) ORDER BY s.code ASC", ids)
	if err != nil {
		return nil, fmt.Errorf("build prereq query: %w", err)
	}
	rows, err := r.db.QueryxContext(ctx, r.db.Rebind(prereqQuery), args...)
	if err != nil {
		return nil, fmt.Errorf("list prereqs: %w", err)
	}
	defer rows.Close() //nolint:errcheck
	for rows.Next() {
		var link struct {
			OwnerID int64 `db:"owner_id"`
			models.Subject
		}
		if err := rows.StructScan(&link); err != nil {
			return nil, fmt.Errorf("scan prereq: %w", err)
		}
		if i, ok := index[link.OwnerID]; ok {
			out[i].Prereqs = append(out[i].Prereqs, link.Subject)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate prereqs: %w", err)
	}

	detailQuery, args, err := sqlx.In("SELECT id, subject_id, theory_hours, practical_hours, self_study_hours, english_title, original_code, original_title, description FROM subject_details WHERE subject_id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("build detail query: %w", err)
	}
	var details []models.SubjectDetail
	if err := r.db.SelectContext(ctx, &details, r.db.Rebind(detailQuery), args...); err != nil {
		return nil, fmt.Errorf("list subject details: %w", err)
	}
	for i := range details {
		if j, ok := index[details[i].SubjectID]; ok {
			out[j].Detail = &details[i]
		}
	}

	return out, nil
}

// FindByID returns a subject by id.
func (r *SubjectRepository) FindByID(ctx context.Context, id int64) (*models.Subject, error) {
	query := fmt.Sprintf("SELECT %s FROM subjects WHERE id = $1", subjectColumns)
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// ExistsByCode checks global uniqueness of a subject code across both tracks.
func (r *SubjectRepository) ExistsByCode(ctx context.Context, code string, excludeID int64) (bool, error) {
	query := "SELECT 1 FROM subjects WHERE code = $1"
	args := []interface{}{code}
	if excludeID > 0 {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}

	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check subject code: %w", err)
	}
	return true, nil
}

// ResolveCodes maps the provided codes to subject ids within one course type.
// Codes without a matching subject are absent from the result.
func (r *SubjectRepository) ResolveCodes(ctx context.Context, courseType string, codes []string) ([]int64, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In("SELECT id FROM subjects WHERE course_type = ? AND code IN (?) ORDER BY code ASC", courseType, codes)
	if err != nil {
		return nil, fmt.Errorf("build resolve query: %w", err)
	}
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("resolve prereq codes: %w", err)
	}
	return ids, nil
}

// Create inserts the subject and its prerequisite links in one transaction.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject, prereqIDs []int64) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		now := time.Now().UTC()
		subject.CreatedAt = now
		subject.UpdatedAt = now
		row := tx.QueryRowxContext(ctx,
			"INSERT INTO subjects (course_type, group_name, code, title, credits, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id",
			subject.CourseType, subject.GroupName, subject.Code, subject.Title, subject.Credits, subject.CreatedAt, subject.UpdatedAt)
		if err := row.Scan(&subject.ID); err != nil {
			return fmt.Errorf("insert subject: %w", err)
		}
		return insertPrereqs(ctx, tx, subject.ID, prereqIDs)
	})
}

// Update rewrites the subject row and fully replaces its prerequisite links.
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject, prereqIDs []int64) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		subject.UpdatedAt = time.Now().UTC()
		result, err := tx.ExecContext(ctx,
			"UPDATE subjects SET group_name = $1, code = $2, title = $3, credits = $4, updated_at = $5 WHERE id = $6",
			subject.GroupName, subject.Code, subject.Title, subject.Credits, subject.UpdatedAt, subject.ID)
		if err != nil {
			return fmt.Errorf("update subject: %w", err)
		}
		if affected, err := result.RowsAffected(); err == nil && affected == 0 {
			return sql.ErrNoRows
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM subject_prereqs WHERE subject_id = $1", subject.ID); err != nil {
			return fmt.Errorf("clear prereqs: %w", err)
		}
		return insertPrereqs(ctx, tx, subject.ID, prereqIDs)
	})
}

// Delete removes the subject together with its detail record and every
// prerequisite link referencing it on either side.
func (r *SubjectRepository) Delete(ctx context.Context, id int64) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM subject_prereqs WHERE subject_id = $1 OR prereq_id = $1", id); err != nil {
			return fmt.Errorf("delete prereqs: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM subject_details WHERE subject_id = $1", id); err != nil {
			return fmt.Errorf("delete subject detail: %w", err)
		}
		result, err := tx.ExecContext(ctx, "DELETE FROM subjects WHERE id = $1", id)
		if err != nil {
			return fmt.Errorf("delete subject: %w", err)
		}
		if affected, err := result.RowsAffected(); err == nil && affected == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
}

// CountByCourseType returns the number of subjects in a track.
func (r *SubjectRepository) CountByCourseType(ctx context.Context, courseType string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM subjects WHERE course_type = $1", courseType); err != nil {
		return 0, fmt.Errorf("count subjects: %w", err)
	}
	return count, nil
}

func (r *SubjectRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func insertPrereqs(ctx context.Context, tx *sqlx.Tx, subjectID int64, prereqIDs []int64) error {
	for _, prereqID := range prereqIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO subject_prereqs (subject_id, prereq_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
			subjectID, prereqID); err != nil {
			return fmt.Errorf("insert prereq: %w", err)
		}
	}
	return nil
}
