package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/it-dept/dept-cms-api/internal/models"
)

// ActivityRepository handles persistence for activities.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository creates a new repository instance.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

const activityColumns = "id, title, created_at, updated_at"

// List returns all activities with their blog references, newest first.
func (r *ActivityRepository) List(ctx context.Context) ([]models.ActivityWithBlogs, error) {
	query := fmt.Sprintf("SELECT %s FROM activities ORDER BY created_at DESC", activityColumns)
	var activities []models.Activity
	if err := r.db.SelectContext(ctx, &activities, query); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	out := make([]models.ActivityWithBlogs, len(activities))
	ids := make([]int64, len(activities))
	index := make(map[int64]int, len(activities))
	for i, activity := range activities {
		out[i] = models.ActivityWithBlogs{Activity: activity, Blogs: []models.BlogRef{}}
		ids[i] = activity.ID
		index[activity.ID] = i
	}
	if len(ids) == 0 {
		return out, nil
	}

	blogQuery, args, err := sqlx.In("SELECT activity_id, id, is_published FROM activity_blogs WHERE activity_id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("build blog query: %w", err)
	}
	rows, err := r.db.QueryxContext(ctx, r.db.Rebind(blogQuery), args...)
	if err != nil {
		return nil, fmt.Errorf("list activity blogs: %w", err)
	}
	defer rows.Close() //nolint:errcheck
	for rows.Next() {
		var activityID int64
		var ref models.BlogRef
		if err := rows.Scan(&activityID, &ref.ID, &ref.IsPublished); err != nil {
			return nil, fmt.Errorf("scan blog ref: %w", err)
		}
		if i, ok := index[activityID]; ok {
			out[i].Blogs = append(out[i].Blogs, ref)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blog refs: %w", err)
	}

	return out, nil
}

// FindByID returns an activity by id.
func (r *ActivityRepository) FindByID(ctx context.Context, id int64) (*models.Activity, error) {
	query := fmt.Sprintf("SELECT %s FROM activities WHERE id = $1", activityColumns)
	var activity models.Activity
	if err := r.db.GetContext(ctx, &activity, query, id); err != nil {
		return nil, err
	}
	return &activity, nil
}

// Create inserts a new activity.
func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	now := time.Now().UTC()
	activity.CreatedAt = now
	activity.UpdatedAt = now
	row := r.db.QueryRowxContext(ctx,
		"INSERT INTO activities (title, created_at, updated_at) VALUES ($1, $2, $3) RETURNING id",
		activity.Title, activity.CreatedAt, activity.UpdatedAt)
	if err := row.Scan(&activity.ID); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// Update renames an activity.
func (r *ActivityRepository) Update(ctx context.Context, activity *models.Activity) error {
	activity.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		"UPDATE activities SET title = $1, updated_at = $2 WHERE id = $3",
		activity.Title, activity.UpdatedAt, activity.ID)
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes the activity along with its blogs and their image rows.
func (r *ActivityRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM activity_images WHERE activity_blog_id IN (SELECT id FROM activity_blogs WHERE activity_id = $1)", id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete activity images: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM activity_blogs WHERE activity_id = $1", id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete activity blogs: %w", err)
	}
	result, err := tx.ExecContext(ctx, "DELETE FROM activities WHERE id = $1", id)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete activity: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		_ = tx.Rollback()
		return sql.ErrNoRows
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Count returns the total number of activities.
func (r *ActivityRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM activities"); err != nil {
		return 0, fmt.Errorf("count activities: %w", err)
	}
	return count, nil
}
