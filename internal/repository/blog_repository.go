package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/it-dept/dept-cms-api/internal/models"
)

// BlogRepository handles persistence for activity blogs and their image rows.
type BlogRepository struct {
	db *sqlx.DB
}

// NewBlogRepository creates a new repository instance.
func NewBlogRepository(db *sqlx.DB) *BlogRepository {
	return &BlogRepository{db: db}
}

const blogWithActivityColumns = `b.id, b.activity_id, b.title, b.content, b.is_published, b.created_at, b.updated_at,
	a.id AS "activity.id", a.title AS "activity.title"`

// List returns blogs for the admin view, optionally filtered by activity,
// with the owning activity and attached image rows.
func (r *BlogRepository) List(ctx context.Context, activityID int64) ([]models.ActivityBlogAdmin, error) {
	query := fmt.Sprintf("SELECT %s FROM activity_blogs b JOIN activities a ON a.id = b.activity_id", blogWithActivityColumns)
	var args []interface{}
	if activityID > 0 {
		query += " WHERE b.activity_id = $1"
		args = append(args, activityID)
	}
	query += " ORDER BY b.created_at DESC"

	var joined []models.ActivityBlogWithActivity
	if err := r.db.SelectContext(ctx, &joined, query, args...); err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}

	out := make([]models.ActivityBlogAdmin, len(joined))
	ids := make([]int64, len(joined))
	index := make(map[int64]int, len(joined))
	for i, blog := range joined {
		out[i] = models.ActivityBlogAdmin{ActivityBlog: blog.ActivityBlog, Activity: blog.Activity, Images: []models.ActivityImage{}}
		ids[i] = blog.ID
		index[blog.ID] = i
	}
	if len(ids) == 0 {
		return out, nil
	}

	imageQuery, imageArgs, err := sqlx.In("SELECT id, activity_blog_id, filename, original_name, mimetype, size, url FROM activity_images WHERE activity_blog_id IN (?)", ids)
	if err != nil {
		return nil, fmt.Errorf("build image query: %w", err)
	}
	var images []models.ActivityImage
	if err := r.db.SelectContext(ctx, &images, r.db.Rebind(imageQuery), imageArgs...); err != nil {
		return nil, fmt.Errorf("list blog images: %w", err)
	}
	for _, image := range images {
		if i, ok := index[image.ActivityBlogID]; ok {
			out[i].Images = append(out[i].Images, image)
		}
	}

	return out, nil
}

// FindByID returns a blog joined with its activity reference.
func (r *BlogRepository) FindByID(ctx context.Context, id int64) (*models.ActivityBlogWithActivity, error) {
	query := fmt.Sprintf("SELECT %s FROM activity_blogs b JOIN activities a ON a.id = b.activity_id WHERE b.id = $1", blogWithActivityColumns)
	var blog models.ActivityBlogWithActivity
	if err := r.db.GetContext(ctx, &blog, query, id); err != nil {
		return nil, err
	}
	return &blog, nil
}

// CountByActivity returns how many blogs an activity already has.
func (r *BlogRepository) CountByActivity(ctx context.Context, activityID int64) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM activity_blogs WHERE activity_id = $1", activityID); err != nil {
		return 0, fmt.Errorf("count activity blogs: %w", err)
	}
	return count, nil
}

// Create inserts a new blog.
func (r *BlogRepository) Create(ctx context.Context, blog *models.ActivityBlog) error {
	now := time.Now().UTC()
	blog.CreatedAt = now
	blog.UpdatedAt = now
	row := r.db.QueryRowxContext(ctx,
		"INSERT INTO activity_blogs (activity_id, title, content, is_published, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id",
		blog.ActivityID, blog.Title, blog.Content, blog.IsPublished, blog.CreatedAt, blog.UpdatedAt)
	if err := row.Scan(&blog.ID); err != nil {
		return fmt.Errorf("insert blog: %w", err)
	}
	return nil
}

// Update writes the blog's mutable fields.
func (r *BlogRepository) Update(ctx context.Context, blog *models.ActivityBlog) error {
	blog.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		"UPDATE activity_blogs SET title = $1, content = $2, is_published = $3, updated_at = $4 WHERE id = $5",
		blog.Title, blog.Content, blog.IsPublished, blog.UpdatedAt, blog.ID)
	if err != nil {
		return fmt.Errorf("update blog: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes the blog and its image rows.
func (r *BlogRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM activity_images WHERE activity_blog_id = $1", id); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete blog images: %w", err)
	}
	result, err := tx.ExecContext(ctx, "DELETE FROM activity_blogs WHERE id = $1", id)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete blog: %w", err)
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

// ListPublished returns published blogs with activity references, newest first.
func (r *BlogRepository) ListPublished(ctx context.Context) ([]models.ActivityBlogWithActivity, error) {
	query := fmt.Sprintf("SELECT %s FROM activity_blogs b JOIN activities a ON a.id = b.activity_id WHERE b.is_published ORDER BY b.created_at DESC", blogWithActivityColumns)
	var blogs []models.ActivityBlogWithActivity
	if err := r.db.SelectContext(ctx, &blogs, query); err != nil {
		return nil, fmt.Errorf("list published blogs: %w", err)
	}
	return blogs, nil
}

// FindFirstPublishedByActivity returns the activity's first published blog.
func (r *BlogRepository) FindFirstPublishedByActivity(ctx context.Context, activityID int64) (*models.ActivityBlogWithActivity, error) {
	query := fmt.Sprintf("SELECT %s FROM activity_blogs b JOIN activities a ON a.id = b.activity_id WHERE b.activity_id = $1 AND b.is_published ORDER BY b.created_at ASC LIMIT 1", blogWithActivityColumns)
	var blog models.ActivityBlogWithActivity
	if err := r.db.GetContext(ctx, &blog, query, activityID); err != nil {
		return nil, err
	}
	return &blog, nil
}

// ListRecentWithImageMarkup returns the most recent blogs whose content
// carries an <img tag, optionally restricted to published ones.
func (r *BlogRepository) ListRecentWithImageMarkup(ctx context.Context, publishedOnly bool, limit int) ([]models.ActivityBlogWithActivity, error) {
	query := fmt.Sprintf("SELECT %s FROM activity_blogs b JOIN activities a ON a.id = b.activity_id WHERE b.content LIKE '%%<img%%'", blogWithActivityColumns)
	if publishedOnly {
		query += " AND b.is_published"
	}
	query += fmt.Sprintf(" ORDER BY b.created_at DESC LIMIT %d", limit)

	var blogs []models.ActivityBlogWithActivity
	if err := r.db.SelectContext(ctx, &blogs, query); err != nil {
		return nil, fmt.Errorf("list blogs with images: %w", err)
	}
	return blogs, nil
}

// CountPublished returns the number of published blogs.
func (r *BlogRepository) CountPublished(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM activity_blogs WHERE is_published"); err != nil {
		return 0, fmt.Errorf("count published blogs: %w", err)
	}
	return count, nil
}

// CreateImage records metadata for an uploaded blog image.
func (r *BlogRepository) CreateImage(ctx context.Context, image *models.ActivityImage) error {
	row := r.db.QueryRowxContext(ctx,
		"INSERT INTO activity_images (activity_blog_id, filename, original_name, mimetype, size, url) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id",
		image.ActivityBlogID, image.Filename, image.OriginalName, image.Mimetype, image.Size, image.URL)
	if err := row.Scan(&image.ID); err != nil {
		return fmt.Errorf("insert activity image: %w", err)
	}
	return nil
}
