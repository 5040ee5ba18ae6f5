package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/it-dept/dept-cms-api/internal/models"
	appErrors "github.com/it-dept/dept-cms-api/pkg/errors"
)

type mockBlogRepo struct {
	blogs          []models.ActivityBlogAdmin
	blogByID       *models.ActivityBlogWithActivity
	countByAct     int
	published      []models.ActivityBlogWithActivity
	withMarkup     map[bool][]models.ActivityBlogWithActivity
	markupErr      error
	created        *models.ActivityBlog
	updated        *models.ActivityBlog
	deletedID      int64
	publishedCount int
	markupCalls    []bool
}

func (m *mockBlogRepo) List(ctx context.Context, activityID int64) ([]models.ActivityBlogAdmin, error) {
	return m.blogs, nil
}

func (m *mockBlogRepo) FindByID(ctx context.Context, id int64) (*models.ActivityBlogWithActivity, error) {
	if m.blogByID == nil {
		return nil, sql.ErrNoRows
	}
	return m.blogByID, nil
}

func (m *mockBlogRepo) CountByActivity(ctx context.Context, activityID int64) (int, error) {
	return m.countByAct, nil
}

func (m *mockBlogRepo) Create(ctx context.Context, blog *models.ActivityBlog) error {
	blog.ID = 50
	m.created = blog
	return nil
}

func (m *mockBlogRepo) Update(ctx context.Context, blog *models.ActivityBlog) error {
	m.updated = blog
	return nil
}

func (m *mockBlogRepo) Delete(ctx context.Context, id int64) error {
	m.deletedID = id
	return nil
}

func (m *mockBlogRepo) ListPublished(ctx context.Context) ([]models.ActivityBlogWithActivity, error) {
	return m.published, nil
}

func (m *mockBlogRepo) FindFirstPublishedByActivity(ctx context.Context, activityID int64) (*models.ActivityBlogWithActivity, error) {
	if m.blogByID == nil {
		return nil, sql.ErrNoRows
	}
	return m.blogByID, nil
}

func (m *mockBlogRepo) ListRecentWithImageMarkup(ctx context.Context, publishedOnly bool, limit int) ([]models.ActivityBlogWithActivity, error) {
	m.markupCalls = append(m.markupCalls, publishedOnly)
	if m.markupErr != nil {
		return nil, m.markupErr
	}
	return m.withMarkup[publishedOnly], nil
}

func (m *mockBlogRepo) CountPublished(ctx context.Context) (int, error) {
	return m.publishedCount, nil
}

type mockActivityLookup struct {
	activity *models.Activity
}

func (m *mockActivityLookup) FindByID(ctx context.Context, id int64) (*models.Activity, error) {
	if m.activity == nil {
		return nil, sql.ErrNoRows
	}
	return m.activity, nil
}

func newBlogService(repo *mockBlogRepo, lookup *mockActivityLookup) *BlogService {
	cache := NewCacheService(nil, nil, 0, zap.NewNop(), false)
	return NewBlogService(repo, lookup, cache, validator.New(), zap.NewNop())
}

func carouselBlog(id int64, title, activityTitle, content string) models.ActivityBlogWithActivity {
	return models.ActivityBlogWithActivity{
		ActivityBlog: models.ActivityBlog{ID: id, Title: title, Content: content},
		Activity:     models.ActivityRef{ID: id, Title: activityTitle},
	}
}

func TestBlogServiceCreateRejectsSecondBlog(t *testing.T) {
	repo := &mockBlogRepo{countByAct: 1}
	svc := newBlogService(repo, &mockActivityLookup{activity: &models.Activity{ID: 5}})

	_, err := svc.Create(context.Background(), CreateBlogRequest{ActivityID: 5, Title: "T", Content: "C"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrDuplicate.Code, appErr.Code)
	assert.Equal(t, 400, appErr.Status)
	assert.Nil(t, repo.created)
}

func TestBlogServiceCreateMissingActivity(t *testing.T) {
	svc := newBlogService(&mockBlogRepo{}, &mockActivityLookup{})

	_, err := svc.Create(context.Background(), CreateBlogRequest{ActivityID: 5, Title: "T", Content: "C"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBlogServiceCreateSuccess(t *testing.T) {
	repo := &mockBlogRepo{}
	svc := newBlogService(repo, &mockActivityLookup{activity: &models.Activity{ID: 5}})

	blog, err := svc.Create(context.Background(), CreateBlogRequest{ActivityID: 5, Title: "T", Content: "C", IsPublished: true})
	require.NoError(t, err)
	assert.Equal(t, int64(50), blog.ID)
	assert.True(t, blog.IsPublished)
}

func TestBlogServiceUpdatePartialPatch(t *testing.T) {
	repo := &mockBlogRepo{blogByID: &models.ActivityBlogWithActivity{
		ActivityBlog: models.ActivityBlog{ID: 3, ActivityID: 5, Title: "Old", Content: "Body", IsPublished: false},
	}}
	svc := newBlogService(repo, &mockActivityLookup{})

	published := true
	blog, err := svc.Update(context.Background(), 3, UpdateBlogRequest{IsPublished: &published})
	require.NoError(t, err)
	assert.Equal(t, "Old", blog.Title)
	assert.Equal(t, "Body", blog.Content)
	assert.True(t, blog.IsPublished)
}

func TestBlogServiceGetPublicByActivityNotFound(t *testing.T) {
	svc := newBlogService(&mockBlogRepo{}, &mockActivityLookup{})

	_, err := svc.GetPublicByActivity(context.Background(), 5)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBlogServiceCarouselExtractsMatchingImages(t *testing.T) {
	content := `<p>intro</p>` +
		`<img class="a" src="/api/images/activity-blogs/one.png" alt="x">` +
		`<img src="https://cdn.example.com/other.png">` +
		`<img src="/api/images/activity-blogs/two.png">`
	repo := &mockBlogRepo{withMarkup: map[bool][]models.ActivityBlogWithActivity{
		true: {carouselBlog(7, "Open House", "Open House 2025", content)},
	}}
	svc := newBlogService(repo, &mockActivityLookup{})

	images := svc.Carousel(context.Background())
	require.Len(t, images, 2)
	assert.Equal(t, "7-0", images[0].ID)
	assert.Equal(t, "/api/images/activity-blogs/one.png", images[0].URL)
	assert.Equal(t, "7-1", images[1].ID)
	assert.Equal(t, "Open House", images[0].ActivityBlog.Title)
	assert.Equal(t, "Open House 2025", images[0].ActivityBlog.Activity.Title)
	// Published blogs yielded images, no fallback scan.
	assert.Equal(t, []bool{true}, repo.markupCalls)
}

func TestBlogServiceCarouselFallsBackToDrafts(t *testing.T) {
	draft := `<img src="/api/images/activity-blogs/draft.png">`
	repo := &mockBlogRepo{withMarkup: map[bool][]models.ActivityBlogWithActivity{
		true:  {carouselBlog(1, "Published", "A", `<img src="https://elsewhere/x.png">`)},
		false: {carouselBlog(2, "Draft", "B", draft)},
	}}
	svc := newBlogService(repo, &mockActivityLookup{})

	images := svc.Carousel(context.Background())
	require.Len(t, images, 1)
	assert.Equal(t, "2-0", images[0].ID)
	assert.Equal(t, []bool{true, false}, repo.markupCalls)
}

func TestBlogServiceCarouselCapsImageCount(t *testing.T) {
	var blogs []models.ActivityBlogWithActivity
	for i := 0; i < 3; i++ {
		content := ""
		for j := 0; j < 5; j++ {
			content += fmt.Sprintf(`<img src="/api/images/activity-blogs/b%d-%d.png">`, i, j)
		}
		blogs = append(blogs, carouselBlog(int64(i+1), "T", "A", content))
	}
	repo := &mockBlogRepo{withMarkup: map[bool][]models.ActivityBlogWithActivity{true: blogs}}
	svc := newBlogService(repo, &mockActivityLookup{})

	images := svc.Carousel(context.Background())
	assert.Len(t, images, 10)
}

func TestBlogServiceCarouselDegradesToEmptyOnError(t *testing.T) {
	repo := &mockBlogRepo{markupErr: sql.ErrConnDone}
	svc := newBlogService(repo, &mockActivityLookup{})

	images := svc.Carousel(context.Background())
	assert.NotNil(t, images)
	assert.Empty(t, images)
}
