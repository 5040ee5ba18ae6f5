package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/it-dept/dept-cms-api/internal/models"
	appErrors "github.com/it-dept/dept-cms-api/pkg/errors"
)

type mockSubjectRepo struct {
	subjects      []models.SubjectWithRelations
	subjectByID   *models.Subject
	codeExists    bool
	resolvedIDs   []int64
	listErr       error
	findErr       error
	created       *models.Subject
	createdPrereq []int64
	updated       *models.Subject
	updatedPrereq []int64
	deletedID     int64
	resolveCalls  []string
	counts        map[string]int
}

func (m *mockSubjectRepo) ListByCourseType(ctx context.Context, courseType string) ([]models.SubjectWithRelations, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.subjects, nil
}

func (m *mockSubjectRepo) FindByID(ctx context.Context, id int64) (*models.Subject, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.subjectByID == nil {
		return nil, sql.ErrNoRows
	}
	return m.subjectByID, nil
}

func (m *mockSubjectRepo) ExistsByCode(ctx context.Context, code string, excludeID int64) (bool, error) {
	return m.codeExists, nil
}

func (m *mockSubjectRepo) ResolveCodes(ctx context.Context, courseType string, codes []string) ([]int64, error) {
	m.resolveCalls = append(m.resolveCalls, courseType)
	return m.resolvedIDs, nil
}

func (m *mockSubjectRepo) Create(ctx context.Context, subject *models.Subject, prereqIDs []int64) error {
	subject.ID = 100
	m.created = subject
	m.createdPrereq = prereqIDs
	return nil
}

func (m *mockSubjectRepo) Update(ctx context.Context, subject *models.Subject, prereqIDs []int64) error {
	m.updated = subject
	m.updatedPrereq = prereqIDs
	return nil
}

func (m *mockSubjectRepo) Delete(ctx context.Context, id int64) error {
	m.deletedID = id
	return nil
}

func (m *mockSubjectRepo) CountByCourseType(ctx context.Context, courseType string) (int, error) {
	return m.counts[courseType], nil
}

func newSubjectService(repo *mockSubjectRepo) *SubjectService {
	cache := NewCacheService(nil, nil, 0, zap.NewNop(), false)
	return NewSubjectService(repo, cache, validator.New(), zap.NewNop())
}

func subjectRel(group, code string) models.SubjectWithRelations {
	return models.SubjectWithRelations{Subject: models.Subject{GroupName: group, Code: code}}
}

func TestSubjectServiceListOrdering(t *testing.T) {
	repo := &mockSubjectRepo{subjects: []models.SubjectWithRelations{
		subjectRel("ชีพเลือก", "30901-2205"),
		subjectRel("อะไรก็ได้", "00000-0001"),
		subjectRel("ชีพบังคับ", "30901-2002"),
		subjectRel("พื้นฐานวิชาชีพ", "30001-1001"),
		subjectRel("", "20000-1101"),
		subjectRel("ชีพบังคับ", "30901-2001"),
	}}
	svc := newSubjectService(repo)

	subjects, err := svc.List(context.Background(), models.CourseTypeDiploma)
	require.NoError(t, err)

	got := make([]string, len(subjects))
	for i, s := range subjects {
		got[i] = s.Code
	}
	// Empty group first, then the three named groups, unknown groups last.
	assert.Equal(t, []string{"20000-1101", "30001-1001", "30901-2001", "30901-2002", "30901-2205", "00000-0001"}, got)
}

func TestSubjectServiceListRejectsUnknownTrack(t *testing.T) {
	svc := newSubjectService(&mockSubjectRepo{})

	_, err := svc.List(context.Background(), "masters")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSubjectServiceCreateDuplicateCode(t *testing.T) {
	repo := &mockSubjectRepo{codeExists: true}
	svc := newSubjectService(repo)

	_, err := svc.Create(context.Background(), models.CourseTypeBachelor, CreateSubjectRequest{Code: "CS101", Title: "Programming I"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrDuplicate.Code, appErr.Code)
	assert.Equal(t, 400, appErr.Status)
	assert.Nil(t, repo.created)
}

func TestSubjectServiceCreateResolvesPrereqsInTrack(t *testing.T) {
	repo := &mockSubjectRepo{resolvedIDs: []int64{1}}
	svc := newSubjectService(repo)

	subject, err := svc.Create(context.Background(), models.CourseTypeDiploma, CreateSubjectRequest{
		Code:          "30901-2001",
		Title:         "Database Systems",
		Credits:       3,
		Prerequisites: []string{"30901-1001", " ", "UNKNOWN-CODE"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), subject.ID)
	assert.Equal(t, models.CourseTypeDiploma, subject.CourseType)
	// Unknown codes are dropped silently, blanks never reach the repository.
	assert.Equal(t, []int64{1}, repo.createdPrereq)
	assert.Equal(t, []string{models.CourseTypeDiploma}, repo.resolveCalls)
}

func TestSubjectServiceUpdateNotFound(t *testing.T) {
	svc := newSubjectService(&mockSubjectRepo{})

	_, err := svc.Update(context.Background(), 99, UpdateSubjectRequest{Code: "CS101", Title: "X"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSubjectServiceUpdateResolvesInSubjectTrack(t *testing.T) {
	repo := &mockSubjectRepo{
		subjectByID: &models.Subject{ID: 7, CourseType: models.CourseTypeDiploma, Code: "30901-2001"},
		resolvedIDs: []int64{3},
	}
	svc := newSubjectService(repo)

	subject, err := svc.Update(context.Background(), 7, UpdateSubjectRequest{
		Code:          "30901-2002",
		Title:         "Updated",
		Prerequisites: []string{"30901-1001"},
	})
	require.NoError(t, err)
	assert.Equal(t, "30901-2002", subject.Code)
	assert.Equal(t, []int64{3}, repo.updatedPrereq)
	// Resolution is scoped to the stored subject's track, not the query.
	assert.Equal(t, []string{models.CourseTypeDiploma}, repo.resolveCalls)
}

func TestSubjectServiceExportDataset(t *testing.T) {
	repo := &mockSubjectRepo{subjects: []models.SubjectWithRelations{
		{
			Subject: models.Subject{GroupName: "ชีพบังคับ", Code: "30901-2001", Title: "Database Systems", Credits: 3},
			Prereqs: []models.Subject{{Code: "30901-1001"}, {Code: "30901-1002"}},
		},
	}}
	svc := newSubjectService(repo)

	dataset, err := svc.ExportDataset(context.Background(), models.CourseTypeDiploma)
	require.NoError(t, err)
	require.Len(t, dataset.Rows, 1)
	assert.Equal(t, "30901-1001, 30901-1002", dataset.Rows[0]["Prerequisites"])
	assert.Equal(t, "3", dataset.Rows[0]["Credits"])
}

func TestGroupOrderMapping(t *testing.T) {
	assert.Equal(t, 0, models.GroupOrder(""))
	assert.Equal(t, 1, models.GroupOrder("พื้นฐานวิชาชีพ"))
	assert.Equal(t, 2, models.GroupOrder("ชีพบังคับ"))
	assert.Equal(t, 3, models.GroupOrder("ชีพเลือก"))
	assert.Equal(t, 999, models.GroupOrder("anything else"))
}
