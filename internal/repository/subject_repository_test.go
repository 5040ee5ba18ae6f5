package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/it-dept/dept-cms-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSubjectRepositoryListByCourseType(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	now := time.Now()
	subjectCols := []string{"id", "course_type", "group_name", "code", "title", "credits", "created_at", "updated_at"}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, course_type, group_name, code, title, credits, created_at, updated_at FROM subjects WHERE course_type = $1 ORDER BY group_name ASC, code ASC")).
		WithArgs(models.CourseTypeBachelor).
		WillReturnRows(sqlmock.NewRows(subjectCols).
			AddRow(1, "bachelor", "", "CS101", "Programming I", 3, now, now).
			AddRow(2, "bachelor", "", "CS102", "Programming II", 3, now, now))

	mock.ExpectQuery("SELECT sp.subject_id AS owner_id, s.id").
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"owner_id", "id", "course_type", "group_name", "code", "title", "credits", "created_at", "updated_at"}).
			AddRow(2, 1, "bachelor", "", "CS101", "Programming I", 3, now, now))

	mock.ExpectQuery("SELECT id, subject_id, theory_hours").
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "subject_id", "theory_hours", "practical_hours", "self_study_hours", "english_title", "original_code", "original_title", "description"}).
			AddRow(7, 2, 3, 2, 5, nil, nil, nil, nil))

	subjects, err := repo.ListByCourseType(context.Background(), models.CourseTypeBachelor)
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Empty(t, subjects[0].Prereqs)
	require.Len(t, subjects[1].Prereqs, 1)
	assert.Equal(t, "CS101", subjects[1].Prereqs[0].Code)
	require.NotNil(t, subjects[1].Detail)
	assert.Equal(t, int64(7), subjects[1].Detail.ID)
	assert.Nil(t, subjects[0].Detail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryExistsByCode(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM subjects WHERE code = $1 LIMIT 1")).
		WithArgs("CS101").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsByCode(context.Background(), "CS101", 0)
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM subjects WHERE code = $1 AND id <> $2 LIMIT 1")).
		WithArgs("CS101", int64(5)).
		WillReturnError(sql.ErrNoRows)

	exists, err = repo.ExistsByCode(context.Background(), "CS101", 5)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryCreateWithPrereqs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO subjects").
		WithArgs("bachelor", "", "CS201", "Data Structures", 3, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectExec("INSERT INTO subject_prereqs").
		WithArgs(int64(10), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO subject_prereqs").
		WithArgs(int64(10), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	subject := &models.Subject{CourseType: "bachelor", Code: "CS201", Title: "Data Structures", Credits: 3}
	err := repo.Create(context.Background(), subject, []int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, int64(10), subject.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryCreateRollsBackOnPrereqFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO subjects").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectExec("INSERT INTO subject_prereqs").
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Subject{CourseType: "bachelor", Code: "CS201", Title: "X"}, []int64{1})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryUpdateReplacesPrereqs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE subjects SET").
		WithArgs("", "CS201", "Data Structures", 4, sqlmock.AnyArg(), int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM subject_prereqs WHERE subject_id = $1")).
		WithArgs(int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO subject_prereqs").
		WithArgs(int64(10), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	subject := &models.Subject{ID: 10, CourseType: "bachelor", Code: "CS201", Title: "Data Structures", Credits: 4}
	require.NoError(t, repo.Update(context.Background(), subject, []int64{3}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryUpdateMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE subjects SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), &models.Subject{ID: 99, Code: "X", Title: "Y"}, nil)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryDeleteCascades(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM subject_prereqs WHERE subject_id = $1 OR prereq_id = $1")).
		WithArgs(int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM subject_details WHERE subject_id = $1")).
		WithArgs(int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM subjects WHERE id = $1")).
		WithArgs(int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 10))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryResolveCodes(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery("SELECT id FROM subjects WHERE course_type = .+ AND code IN").
		WithArgs("diploma", "CS101", "NOPE").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	ids, err := repo.ResolveCodes(context.Background(), "diploma", []string{"CS101", "NOPE"})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
