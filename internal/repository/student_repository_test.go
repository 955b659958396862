package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-results-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var studentRowColumns = []string{"id", "name", "father_name", "mother_name", "mobile", "gender", "blood_group", "birth_date", "address", "photo_url", "status", "created_at", "updated_at"}

func TestStudentRepositoryListDefaults(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(append(append([]string{}, studentRowColumns...), "class_name", "roll_number", "year")).
		AddRow("s1", "Ahmed", "Hassan", "Rina", "0171", "Male", "A_Positive", nil, []byte(`{"district":"Dhaka"}`), "", "Active", now, now, "Class_6", 5, 2024).
		AddRow("s2", "Fatima", "", "", "", "Female", "Unknown", nil, []byte(`{}`), "", "Active", now, now, nil, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + studentColumns + ", lc.class_name, lc.roll_number, lc.year FROM students s " + latestRecordJoin + " WHERE 1=1 ORDER BY s.created_at DESC LIMIT 20 OFFSET 0")).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students s " + latestRecordJoin + " WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	students, total, err := repo.List(context.Background(), models.StudentFilter{})
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, 2, total)
	require.NotNil(t, students[0].ClassName)
	assert.Equal(t, models.Class6, *students[0].ClassName)
	assert.Equal(t, "Dhaka", students[0].Address.District)
	assert.Nil(t, students[1].RollNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	where := " WHERE 1=1 AND (LOWER(s.name) LIKE $1 OR CAST(lc.roll_number AS TEXT) LIKE $1) AND s.status = $2 AND lc.class_name = $3 AND lc.year = $4"
	mock.ExpectQuery(regexp.QuoteMeta(where+" ORDER BY s.name ASC LIMIT 10 OFFSET 10")).
		WithArgs("%ahm%", "Active", "Class_7", 2024).
		WillReturnRows(sqlmock.NewRows(studentRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs("%ahm%", "Active", "Class_7", 2024).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, total, err := repo.List(context.Background(), models.StudentFilter{
		Search:    "Ahm",
		Status:    models.StudentActive,
		ClassName: models.Class7,
		Year:      2024,
		Page:      2,
		PageSize:  10,
		SortBy:    "name",
		SortOrder: "asc",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM students s WHERE s.id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestStudentRepositoryCreateWithClassRecord(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO students").
		WithArgs(sqlmock.AnyArg(), "Ahmed", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "Active", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO class_records").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "Class_6", 5, 2024, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	student := &models.Student{Name: "Ahmed"}
	record := &models.ClassRecord{ClassName: models.Class6, RollNumber: 5, Year: 2024}
	require.NoError(t, repo.CreateWithClassRecord(context.Background(), student, record))
	assert.NotEmpty(t, student.ID)
	assert.Equal(t, student.ID, record.StudentID)
	assert.Equal(t, models.StudentActive, student.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateRollsBackOnRecordFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO students").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO class_records").WillReturnError(errors.New("duplicate"))
	mock.ExpectRollback()

	err := repo.CreateWithClassRecord(context.Background(), &models.Student{Name: "Ahmed"}, &models.ClassRecord{ClassName: models.Class6, Year: 2024})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create class record")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET status = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("s1", "Graduated", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET status")).
		WithArgs("ghost", "Inactive", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpdateStatus(context.Background(), "s1", models.StudentGraduated))
	assert.ErrorIs(t, repo.UpdateStatus(context.Background(), "ghost", models.StudentInactive), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCountByStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT status AS key, COUNT(*) AS count FROM students GROUP BY status")).
		WillReturnRows(sqlmock.NewRows([]string{"key", "count"}).AddRow("Active", 3).AddRow("Graduated", 1))

	rows, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.CountRow{{Key: "Active", Count: 3}, {Key: "Graduated", Count: 1}}, rows)
}
