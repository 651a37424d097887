package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/luct-reporting-api/internal/models"
	"github.com/noah-isme/luct-reporting-api/pkg/database"
)

func TestFacultyOptions(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFacultyRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, faculty_code, faculty_name FROM faculties ORDER BY faculty_name")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "faculty_code", "faculty_name"}).
			AddRow(1, "FABE", "Architecture & Built Environment").
			AddRow(2, "FICT", "Information & Communication Technology"))

	options, err := repo.Options(context.Background())
	require.NoError(t, err)
	require.Len(t, options, 2)
	assert.Equal(t, "FICT", options[1].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFacultyDeleteReferenced(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFacultyRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM faculties WHERE id = $1")).
		WithArgs(int64(1)).
		WillReturnError(&pq.Error{Code: "23503"})

	err := repo.Delete(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, database.IsForeignKeyViolation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramListFacultyScope(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	faculty := int64(2)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.faculty_id = $1 ORDER BY p.program_name")).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "program_code", "program_name", "level", "duration_years", "academic_year",
			"description", "faculty_id", "faculty_name", "course_count", "created_at"}).
			AddRow(1, "DIT", "Diploma in IT", "Diploma", 3, "2024/2025", nil, 2, "FICT", 4, time.Now()))

	programs, err := repo.List(context.Background(), models.ProgramFilter{Scope: models.FacultyScope(5, &faculty)})
	require.NoError(t, err)
	require.Len(t, programs, 1)
	assert.Equal(t, 4, programs[0].CourseCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramCreateOfferingDefaultsCore(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO course_offerings")).
		WithArgs(int64(1), int64(10), "2024/2025", "Semester 1", 1, true).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	id, err := repo.CreateOffering(context.Background(), 1, models.CourseOfferingInput{
		CourseID: 10, AcademicYear: "2024/2025", Semester: "Semester 1", YearLevel: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseListByProgram(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	program := int64(1)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE c.program_id = $1 ORDER BY c.course_name")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "course_code", "course_name", "description", "faculty_id", "faculty_name",
			"program_id", "program_name", "class_count", "created_at"}))

	courses, err := repo.List(context.Background(), models.CourseFilter{ProgramID: &program})
	require.NoError(t, err)
	assert.Empty(t, courses)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationCodeFindByCode(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRegistrationCodeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE rc.code = $1 AND rc.role = $2")).
		WithArgs("FICT-LECT-2025", models.RoleLecturer).
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "role", "faculty_id", "faculty_name", "is_active", "expires_at", "created_at"}).
			AddRow(1, "FICT-LECT-2025", "lecturer", 2, "FICT", true, nil, time.Now()))

	code, err := repo.FindByCode(context.Background(), "FICT-LECT-2025", models.RoleLecturer)
	require.NoError(t, err)
	assert.True(t, code.Usable(time.Now()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
