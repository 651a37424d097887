package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/luct-reporting-api/internal/models"
)

var classRowColumns = []string{"id", "class_code", "academic_year", "semester", "venue", "scheduled_time", "mode_of_delivery",
	"total_registered_students", "course_id", "course_name", "course_code", "course_faculty_id", "faculty_name",
	"lecturer_id", "lecturer_first_name", "lecturer_last_name"}

func TestClassListOwnScopeOrdersBySchedule(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	rows := sqlmock.NewRows(classRowColumns).
		AddRow(1, "DIT-A", "2024/2025", "Semester 1", "Hall 6", "08:30", "On Campus", 2, 10, "Web Development", "DIWD1110", 3, "FICT", 4, "Boitumelo", "Tebello").
		AddRow(2, "DIT-B", "2024/2025", "Semester 1", nil, nil, "Online", 0, nil, nil, nil, nil, nil, 4, "Boitumelo", "Tebello")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE c.lecturer_id = $1 ORDER BY c.scheduled_time NULLS LAST, c.id")).
		WithArgs(int64(4)).
		WillReturnRows(rows)

	classes, err := repo.List(context.Background(), models.ClassFilter{Scope: models.OwnScope(4)})
	require.NoError(t, err)
	require.Len(t, classes, 2)

	views := models.ClassViews(classes)
	require.NotNil(t, views[0].Schedule)
	assert.Equal(t, "08:30 • Hall 6", *views[0].Schedule)
	assert.Equal(t, 2, views[0].TotalRegisteredStudents)
	assert.Nil(t, views[1].Course)
	assert.Nil(t, views[1].Schedule)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassListEnrolledJoinsActiveEnrolments(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	now := time.Now()
	columns := append(append([]string{}, classRowColumns...), "enrollment_status", "enrolled_at")
	mock.ExpectQuery(regexp.QuoteMeta("JOIN student_enrollments se ON se.class_id = c.id AND se.student_id = $1 AND se.enrollment_status = 'active' ORDER BY c.academic_year DESC, c.semester DESC")).
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(1, "DIT-A", "2024/2025", "Semester 1", nil, nil, "On Campus", 1, 10, "Web", "W1", 3, "FICT", nil, nil, nil, "active", now))

	classes, err := repo.List(context.Background(), models.ClassFilter{Scope: models.EnrolledScope(8), Order: models.ClassOrderTerm})
	require.NoError(t, err)
	require.Len(t, classes, 1)
	require.NotNil(t, classes[0].EnrollmentStatus)
	assert.Equal(t, "active", *classes[0].EnrollmentStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassListCatalogMarksViewerEnrolment(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	faculty := int64(3)
	viewer := int64(8)
	columns := append(append([]string{}, classRowColumns...), "is_enrolled")
	mock.ExpectQuery(regexp.QuoteMeta("ve.student_id = $1 AND ve.enrollment_status = 'active' WHERE co.faculty_id = $2 AND c.semester = $3 ORDER BY c.academic_year DESC, c.semester, co.course_name")).
		WithArgs(int64(8), int64(3), "Semester 2").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(5, "BIT-C", "2024/2025", "Semester 2", "Lab 1", nil, "On Campus", 12, 10, "Networks", "N1", 3, "FICT", 4, "Boitumelo", "Tebello", true))

	classes, err := repo.List(context.Background(), models.ClassFilter{
		Scope: models.AllScope(), FacultyID: &faculty, Semester: "Semester 2", ViewerID: &viewer, Order: models.ClassOrderCatalog,
	})
	require.NoError(t, err)
	view := classes[0].View()
	require.NotNil(t, view.EnrolledCount)
	assert.Equal(t, 12, *view.EnrolledCount)
	require.NotNil(t, view.LecturerName)
	assert.Equal(t, "Boitumelo Tebello", *view.LecturerName)
	assert.Equal(t, true, *view.IsEnrolled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassListFacultyScopeWithoutFacultyMatchesNothing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE FALSE")).WillReturnRows(sqlmock.NewRows(classRowColumns))

	classes, err := repo.List(context.Background(), models.ClassFilter{Scope: models.FacultyScope(2, nil)})
	require.NoError(t, err)
	assert.Empty(t, classes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassOwnership(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("AS active_enrolments")).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "course_id", "lecturer_id", "faculty_id", "venue", "scheduled_time", "active_enrolments"}).
			AddRow(1, 10, 4, 3, "Hall 6", "08:30", 25))

	owner, err := repo.Ownership(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), *owner.LecturerID)
	assert.Equal(t, 25, owner.ActiveEnrolment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassDeleteMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM classes WHERE id = $1")).WithArgs(int64(9)).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), 9), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
