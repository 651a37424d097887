package repository

import (
	"context"
	"database/sql"
	"errors"
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

var reportRowColumns = []string{"id", "class_id", "course_id", "faculty_id", "lecturer_id", "date_of_lecture", "week_of_reporting",
	"actual_students_present", "total_registered_students", "status", "topic_taught", "learning_outcomes", "recommendations",
	"venue", "scheduled_lecture_time", "created_at", "class_code", "class_semester", "course_name", "course_code",
	"faculty_name", "lecturer_first_name", "lecturer_last_name"}

func TestReportListFacultyFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	faculty := int64(3)
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE r.faculty_id = $1 AND r.status = $2 AND r.date_of_lecture >= $3 ORDER BY r.date_of_lecture DESC, r.created_at DESC LIMIT 10")).
		WithArgs(int64(3), "submitted", "2024-03-01").
		WillReturnRows(sqlmock.NewRows(reportRowColumns).
			AddRow(7, 1, 10, 3, 4, "2024-03-04", 10, 18, 20, "submitted", "HTTP", "Understand verbs", nil,
				"Hall 6", "08:30", time.Now(), "DIT-A", "Semester 1", "Web", "W1", "FICT", "Boitumelo", "Tebello"))

	reports, err := repo.List(context.Background(), models.ReportFilter{
		Scope: models.FacultyScope(2, &faculty), Status: "submitted", StartDate: &start, Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, reports, 1)
	view := reports[0].View()
	require.NotNil(t, view.AttendancePercentage)
	assert.Equal(t, 90, *view.AttendancePercentage)
	assert.Equal(t, "HTTP", view.Summary)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportFindEnrolledScope(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("se.class_id = r.class_id AND se.student_id = $1 AND se.enrollment_status = 'active') AND r.id = $2")).
		WithArgs(int64(8), int64(7)).
		WillReturnRows(sqlmock.NewRows(reportRowColumns))

	_, err := repo.Find(context.Background(), 7, models.EnrolledScope(8))
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportTotals(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	from := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("COUNT(*) FILTER (WHERE r.date_of_lecture >= $1 AND r.date_of_lecture < $2) AS in_window FROM reports r")).
		WithArgs("2024-03-04", "2024-03-11").
		WillReturnRows(sqlmock.NewRows([]string{"total", "in_window"}).AddRow(12, 3))

	totals, err := repo.Totals(context.Background(), models.ReportFilter{Scope: models.AllScope()}, from, from.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Equal(t, models.ReportTotals{Total: 12, InWindow: 3}, totals)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportCreateNotOwned(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectQuery("INSERT INTO reports").WillReturnError(sql.ErrNoRows)

	_, err := repo.Create(context.Background(), models.NewReport{ClassID: 1, LecturerID: 99, WeekOfReporting: 1})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportCreateRequiresCourse(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	// A class detached from its course yields no row from the inner join.
	mock.ExpectQuery(regexp.QuoteMeta("FROM classes c JOIN courses co ON co.id = c.course_id")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.Create(context.Background(), models.NewReport{ClassID: 1, LecturerID: 4, WeekOfReporting: 1})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	mock.ExpectQuery("INSERT INTO reports").WillReturnError(&pq.Error{Code: "23505", Constraint: "reports_class_id_date_of_lecture_key"})

	_, err := repo.Create(context.Background(), models.NewReport{ClassID: 1, LecturerID: 4, WeekOfReporting: 1})
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))
	assert.False(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportCreateReturnsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE c.id = ? AND c.lecturer_id = ?")).
		WithArgs(10, date, 18, "Hall 6", "08:30", "HTTP", "Verbs", nil, "submitted", int64(1), int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(77))

	id, err := repo.Create(context.Background(), models.NewReport{
		ClassID: 1, LecturerID: 4, WeekOfReporting: 10, DateOfLecture: date, ActualStudentsPresent: 18,
		Venue: "Hall 6", ScheduledLectureTime: "08:30", TopicTaught: "HTTP", LearningOutcomes: "Verbs", Status: "submitted",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(77), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}
