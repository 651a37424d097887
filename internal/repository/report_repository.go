package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/luct-reporting-api/internal/models"
)

const reportSelect = `SELECT r.id, r.class_id, r.course_id, r.faculty_id, r.lecturer_id,
TO_CHAR(r.date_of_lecture, 'YYYY-MM-DD') AS date_of_lecture, r.week_of_reporting,
r.actual_students_present, COALESCE(en.total, 0) AS total_registered_students, r.status,
r.topic_taught, r.learning_outcomes, r.recommendations, r.venue,
TO_CHAR(r.scheduled_lecture_time, 'HH24:MI') AS scheduled_lecture_time, r.created_at,
c.class_code, c.semester AS class_semester, co.course_name, co.course_code, f.faculty_name,
u.first_name AS lecturer_first_name, u.last_name AS lecturer_last_name
FROM reports r
LEFT JOIN classes c ON c.id = r.class_id
LEFT JOIN courses co ON co.id = r.course_id
LEFT JOIN faculties f ON f.id = r.faculty_id
LEFT JOIN users u ON u.id = r.lecturer_id
LEFT JOIN ` + activeEnrolmentCounts + ` en ON en.class_id = r.class_id`

var reportScope = scopeColumns{owner: "r.lecturer_id", faculty: "r.faculty_id", class: "r.class_id"}

// ReportRepository persists lecture reports.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository constructs a report repository.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// List returns reports newest lecture first.
func (r *ReportRepository) List(ctx context.Context, filter models.ReportFilter) ([]models.ReportRecord, error) {
	var b whereBuilder
	b.scope(filter.Scope, reportScope)
	applyReportFilter(&b, filter)

	query := reportSelect + b.String() + " ORDER BY r.date_of_lecture DESC, r.created_at DESC" + limitClause(filter.Limit)
	var rows []models.ReportRecord
	if err := r.db.SelectContext(ctx, &rows, query, b.Args()...); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return rows, nil
}

func applyReportFilter(b *whereBuilder, filter models.ReportFilter) {
	if filter.ID != nil {
		b.eq("r.id", *filter.ID)
	}
	if filter.FacultyID != nil {
		b.eq("r.faculty_id", *filter.FacultyID)
	}
	if filter.LecturerID != nil {
		b.eq("r.lecturer_id", *filter.LecturerID)
	}
	if filter.ClassID != nil {
		b.eq("r.class_id", *filter.ClassID)
	}
	if filter.Status != "" {
		b.eq("r.status", filter.Status)
	}
	if filter.StartDate != nil {
		b.cond("r.date_of_lecture >= %s", filter.StartDate.Format(models.DateLayout))
	}
	if filter.EndDate != nil {
		b.cond("r.date_of_lecture <= %s", filter.EndDate.Format(models.DateLayout))
	}
}

// Find returns a single report visible under scope.
func (r *ReportRepository) Find(ctx context.Context, id int64, scope models.Scope) (*models.ReportRecord, error) {
	rows, err := r.List(ctx, models.ReportFilter{Scope: scope, ID: &id, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, sql.ErrNoRows
	}
	return &rows[0], nil
}

// Totals counts reports under filter, and those lectured in [from, to).
func (r *ReportRepository) Totals(ctx context.Context, filter models.ReportFilter, from, to time.Time) (models.ReportTotals, error) {
	var b whereBuilder
	fromArg := b.arg(from.Format(models.DateLayout))
	toArg := b.arg(to.Format(models.DateLayout))
	b.scope(filter.Scope, reportScope)
	applyReportFilter(&b, filter)

	query := `SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE r.date_of_lecture >= ` + fromArg +
		` AND r.date_of_lecture < ` + toArg + `) AS in_window FROM reports r` + b.String()
	var totals models.ReportTotals
	if err := r.db.GetContext(ctx, &totals, query, b.Args()...); err != nil {
		return totals, fmt.Errorf("count reports: %w", err)
	}
	return totals, nil
}

// Create inserts a report for a class the lecturer owns. Faculty and course
// come from the class; sql.ErrNoRows means the class is missing, not owned,
// or no longer attached to a course.
func (r *ReportRepository) Create(ctx context.Context, report models.NewReport) (int64, error) {
	const query = `INSERT INTO reports (faculty_id, class_id, course_id, lecturer_id, week_of_reporting, date_of_lecture,
actual_students_present, venue, scheduled_lecture_time, topic_taught, learning_outcomes, recommendations, status)
SELECT co.faculty_id, c.id, c.course_id, c.lecturer_id, CAST(:week_of_reporting AS INT), CAST(:date_of_lecture AS DATE),
CAST(:actual_students_present AS INT), CAST(:venue AS VARCHAR), CAST(:scheduled_lecture_time AS TIME),
CAST(:topic_taught AS TEXT), CAST(:learning_outcomes AS TEXT), CAST(:recommendations AS TEXT), CAST(:status AS VARCHAR)
FROM classes c JOIN courses co ON co.id = c.course_id
WHERE c.id = :class_id AND c.lecturer_id = :lecturer_id
RETURNING id`
	id, err := insertReturningID(ctx, r.db, query, report)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, err
		}
		return 0, fmt.Errorf("create report: %w", err)
	}
	return id, nil
}
