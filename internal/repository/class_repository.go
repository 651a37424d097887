package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/luct-reporting-api/internal/models"
)

const classColumns = `SELECT c.id, c.class_code, c.academic_year, c.semester, c.venue,
TO_CHAR(c.scheduled_time, 'HH24:MI') AS scheduled_time, c.mode_of_delivery,
COALESCE(en.total, 0) AS total_registered_students,
co.id AS course_id, co.course_name, co.course_code, co.faculty_id AS course_faculty_id, f.faculty_name,
u.id AS lecturer_id, u.first_name AS lecturer_first_name, u.last_name AS lecturer_last_name`

const classJoins = `
FROM classes c
LEFT JOIN courses co ON co.id = c.course_id
LEFT JOIN faculties f ON f.id = co.faculty_id
LEFT JOIN users u ON u.id = c.lecturer_id
LEFT JOIN ` + activeEnrolmentCounts + ` en ON en.class_id = c.id`

// ClassRepository handles persistence for classes.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a new ClassRepository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns classes visible under the filter's scope.
func (r *ClassRepository) List(ctx context.Context, filter models.ClassFilter) ([]models.ClassRecord, error) {
	query, args := buildClassQuery(filter, nil)
	var rows []models.ClassRecord
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return rows, nil
}

// Get returns one class by id regardless of scope.
func (r *ClassRepository) Get(ctx context.Context, id int64) (*models.ClassRecord, error) {
	query, args := buildClassQuery(models.ClassFilter{Scope: models.AllScope()}, &id)
	var row models.ClassRecord
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get class: %w", err)
	}
	return &row, nil
}

func buildClassQuery(filter models.ClassFilter, id *int64) (string, []interface{}) {
	var b whereBuilder
	columns := classColumns
	joins := classJoins

	if filter.Scope.Kind == models.ScopeEnrolled {
		columns += ", se.enrollment_status, se.enrolled_at"
		joins += " JOIN student_enrollments se ON se.class_id = c.id AND se.student_id = " + b.arg(filter.Scope.UserID) +
			" AND se.enrollment_status = 'active'"
	} else {
		b.scope(filter.Scope, scopeColumns{owner: "c.lecturer_id", faculty: "co.faculty_id"})
	}
	if filter.ViewerID != nil {
		columns += ", (ve.id IS NOT NULL) AS is_enrolled"
		joins += " LEFT JOIN student_enrollments ve ON ve.class_id = c.id AND ve.student_id = " + b.arg(*filter.ViewerID) +
			" AND ve.enrollment_status = 'active'"
	}

	if id != nil {
		b.eq("c.id", *id)
	}
	if filter.FacultyID != nil {
		b.eq("co.faculty_id", *filter.FacultyID)
	}
	if filter.CourseID != nil {
		b.eq("c.course_id", *filter.CourseID)
	}
	if filter.ProgramID != nil {
		b.eq("co.program_id", *filter.ProgramID)
	}
	if filter.LecturerID != nil {
		b.eq("c.lecturer_id", *filter.LecturerID)
	}
	if filter.Semester != "" {
		b.eq("c.semester", filter.Semester)
	}
	if filter.AcademicYear != "" {
		b.eq("c.academic_year", filter.AcademicYear)
	}

	return columns + joins + b.String() + classOrder(filter.Order), b.Args()
}

func classOrder(order models.ClassOrder) string {
	switch order {
	case models.ClassOrderTerm:
		return " ORDER BY c.academic_year DESC, c.semester DESC, c.class_code"
	case models.ClassOrderCatalog:
		return " ORDER BY c.academic_year DESC, c.semester, co.course_name"
	default:
		return " ORDER BY c.scheduled_time NULLS LAST, c.id"
	}
}

// Ownership returns the minimal class row used for ownership and roster checks.
func (r *ClassRepository) Ownership(ctx context.Context, id int64) (*models.ClassOwnership, error) {
	const query = `SELECT c.id, c.course_id, c.lecturer_id, co.faculty_id, c.venue,
TO_CHAR(c.scheduled_time, 'HH24:MI') AS scheduled_time,
(SELECT COUNT(*) FROM student_enrollments se WHERE se.class_id = c.id AND se.enrollment_status = 'active') AS active_enrolments
FROM classes c LEFT JOIN courses co ON co.id = c.course_id WHERE c.id = $1`
	var row models.ClassOwnership
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get class ownership: %w", err)
	}
	return &row, nil
}

// Create inserts a class and returns its id.
func (r *ClassRepository) Create(ctx context.Context, input models.ClassInput) (int64, error) {
	const query = `INSERT INTO classes (class_code, course_id, academic_year, semester, scheduled_time, venue, mode_of_delivery, lecturer_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	var id int64
	if err := r.db.QueryRowxContext(ctx, query, input.ClassCode, input.CourseID, input.AcademicYear, input.Semester,
		input.ScheduledTime, input.Venue, input.Mode, input.LecturerID).Scan(&id); err != nil {
		return 0, fmt.Errorf("create class: %w", err)
	}
	return id, nil
}

// Update replaces a class's editable fields.
func (r *ClassRepository) Update(ctx context.Context, id int64, input models.ClassInput) error {
	const query = `UPDATE classes SET class_code = $2, course_id = $3, academic_year = $4, semester = $5,
scheduled_time = $6, venue = $7, mode_of_delivery = $8, lecturer_id = $9, updated_at = NOW() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, input.ClassCode, input.CourseID, input.AcademicYear, input.Semester,
		input.ScheduledTime, input.Venue, input.Mode, input.LecturerID)
	if err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	return expectAffected(res, "update class")
}

// AssignLecturer sets or clears the class lecturer.
func (r *ClassRepository) AssignLecturer(ctx context.Context, id int64, lecturerID *int64) error {
	const query = `UPDATE classes SET lecturer_id = $2, updated_at = NOW() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, lecturerID)
	if err != nil {
		return fmt.Errorf("assign lecturer: %w", err)
	}
	return expectAffected(res, "assign lecturer")
}

// Delete removes a class. Its reports keep a null class reference.
func (r *ClassRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	return expectAffected(res, "delete class")
}

// expectAffected maps a zero-row write to sql.ErrNoRows.
func expectAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
