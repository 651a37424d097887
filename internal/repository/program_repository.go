package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/luct-reporting-api/internal/models"
)

const programSelect = `SELECT p.id, p.program_code, p.program_name, p.level, p.duration_years, p.academic_year,
p.description, p.faculty_id, f.faculty_name, COALESCE(cc.total, 0) AS course_count, p.created_at
FROM programs p
LEFT JOIN faculties f ON f.id = p.faculty_id
LEFT JOIN (SELECT program_id, COUNT(*) AS total FROM courses GROUP BY program_id) cc ON cc.program_id = p.id`

// ProgramRepository persists programs and their course offerings.
type ProgramRepository struct {
	db *sqlx.DB
}

// NewProgramRepository constructs the repository.
func NewProgramRepository(db *sqlx.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// List returns programs ordered by name.
func (r *ProgramRepository) List(ctx context.Context, filter models.ProgramFilter) ([]models.Program, error) {
	var b whereBuilder
	b.scope(filter.Scope, scopeColumns{faculty: "p.faculty_id"})
	if filter.FacultyID != nil {
		b.eq("p.faculty_id", *filter.FacultyID)
	}
	if filter.AcademicYear != "" {
		b.eq("p.academic_year", filter.AcademicYear)
	}
	var programs []models.Program
	if err := r.db.SelectContext(ctx, &programs, programSelect+b.String()+" ORDER BY p.program_name", b.Args()...); err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	return programs, nil
}

// FindByID returns one program.
func (r *ProgramRepository) FindByID(ctx context.Context, id int64) (*models.Program, error) {
	var program models.Program
	if err := r.db.GetContext(ctx, &program, programSelect+" WHERE p.id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find program: %w", err)
	}
	return &program, nil
}

// Create inserts a program and returns its id.
func (r *ProgramRepository) Create(ctx context.Context, input models.ProgramInput) (int64, error) {
	const query = `INSERT INTO programs (program_code, program_name, level, duration_years, academic_year, description, faculty_id)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	var id int64
	if err := r.db.QueryRowxContext(ctx, query, input.Code, input.Name, input.Level, input.DurationYears,
		input.AcademicYear, input.Description, input.FacultyID).Scan(&id); err != nil {
		return 0, fmt.Errorf("create program: %w", err)
	}
	return id, nil
}

// Update replaces a program's fields.
func (r *ProgramRepository) Update(ctx context.Context, id int64, input models.ProgramInput) error {
	const query = `UPDATE programs SET program_code = $2, program_name = $3, level = $4, duration_years = $5,
academic_year = $6, description = $7, faculty_id = $8, updated_at = NOW() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, input.Code, input.Name, input.Level, input.DurationYears,
		input.AcademicYear, input.Description, input.FacultyID)
	if err != nil {
		return fmt.Errorf("update program: %w", err)
	}
	return expectAffected(res, "update program")
}

// Delete removes a program and its offerings.
func (r *ProgramRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM programs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete program: %w", err)
	}
	return expectAffected(res, "delete program")
}

// ListOfferings returns a program's offerings by year level, semester and course name.
func (r *ProgramRepository) ListOfferings(ctx context.Context, filter models.OfferingFilter) ([]models.CourseOffering, error) {
	var b whereBuilder
	b.eq("o.program_id", filter.ProgramID)
	if filter.AcademicYear != "" {
		b.eq("o.academic_year", filter.AcademicYear)
	}
	if filter.Semester != "" {
		b.eq("o.semester", filter.Semester)
	}
	query := `SELECT o.id, o.program_id, o.course_id, c.course_code, c.course_name, o.academic_year, o.semester,
o.year_level, o.is_core, o.created_at
FROM course_offerings o JOIN courses c ON c.id = o.course_id` + b.String() + ` ORDER BY o.year_level, o.semester, c.course_name`
	var offerings []models.CourseOffering
	if err := r.db.SelectContext(ctx, &offerings, query, b.Args()...); err != nil {
		return nil, fmt.Errorf("list offerings: %w", err)
	}
	return offerings, nil
}

// CreateOffering adds a course to the program for a term.
func (r *ProgramRepository) CreateOffering(ctx context.Context, programID int64, input models.CourseOfferingInput) (int64, error) {
	const query = `INSERT INTO course_offerings (program_id, course_id, academic_year, semester, year_level, is_core)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	isCore := true
	if input.IsCore != nil {
		isCore = *input.IsCore
	}
	var id int64
	if err := r.db.QueryRowxContext(ctx, query, programID, input.CourseID, input.AcademicYear, input.Semester,
		input.YearLevel, isCore).Scan(&id); err != nil {
		return 0, fmt.Errorf("create offering: %w", err)
	}
	return id, nil
}

// DeleteOffering removes one offering of the program.
func (r *ProgramRepository) DeleteOffering(ctx context.Context, programID, offeringID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM course_offerings WHERE id = $1 AND program_id = $2`, offeringID, programID)
	if err != nil {
		return fmt.Errorf("delete offering: %w", err)
	}
	return expectAffected(res, "delete offering")
}
