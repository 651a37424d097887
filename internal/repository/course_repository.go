package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/luct-reporting-api/internal/models"
)

// CourseRepository persists courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns courses ordered by name.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	var b whereBuilder
	if filter.FacultyID != nil {
		b.eq("c.faculty_id", *filter.FacultyID)
	}
	if filter.ProgramID != nil {
		b.eq("c.program_id", *filter.ProgramID)
	}
	query := `SELECT c.id, c.course_code, c.course_name, c.description, c.faculty_id, f.faculty_name,
c.program_id, p.program_name, COALESCE(cl.total, 0) AS class_count, c.created_at
FROM courses c
LEFT JOIN faculties f ON f.id = c.faculty_id
LEFT JOIN programs p ON p.id = c.program_id
LEFT JOIN (SELECT course_id, COUNT(*) AS total FROM classes GROUP BY course_id) cl ON cl.course_id = c.id` +
		b.String() + ` ORDER BY c.course_name`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, b.Args()...); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// Create inserts a course and returns its id.
func (r *CourseRepository) Create(ctx context.Context, input models.CourseInput) (int64, error) {
	const query = `INSERT INTO courses (course_code, course_name, description, faculty_id, program_id)
VALUES ($1, $2, $3, $4, $5) RETURNING id`
	var id int64
	if err := r.db.QueryRowxContext(ctx, query, input.Code, input.Name, input.Description, input.FacultyID, input.ProgramID).Scan(&id); err != nil {
		return 0, fmt.Errorf("create course: %w", err)
	}
	return id, nil
}

// Update replaces a course's fields.
func (r *CourseRepository) Update(ctx context.Context, id int64, input models.CourseInput) error {
	const query = `UPDATE courses SET course_code = $2, course_name = $3, description = $4, faculty_id = $5,
program_id = $6, updated_at = NOW() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, input.Code, input.Name, input.Description, input.FacultyID, input.ProgramID)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return expectAffected(res, "update course")
}

// Delete removes a course. Classes and reports keep null course references.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return expectAffected(res, "delete course")
}
