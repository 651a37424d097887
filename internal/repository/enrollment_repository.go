package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/luct-reporting-api/internal/models"
)

// EnrollmentRepository manages student class memberships.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository returns a new repository instance.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Find returns the student's enrolment row for a class in any status.
func (r *EnrollmentRepository) Find(ctx context.Context, studentID, classID int64) (*models.Enrollment, error) {
	const query = `SELECT id, student_id, class_id, enrollment_status, enrolled_at FROM student_enrollments WHERE student_id = $1 AND class_id = $2`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, studentID, classID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &enrollment, nil
}

// Create enrols the student. Concurrent duplicates surface as unique violations.
func (r *EnrollmentRepository) Create(ctx context.Context, studentID, classID int64) error {
	const query = `INSERT INTO student_enrollments (student_id, class_id, enrollment_status, enrolled_at) VALUES ($1, $2, 'active', NOW())`
	if _, err := r.db.ExecContext(ctx, query, studentID, classID); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Reactivate turns a withdrawn row active again and refreshes enrolled_at.
func (r *EnrollmentRepository) Reactivate(ctx context.Context, id int64) error {
	const query = `UPDATE student_enrollments SET enrollment_status = 'active', enrolled_at = NOW() WHERE id = $1 AND enrollment_status <> 'active'`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("reactivate enrollment: %w", err)
	}
	return expectAffected(res, "reactivate enrollment")
}

// Withdraw marks the active enrolment withdrawn; sql.ErrNoRows when none is active.
func (r *EnrollmentRepository) Withdraw(ctx context.Context, studentID, classID int64) error {
	const query = `UPDATE student_enrollments SET enrollment_status = 'withdrawn' WHERE student_id = $1 AND class_id = $2 AND enrollment_status = 'active'`
	res, err := r.db.ExecContext(ctx, query, studentID, classID)
	if err != nil {
		return fmt.Errorf("withdraw enrollment: %w", err)
	}
	return expectAffected(res, "withdraw enrollment")
}
