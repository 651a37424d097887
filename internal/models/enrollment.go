package models

import "time"

// Enrollment statuses.
const (
	EnrollmentActive    = "active"
	EnrollmentWithdrawn = "withdrawn"
)

// Enrollment is a student's membership of a class.
type Enrollment struct {
	ID         int64     `db:"id" json:"id"`
	StudentID  int64     `db:"student_id" json:"studentId"`
	ClassID    int64     `db:"class_id" json:"classId"`
	Status     string    `db:"enrollment_status" json:"enrollmentStatus"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolledAt"`
}

// Active reports whether the enrolment currently counts toward the roster.
func (e Enrollment) Active() bool {
	return e.Status == EnrollmentActive
}

// EnrollmentRequest names the class a student joins or leaves.
type EnrollmentRequest struct {
	ClassID int64 `json:"classId"`
}

// EnrollmentOutcome distinguishes fresh enrolments from reactivations.
type EnrollmentOutcome int

const (
	EnrollmentCreated EnrollmentOutcome = iota
	EnrollmentReactivated
)
