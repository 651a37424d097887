package models

import "time"

// Faculty is the root of the academic hierarchy.
type Faculty struct {
	ID          int64     `db:"id" json:"id"`
	Code        string    `db:"faculty_code" json:"code"`
	Name        string    `db:"faculty_name" json:"name"`
	Description *string   `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// FacultyOption is the public faculty picker entry.
type FacultyOption struct {
	ID   int64  `db:"id" json:"id"`
	Code string `db:"faculty_code" json:"code"`
	Name string `db:"faculty_name" json:"name"`
}

// FacultyInput creates or updates a faculty.
type FacultyInput struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// Program belongs to one faculty.
type Program struct {
	ID            int64     `db:"id" json:"id"`
	Code          string    `db:"program_code" json:"code"`
	Name          string    `db:"program_name" json:"name"`
	Level         string    `db:"level" json:"level"`
	DurationYears int       `db:"duration_years" json:"durationYears"`
	AcademicYear  *string   `db:"academic_year" json:"academicYear"`
	Description   *string   `db:"description" json:"description"`
	FacultyID     int64     `db:"faculty_id" json:"facultyId"`
	FacultyName   *string   `db:"faculty_name" json:"facultyName"`
	CourseCount   int       `db:"course_count" json:"courseCount"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// ProgramInput creates or updates a program.
type ProgramInput struct {
	Code          string  `json:"code"`
	Name          string  `json:"name"`
	Level         string  `json:"level"`
	DurationYears int     `json:"durationYears"`
	AcademicYear  *string `json:"academicYear"`
	Description   *string `json:"description"`
	FacultyID     int64   `json:"facultyId"`
}

// ProgramFilter narrows program listings.
type ProgramFilter struct {
	Scope        Scope
	FacultyID    *int64
	AcademicYear string
}

// Course belongs to one faculty and optionally one program.
type Course struct {
	ID          int64     `db:"id" json:"id"`
	Code        string    `db:"course_code" json:"code"`
	Name        string    `db:"course_name" json:"name"`
	Description *string   `db:"description" json:"description"`
	FacultyID   int64     `db:"faculty_id" json:"facultyId"`
	FacultyName *string   `db:"faculty_name" json:"facultyName"`
	ProgramID   *int64    `db:"program_id" json:"programId"`
	ProgramName *string   `db:"program_name" json:"programName"`
	ClassCount  int       `db:"class_count" json:"classCount"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// CourseInput creates or updates a course.
type CourseInput struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	FacultyID   int64   `json:"facultyId"`
	ProgramID   *int64  `json:"programId"`
}

// CourseFilter narrows course listings.
type CourseFilter struct {
	FacultyID *int64
	ProgramID *int64
}

// CourseOffering links a course to a program for a term.
type CourseOffering struct {
	ID           int64     `db:"id" json:"id"`
	ProgramID    int64     `db:"program_id" json:"programId"`
	CourseID     int64     `db:"course_id" json:"courseId"`
	CourseCode   string    `db:"course_code" json:"courseCode"`
	CourseName   string    `db:"course_name" json:"courseName"`
	AcademicYear string    `db:"academic_year" json:"academicYear"`
	Semester     string    `db:"semester" json:"semester"`
	YearLevel    int       `db:"year_level" json:"yearLevel"`
	IsCore       bool      `db:"is_core" json:"isCore"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// CourseOfferingInput adds a course to a program.
type CourseOfferingInput struct {
	CourseID     int64  `json:"courseId"`
	AcademicYear string `json:"academicYear"`
	Semester     string `json:"semester"`
	YearLevel    int    `json:"yearLevel"`
	IsCore       *bool  `json:"isCore"`
}

// OfferingFilter narrows a program's offerings.
type OfferingFilter struct {
	ProgramID    int64
	AcademicYear string
	Semester     string
}

// RegistrationCode authorizes staff signup for a role.
type RegistrationCode struct {
	ID          int64      `db:"id" json:"id"`
	Code        string     `db:"code" json:"code"`
	Role        UserRole   `db:"role" json:"role"`
	FacultyID   *int64     `db:"faculty_id" json:"facultyId"`
	FacultyName *string    `db:"faculty_name" json:"facultyName"`
	Active      bool       `db:"is_active" json:"isActive"`
	ExpiresAt   *time.Time `db:"expires_at" json:"expiresAt"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
}

// Usable reports whether the code is active and unexpired at now.
func (c RegistrationCode) Usable(now time.Time) bool {
	if !c.Active {
		return false
	}
	return c.ExpiresAt == nil || c.ExpiresAt.After(now)
}

// RegistrationCodeInput requests a new code.
type RegistrationCodeInput struct {
	Role      UserRole   `json:"role"`
	FacultyID *int64     `json:"facultyId"`
	ExpiresAt *time.Time `json:"expiresAt"`
}
