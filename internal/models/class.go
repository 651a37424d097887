package models

import "time"

// DefaultDeliveryMode applies when a class is created without a mode.
const DefaultDeliveryMode = "On Campus"

// ClassRecord is the flat row shape shared by every class query.
type ClassRecord struct {
	ID                int64      `db:"id"`
	ClassCode         string     `db:"class_code"`
	AcademicYear      string     `db:"academic_year"`
	Semester          string     `db:"semester"`
	Venue             *string    `db:"venue"`
	ScheduledTime     *string    `db:"scheduled_time"`
	Mode              string     `db:"mode_of_delivery"`
	TotalRegistered   int        `db:"total_registered_students"`
	CourseID          *int64     `db:"course_id"`
	CourseName        *string    `db:"course_name"`
	CourseCode        *string    `db:"course_code"`
	CourseFacultyID   *int64     `db:"course_faculty_id"`
	FacultyName       *string    `db:"faculty_name"`
	LecturerID        *int64     `db:"lecturer_id"`
	LecturerFirstName *string    `db:"lecturer_first_name"`
	LecturerLastName  *string    `db:"lecturer_last_name"`
	EnrollmentStatus  *string    `db:"enrollment_status"`
	EnrolledAt        *time.Time `db:"enrolled_at"`
	IsEnrolled        *bool      `db:"is_enrolled"`
}

// ClassCourse is the nested course of a class view.
type ClassCourse struct {
	ID        int64   `json:"id"`
	Name      *string `json:"name"`
	Code      *string `json:"code"`
	FacultyID *int64  `json:"facultyId"`
}

// PersonRef is a nested lecturer or student reference.
type PersonRef struct {
	ID        int64   `json:"id"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

// ClassView is the class representation returned to clients.
type ClassView struct {
	ID                      int64        `json:"id"`
	ClassCode               string       `json:"classCode"`
	AcademicYear            string       `json:"academicYear"`
	Semester                string       `json:"semester"`
	Venue                   *string      `json:"venue"`
	ScheduledTime           *string      `json:"scheduledTime"`
	Schedule                *string      `json:"schedule"`
	Mode                    string       `json:"mode"`
	TotalRegisteredStudents int          `json:"totalRegisteredStudents"`
	Course                  *ClassCourse `json:"course"`
	Lecturer                *PersonRef   `json:"lecturer"`
	EnrollmentStatus        *string      `json:"enrollmentStatus,omitempty"`
	EnrolledAt              *time.Time   `json:"enrolledAt,omitempty"`
	FacultyName             *string      `json:"facultyName,omitempty"`
	LecturerName            *string      `json:"lecturerName,omitempty"`
	EnrolledCount           *int         `json:"enrolledCount,omitempty"`
	IsEnrolled              *bool        `json:"isEnrolled,omitempty"`
}

// View converts the flat record into its client shape.
func (r ClassRecord) View() ClassView {
	view := ClassView{
		ID:                      r.ID,
		ClassCode:               r.ClassCode,
		AcademicYear:            r.AcademicYear,
		Semester:                r.Semester,
		Venue:                   r.Venue,
		ScheduledTime:           r.ScheduledTime,
		Schedule:                ScheduleLabel(r.ScheduledTime, r.Venue),
		Mode:                    r.Mode,
		TotalRegisteredStudents: r.TotalRegistered,
		EnrollmentStatus:        r.EnrollmentStatus,
		EnrolledAt:              r.EnrolledAt,
		FacultyName:             r.FacultyName,
		IsEnrolled:              r.IsEnrolled,
	}
	if r.CourseID != nil {
		view.Course = &ClassCourse{ID: *r.CourseID, Name: r.CourseName, Code: r.CourseCode, FacultyID: r.CourseFacultyID}
	}
	if r.LecturerID != nil {
		view.Lecturer = &PersonRef{ID: *r.LecturerID, FirstName: r.LecturerFirstName, LastName: r.LecturerLastName}
	}
	if r.IsEnrolled != nil {
		count := r.TotalRegistered
		view.EnrolledCount = &count
		if r.LecturerID != nil {
			name := joinName(r.LecturerFirstName, r.LecturerLastName)
			view.LecturerName = &name
		}
	}
	return view
}

// ClassViews maps a record slice.
func ClassViews(records []ClassRecord) []ClassView {
	views := make([]ClassView, 0, len(records))
	for _, r := range records {
		views = append(views, r.View())
	}
	return views
}

// ClassOrder selects the ordering of class listings.
type ClassOrder int

const (
	// ClassOrderSchedule sorts by scheduled time, unscheduled last.
	ClassOrderSchedule ClassOrder = iota
	// ClassOrderTerm sorts newest academic year first.
	ClassOrderTerm
	// ClassOrderCatalog sorts for enrolment browsing.
	ClassOrderCatalog
)

// ClassFilter narrows class listings. Nil fields add no constraint.
type ClassFilter struct {
	Scope        Scope
	FacultyID    *int64
	CourseID     *int64
	ProgramID    *int64
	LecturerID   *int64
	Semester     string
	AcademicYear string
	// ViewerID marks rows the student is actively enrolled in.
	ViewerID *int64
	Order    ClassOrder
}

// ClassInput creates or updates a class.
type ClassInput struct {
	ClassCode     string  `json:"classCode"`
	CourseID      int64   `json:"courseId"`
	AcademicYear  string  `json:"academicYear"`
	Semester      string  `json:"semester"`
	ScheduledTime *string `json:"scheduledTime"`
	Venue         *string `json:"venue"`
	Mode          string  `json:"mode"`
	LecturerID    *int64  `json:"lecturerId"`
}

// ClassOwnership is the minimal class row used for authorization checks.
type ClassOwnership struct {
	ID              int64   `db:"id"`
	CourseID        *int64  `db:"course_id"`
	LecturerID      *int64  `db:"lecturer_id"`
	FacultyID       *int64  `db:"faculty_id"`
	Venue           *string `db:"venue"`
	ScheduledTime   *string `db:"scheduled_time"`
	ActiveEnrolment int     `db:"active_enrolments"`
}

// LecturerAssignment is a class taught by a lecturer with its roster size.
type LecturerAssignment struct {
	ClassView
	EnrolledStudents int `json:"enrolledStudents"`
}

func joinName(first, last *string) string {
	var name string
	if first != nil {
		name = *first
	}
	if last != nil {
		if name != "" {
			name += " "
		}
		name += *last
	}
	return name
}
