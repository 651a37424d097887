package models

import "time"

// Report statuses accepted on submission.
const (
	ReportStatusDraft     = "draft"
	ReportStatusSubmitted = "submitted"
	ReportStatusApproved  = "approved"
)

// Defaults applied when a class carries no schedule.
const (
	DefaultLectureTime = "09:00"
	DefaultVenue       = "TBC"
)

// ReportRecord is the flat row shape shared by every report query.
type ReportRecord struct {
	ID                    int64     `db:"id"`
	ClassID               *int64    `db:"class_id"`
	CourseID              *int64    `db:"course_id"`
	FacultyID             *int64    `db:"faculty_id"`
	LecturerID            *int64    `db:"lecturer_id"`
	DateOfLecture         string    `db:"date_of_lecture"`
	WeekOfReporting       int       `db:"week_of_reporting"`
	ActualStudentsPresent int       `db:"actual_students_present"`
	TotalRegistered       int       `db:"total_registered_students"`
	Status                string    `db:"status"`
	TopicTaught           string    `db:"topic_taught"`
	LearningOutcomes      string    `db:"learning_outcomes"`
	Recommendations       *string   `db:"recommendations"`
	Venue                 string    `db:"venue"`
	ScheduledLectureTime  string    `db:"scheduled_lecture_time"`
	CreatedAt             time.Time `db:"created_at"`
	ClassCode             *string   `db:"class_code"`
	ClassSemester         *string   `db:"class_semester"`
	CourseName            *string   `db:"course_name"`
	CourseCode            *string   `db:"course_code"`
	FacultyName           *string   `db:"faculty_name"`
	LecturerFirstName     *string   `db:"lecturer_first_name"`
	LecturerLastName      *string   `db:"lecturer_last_name"`
}

// ReportCourse is the nested course of a report view.
type ReportCourse struct {
	ID   int64   `json:"id"`
	Name *string `json:"name"`
	Code *string `json:"code"`
}

// ReportClass is the nested class of a report view.
type ReportClass struct {
	ID       int64   `json:"id"`
	Code     *string `json:"code"`
	Semester *string `json:"semester"`
}

// ReportView is the report representation returned to clients.
type ReportView struct {
	ID                      int64         `json:"id"`
	ClassID                 *int64        `json:"classId"`
	CourseID                *int64        `json:"courseId"`
	FacultyID               *int64        `json:"facultyId"`
	LecturerID              *int64        `json:"lecturerId"`
	DateOfLecture           string        `json:"dateOfLecture"`
	WeekOfReporting         int           `json:"weekOfReporting"`
	ActualStudentsPresent   int           `json:"actualStudentsPresent"`
	TotalRegisteredStudents int           `json:"totalRegisteredStudents"`
	AttendancePercentage    *int          `json:"attendancePercentage"`
	Status                  string        `json:"status"`
	TopicTaught             string        `json:"topicTaught"`
	LearningOutcomes        string        `json:"learningOutcomes"`
	Recommendations         *string       `json:"recommendations"`
	Summary                 string        `json:"summary"`
	Actions                 *string       `json:"actions"`
	Venue                   string        `json:"venue"`
	ScheduledLectureTime    string        `json:"scheduledLectureTime"`
	CreatedAt               time.Time     `json:"createdAt"`
	Course                  *ReportCourse `json:"course"`
	Class                   *ReportClass  `json:"class"`
	Lecturer                *PersonRef    `json:"lecturer"`
}

// View converts the flat record into its client shape.
func (r ReportRecord) View() ReportView {
	view := ReportView{
		ID:                      r.ID,
		ClassID:                 r.ClassID,
		CourseID:                r.CourseID,
		FacultyID:               r.FacultyID,
		LecturerID:              r.LecturerID,
		DateOfLecture:           r.DateOfLecture,
		WeekOfReporting:         r.WeekOfReporting,
		ActualStudentsPresent:   r.ActualStudentsPresent,
		TotalRegisteredStudents: r.TotalRegistered,
		AttendancePercentage:    AttendancePercentage(r.ActualStudentsPresent, r.TotalRegistered),
		Status:                  r.Status,
		TopicTaught:             r.TopicTaught,
		LearningOutcomes:        r.LearningOutcomes,
		Recommendations:         r.Recommendations,
		Summary:                 r.TopicTaught,
		Actions:                 r.Recommendations,
		Venue:                   r.Venue,
		ScheduledLectureTime:    r.ScheduledLectureTime,
		CreatedAt:               r.CreatedAt,
	}
	if r.CourseID != nil {
		view.Course = &ReportCourse{ID: *r.CourseID, Name: r.CourseName, Code: r.CourseCode}
	}
	if r.ClassID != nil {
		view.Class = &ReportClass{ID: *r.ClassID, Code: r.ClassCode, Semester: r.ClassSemester}
	}
	if r.LecturerID != nil {
		view.Lecturer = &PersonRef{ID: *r.LecturerID, FirstName: r.LecturerFirstName, LastName: r.LecturerLastName}
	}
	return view
}

// LecturerName joins the lecturer's names, empty when unknown.
func (r ReportRecord) LecturerName() string {
	return joinName(r.LecturerFirstName, r.LecturerLastName)
}

// ReportViews maps a record slice.
func ReportViews(records []ReportRecord) []ReportView {
	views := make([]ReportView, 0, len(records))
	for _, r := range records {
		views = append(views, r.View())
	}
	return views
}

// ReportFilter narrows report listings. Nil or empty fields add no constraint.
type ReportFilter struct {
	Scope      Scope
	ID         *int64
	FacultyID  *int64
	LecturerID *int64
	ClassID    *int64
	Status     string
	StartDate  *time.Time
	EndDate    *time.Time
	Limit      int
}

// CreateReportRequest is the lecturer's submission payload.
type CreateReportRequest struct {
	ClassID          int64   `json:"classId"`
	DateOfLecture    string  `json:"dateOfLecture"`
	StudentsPresent  *int    `json:"studentsPresent"`
	TopicTaught      string  `json:"topicTaught"`
	LearningOutcomes string  `json:"learningOutcomes"`
	Recommendations  *string `json:"recommendations"`
	Status           string  `json:"status"`
}

// NewReport is a validated report ready to persist. Faculty and course are
// resolved from the class by the storage layer.
type NewReport struct {
	ClassID               int64     `db:"class_id"`
	LecturerID            int64     `db:"lecturer_id"`
	WeekOfReporting       int       `db:"week_of_reporting"`
	DateOfLecture         time.Time `db:"date_of_lecture"`
	ActualStudentsPresent int       `db:"actual_students_present"`
	Venue                 string    `db:"venue"`
	ScheduledLectureTime  string    `db:"scheduled_lecture_time"`
	TopicTaught           string    `db:"topic_taught"`
	LearningOutcomes      string    `db:"learning_outcomes"`
	Recommendations       *string   `db:"recommendations"`
	Status                string    `db:"status"`
}

// ReportTotals counts reports overall and within a lecture-date window.
type ReportTotals struct {
	Total    int `db:"total"`
	InWindow int `db:"in_window"`
}
