package dto

import "github.com/noah-isme/luct-reporting-api/internal/models"

// DashboardBase holds the metrics every role receives.
type DashboardBase struct {
	Role            models.UserRole       `json:"role"`
	ReportsTotal    int                   `json:"reportsTotal"`
	LatestReport    *models.ReportView    `json:"latestReport"`
	Announcements   []models.Announcement `json:"announcements"`
	ClassesThisWeek int                   `json:"classesThisWeek"`
}

// Dashboard is the base merged with the caller's role section.
type Dashboard struct {
	DashboardBase
	Section interface{}
}

// MarshalJSON flattens the role section into the base object.
func (d Dashboard) MarshalJSON() ([]byte, error) {
	return mergeObjects(d.DashboardBase, d.Section)
}

// LecturerStats are the lecturer's derived numbers.
type LecturerStats struct {
	AvgAttendance      int                `json:"avgAttendance"`
	SubmittedThisMonth int                `json:"submittedThisMonth"`
	UpcomingClasses    []models.ClassView `json:"upcomingClasses"`
}

// LecturerSection is the lecturer's part of the dashboard.
type LecturerSection struct {
	Reports []models.ReportView `json:"reports"`
	Classes []models.ClassView  `json:"classes"`
	Stats   LecturerStats       `json:"stats"`
}

// PrincipalLecturerStats are the principal lecturer's derived numbers.
type PrincipalLecturerStats struct {
	OutstandingFollowUps int `json:"outstandingFollowUps"`
	AvgRating            int `json:"avgRating"`
}

// PrincipalLecturerSection is the principal lecturer's part of the dashboard.
type PrincipalLecturerSection struct {
	Monitoring []models.MonitoringView `json:"monitoring"`
	Ratings    []models.RatingView     `json:"ratings"`
	Stats      PrincipalLecturerStats  `json:"stats"`
}

// DashboardProgram is the compact program row shown to program leaders.
type DashboardProgram struct {
	ID            int64  `json:"id"`
	ProgramCode   string `json:"programCode"`
	ProgramName   string `json:"programName"`
	Level         string `json:"level"`
	DurationYears int    `json:"durationYears"`
}

// ProgramLeaderStats are the program leader's derived numbers.
type ProgramLeaderStats struct {
	ActiveLecturers  int                   `json:"activeLecturers"`
	ReportsSubmitted int                   `json:"reportsSubmitted"`
	NextEvents       []models.Announcement `json:"nextEvents"`
}

// ProgramLeaderSection is the program leader's part of the dashboard.
type ProgramLeaderSection struct {
	Programs []DashboardProgram  `json:"programs"`
	Classes  []models.ClassView  `json:"classes"`
	Reports  []models.ReportView `json:"reports"`
	Stats    ProgramLeaderStats  `json:"stats"`
}

// StudentStats are the student's derived numbers.
type StudentStats struct {
	ClassesCount    int                `json:"classesCount"`
	AvgAttendance   int                `json:"avgAttendance"`
	TrendingCourses []models.ClassView `json:"trendingCourses"`
}

// StudentSection is the student's part of the dashboard.
type StudentSection struct {
	Classes []models.ClassView  `json:"classes"`
	Reports []models.ReportView `json:"reports"`
	Stats   StudentStats        `json:"stats"`
}
