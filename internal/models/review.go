package models

import (
	"strings"
	"time"
)

// Monitoring statuses.
const (
	MonitoringPending      = "pending"
	MonitoringInProgress   = "in_progress"
	MonitoringSatisfactory = "satisfactory"
)

// MonitoringRecord is the flat monitoring row joined with its report.
type MonitoringRecord struct {
	ID              int64     `db:"id"`
	ReportID        int64     `db:"report_id"`
	Findings        string    `db:"findings"`
	Recommendations *string   `db:"recommendations"`
	Status          string    `db:"status"`
	FollowUpDate    *string   `db:"follow_up_date"`
	CreatedAt       time.Time `db:"created_at"`
	DateOfLecture   *string   `db:"date_of_lecture"`
	TopicTaught     *string   `db:"topic_taught"`
	ClassCode       *string   `db:"class_code"`
	CourseName      *string   `db:"course_name"`
	LecturerName    *string   `db:"lecturer_name"`
}

// MonitoringReport is the nested report of a monitoring view.
type MonitoringReport struct {
	ID            int64   `json:"id"`
	TopicTaught   *string `json:"topicTaught"`
	DateOfLecture *string `json:"dateOfLecture"`
	ClassCode     *string `json:"classCode"`
	CourseName    *string `json:"courseName"`
	LecturerName  *string `json:"lecturerName"`
}

// MonitoringView is the monitoring note returned to clients.
type MonitoringView struct {
	ID              int64             `json:"id"`
	ReportID        int64             `json:"reportId"`
	Findings        string            `json:"findings"`
	Recommendations *string           `json:"recommendations"`
	Status          string            `json:"status"`
	CreatedAt       time.Time         `json:"createdAt"`
	FollowUpDate    *string           `json:"followUpDate"`
	FocusArea       string            `json:"focusArea"`
	Highlights      string            `json:"highlights"`
	ActionItems     []string          `json:"actionItems"`
	Report          *MonitoringReport `json:"report"`
}

// View converts the flat record into its client shape.
func (r MonitoringRecord) View() MonitoringView {
	return MonitoringView{
		ID:              r.ID,
		ReportID:        r.ReportID,
		Findings:        r.Findings,
		Recommendations: r.Recommendations,
		Status:          r.Status,
		CreatedAt:       r.CreatedAt,
		FollowUpDate:    r.FollowUpDate,
		FocusArea:       r.Findings,
		Highlights:      r.Findings,
		ActionItems:     ActionItems(r.Recommendations),
		Report: &MonitoringReport{
			ID:            r.ReportID,
			TopicTaught:   r.TopicTaught,
			DateOfLecture: r.DateOfLecture,
			ClassCode:     r.ClassCode,
			CourseName:    r.CourseName,
			LecturerName:  r.LecturerName,
		},
	}
}

// MonitoringViews maps a record slice.
func MonitoringViews(records []MonitoringRecord) []MonitoringView {
	views := make([]MonitoringView, 0, len(records))
	for _, r := range records {
		views = append(views, r.View())
	}
	return views
}

// ActionItems splits recommendations into non-empty lines.
func ActionItems(recommendations *string) []string {
	items := make([]string, 0)
	if recommendations == nil {
		return items
	}
	for _, line := range strings.Split(*recommendations, "\n") {
		line = strings.TrimRight(line, "\r")
		if line != "" {
			items = append(items, line)
		}
	}
	return items
}

// MonitoringFilter narrows monitoring listings.
type MonitoringFilter struct {
	Scope Scope
	ID    *int64
}

// CreateMonitoringRequest is the principal lecturer's note payload.
type CreateMonitoringRequest struct {
	ReportID        int64   `json:"reportId"`
	Findings        string  `json:"findings"`
	Recommendations *string `json:"recommendations"`
	Status          string  `json:"status"`
	FollowUpDate    *string `json:"followUpDate"`
}

// NewMonitoring is a validated note ready to persist.
type NewMonitoring struct {
	ReportID        int64      `db:"report_id"`
	MonitoredBy     int64      `db:"monitored_by"`
	Findings        string     `db:"findings"`
	Recommendations *string    `db:"recommendations"`
	Status          string     `db:"status"`
	FollowUpDate    *time.Time `db:"follow_up_date"`
}

// RatingRecord is the flat rating row joined with its report.
type RatingRecord struct {
	ID               int64     `db:"id"`
	Rating           int       `db:"rating"`
	Comments         *string   `db:"comments"`
	CreatedAt        time.Time `db:"created_at"`
	ReportID         int64     `db:"report_id"`
	DateOfLecture    *string   `db:"date_of_lecture"`
	CourseName       *string   `db:"course_name"`
	StudentFirstName *string   `db:"student_first_name"`
	StudentLastName  *string   `db:"student_last_name"`
}

// RatingReport is the nested report of a rating view.
type RatingReport struct {
	ID            int64   `json:"id"`
	CourseName    *string `json:"courseName"`
	DateOfLecture *string `json:"dateOfLecture"`
}

// RatingView is the rating returned to clients.
type RatingView struct {
	ID          int64        `json:"id"`
	Rating      int          `json:"rating"`
	Comments    *string      `json:"comments"`
	CreatedAt   time.Time    `json:"createdAt"`
	StudentName *string      `json:"studentName"`
	Report      RatingReport `json:"report"`
}

// View converts the flat record into its client shape.
func (r RatingRecord) View() RatingView {
	view := RatingView{
		ID:        r.ID,
		Rating:    r.Rating,
		Comments:  r.Comments,
		CreatedAt: r.CreatedAt,
		Report:    RatingReport{ID: r.ReportID, CourseName: r.CourseName, DateOfLecture: r.DateOfLecture},
	}
	if r.StudentFirstName != nil {
		name := joinName(r.StudentFirstName, r.StudentLastName)
		view.StudentName = &name
	}
	return view
}

// RatingViews maps a record slice.
func RatingViews(records []RatingRecord) []RatingView {
	views := make([]RatingView, 0, len(records))
	for _, r := range records {
		views = append(views, r.View())
	}
	return views
}

// RatingFilter narrows rating listings.
type RatingFilter struct {
	Scope Scope
}

// CreateRatingRequest is a student's feedback payload.
type CreateRatingRequest struct {
	ReportID int64   `json:"reportId"`
	Rating   int     `json:"rating"`
	Comments *string `json:"comments"`
}

// NewRating is a validated rating ready to persist.
type NewRating struct {
	ReportID  int64   `db:"report_id"`
	StudentID int64   `db:"student_id"`
	Rating    int     `db:"rating"`
	Comments  *string `db:"comments"`
}
