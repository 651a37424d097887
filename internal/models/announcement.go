package models

import "time"

// Announcement is a faculty-targeted or global notice shown on dashboards.
type Announcement struct {
	ID          int64      `db:"id" json:"id"`
	FacultyID   *int64     `db:"faculty_id" json:"facultyId"`
	FacultyName *string    `db:"faculty_name" json:"facultyName,omitempty"`
	Title       string     `db:"title" json:"title"`
	Body        string     `db:"body" json:"body"`
	PublishedAt time.Time  `db:"published_at" json:"publishedAt"`
	ExpiresAt   *time.Time `db:"expires_at" json:"expiresAt"`
	CreatedBy   *int64     `db:"created_by" json:"createdBy"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
}

// AnnouncementInput creates an announcement.
type AnnouncementInput struct {
	FacultyID   *int64     `json:"facultyId"`
	Title       string     `json:"title" validate:"required,max=200"`
	Body        string     `json:"body" validate:"required"`
	PublishedAt *time.Time `json:"publishedAt"`
	ExpiresAt   *time.Time `json:"expiresAt"`
}

// AnnouncementFilter allows listing announcements.
type AnnouncementFilter struct {
	// FacultyID keeps global notices plus those for this faculty; nil keeps all.
	FacultyID  *int64
	ActiveOnly bool
	Limit      int
}
