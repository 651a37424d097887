package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/luct-reporting-api/internal/models"
)

// AnnouncementRepository provides persistence for announcements.
type AnnouncementRepository struct {
	db *sqlx.DB
}

// NewAnnouncementRepository creates the repository.
func NewAnnouncementRepository(db *sqlx.DB) *AnnouncementRepository {
	return &AnnouncementRepository{db: db}
}

// List returns announcements newest first. A faculty filter keeps global
// notices alongside the faculty's own.
func (r *AnnouncementRepository) List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, error) {
	var b whereBuilder
	if filter.ActiveOnly {
		b.raw("a.published_at <= NOW()")
		b.raw("(a.expires_at IS NULL OR a.expires_at > NOW())")
	}
	if filter.FacultyID != nil {
		b.cond("(a.faculty_id IS NULL OR a.faculty_id = %s)", *filter.FacultyID)
	}
	query := `SELECT a.id, a.faculty_id, f.faculty_name, a.title, a.body, a.published_at, a.expires_at, a.created_by, a.created_at
FROM announcements a LEFT JOIN faculties f ON f.id = a.faculty_id` + b.String() +
		" ORDER BY a.published_at DESC, a.id DESC" + limitClause(filter.Limit)
	var announcements []models.Announcement
	if err := r.db.SelectContext(ctx, &announcements, query, b.Args()...); err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	return announcements, nil
}

// Create inserts a new announcement and returns its id.
func (r *AnnouncementRepository) Create(ctx context.Context, input models.AnnouncementInput, createdBy int64) (int64, error) {
	publishedAt := time.Now().UTC()
	if input.PublishedAt != nil {
		publishedAt = input.PublishedAt.UTC()
	}
	const query = `INSERT INTO announcements (faculty_id, title, body, published_at, expires_at, created_by)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	var id int64
	if err := r.db.QueryRowxContext(ctx, query, input.FacultyID, input.Title, input.Body, publishedAt, input.ExpiresAt, createdBy).Scan(&id); err != nil {
		return 0, fmt.Errorf("create announcement: %w", err)
	}
	return id, nil
}

// Delete removes an announcement.
func (r *AnnouncementRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM announcements WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete announcement: %w", err)
	}
	return expectAffected(res, "delete announcement")
}
