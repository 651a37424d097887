package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/luct-reporting-api/internal/models"
)

const monitoringSelect = `SELECT m.id, m.report_id, m.findings, m.recommendations, m.status,
TO_CHAR(m.follow_up_date, 'YYYY-MM-DD') AS follow_up_date, m.created_at,
TO_CHAR(r.date_of_lecture, 'YYYY-MM-DD') AS date_of_lecture, r.topic_taught, c.class_code, co.course_name,
NULLIF(TRIM(CONCAT(ul.first_name, ' ', ul.last_name)), '') AS lecturer_name
FROM monitoring m
JOIN reports r ON r.id = m.report_id
LEFT JOIN classes c ON c.id = r.class_id
LEFT JOIN courses co ON co.id = r.course_id
LEFT JOIN users ul ON ul.id = r.lecturer_id`

// MonitoringRepository persists principal lecturer monitoring notes.
type MonitoringRepository struct {
	db *sqlx.DB
}

// NewMonitoringRepository constructs the repository.
func NewMonitoringRepository(db *sqlx.DB) *MonitoringRepository {
	return &MonitoringRepository{db: db}
}

// List returns monitoring notes newest first.
func (r *MonitoringRepository) List(ctx context.Context, filter models.MonitoringFilter) ([]models.MonitoringRecord, error) {
	var b whereBuilder
	b.scope(filter.Scope, scopeColumns{owner: "m.monitored_by", faculty: "r.faculty_id"})
	if filter.ID != nil {
		b.eq("m.id", *filter.ID)
	}
	var rows []models.MonitoringRecord
	if err := r.db.SelectContext(ctx, &rows, monitoringSelect+b.String()+" ORDER BY m.created_at DESC, m.id DESC", b.Args()...); err != nil {
		return nil, fmt.Errorf("list monitoring: %w", err)
	}
	return rows, nil
}

// Create inserts a monitoring note and returns its id.
func (r *MonitoringRepository) Create(ctx context.Context, note models.NewMonitoring) (int64, error) {
	const query = `INSERT INTO monitoring (report_id, monitored_by, findings, recommendations, status, follow_up_date)
VALUES (:report_id, :monitored_by, :findings, :recommendations, :status, :follow_up_date) RETURNING id`
	id, err := insertReturningID(ctx, r.db, query, note)
	if err != nil {
		return 0, fmt.Errorf("create monitoring: %w", err)
	}
	return id, nil
}
