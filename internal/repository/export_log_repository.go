package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/luct-reporting-api/internal/models"
)

const exportLogSelect = `SELECT e.id, e.user_id, NULLIF(TRIM(CONCAT(u.first_name, ' ', u.last_name)), '') AS user_name,
e.export_type, e.export_module, e.filter_criteria, e.record_count, e.file_path, e.created_at
FROM export_logs e LEFT JOIN users u ON u.id = e.user_id`

// ExportLogRepository persists the export history.
type ExportLogRepository struct {
	db *sqlx.DB
}

// NewExportLogRepository constructs the repository.
func NewExportLogRepository(db *sqlx.DB) *ExportLogRepository {
	return &ExportLogRepository{db: db}
}

// Create appends an export log and fills in its id.
func (r *ExportLogRepository) Create(ctx context.Context, log *models.ExportLog) error {
	criteria, err := jsonOrNull(log.FilterCriteria)
	if err != nil {
		return fmt.Errorf("encode export filters: %w", err)
	}
	if criteria == nil {
		empty := "{}"
		criteria = &empty
	}
	const query = `INSERT INTO export_logs (user_id, export_type, export_module, filter_criteria, record_count, file_path)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	if err := r.db.QueryRowxContext(ctx, query, log.UserID, log.ExportType, log.ExportModule, criteria,
		log.RecordCount, log.FilePath).Scan(&log.ID, &log.CreatedAt); err != nil {
		return fmt.Errorf("create export log: %w", err)
	}
	return nil
}

// List returns the export history newest first.
func (r *ExportLogRepository) List(ctx context.Context, filter models.ExportLogFilter) ([]models.ExportLog, error) {
	var b whereBuilder
	b.scope(filter.Scope, scopeColumns{owner: "e.user_id", faculty: "u.faculty_id"})
	var logs []models.ExportLog
	query := exportLogSelect + b.String() + " ORDER BY e.created_at DESC, e.id DESC" + limitClause(filter.Limit)
	if err := r.db.SelectContext(ctx, &logs, query, b.Args()...); err != nil {
		return nil, fmt.Errorf("list export logs: %w", err)
	}
	return logs, nil
}

// FindByID returns one export log.
func (r *ExportLogRepository) FindByID(ctx context.Context, id int64) (*models.ExportLog, error) {
	var log models.ExportLog
	if err := r.db.GetContext(ctx, &log, exportLogSelect+" WHERE e.id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find export log: %w", err)
	}
	return &log, nil
}

// ClearFilePaths forgets archived files that were swept from disk.
func (r *ExportLogRepository) ClearFilePaths(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`UPDATE export_logs SET file_path = NULL WHERE file_path IN (?)`, paths)
	if err != nil {
		return fmt.Errorf("bind export paths: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("clear export paths: %w", err)
	}
	return nil
}
