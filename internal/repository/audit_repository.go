package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/luct-reporting-api/internal/models"
)

// AuditRepository persists the admin audit trail.
type AuditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository constructs the repository.
func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create stores an audit entry. Old and new values are stored as JSON.
func (r *AuditRepository) Create(ctx context.Context, entry models.AuditEntry) error {
	oldValues, err := jsonOrNull(entry.OldValues)
	if err != nil {
		return fmt.Errorf("encode audit old values: %w", err)
	}
	newValues, err := jsonOrNull(entry.NewValues)
	if err != nil {
		return fmt.Errorf("encode audit new values: %w", err)
	}
	var ip *string
	if entry.IPAddress != "" {
		ip = &entry.IPAddress
	}

	const query = `INSERT INTO audit_logs (admin_id, action, entity_type, entity_id, old_values, new_values, ip_address)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query, entry.AdminID, entry.Action, entry.EntityType, entry.EntityID, oldValues, newValues, ip); err != nil {
		return fmt.Errorf("create audit log: %w", err)
	}
	return nil
}

// List pages the audit trail newest first.
func (r *AuditRepository) List(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLog, error) {
	var b whereBuilder
	if filter.EntityType != "" {
		b.eq("a.entity_type", filter.EntityType)
	}
	query := `SELECT a.id, a.admin_id, NULLIF(TRIM(CONCAT(u.first_name, ' ', u.last_name)), '') AS admin_name,
a.action, a.entity_type, a.entity_id, COALESCE(a.old_values, 'null'::jsonb) AS old_values,
COALESCE(a.new_values, 'null'::jsonb) AS new_values, a.ip_address, a.created_at
FROM audit_logs a LEFT JOIN users u ON u.id = a.admin_id` + b.String() +
		fmt.Sprintf(" ORDER BY a.created_at DESC, a.id DESC LIMIT %d OFFSET %d", filter.Limit, filter.Offset)
	var logs []models.AuditLog
	if err := r.db.SelectContext(ctx, &logs, query, b.Args()...); err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	return logs, nil
}

// Count returns the size of the audit trail.
func (r *AuditRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM audit_logs`); err != nil {
		return 0, fmt.Errorf("count audit logs: %w", err)
	}
	return count, nil
}

// jsonOrNull encodes v for a JSONB column; nil stays NULL. lib/pq sends
// []byte as bytea, so the encoding travels as a string.
func jsonOrNull(v interface{}) (*string, error) {
	if v == nil {
		return nil, nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		if len(raw) == 0 {
			return nil, nil
		}
		s := string(raw)
		return &s, nil
	}
	encoded, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(encoded)
	return &s, nil
}
