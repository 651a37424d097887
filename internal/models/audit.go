package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Audit actions recorded for admin mutations.
const (
	AuditActionCreate     = "CREATE"
	AuditActionUpdate     = "UPDATE"
	AuditActionDelete     = "DELETE"
	AuditActionApprove    = "APPROVE"
	AuditActionReject     = "REJECT"
	AuditActionDeactivate = "DEACTIVATE"
	AuditActionAssign     = "ASSIGN"
	AuditActionUnassign   = "UNASSIGN"
	AuditActionExport     = "EXPORT"
)

// Audited entity types.
const (
	EntityFaculty          = "faculty"
	EntityProgram          = "program"
	EntityCourse           = "course"
	EntityCourseOffering   = "course_offering"
	EntityClass            = "class"
	EntityUser             = "user"
	EntityRegistrationCode = "registration_code"
	EntityAnnouncement     = "announcement"
	EntityExport           = "export"
)

// AuditEntry is one admin action handed to the audit sink.
type AuditEntry struct {
	AdminID    int64
	Action     string
	EntityType string
	EntityID   *int64
	OldValues  interface{}
	NewValues  interface{}
	IPAddress  string
}

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         int64           `db:"id" json:"id"`
	AdminID    *int64          `db:"admin_id" json:"adminId"`
	AdminName  *string         `db:"admin_name" json:"adminName"`
	Action     string          `db:"action" json:"action"`
	EntityType string          `db:"entity_type" json:"entityType"`
	EntityID   *int64          `db:"entity_id" json:"entityId"`
	OldValues  NullJSON        `db:"old_values" json:"oldValues"`
	NewValues  NullJSON        `db:"new_values" json:"newValues"`
	IPAddress  *string         `db:"ip_address" json:"ipAddress,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
}

// NullJSON holds a nullable JSONB column; SQL NULL encodes as JSON null.
type NullJSON json.RawMessage

// Scan implements sql.Scanner.
func (j *NullJSON) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = NullJSON(v)
	default:
		return fmt.Errorf("scan json: unsupported type %T", src)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (j NullJSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return json.RawMessage(j).MarshalJSON()
}

// AuditLogFilter pages the audit trail.
type AuditLogFilter struct {
	EntityType string
	Limit      int
	Offset     int
}

// ExportLog records one export action.
type ExportLog struct {
	ID             int64           `db:"id" json:"id"`
	UserID         *int64          `db:"user_id" json:"userId"`
	UserName       *string         `db:"user_name" json:"userName"`
	ExportType     string          `db:"export_type" json:"type"`
	ExportModule   string          `db:"export_module" json:"module"`
	FilterCriteria json.RawMessage `db:"filter_criteria" json:"filterCriteria,omitempty"`
	RecordCount    int             `db:"record_count" json:"records"`
	FilePath       *string         `db:"file_path" json:"-"`
	CreatedAt      time.Time       `db:"created_at" json:"createdAt"`
	DownloadURL    *string         `db:"-" json:"downloadUrl,omitempty"`
}

// ExportLogRequest is a client-side export notification.
type ExportLogRequest struct {
	ExportType     string          `json:"exportType"`
	ExportModule   string          `json:"exportModule"`
	FilterCriteria json.RawMessage `json:"filterCriteria"`
	RecordCount    int             `json:"recordCount"`
}

// ExportLogFilter narrows export history.
type ExportLogFilter struct {
	Scope Scope
	Limit int
}
