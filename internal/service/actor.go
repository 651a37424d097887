package service

import (
	"context"

	"github.com/noah-isme/luct-reporting-api/internal/models"
)

// Actor identifies the admin behind a mutation for the audit trail.
type Actor struct {
	ID int64
	IP string
}

func (a Actor) entry(action, entityType string, entityID *int64, oldValues, newValues interface{}) models.AuditEntry {
	return models.AuditEntry{
		AdminID:    a.ID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		OldValues:  oldValues,
		NewValues:  newValues,
		IPAddress:  a.IP,
	}
}

type nopAuditRecorder struct{}

func (nopAuditRecorder) Record(context.Context, models.AuditEntry) {}

func auditOrNop(recorder AuditRecorder) AuditRecorder {
	if recorder == nil {
		return nopAuditRecorder{}
	}
	return recorder
}

func int64Ptr(v int64) *int64 {
	return &v
}
