package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/luct-reporting-api/internal/models"
	"github.com/noah-isme/luct-reporting-api/internal/service"
)

// Audit records a route-level entry after successful requests. Entries go
// through the audit sink so a failing write never touches the response.
func Audit(recorder service.AuditRecorder, action, entityType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if recorder == nil || c.Writer.Status() >= 400 {
			return
		}
		claims := Claims(c)
		if claims == nil {
			return
		}

		recorder.Record(c.Request.Context(), models.AuditEntry{
			AdminID:    claims.ID,
			Action:     action,
			EntityType: entityType,
			NewValues: map[string]interface{}{
				"path":    c.FullPath(),
				"method":  c.Request.Method,
				"status":  c.Writer.Status(),
				"latency": time.Since(start).Milliseconds(),
				"role":    claims.Role,
			},
			IPAddress: c.ClientIP(),
		})
	}
}
