package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/luct-reporting-api/internal/middleware"
	"github.com/noah-isme/luct-reporting-api/internal/models"
	"github.com/noah-isme/luct-reporting-api/pkg/response"
)

// TotalCountHeader carries the unpaged size of a listing.
const TotalCountHeader = "X-Total-Count"

type insightsService interface {
	Statistics(ctx context.Context) (*models.AdminStatistics, bool, error)
	Analytics(ctx context.Context) (*models.AdminAnalytics, bool, error)
	AuditLogs(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLog, int, error)
	Search(ctx context.Context, q, kind string) (models.SearchResults, error)
	AcademicYears(ctx context.Context) ([]string, error)
}

// InsightsHandler serves admin statistics, analytics, the audit trail and search.
type InsightsHandler struct {
	service insightsService
}

// NewInsightsHandler constructs an insights handler.
func NewInsightsHandler(service insightsService) *InsightsHandler {
	return &InsightsHandler{service: service}
}

// Statistics godoc
// @Summary Catalogue and activity totals
// @Tags Admin
// @Produce json
// @Success 200 {object} models.AdminStatistics
// @Router /admin/statistics [get]
func (h *InsightsHandler) Statistics(c *gin.Context) {
	stats, hit, err := h.service.Statistics(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.OK(c, stats)
}

// Analytics godoc
// @Summary Admin analytics including process health
// @Tags Admin
// @Produce json
// @Success 200 {object} models.AdminAnalytics
// @Router /admin/analytics [get]
func (h *InsightsHandler) Analytics(c *gin.Context) {
	analytics, hit, err := h.service.Analytics(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, hit)
	response.OK(c, analytics)
}

// AuditLogs godoc
// @Summary Page through the audit trail
// @Tags Admin
// @Produce json
// @Param limit query int false "Page size (default 50, max 200)"
// @Param offset query int false "Offset"
// @Param entityType query string false "Entity type"
// @Success 200 {array} models.AuditLog
// @Header 200 {integer} X-Total-Count "Total entries"
// @Router /admin/audit-logs [get]
func (h *InsightsHandler) AuditLogs(c *gin.Context) {
	logs, total, err := h.service.AuditLogs(c.Request.Context(), models.AuditLogFilter{
		EntityType: c.Query("entityType"),
		Limit:      queryInt(c, "limit"),
		Offset:     queryInt(c, "offset"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header(TotalCountHeader, strconv.Itoa(total))
	response.OK(c, logs)
}

// Search matches q (two characters or more) across the catalogue and users.
func (h *InsightsHandler) Search(c *gin.Context) {
	results, err := h.service.Search(c.Request.Context(), c.Query("q"), c.Query("type"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, results)
}

func (h *InsightsHandler) AcademicYears(c *gin.Context) {
	years, err := h.service.AcademicYears(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, years)
}
