package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/luct-reporting-api/internal/models"
)

const (
	reportTrendDays      = 30
	defaultAuditLogLimit = 50
	maxAuditLogLimit     = 200
	minSearchLength      = 2
)

// AnalyticsRepository describes the aggregate queries behind the admin overview.
type AnalyticsRepository interface {
	UsersByRole(ctx context.Context) ([]models.RoleCount, error)
	ReportsByStatus(ctx context.Context) ([]models.StatusCount, error)
	Totals(ctx context.Context) (models.AdminTotals, error)
	ProgramsByFaculty(ctx context.Context) ([]models.FacultyProgramCount, error)
	CourseStats(ctx context.Context) (models.CourseStats, error)
	ReportTrends(ctx context.Context, days int) ([]models.ReportTrend, error)
	ApprovalStats(ctx context.Context) (models.ApprovalStats, error)
	HealthMetrics(ctx context.Context) (models.HealthMetrics, error)
	Search(ctx context.Context, group, term string) ([]models.SearchHit, error)
	AcademicYears(ctx context.Context) ([]string, error)
}

type auditLogReader interface {
	List(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLog, error)
	Count(ctx context.Context) (int, error)
}

// AnalyticsService provides the admin statistics, analytics, audit trail and
// search with cache integration.
type AnalyticsService struct {
	repo     AnalyticsRepository
	audit    auditLogReader
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	cacheTTL time.Duration
}

// NewAnalyticsService constructs an analytics service.
func NewAnalyticsService(repo AnalyticsRepository, audit auditLogReader, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cacheTTL time.Duration) *AnalyticsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &AnalyticsService{repo: repo, audit: audit, cache: cache, metrics: metrics, logger: logger, cacheTTL: cacheTTL}
}

// Statistics returns the admin overview counters. The boolean indicates whether data originated from cache.
func (s *AnalyticsService) Statistics(ctx context.Context) (*models.AdminStatistics, bool, error) {
	var cached models.AdminStatistics
	if hit, _ := s.cache.Get(ctx, statisticsCacheKey, &cached); hit {
		return &cached, true, nil
	}

	start := time.Now()
	roles, err := s.repo.UsersByRole(ctx)
	if err != nil {
		return nil, false, internalError(err, "failed to load statistics")
	}
	statuses, err := s.repo.ReportsByStatus(ctx)
	if err != nil {
		return nil, false, internalError(err, "failed to load statistics")
	}
	totals, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, false, internalError(err, "failed to load statistics")
	}
	s.metrics.ObserveDBQuery("admin_statistics", time.Since(start))

	stats := &models.AdminStatistics{
		UsersByRole:             make(map[string]int, len(roles)),
		ReportsByStatus:         make(map[string]int, len(statuses)),
		TotalFaculties:          totals.TotalFaculties,
		TotalPrograms:           totals.TotalPrograms,
		TotalCourses:            totals.TotalCourses,
		TotalReports:            totals.TotalReports,
		PendingApprovals:        totals.PendingApprovals,
		ActiveRegistrationCodes: totals.ActiveRegistrationCodes,
	}
	for _, row := range roles {
		stats.UsersByRole[row.Role] = row.Count
		stats.TotalUsers += row.Count
	}
	for _, row := range statuses {
		stats.ReportsByStatus[row.Status] = row.Count
	}

	if err := s.cache.Set(ctx, statisticsCacheKey, stats, s.cacheTTL); err != nil {
		s.logger.Warn("cache statistics", zap.Error(err))
	}
	return stats, false, nil
}

// Analytics returns the admin analytics payload. Process metrics are always
// sampled fresh, even on a cache hit.
func (s *AnalyticsService) Analytics(ctx context.Context) (*models.AdminAnalytics, bool, error) {
	var cached models.AdminAnalytics
	if hit, _ := s.cache.Get(ctx, analyticsCacheKey, &cached); hit {
		s.attachSystem(&cached)
		return &cached, true, nil
	}

	start := time.Now()
	analytics, err := s.loadAnalytics(ctx)
	if err != nil {
		return nil, false, internalError(err, "failed to load analytics")
	}
	s.metrics.ObserveDBQuery("admin_analytics", time.Since(start))

	if err := s.cache.Set(ctx, analyticsCacheKey, analytics, s.cacheTTL); err != nil {
		s.logger.Warn("cache analytics", zap.Error(err))
	}
	s.attachSystem(analytics)
	return analytics, false, nil
}

func (s *AnalyticsService) loadAnalytics(ctx context.Context) (*models.AdminAnalytics, error) {
	var (
		out = &models.AdminAnalytics{}
		err error
	)
	if out.UsersByRole, err = s.repo.UsersByRole(ctx); err != nil {
		return nil, err
	}
	if out.ProgramsByFaculty, err = s.repo.ProgramsByFaculty(ctx); err != nil {
		return nil, err
	}
	if out.CourseStats, err = s.repo.CourseStats(ctx); err != nil {
		return nil, err
	}
	if out.ReportTrends, err = s.repo.ReportTrends(ctx, reportTrendDays); err != nil {
		return nil, err
	}
	if out.ApprovalStats, err = s.repo.ApprovalStats(ctx); err != nil {
		return nil, err
	}
	if out.HealthMetrics, err = s.repo.HealthMetrics(ctx); err != nil {
		return nil, err
	}
	if out.UsersByRole == nil {
		out.UsersByRole = []models.RoleCount{}
	}
	if out.ProgramsByFaculty == nil {
		out.ProgramsByFaculty = []models.FacultyProgramCount{}
	}
	if out.ReportTrends == nil {
		out.ReportTrends = []models.ReportTrend{}
	}
	return out, nil
}

func (s *AnalyticsService) attachSystem(analytics *models.AdminAnalytics) {
	if s.metrics == nil {
		analytics.HealthMetrics.System = nil
		return
	}
	snapshot := s.metrics.Snapshot()
	analytics.HealthMetrics.System = &snapshot
}

// AuditLogs pages the audit trail newest first and reports its total size.
func (s *AnalyticsService) AuditLogs(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLog, int, error) {
	filter.Limit = ClampAuditLimit(filter.Limit)
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	filter.EntityType = strings.TrimSpace(filter.EntityType)
	logs, err := s.audit.List(ctx, filter)
	if err != nil {
		return nil, 0, internalError(err, "failed to list audit logs")
	}
	if logs == nil {
		logs = []models.AuditLog{}
	}
	total, err := s.audit.Count(ctx)
	if err != nil {
		s.logger.Warn("count audit logs", zap.Error(err))
		total = len(logs)
	}
	return logs, total, nil
}

// ClampAuditLimit applies the default and maximum audit page size.
func ClampAuditLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultAuditLogLimit
	case limit > maxAuditLogLimit:
		return maxAuditLogLimit
	default:
		return limit
	}
}

// Search matches q across faculties, programmes, courses and users, or only
// the group named by kind.
func (s *AnalyticsService) Search(ctx context.Context, q, kind string) (models.SearchResults, error) {
	q = strings.TrimSpace(q)
	if len([]rune(q)) < minSearchLength {
		return models.SearchResults{"results": []models.SearchHit{}}, nil
	}
	kind = strings.ToLower(strings.TrimSpace(kind))

	results := models.SearchResults{}
	for _, group := range models.SearchGroups {
		if kind != "" && kind != group {
			continue
		}
		hits, err := s.repo.Search(ctx, group, q)
		if err != nil {
			return nil, internalError(err, "failed to search")
		}
		if hits == nil {
			hits = []models.SearchHit{}
		}
		results[group] = hits
	}
	return results, nil
}

// AcademicYears lists known academic years, newest first.
func (s *AnalyticsService) AcademicYears(ctx context.Context) ([]string, error) {
	years, err := s.repo.AcademicYears(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list academic years")
	}
	if years == nil {
		years = []string{}
	}
	return years, nil
}
