package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/luct-reporting-api/internal/models"
)

type stubAnalyticsRepo struct {
	calls    int
	searched []string
}

func (s *stubAnalyticsRepo) UsersByRole(context.Context) ([]models.RoleCount, error) {
	s.calls++
	return []models.RoleCount{{Role: "student", Count: 10}, {Role: "lecturer", Count: 4}}, nil
}

func (s *stubAnalyticsRepo) ReportsByStatus(context.Context) ([]models.StatusCount, error) {
	return []models.StatusCount{{Status: "submitted", Count: 6}}, nil
}

func (s *stubAnalyticsRepo) Totals(context.Context) (models.AdminTotals, error) {
	return models.AdminTotals{TotalFaculties: 3, PendingApprovals: 2}, nil
}

func (s *stubAnalyticsRepo) ProgramsByFaculty(context.Context) ([]models.FacultyProgramCount, error) {
	return nil, nil
}

func (s *stubAnalyticsRepo) CourseStats(context.Context) (models.CourseStats, error) {
	return models.CourseStats{TotalCourses: 8}, nil
}

func (s *stubAnalyticsRepo) ReportTrends(_ context.Context, days int) ([]models.ReportTrend, error) {
	return []models.ReportTrend{{Date: "2025-03-10", Count: days}}, nil
}

func (s *stubAnalyticsRepo) ApprovalStats(context.Context) (models.ApprovalStats, error) {
	return models.ApprovalStats{}, nil
}

func (s *stubAnalyticsRepo) HealthMetrics(context.Context) (models.HealthMetrics, error) {
	return models.HealthMetrics{TotalUsers: 14}, nil
}

func (s *stubAnalyticsRepo) Search(_ context.Context, group, _ string) ([]models.SearchHit, error) {
	s.searched = append(s.searched, group)
	return nil, nil
}

func (s *stubAnalyticsRepo) AcademicYears(context.Context) ([]string, error) {
	return []string{"2025", "2024"}, nil
}

type stubAuditLogs struct {
	filter models.AuditLogFilter
}

func (s *stubAuditLogs) List(_ context.Context, filter models.AuditLogFilter) ([]models.AuditLog, error) {
	s.filter = filter
	return []models.AuditLog{{ID: 1}}, nil
}

func (s *stubAuditLogs) Count(context.Context) (int, error) {
	return 321, nil
}

func TestAnalyticsServiceStatisticsCached(t *testing.T) {
	repo := &stubAnalyticsRepo{}
	cache := NewCacheService(newMemoryCache(), nil, time.Minute, zap.NewNop(), true)
	svc := NewAnalyticsService(repo, &stubAuditLogs{}, cache, nil, zap.NewNop(), time.Minute)

	stats, cached, err := svc.Statistics(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 14, stats.TotalUsers)
	assert.Equal(t, 10, stats.UsersByRole["student"])
	assert.Equal(t, 6, stats.ReportsByStatus["submitted"])

	again, cached, err := svc.Statistics(context.Background())
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, stats, again)
	assert.Equal(t, 1, repo.calls)
}

func TestAnalyticsServiceAnalyticsAttachesFreshSystemMetrics(t *testing.T) {
	repo := &stubAnalyticsRepo{}
	cache := NewCacheService(newMemoryCache(), nil, time.Minute, zap.NewNop(), true)
	metrics := NewMetricsService()
	svc := NewAnalyticsService(repo, &stubAuditLogs{}, cache, metrics, zap.NewNop(), time.Minute)

	first, cached, err := svc.Analytics(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.NotNil(t, first.ProgramsByFaculty)
	assert.Equal(t, 30, first.ReportTrends[0].Count)
	require.NotNil(t, first.HealthMetrics.System)

	metrics.ExportRendered("Reports", "csv")
	second, cached, err := svc.Analytics(context.Background())
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, 14, second.HealthMetrics.TotalUsers)
	require.NotNil(t, second.HealthMetrics.System)
	assert.Equal(t, float64(1), second.HealthMetrics.System.ExportsRendered)
}

func TestAnalyticsServiceAuditLogs(t *testing.T) {
	audit := &stubAuditLogs{}
	svc := NewAnalyticsService(&stubAnalyticsRepo{}, audit, nil, nil, zap.NewNop(), 0)

	logs, total, err := svc.AuditLogs(context.Background(), models.AuditLogFilter{Limit: 1000, Offset: -5, EntityType: " class "})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
	assert.Equal(t, 321, total)
	assert.Equal(t, 200, audit.filter.Limit)
	assert.Zero(t, audit.filter.Offset)
	assert.Equal(t, "class", audit.filter.EntityType)
}

func TestClampAuditLimit(t *testing.T) {
	assert.Equal(t, 50, ClampAuditLimit(0))
	assert.Equal(t, 20, ClampAuditLimit(20))
	assert.Equal(t, 200, ClampAuditLimit(500))
}

func TestAnalyticsServiceSearch(t *testing.T) {
	repo := &stubAnalyticsRepo{}
	svc := NewAnalyticsService(repo, &stubAuditLogs{}, nil, nil, zap.NewNop(), 0)
	ctx := context.Background()

	short, err := svc.Search(ctx, " a ", "")
	require.NoError(t, err)
	assert.Equal(t, models.SearchResults{"results": []models.SearchHit{}}, short)
	assert.Empty(t, repo.searched)

	all, err := svc.Search(ctx, "ict", "")
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, models.SearchGroups, repo.searched)

	repo.searched = nil
	users, err := svc.Search(ctx, "ict", "Users")
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Contains(t, users, models.SearchUsers)
	assert.Equal(t, []string{"users"}, repo.searched)
}
