package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/luct-reporting-api/internal/models"
	appErrors "github.com/noah-isme/luct-reporting-api/pkg/errors"
)

type memoryCache struct {
	mu    sync.Mutex
	items map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string][]byte{}}
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = raw
	return nil
}

func (m *memoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range m.items {
		if strings.HasPrefix(key, prefix) {
			delete(m.items, key)
		}
	}
	return nil
}

type fakeDashboardPrograms struct{ rows []models.Program }

func (f fakeDashboardPrograms) List(context.Context, models.ProgramFilter) ([]models.Program, error) {
	return f.rows, nil
}

type stubAnnouncements struct{ rows []models.Announcement }

func (s stubAnnouncements) List(context.Context, models.AnnouncementFilter) ([]models.Announcement, error) {
	return s.rows, nil
}

func newDashboardForTest(reports *fakeReports, classes *fakeClasses, cache *CacheService) *DashboardService {
	monitoring, ratings, _ := reviewFixture()
	svc := NewDashboardService(DashboardServiceParams{
		Reports:       reports,
		Classes:       classes,
		Monitoring:    monitoring,
		Ratings:       ratings,
		Programs:      fakeDashboardPrograms{rows: []models.Program{{ID: 1, Code: "DIT", Name: "Diploma in IT"}}},
		Announcements: stubAnnouncements{rows: []models.Announcement{{ID: 1}, {ID: 2}, {ID: 3}}},
		Cache:         cache,
		Logger:        zap.NewNop(),
	})
	svc.now = func() time.Time { return time.Date(2025, 3, 20, 8, 0, 0, 0, time.UTC) }
	return svc
}

func TestDashboardServiceLecturer(t *testing.T) {
	lecturer := int64(7)
	reports := &fakeReports{
		records: []models.ReportRecord{
			{ID: 2, LecturerID: &lecturer, DateOfLecture: "2025-03-18", ActualStudentsPresent: 30, TotalRegistered: 40},
			{ID: 1, LecturerID: &lecturer, DateOfLecture: "2025-02-11", ActualStudentsPresent: 20, TotalRegistered: 40},
		},
		totals: models.ReportTotals{Total: 12, InWindow: 3},
	}
	classes := &fakeClasses{records: []models.ClassRecord{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}}
	cache := NewCacheService(newMemoryCache(), nil, time.Minute, zap.NewNop(), true)
	svc := newDashboardForTest(reports, classes, cache)
	claims := &models.JWTClaims{ID: 7, Role: models.RoleLecturer}

	payload, cached, err := svc.Dashboard(context.Background(), claims, models.OwnScope(7))
	require.NoError(t, err)
	assert.False(t, cached)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &body))
	assert.Equal(t, "lecturer", body["role"])
	assert.Equal(t, float64(12), body["reportsTotal"])
	assert.Equal(t, float64(3), body["classesThisWeek"])
	assert.Len(t, body["announcements"], 3)
	assert.Len(t, body["reports"], 2)
	stats := body["stats"].(map[string]interface{})
	assert.Equal(t, float64(63), stats["avgAttendance"])
	assert.Equal(t, float64(1), stats["submittedThisMonth"])
	assert.Len(t, stats["upcomingClasses"], 3)

	again, cached, err := svc.Dashboard(context.Background(), claims, models.OwnScope(7))
	require.NoError(t, err)
	assert.True(t, cached)
	assert.JSONEq(t, string(payload), string(again))

	require.NoError(t, cache.Invalidate(context.Background(), DashboardCachePattern))
	_, cached, err = svc.Dashboard(context.Background(), claims, models.OwnScope(7))
	require.NoError(t, err)
	assert.False(t, cached)
}

func TestDashboardServiceProgramLeaderWithoutFaculty(t *testing.T) {
	reports := &fakeReports{records: []models.ReportRecord{{ID: 1}}}
	classes := &fakeClasses{records: []models.ClassRecord{{ID: 1}}}
	svc := newDashboardForTest(reports, classes, nil)
	claims := &models.JWTClaims{ID: 3, Role: models.RoleProgramLeader}

	payload, _, err := svc.Dashboard(context.Background(), claims, models.FacultyScope(3, nil))
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &body))
	assert.Empty(t, body["programs"])
	assert.Empty(t, body["classes"])
	assert.Empty(t, body["reports"])
	stats := body["stats"].(map[string]interface{})
	assert.Len(t, stats["nextEvents"], 2)
	assert.Empty(t, classes.filters)
}

func TestDashboardServiceAdminHasBaseOnly(t *testing.T) {
	svc := newDashboardForTest(&fakeReports{}, &fakeClasses{}, nil)
	payload, _, err := svc.Dashboard(context.Background(), &models.JWTClaims{ID: 1, Role: models.RoleAdmin}, models.AllScope())
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &body))
	assert.Equal(t, "admin", body["role"])
	assert.Nil(t, body["latestReport"])
	assert.NotContains(t, body, "stats")
}

func dashboardStats(t *testing.T, svc *DashboardService, claims *models.JWTClaims, scope models.Scope) (map[string]interface{}, map[string]interface{}) {
	t.Helper()
	payload, _, err := svc.Dashboard(context.Background(), claims, scope)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &body))
	return body, body["stats"].(map[string]interface{})
}

func TestDashboardServicePrincipalLecturerFollowUps(t *testing.T) {
	cases := []struct {
		name        string
		statuses    []string
		ratings     []int
		outstanding float64
		avgRating   float64
	}{
		{"no notes", nil, nil, 0, 0},
		{"all satisfactory", []string{models.MonitoringSatisfactory, models.MonitoringSatisfactory}, []int{5}, 0, 5},
		{"mixed", []string{models.MonitoringPending, models.MonitoringInProgress, models.MonitoringSatisfactory, models.MonitoringPending}, []int{4, 5, 2}, 3, 4},
		{"blank status is not outstanding", []string{"", models.MonitoringInProgress}, []int{3, 4}, 1, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			monitoring := &fakeMonitoring{}
			for i, status := range tc.statuses {
				monitoring.records = append(monitoring.records, models.MonitoringRecord{ID: int64(i + 1), ReportID: 10, Status: status})
			}
			ratings := &fakeRatings{}
			for i, score := range tc.ratings {
				ratings.records = append(ratings.records, models.RatingRecord{ID: int64(i + 1), Rating: score, ReportID: 10})
			}
			svc := NewDashboardService(DashboardServiceParams{
				Reports:       &fakeReports{},
				Classes:       &fakeClasses{},
				Monitoring:    monitoring,
				Ratings:       ratings,
				Programs:      fakeDashboardPrograms{},
				Announcements: stubAnnouncements{},
			})
			faculty := int64(3)
			claims := &models.JWTClaims{ID: 5, Role: models.RolePrincipalLecturer, FacultyID: &faculty}

			body, stats := dashboardStats(t, svc, claims, models.FacultyScope(5, &faculty))
			assert.Len(t, body["monitoring"], len(tc.statuses))
			assert.Len(t, body["ratings"], len(tc.ratings))
			assert.Equal(t, tc.outstanding, stats["outstandingFollowUps"])
			assert.Equal(t, tc.avgRating, stats["avgRating"])
		})
	}
}

func TestDashboardServiceProgramLeaderActiveLecturers(t *testing.T) {
	lecturer := func(id int64) *int64 { return &id }
	cases := []struct {
		name    string
		classes []models.ClassRecord
		active  float64
	}{
		{"no classes", nil, 0},
		{"unassigned classes", []models.ClassRecord{{ID: 1}, {ID: 2}}, 0},
		{"duplicates counted once", []models.ClassRecord{
			{ID: 1, LecturerID: lecturer(7)},
			{ID: 2, LecturerID: lecturer(7)},
			{ID: 3, LecturerID: lecturer(9)},
			{ID: 4},
		}, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reports := &fakeReports{records: []models.ReportRecord{{ID: 1}, {ID: 2}, {ID: 3}}}
			svc := newDashboardForTest(reports, &fakeClasses{records: tc.classes}, nil)
			faculty := int64(3)
			claims := &models.JWTClaims{ID: 3, Role: models.RoleProgramLeader, FacultyID: &faculty}

			body, stats := dashboardStats(t, svc, claims, models.FacultyScope(3, &faculty))
			assert.Len(t, body["programs"], 1)
			assert.Len(t, body["classes"], len(tc.classes))
			assert.Equal(t, tc.active, stats["activeLecturers"])
			assert.Equal(t, float64(3), stats["reportsSubmitted"])
			assert.Len(t, stats["nextEvents"], 2)
		})
	}
}
