package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/luct-reporting-api/internal/models"
	appErrors "github.com/noah-isme/luct-reporting-api/pkg/errors"
)

type tokenTable map[string]*models.JWTClaims

func (t tokenTable) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := t[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "Invalid or expired token")
}

type fakeReportSrv struct {
	filters []models.ReportFilter
}

func (f *fakeReportSrv) List(_ context.Context, filter models.ReportFilter) ([]models.ReportView, error) {
	f.filters = append(f.filters, filter)
	return []models.ReportView{}, nil
}

func (f *fakeReportSrv) Create(context.Context, int64, models.CreateReportRequest) (*models.ReportView, error) {
	return &models.ReportView{ID: 1}, nil
}

func newTestRouter(reports *fakeReportSrv) *gin.Engine {
	gin.SetMode(gin.TestMode)
	faculty := int64(3)
	tokens := tokenTable{
		"lecturer": {ID: 7, Role: models.RoleLecturer, FacultyID: &faculty},
		"prl":      {ID: 8, Role: models.RolePrincipalLecturer, FacultyID: &faculty},
		"student":  {ID: 21, Role: models.RoleStudent, FacultyID: &faculty},
		"admin":    {ID: 1, Role: models.RoleAdmin},
	}
	return NewRouter(RouterConfig{Tokens: tokens}, Handlers{
		Teaching: NewTeachingHandler(nil, reports, nil),
		Insights: NewInsightsHandler(&fakeInsightsSrv{}),
		Health:   NewHealthHandler(nil, nil),
	})
}

func call(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(rec, req)
	return rec
}

func TestRouterPublicHealth(t *testing.T) {
	r := newTestRouter(&fakeReportSrv{})

	rec := call(r, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])

	assert.Equal(t, http.StatusOK, call(r, http.MethodGet, "/ready", "").Code)
}

func TestRouterAuthenticationAndCapabilities(t *testing.T) {
	r := newTestRouter(&fakeReportSrv{})

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{"missing token", http.MethodGet, "/api/lecturer/reports", "", http.StatusUnauthorized},
		{"unknown token", http.MethodGet, "/api/lecturer/reports", "forged", http.StatusUnauthorized},
		{"student on lecturer surface", http.MethodGet, "/api/lecturer/reports", "student", http.StatusForbidden},
		{"lecturer on prl surface", http.MethodGet, "/api/prl/reports", "lecturer", http.StatusForbidden},
		{"lecturer on pl surface", http.MethodGet, "/api/pl/reports", "lecturer", http.StatusForbidden},
		{"prl on admin surface", http.MethodGet, "/api/admin/faculties", "prl", http.StatusForbidden},
		{"lecturer exporting users", http.MethodPost, "/api/export/users", "lecturer", http.StatusForbidden},
		{"student export history", http.MethodGet, "/api/admin/exports/history", "student", http.StatusForbidden},
		{"any role reads academic years", http.MethodGet, "/api/admin/academic-years", "student", http.StatusOK},
		{"lecturer reads own reports", http.MethodGet, "/api/lecturer/reports", "lecturer", http.StatusOK},
		{"prl reads faculty reports", http.MethodGet, "/api/prl/reports", "prl", http.StatusOK},
		{"student reads enrolled reports", http.MethodGet, "/api/student/reports", "student", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := call(r, tc.method, tc.path, tc.token)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestRouterPassesResolvedScope(t *testing.T) {
	reports := &fakeReportSrv{}
	r := newTestRouter(reports)

	call(r, http.MethodGet, "/api/lecturer/reports", "lecturer")
	call(r, http.MethodGet, "/api/prl/reports", "prl")
	call(r, http.MethodGet, "/api/student/reports", "student")

	require.Len(t, reports.filters, 3)
	assert.Equal(t, models.ScopeOwn, reports.filters[0].Scope.Kind)
	assert.Equal(t, int64(7), reports.filters[0].Scope.UserID)
	assert.Equal(t, models.ScopeFaculty, reports.filters[1].Scope.Kind)
	assert.Equal(t, int64(3), *reports.filters[1].Scope.FacultyID)
	assert.Equal(t, models.ScopeEnrolled, reports.filters[2].Scope.Kind)
	assert.Equal(t, int64(21), reports.filters[2].Scope.UserID)
}
