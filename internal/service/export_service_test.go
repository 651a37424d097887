package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/luct-reporting-api/internal/dto"
	"github.com/noah-isme/luct-reporting-api/internal/models"
	appErrors "github.com/noah-isme/luct-reporting-api/pkg/errors"
	"github.com/noah-isme/luct-reporting-api/pkg/storage"
)

type memoryExportLogs struct {
	rows   []models.ExportLog
	filter models.ExportLogFilter
}

func (m *memoryExportLogs) Create(_ context.Context, log *models.ExportLog) error {
	log.ID = int64(len(m.rows) + 1)
	log.CreatedAt = time.Date(2025, 3, 20, 10, 0, 0, 0, time.UTC)
	m.rows = append(m.rows, *log)
	return nil
}

func (m *memoryExportLogs) List(_ context.Context, filter models.ExportLogFilter) ([]models.ExportLog, error) {
	m.filter = filter
	out := make([]models.ExportLog, len(m.rows))
	copy(out, m.rows)
	return out, nil
}

func (m *memoryExportLogs) FindByID(_ context.Context, id int64) (*models.ExportLog, error) {
	for _, row := range m.rows {
		if row.ID == id {
			c := row
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

type stubExportPrograms struct{ filter models.ProgramFilter }

func (s *stubExportPrograms) List(_ context.Context, filter models.ProgramFilter) ([]models.Program, error) {
	s.filter = filter
	return []models.Program{{ID: 1, Code: "DIT", Name: "Diploma in IT", Level: "Diploma", DurationYears: 3, CourseCount: 4}}, nil
}

type exportFixture struct {
	svc      *ExportService
	reports  *fakeReports
	users    *fakeUsers
	programs *stubExportPrograms
	logs     *memoryExportLogs
}

func newExportFixture(t *testing.T) exportFixture {
	t.Helper()
	archive, err := storage.NewArchive(t.TempDir())
	require.NoError(t, err)
	lecturer := int64(7)
	f := exportFixture{
		reports: &fakeReports{records: []models.ReportRecord{{
			ID: 1, LecturerID: &lecturer, DateOfLecture: "2025-03-10", ActualStudentsPresent: 20, TotalRegistered: 40,
			Status: "submitted", TopicTaught: "Joins, outer and inner", LecturerFirstName: strPtr("Boitumelo"), LecturerLastName: strPtr("Tebello"),
		}}},
		users:    newFakeUsers(&models.User{ID: 1, UserID: "ADM001", FirstName: "System", Role: models.RoleAdmin, Approved: true}),
		programs: &stubExportPrograms{},
		logs:     &memoryExportLogs{},
	}
	f.svc = NewExportService(ExportServiceParams{
		Reports:  f.reports,
		Users:    f.users,
		Programs: f.programs,
		Logs:     f.logs,
		Archive:  archive,
		Signer:   storage.NewSignedURLSigner("export-secret", time.Hour),
		Metrics:  NewMetricsService(),
		Logger:   zap.NewNop(),
	})
	return f
}

func TestExportServiceReportsCSV(t *testing.T) {
	f := newExportFixture(t)
	claims := &models.JWTClaims{ID: 7, Role: models.RoleLecturer}

	file, err := f.svc.Reports(context.Background(), claims, models.AllScope(), dto.ExportReportsRequest{})
	require.NoError(t, err)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.True(t, strings.HasPrefix(file.Filename, "reports-"))
	assert.Equal(t, 1, file.Records)

	lines := strings.Split(strings.TrimSpace(string(file.Body)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "id,classId,courseId,facultyId,dateOfLecture"))
	assert.Contains(t, lines[1], `"Joins, outer and inner"`)
	assert.Contains(t, lines[1], "Boitumelo Tebello")

	require.Len(t, f.reports.filters, 1)
	assert.Equal(t, models.OwnScope(7), f.reports.filters[0].Scope)

	require.Len(t, f.logs.rows, 1)
	logged := f.logs.rows[0]
	assert.Equal(t, "CSV", logged.ExportType)
	assert.Equal(t, ExportModuleReports, logged.ExportModule)
	assert.Equal(t, 1, logged.RecordCount)
	require.NotNil(t, logged.FilePath)

	var criteria map[string]interface{}
	require.NoError(t, json.Unmarshal(logged.FilterCriteria, &criteria))
	assert.Equal(t, float64(7), criteria["lecturerId"])
}

func TestExportServiceReportsRules(t *testing.T) {
	f := newExportFixture(t)
	ctx := context.Background()
	prl := &models.JWTClaims{ID: 20, Role: models.RolePrincipalLecturer}

	_, err := f.svc.Reports(ctx, prl, models.AllScope(), dto.ExportReportsRequest{Scope: dto.ExportScopeAll})
	assert.Equal(t, 403, appErrors.FromError(err).Status)

	_, err = f.svc.Reports(ctx, prl, models.AllScope(), dto.ExportReportsRequest{Format: "docx"})
	assert.Equal(t, "Unsupported export format", appErrors.FromError(err).Message)

	_, err = f.svc.Reports(ctx, prl, models.AllScope(), dto.ExportReportsRequest{Filters: dto.ReportExportFilters{StartDate: "March"}})
	assert.Equal(t, "Invalid date filter", appErrors.FromError(err).Message)

	file, err := f.svc.Reports(ctx, prl, models.FacultyScope(20, nil), dto.ExportReportsRequest{})
	require.NoError(t, err)
	assert.Zero(t, file.Records)
	assert.Empty(t, file.Body)
	assert.Empty(t, f.reports.filters)
}

func TestExportServiceProgramsPinsFaculty(t *testing.T) {
	f := newExportFixture(t)
	faculty := int64(3)
	other := int64(9)

	file, err := f.svc.Programs(context.Background(), &models.JWTClaims{ID: 2, Role: models.RoleProgramLeader},
		models.FacultyScope(2, &faculty), dto.ExportProgramsRequest{Format: "json", Filters: dto.ProgramExportFilters{FacultyID: &other}})
	require.NoError(t, err)
	assert.Equal(t, "application/json", file.ContentType)
	require.NotNil(t, f.programs.filter.FacultyID)
	assert.Equal(t, faculty, *f.programs.filter.FacultyID)
	assert.Equal(t, "JSON", f.logs.rows[0].ExportType)
}

func TestExportServiceUsersSpreadsheet(t *testing.T) {
	f := newExportFixture(t)

	file, err := f.svc.Users(context.Background(), &models.JWTClaims{ID: 1, Role: models.RoleAdmin}, dto.ExportUsersRequest{Format: "spreadsheet"})
	require.NoError(t, err)
	assert.Equal(t, "xlsx", file.Extension)
	assert.NotEmpty(t, file.Body)
	assert.Equal(t, "SPREADSHEET", f.logs.rows[0].ExportType)
}

func TestExportServiceHistoryAndDownload(t *testing.T) {
	f := newExportFixture(t)
	ctx := context.Background()
	claims := &models.JWTClaims{ID: 7, Role: models.RoleLecturer}

	file, err := f.svc.Reports(ctx, claims, models.AllScope(), dto.ExportReportsRequest{})
	require.NoError(t, err)
	_, err = f.svc.LogClientExport(ctx, 7, models.ExportLogRequest{ExportType: "PDF", ExportModule: "Reports", RecordCount: 3})
	require.NoError(t, err)

	history, err := f.svc.History(ctx, models.OwnScope(7))
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, exportHistoryLimit, f.logs.filter.Limit)
	require.NotNil(t, history[0].DownloadURL)
	assert.Nil(t, history[1].DownloadURL)

	token := strings.TrimPrefix(*history[0].DownloadURL, "/api/exports/download/")
	download, err := f.svc.Download(ctx, token)
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, "text/csv", download.ContentType)
	assert.Equal(t, int64(len(file.Body)), download.SizeBytes)
	body, err := io.ReadAll(download.File)
	require.NoError(t, err)
	assert.Equal(t, file.Body, body)

	_, err = f.svc.Download(ctx, token+"x")
	assert.Equal(t, 401, appErrors.FromError(err).Status)
}

func TestExportServiceLogClientExportValidation(t *testing.T) {
	f := newExportFixture(t)
	_, err := f.svc.LogClientExport(context.Background(), 7, models.ExportLogRequest{ExportType: "CSV"})
	assert.Equal(t, "Export type and module are required", appErrors.FromError(err).Message)
	assert.Empty(t, f.logs.rows)
}
