package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/luct-reporting-api/internal/dto"
	"github.com/noah-isme/luct-reporting-api/internal/models"
	appErrors "github.com/noah-isme/luct-reporting-api/pkg/errors"
	"github.com/noah-isme/luct-reporting-api/pkg/export"
	"github.com/noah-isme/luct-reporting-api/pkg/storage"
)

// Export module names written to the export log.
const (
	ExportModuleReports  = "Reports"
	ExportModuleUsers    = "Users"
	ExportModulePrograms = "Programs"

	exportHistoryLimit = 100
)

type exportReportLister interface {
	List(ctx context.Context, filter models.ReportFilter) ([]models.ReportRecord, error)
}

type exportUserLister interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
}

type exportProgramLister interface {
	List(ctx context.Context, filter models.ProgramFilter) ([]models.Program, error)
}

type exportLogStore interface {
	Create(ctx context.Context, log *models.ExportLog) error
	List(ctx context.Context, filter models.ExportLogFilter) ([]models.ExportLog, error)
	FindByID(ctx context.Context, id int64) (*models.ExportLog, error)
}

type exportArchive interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (*os.File, error)
}

type exportSigner interface {
	Generate(exportID int64, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (storage.Ticket, error)
}

// ExportServiceConfig configures download links.
type ExportServiceConfig struct {
	APIPrefix string
}

// ExportServiceParams groups constructor dependencies.
type ExportServiceParams struct {
	Reports  exportReportLister
	Users    exportUserLister
	Programs exportProgramLister
	Logs     exportLogStore
	Archive  exportArchive
	Signer   exportSigner
	Metrics  *MetricsService
	Logger   *zap.Logger
	Config   ExportServiceConfig
}

// ExportFile is a rendered export ready to stream.
type ExportFile struct {
	export.Output
	Filename string
	Records  int
}

// ExportDownload is an archived export opened for streaming.
type ExportDownload struct {
	File        *os.File
	Filename    string
	ContentType string
	SizeBytes   int64
}

// ExportService renders report, user and program exports and keeps the export log.
type ExportService struct {
	reports  exportReportLister
	users    exportUserLister
	programs exportProgramLister
	logs     exportLogStore
	archive  exportArchive
	signer   exportSigner
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      ExportServiceConfig
	now      func() time.Time
}

// NewExportService constructs an ExportService. Archive and Signer are optional.
func NewExportService(params ExportServiceParams) *ExportService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := params.Config
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api"
	}
	return &ExportService{
		reports:  params.Reports,
		users:    params.Users,
		programs: params.Programs,
		logs:     params.Logs,
		archive:  params.Archive,
		signer:   params.Signer,
		metrics:  params.Metrics,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Reports exports reports visible to the caller. scope is the caller's
// export.reports scope; requesting "own" narrows it to the caller's reports.
func (s *ExportService) Reports(ctx context.Context, claims *models.JWTClaims, scope models.Scope, req dto.ExportReportsRequest) (*ExportFile, error) {
	format, err := exportFormat(req.Format)
	if err != nil {
		return nil, err
	}
	if req.Scope == dto.ExportScopeAll && claims.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "Only admins can export all reports")
	}
	if req.Scope == dto.ExportScopeOwn || claims.Role == models.RoleLecturer {
		scope = models.OwnScope(claims.ID)
	}

	filter := models.ReportFilter{
		Scope:      scope,
		FacultyID:  req.Filters.FacultyID,
		LecturerID: req.Filters.LecturerID,
		Status:     strings.TrimSpace(req.Filters.Status),
	}
	if filter.StartDate, err = optionalDate(req.Filters.StartDate); err != nil {
		return nil, err
	}
	if filter.EndDate, err = optionalDate(req.Filters.EndDate); err != nil {
		return nil, err
	}

	var records []models.ReportRecord
	if !scope.MatchesNothing() {
		if records, err = s.reports.List(ctx, filter); err != nil {
			return nil, internalError(err, "failed to load reports for export")
		}
	}

	table := export.Table{
		Title: "LUCT Reports Export",
		Columns: []string{"id", "classId", "courseId", "facultyId", "dateOfLecture", "weekOfReporting",
			"studentsPresent", "totalStudents", "attendancePercentage", "status", "topic", "outcomes",
			"recommendations", "createdAt", "classCode", "courseName", "facultyName", "lecturerName"},
		Rows:    make([][]interface{}, 0, len(records)),
		Filters: reportFilterLabels(req.Filters, scope),
	}
	for _, r := range records {
		table.Rows = append(table.Rows, []interface{}{
			r.ID, r.ClassID, r.CourseID, r.FacultyID, r.DateOfLecture, r.WeekOfReporting,
			r.ActualStudentsPresent, r.TotalRegistered,
			models.AttendancePercentage(r.ActualStudentsPresent, r.TotalRegistered), r.Status,
			r.TopicTaught, r.LearningOutcomes, r.Recommendations, r.CreatedAt, r.ClassCode,
			r.CourseName, r.FacultyName, personName(r.LecturerFirstName, r.LecturerLastName),
		})
	}
	return s.deliver(ctx, claims.ID, ExportModuleReports, format, table, effectiveReportFilters(req.Filters, filter))
}

// Users exports user accounts.
func (s *ExportService) Users(ctx context.Context, claims *models.JWTClaims, req dto.ExportUsersRequest) (*ExportFile, error) {
	format, err := exportFormat(req.Format)
	if err != nil {
		return nil, err
	}
	filter := models.UserFilter{FacultyID: req.Filters.FacultyID, Approved: req.Filters.Approved}
	if role := strings.TrimSpace(req.Filters.Role); role != "" {
		r := models.UserRole(role)
		filter.Role = &r
	}
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to load users for export")
	}

	table := export.Table{
		Title:   "LUCT Users Export",
		Columns: []string{"id", "userId", "firstName", "lastName", "email", "role", "approved", "faculty", "registeredDate"},
		Rows:    make([][]interface{}, 0, len(users)),
	}
	if req.Filters.Role != "" {
		table.Filters = append(table.Filters, export.Filter{Label: "Role", Value: req.Filters.Role})
	}
	if req.Filters.FacultyID != nil {
		table.Filters = append(table.Filters, export.Filter{Label: "Faculty", Value: export.FormatValue(req.Filters.FacultyID)})
	}
	if req.Filters.Approved != nil {
		table.Filters = append(table.Filters, export.Filter{Label: "Approved", Value: export.FormatValue(req.Filters.Approved)})
	}
	for _, u := range users {
		table.Rows = append(table.Rows, []interface{}{
			u.ID, u.UserID, u.FirstName, u.LastName, u.Email, string(u.Role), u.Approved,
			u.FacultyName, u.CreatedAt.UTC().Format(models.DateLayout),
		})
	}
	return s.deliver(ctx, claims.ID, ExportModuleUsers, format, table, req.Filters)
}

// Programs exports programmes with their course counts; program leaders are
// pinned to their faculty through scope.
func (s *ExportService) Programs(ctx context.Context, claims *models.JWTClaims, scope models.Scope, req dto.ExportProgramsRequest) (*ExportFile, error) {
	format, err := exportFormat(req.Format)
	if err != nil {
		return nil, err
	}
	filters := req.Filters
	if scope.Kind == models.ScopeFaculty {
		filters.FacultyID = scope.FacultyID
	}

	var programs []models.Program
	if !scope.MatchesNothing() {
		programs, err = s.programs.List(ctx, models.ProgramFilter{
			Scope:        scope,
			FacultyID:    filters.FacultyID,
			AcademicYear: strings.TrimSpace(filters.AcademicYear),
		})
		if err != nil {
			return nil, internalError(err, "failed to load programs for export")
		}
	}

	table := export.Table{
		Title:   "LUCT Programs Export",
		Columns: []string{"id", "code", "name", "level", "years", "academicYear", "faculty", "courseCount"},
		Rows:    make([][]interface{}, 0, len(programs)),
	}
	if filters.FacultyID != nil {
		table.Filters = append(table.Filters, export.Filter{Label: "Faculty", Value: export.FormatValue(filters.FacultyID)})
	}
	if filters.AcademicYear != "" {
		table.Filters = append(table.Filters, export.Filter{Label: "Academic Year", Value: filters.AcademicYear})
	}
	for _, p := range programs {
		table.Rows = append(table.Rows, []interface{}{
			p.ID, p.Code, p.Name, p.Level, p.DurationYears, p.AcademicYear, p.FacultyName, p.CourseCount,
		})
	}
	return s.deliver(ctx, claims.ID, ExportModulePrograms, format, table, filters)
}

// LogClientExport records an export the client rendered itself.
func (s *ExportService) LogClientExport(ctx context.Context, userID int64, req models.ExportLogRequest) (int64, error) {
	exportType := strings.TrimSpace(req.ExportType)
	module := strings.TrimSpace(req.ExportModule)
	if exportType == "" || module == "" {
		return 0, appErrors.Validation("Export type and module are required")
	}
	if req.RecordCount < 0 {
		return 0, appErrors.Validation("Record count cannot be negative")
	}
	log := &models.ExportLog{
		UserID:         &userID,
		ExportType:     exportType,
		ExportModule:   module,
		FilterCriteria: req.FilterCriteria,
		RecordCount:    req.RecordCount,
	}
	if err := s.logs.Create(ctx, log); err != nil {
		return 0, internalError(err, "failed to log export")
	}
	return log.ID, nil
}

// History returns the newest export log entries visible under scope, with
// signed download links for archived files.
func (s *ExportService) History(ctx context.Context, scope models.Scope) ([]models.ExportLog, error) {
	if scope.MatchesNothing() {
		return []models.ExportLog{}, nil
	}
	logs, err := s.logs.List(ctx, models.ExportLogFilter{Scope: scope, Limit: exportHistoryLimit})
	if err != nil {
		return nil, internalError(err, "failed to load export history")
	}
	if logs == nil {
		logs = []models.ExportLog{}
	}
	if s.signer == nil {
		return logs, nil
	}
	for i := range logs {
		if logs[i].FilePath == nil || *logs[i].FilePath == "" {
			continue
		}
		token, _, err := s.signer.Generate(logs[i].ID, *logs[i].FilePath)
		if err != nil {
			s.logger.Warn("failed to sign export download", zap.Int64("export_id", logs[i].ID), zap.Error(err))
			continue
		}
		url := fmt.Sprintf("%s/exports/download/%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token)
		logs[i].DownloadURL = &url
	}
	return logs, nil
}

// Download validates a signed token and opens the archived export.
func (s *ExportService) Download(ctx context.Context, token string) (*ExportDownload, error) {
	if s.signer == nil || s.archive == nil {
		return nil, appErrors.NotFound("Export archive is disabled")
	}
	ticket, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "Invalid or expired download link")
	}
	log, err := s.logs.FindByID(ctx, ticket.ExportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFound("Export not found")
		}
		return nil, internalError(err, "failed to load export")
	}
	if log.FilePath == nil || *log.FilePath != ticket.Path {
		return nil, appErrors.NotFound("Export file no longer available")
	}
	file, err := s.archive.Open(ticket.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.NotFound("Export file no longer available")
		}
		return nil, internalError(err, "failed to open export")
	}
	info, err := file.Stat()
	if err != nil {
		file.Close() //nolint:errcheck
		return nil, internalError(err, "failed to read export metadata")
	}
	ext := strings.TrimPrefix(filepath.Ext(ticket.Path), ".")
	return &ExportDownload{
		File:        file,
		Filename:    fmt.Sprintf("%s-%d.%s", strings.ToLower(log.ExportModule), log.CreatedAt.UnixMilli(), ext),
		ContentType: contentTypeFor(ext),
		SizeBytes:   info.Size(),
	}, nil
}

// deliver renders the table, archives it when enabled and appends the export
// log. Logging and archiving failures never fail the export.
func (s *ExportService) deliver(ctx context.Context, userID int64, module, format string, table export.Table, criteria interface{}) (*ExportFile, error) {
	now := s.now()
	out, err := export.Render(format, table, now)
	if err != nil {
		return nil, internalError(err, "failed to render export")
	}
	s.metrics.ExportRendered(module, format)

	log := &models.ExportLog{
		UserID:       &userID,
		ExportType:   strings.ToUpper(format),
		ExportModule: module,
		RecordCount:  table.Len(),
	}
	if raw, err := json.Marshal(criteria); err == nil {
		log.FilterCriteria = raw
	}
	if s.archive != nil {
		name := fmt.Sprintf("%s-%s.%s", strings.ToLower(module), uuid.NewString(), out.Extension)
		if path, err := s.archive.Save(name, out.Body); err != nil {
			s.logger.Warn("failed to archive export", zap.String("module", module), zap.Error(err))
		} else {
			log.FilePath = &path
		}
	}
	if err := s.logs.Create(ctx, log); err != nil {
		s.logger.Warn("failed to log export", zap.String("module", module), zap.Int64("user_id", userID), zap.Error(err))
	}

	return &ExportFile{
		Output:   out,
		Filename: out.Filename(strings.ToLower(module), now),
		Records:  table.Len(),
	}, nil
}

func exportFormat(raw string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(raw))
	if format == "" {
		format = export.FormatCSV
	}
	if !export.Supported(format) {
		return "", appErrors.Validation("Unsupported export format")
	}
	return format, nil
}

func optionalDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	date, err := models.ParseDate(raw)
	if err != nil {
		return nil, appErrors.Validation("Invalid date filter")
	}
	return &date, nil
}

// effectiveReportFilters is what actually constrained the export, including
// the caller's forced scope.
func effectiveReportFilters(filters dto.ReportExportFilters, applied models.ReportFilter) dto.ReportExportFilters {
	switch applied.Scope.Kind {
	case models.ScopeOwn:
		filters.LecturerID = int64Ptr(applied.Scope.UserID)
	case models.ScopeFaculty:
		filters.FacultyID = applied.Scope.FacultyID
	}
	return filters
}

func reportFilterLabels(filters dto.ReportExportFilters, scope models.Scope) []export.Filter {
	filters = effectiveReportFilters(filters, models.ReportFilter{Scope: scope})
	var labels []export.Filter
	if filters.FacultyID != nil {
		labels = append(labels, export.Filter{Label: "Faculty", Value: export.FormatValue(filters.FacultyID)})
	}
	if filters.LecturerID != nil {
		labels = append(labels, export.Filter{Label: "Lecturer", Value: export.FormatValue(filters.LecturerID)})
	}
	if filters.StartDate != "" {
		labels = append(labels, export.Filter{Label: "Start Date", Value: filters.StartDate})
	}
	if filters.EndDate != "" {
		labels = append(labels, export.Filter{Label: "End Date", Value: filters.EndDate})
	}
	if filters.Status != "" {
		labels = append(labels, export.Filter{Label: "Status", Value: filters.Status})
	}
	return labels
}

func personName(first, last *string) *string {
	if first == nil && last == nil {
		return nil
	}
	var parts []string
	for _, p := range []*string{first, last} {
		if p != nil && strings.TrimSpace(*p) != "" {
			parts = append(parts, strings.TrimSpace(*p))
		}
	}
	name := strings.Join(parts, " ")
	return &name
}

func contentTypeFor(ext string) string {
	switch ext {
	case "csv":
		return "text/csv"
	case "xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "pdf":
		return "application/pdf"
	case "json":
		return "application/json"
	}
	return "application/octet-stream"
}
