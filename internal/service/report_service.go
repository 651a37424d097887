package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/luct-reporting-api/internal/models"
	"github.com/noah-isme/luct-reporting-api/pkg/database"
	appErrors "github.com/noah-isme/luct-reporting-api/pkg/errors"
)

type reportRepository interface {
	List(ctx context.Context, filter models.ReportFilter) ([]models.ReportRecord, error)
	Find(ctx context.Context, id int64, scope models.Scope) (*models.ReportRecord, error)
	Create(ctx context.Context, report models.NewReport) (int64, error)
}

type classOwnershipReader interface {
	Ownership(ctx context.Context, id int64) (*models.ClassOwnership, error)
}

// ReportService lists and records lecture reports.
type ReportService struct {
	reports reportRepository
	classes classOwnershipReader
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(reports reportRepository, classes classOwnershipReader, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{reports: reports, classes: classes, cache: cache, metrics: metrics, logger: logger}
}

// List returns reports visible under filter, newest lecture first.
func (s *ReportService) List(ctx context.Context, filter models.ReportFilter) ([]models.ReportView, error) {
	if filter.Scope.MatchesNothing() {
		return []models.ReportView{}, nil
	}
	records, err := s.reports.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list reports")
	}
	return models.ReportViews(records), nil
}

// Create stores a report for one of the lecturer's own classes.
func (s *ReportService) Create(ctx context.Context, lecturerID int64, req models.CreateReportRequest) (*models.ReportView, error) {
	report, err := s.prepare(ctx, lecturerID, req)
	if err != nil {
		return nil, err
	}

	id, err := s.reports.Create(ctx, *report)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.NotFound("Class not found")
		case database.IsUniqueViolation(err):
			return nil, conflict(err, "Report already submitted for this class and date")
		}
		return nil, internalError(err, "failed to create report")
	}

	s.metrics.ReportSubmitted(report.Status)
	_ = s.cache.Invalidate(ctx, DashboardCachePattern)

	stored, err := s.reports.Find(ctx, id, models.AllScope())
	if err != nil {
		s.logger.Warn("failed to reload report", zap.Int64("report_id", id), zap.Error(err))
		return &models.ReportView{ID: id}, nil
	}
	view := stored.View()
	return &view, nil
}

func (s *ReportService) prepare(ctx context.Context, lecturerID int64, req models.CreateReportRequest) (*models.NewReport, error) {
	topic := strings.TrimSpace(req.TopicTaught)
	outcomes := strings.TrimSpace(req.LearningOutcomes)
	if req.ClassID <= 0 || strings.TrimSpace(req.DateOfLecture) == "" || topic == "" || outcomes == "" {
		return nil, appErrors.Validation("Missing required report fields")
	}
	date, err := models.ParseDate(strings.TrimSpace(req.DateOfLecture))
	if err != nil {
		return nil, appErrors.Validation("Invalid lecture date")
	}

	present := 0
	if req.StudentsPresent != nil {
		present = *req.StudentsPresent
	}
	if present < 0 {
		return nil, appErrors.Validation("Students present cannot be negative")
	}

	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = models.ReportStatusSubmitted
	}
	if status != models.ReportStatusSubmitted && status != models.ReportStatusDraft {
		return nil, appErrors.Validation("Status must be draft or submitted")
	}

	class, err := s.classes.Ownership(ctx, req.ClassID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFound("Class not found")
		}
		return nil, internalError(err, "failed to load class")
	}
	// A class whose course was deleted has no faculty to file the report under.
	if class.LecturerID == nil || *class.LecturerID != lecturerID || class.CourseID == nil {
		return nil, appErrors.NotFound("Class not found")
	}
	if class.ActiveEnrolment > 0 && present > class.ActiveEnrolment {
		return nil, appErrors.Validation("Students present cannot exceed registered students")
	}

	scheduled := models.DefaultLectureTime
	if class.ScheduledTime != nil && *class.ScheduledTime != "" {
		scheduled = *class.ScheduledTime
	}
	venue := models.DefaultVenue
	if class.Venue != nil && *class.Venue != "" {
		venue = *class.Venue
	}

	return &models.NewReport{
		ClassID:               class.ID,
		LecturerID:            lecturerID,
		WeekOfReporting:       models.WeekOfYear(date),
		DateOfLecture:         date,
		ActualStudentsPresent: present,
		Venue:                 venue,
		ScheduledLectureTime:  scheduled,
		TopicTaught:           topic,
		LearningOutcomes:      outcomes,
		Recommendations:       trimmedOrNil(req.Recommendations),
		Status:                status,
	}, nil
}
