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

type monitoringRepository interface {
	List(ctx context.Context, filter models.MonitoringFilter) ([]models.MonitoringRecord, error)
	Create(ctx context.Context, note models.NewMonitoring) (int64, error)
}

type ratingRepository interface {
	List(ctx context.Context, filter models.RatingFilter) ([]models.RatingRecord, error)
	Create(ctx context.Context, rating models.NewRating) (int64, error)
}

type reportFinder interface {
	Find(ctx context.Context, id int64, scope models.Scope) (*models.ReportRecord, error)
}

// ReviewService handles monitoring notes and student ratings on reports.
type ReviewService struct {
	monitoring monitoringRepository
	ratings    ratingRepository
	reports    reportFinder
	cache      *CacheService
	logger     *zap.Logger
}

// NewReviewService constructs a ReviewService.
func NewReviewService(monitoring monitoringRepository, ratings ratingRepository, reports reportFinder, cache *CacheService, logger *zap.Logger) *ReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewService{monitoring: monitoring, ratings: ratings, reports: reports, cache: cache, logger: logger}
}

// Monitoring lists notes on reports visible under scope.
func (s *ReviewService) Monitoring(ctx context.Context, scope models.Scope) ([]models.MonitoringView, error) {
	if scope.MatchesNothing() {
		return []models.MonitoringView{}, nil
	}
	records, err := s.monitoring.List(ctx, models.MonitoringFilter{Scope: scope})
	if err != nil {
		return nil, internalError(err, "failed to list monitoring")
	}
	return models.MonitoringViews(records), nil
}

// CreateMonitoring records a note on a report in the caller's faculty.
func (s *ReviewService) CreateMonitoring(ctx context.Context, scope models.Scope, req models.CreateMonitoringRequest) (*models.MonitoringView, error) {
	findings := strings.TrimSpace(req.Findings)
	if req.ReportID <= 0 || findings == "" {
		return nil, appErrors.Validation("Report and findings required")
	}
	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = models.MonitoringPending
	}
	switch status {
	case models.MonitoringPending, models.MonitoringInProgress, models.MonitoringSatisfactory:
	default:
		return nil, appErrors.Validation("Status must be pending, in_progress or satisfactory")
	}

	note := models.NewMonitoring{
		ReportID:        req.ReportID,
		MonitoredBy:     scope.UserID,
		Findings:        findings,
		Recommendations: trimmedOrNil(req.Recommendations),
		Status:          status,
	}
	if raw := trimmedOrNil(req.FollowUpDate); raw != nil {
		date, err := models.ParseDate(*raw)
		if err != nil {
			return nil, appErrors.Validation("Invalid follow-up date")
		}
		note.FollowUpDate = &date
	}

	report, err := s.reports.Find(ctx, req.ReportID, models.AllScope())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFound("Report not found")
		}
		return nil, internalError(err, "failed to load report")
	}
	if scope.FacultyID == nil || report.FacultyID == nil || *report.FacultyID != *scope.FacultyID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "Report outside your faculty")
	}

	id, err := s.monitoring.Create(ctx, note)
	if err != nil {
		return nil, internalError(err, "failed to create monitoring note")
	}
	_ = s.cache.Invalidate(ctx, DashboardCachePattern)

	records, err := s.monitoring.List(ctx, models.MonitoringFilter{Scope: models.AllScope(), ID: &id})
	if err != nil || len(records) == 0 {
		s.logger.Warn("failed to reload monitoring note", zap.Int64("monitoring_id", id), zap.Error(err))
		return &models.MonitoringView{ID: id, ReportID: note.ReportID, Findings: note.Findings, Status: note.Status}, nil
	}
	view := records[0].View()
	return &view, nil
}

// Ratings lists ratings visible under scope.
func (s *ReviewService) Ratings(ctx context.Context, scope models.Scope) ([]models.RatingView, error) {
	if scope.MatchesNothing() {
		return []models.RatingView{}, nil
	}
	records, err := s.ratings.List(ctx, models.RatingFilter{Scope: scope})
	if err != nil {
		return nil, internalError(err, "failed to list ratings")
	}
	return models.RatingViews(records), nil
}

// Rate records a student's rating of a report from one of their classes.
func (s *ReviewService) Rate(ctx context.Context, studentID int64, req models.CreateRatingRequest) (*models.RatingView, error) {
	if req.ReportID <= 0 || req.Rating < 1 || req.Rating > 5 {
		return nil, appErrors.Validation("Report and rating (1-5) required")
	}
	if _, err := s.reports.Find(ctx, req.ReportID, models.EnrolledScope(studentID)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFound("Report not found")
		}
		return nil, internalError(err, "failed to load report")
	}

	id, err := s.ratings.Create(ctx, models.NewRating{
		ReportID:  req.ReportID,
		StudentID: studentID,
		Rating:    req.Rating,
		Comments:  trimmedOrNil(req.Comments),
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, conflict(err, "You have already rated this report")
		}
		return nil, internalError(err, "failed to create rating")
	}
	_ = s.cache.Invalidate(ctx, DashboardCachePattern)

	records, err := s.ratings.List(ctx, models.RatingFilter{Scope: models.EnrolledScope(studentID)})
	if err == nil {
		for _, record := range records {
			if record.ID == id {
				view := record.View()
				return &view, nil
			}
		}
	}
	s.logger.Warn("failed to reload rating", zap.Int64("rating_id", id), zap.Error(err))
	return &models.RatingView{ID: id, Rating: req.Rating, Comments: trimmedOrNil(req.Comments), Report: models.RatingReport{ID: req.ReportID}}, nil
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
