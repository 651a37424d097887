package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/luct-reporting-api/internal/dto"
	"github.com/noah-isme/luct-reporting-api/internal/models"
)

type dashboardReportRepository interface {
	List(ctx context.Context, filter models.ReportFilter) ([]models.ReportRecord, error)
	Totals(ctx context.Context, filter models.ReportFilter, from, to time.Time) (models.ReportTotals, error)
}

type dashboardClassRepository interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.ClassRecord, error)
}

type dashboardProgramRepository interface {
	List(ctx context.Context, filter models.ProgramFilter) ([]models.Program, error)
}

type announcementLister interface {
	List(ctx context.Context, filter models.AnnouncementFilter) ([]models.Announcement, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL          time.Duration
	AnnouncementLimit int
	UpcomingLimit     int
	NextEventsLimit   int
}

// DashboardService composes the per-role dashboard payload.
type DashboardService struct {
	reports       dashboardReportRepository
	classes       dashboardClassRepository
	monitoring    monitoringRepository
	ratings       ratingRepository
	programs      dashboardProgramRepository
	announcements announcementLister
	cache         *CacheService
	logger        *zap.Logger
	now           func() time.Time
	cfg           DashboardServiceConfig
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Reports       dashboardReportRepository
	Classes       dashboardClassRepository
	Monitoring    monitoringRepository
	Ratings       ratingRepository
	Programs      dashboardProgramRepository
	Announcements announcementLister
	Cache         *CacheService
	Logger        *zap.Logger
	Config        DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	if cfg.AnnouncementLimit <= 0 {
		cfg.AnnouncementLimit = 5
	}
	if cfg.UpcomingLimit <= 0 {
		cfg.UpcomingLimit = 3
	}
	if cfg.NextEventsLimit <= 0 {
		cfg.NextEventsLimit = 2
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		reports:       params.Reports,
		classes:       params.Classes,
		monitoring:    params.Monitoring,
		ratings:       params.Ratings,
		programs:      params.Programs,
		announcements: params.Announcements,
		cache:         params.Cache,
		logger:        logger,
		now:           time.Now,
		cfg:           cfg,
	}
}

// Dashboard returns the caller's dashboard as JSON and whether it came from cache.
func (s *DashboardService) Dashboard(ctx context.Context, claims *models.JWTClaims, scope models.Scope) (json.RawMessage, bool, error) {
	key := DashboardCacheKey(claims)
	var cached json.RawMessage
	if hit, _ := s.cache.Get(ctx, key, &cached); hit && len(cached) > 0 {
		return cached, true, nil
	}

	dashboard, err := s.build(ctx, claims, scope)
	if err != nil {
		return nil, false, internalError(err, "failed to load dashboard")
	}
	payload, err := json.Marshal(dashboard)
	if err != nil {
		return nil, false, internalError(err, "failed to encode dashboard")
	}
	_ = s.cache.Set(ctx, key, json.RawMessage(payload), s.cfg.CacheTTL)
	return payload, false, nil
}

func (s *DashboardService) build(ctx context.Context, claims *models.JWTClaims, scope models.Scope) (*dto.Dashboard, error) {
	base, err := s.base(ctx, claims)
	if err != nil {
		return nil, err
	}
	dashboard := &dto.Dashboard{DashboardBase: *base}

	switch claims.Role {
	case models.RoleLecturer:
		dashboard.Section, err = s.lecturer(ctx, scope)
	case models.RolePrincipalLecturer:
		dashboard.Section, err = s.principalLecturer(ctx, scope)
	case models.RoleProgramLeader:
		dashboard.Section, err = s.programLeader(ctx, scope, base.Announcements)
	case models.RoleStudent:
		dashboard.Section, err = s.student(ctx, scope)
	}
	if err != nil {
		return nil, err
	}
	return dashboard, nil
}

func (s *DashboardService) base(ctx context.Context, claims *models.JWTClaims) (*dto.DashboardBase, error) {
	filter := models.ReportFilter{Scope: models.AllScope(), FacultyID: claims.FacultyID}
	weekStart, weekEnd := models.ISOWeekBounds(s.now())

	totals, err := s.reports.Totals(ctx, filter, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}

	latestFilter := filter
	latestFilter.Limit = 1
	latest, err := s.reports.List(ctx, latestFilter)
	if err != nil {
		return nil, err
	}

	announcements, err := s.announcements.List(ctx, models.AnnouncementFilter{
		FacultyID:  claims.FacultyID,
		ActiveOnly: true,
		Limit:      s.cfg.AnnouncementLimit,
	})
	if err != nil {
		return nil, err
	}
	if announcements == nil {
		announcements = []models.Announcement{}
	}

	base := &dto.DashboardBase{
		Role:            claims.Role,
		ReportsTotal:    totals.Total,
		Announcements:   announcements,
		ClassesThisWeek: totals.InWindow,
	}
	if len(latest) > 0 {
		view := latest[0].View()
		base.LatestReport = &view
	}
	return base, nil
}

func (s *DashboardService) lecturer(ctx context.Context, scope models.Scope) (*dto.LecturerSection, error) {
	reports, err := s.reportViews(ctx, scope)
	if err != nil {
		return nil, err
	}
	classes, err := s.classViews(ctx, scope, models.ClassOrderSchedule)
	if err != nil {
		return nil, err
	}

	now := s.now()
	attendance := make([]*int, 0, len(reports))
	submitted := 0
	for _, report := range reports {
		attendance = append(attendance, report.AttendancePercentage)
		if models.SameUTCMonth(report.DateOfLecture, now) {
			submitted++
		}
	}

	return &dto.LecturerSection{
		Reports: reports,
		Classes: classes,
		Stats: dto.LecturerStats{
			AvgAttendance:      models.Average(attendance),
			SubmittedThisMonth: submitted,
			UpcomingClasses:    firstClasses(classes, s.cfg.UpcomingLimit),
		},
	}, nil
}

func (s *DashboardService) principalLecturer(ctx context.Context, scope models.Scope) (*dto.PrincipalLecturerSection, error) {
	monitoring := []models.MonitoringView{}
	ratings := []models.RatingView{}
	if !scope.MatchesNothing() {
		notes, err := s.monitoring.List(ctx, models.MonitoringFilter{Scope: scope})
		if err != nil {
			return nil, err
		}
		monitoring = models.MonitoringViews(notes)

		rated, err := s.ratings.List(ctx, models.RatingFilter{Scope: scope})
		if err != nil {
			return nil, err
		}
		ratings = models.RatingViews(rated)
	}

	outstanding := 0
	for _, note := range monitoring {
		if note.Status != "" && note.Status != models.MonitoringSatisfactory {
			outstanding++
		}
	}
	scores := make([]*int, 0, len(ratings))
	for i := range ratings {
		scores = append(scores, &ratings[i].Rating)
	}

	return &dto.PrincipalLecturerSection{
		Monitoring: monitoring,
		Ratings:    ratings,
		Stats: dto.PrincipalLecturerStats{
			OutstandingFollowUps: outstanding,
			AvgRating:            models.Average(scores),
		},
	}, nil
}

func (s *DashboardService) programLeader(ctx context.Context, scope models.Scope, announcements []models.Announcement) (*dto.ProgramLeaderSection, error) {
	programs := []dto.DashboardProgram{}
	if !scope.MatchesNothing() {
		rows, err := s.programs.List(ctx, models.ProgramFilter{Scope: scope})
		if err != nil {
			return nil, err
		}
		for _, p := range rows {
			programs = append(programs, dto.DashboardProgram{
				ID:            p.ID,
				ProgramCode:   p.Code,
				ProgramName:   p.Name,
				Level:         p.Level,
				DurationYears: p.DurationYears,
			})
		}
	}
	classes, err := s.classViews(ctx, scope, models.ClassOrderTerm)
	if err != nil {
		return nil, err
	}
	reports, err := s.reportViews(ctx, scope)
	if err != nil {
		return nil, err
	}

	lecturers := make(map[int64]struct{})
	for _, class := range classes {
		if class.Lecturer != nil {
			lecturers[class.Lecturer.ID] = struct{}{}
		}
	}
	nextEvents := announcements
	if len(nextEvents) > s.cfg.NextEventsLimit {
		nextEvents = nextEvents[:s.cfg.NextEventsLimit]
	}

	return &dto.ProgramLeaderSection{
		Programs: programs,
		Classes:  classes,
		Reports:  reports,
		Stats: dto.ProgramLeaderStats{
			ActiveLecturers:  len(lecturers),
			ReportsSubmitted: len(reports),
			NextEvents:       nextEvents,
		},
	}, nil
}

func (s *DashboardService) student(ctx context.Context, scope models.Scope) (*dto.StudentSection, error) {
	classes, err := s.classViews(ctx, scope, models.ClassOrderSchedule)
	if err != nil {
		return nil, err
	}
	reports, err := s.reportViews(ctx, scope)
	if err != nil {
		return nil, err
	}
	attendance := make([]*int, 0, len(reports))
	for _, report := range reports {
		attendance = append(attendance, report.AttendancePercentage)
	}
	return &dto.StudentSection{
		Classes: classes,
		Reports: reports,
		Stats: dto.StudentStats{
			ClassesCount:    len(classes),
			AvgAttendance:   models.Average(attendance),
			TrendingCourses: firstClasses(classes, s.cfg.UpcomingLimit),
		},
	}, nil
}

func (s *DashboardService) reportViews(ctx context.Context, scope models.Scope) ([]models.ReportView, error) {
	if scope.MatchesNothing() {
		return []models.ReportView{}, nil
	}
	records, err := s.reports.List(ctx, models.ReportFilter{Scope: scope})
	if err != nil {
		return nil, err
	}
	return models.ReportViews(records), nil
}

func (s *DashboardService) classViews(ctx context.Context, scope models.Scope, order models.ClassOrder) ([]models.ClassView, error) {
	if scope.MatchesNothing() {
		return []models.ClassView{}, nil
	}
	records, err := s.classes.List(ctx, models.ClassFilter{Scope: scope, Order: order})
	if err != nil {
		return nil, err
	}
	return models.ClassViews(records), nil
}

func firstClasses(classes []models.ClassView, n int) []models.ClassView {
	if len(classes) <= n {
		return classes
	}
	return classes[:n]
}
