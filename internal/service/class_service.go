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

type classRepository interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.ClassRecord, error)
	Get(ctx context.Context, id int64) (*models.ClassRecord, error)
	Create(ctx context.Context, input models.ClassInput) (int64, error)
	Update(ctx context.Context, id int64, input models.ClassInput) error
	AssignLecturer(ctx context.Context, id int64, lecturerID *int64) error
	Delete(ctx context.Context, id int64) error
}

type userFinder interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// ClassService serves role-scoped class listings and admin class management.
type ClassService struct {
	classes classRepository
	users   userFinder
	audit   AuditRecorder
	cache   *CacheService
	logger  *zap.Logger
}

// NewClassService constructs a ClassService.
func NewClassService(classes classRepository, users userFinder, audit AuditRecorder, cache *CacheService, logger *zap.Logger) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{classes: classes, users: users, audit: auditOrNop(audit), cache: cache, logger: logger}
}

// List returns the classes visible under filter.
func (s *ClassService) List(ctx context.Context, filter models.ClassFilter) ([]models.ClassView, error) {
	if filter.Scope.MatchesNothing() {
		return []models.ClassView{}, nil
	}
	records, err := s.classes.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list classes")
	}
	return models.ClassViews(records), nil
}

// Available lists every class for enrolment browsing, flagging the student's own.
func (s *ClassService) Available(ctx context.Context, studentID int64, facultyID *int64, semester string) ([]models.ClassView, error) {
	return s.List(ctx, models.ClassFilter{
		Scope:     models.AllScope(),
		FacultyID: facultyID,
		Semester:  semester,
		ViewerID:  &studentID,
		Order:     models.ClassOrderCatalog,
	})
}

// Get returns one class.
func (s *ClassService) Get(ctx context.Context, id int64) (*models.ClassView, error) {
	record, err := s.classes.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFound("Class not found")
		}
		return nil, internalError(err, "failed to load class")
	}
	view := record.View()
	return &view, nil
}

// Create adds a class.
func (s *ClassService) Create(ctx context.Context, actor Actor, input models.ClassInput) (*models.ClassView, error) {
	input, err := normalizeClassInput(input)
	if err != nil {
		return nil, err
	}
	id, err := s.classes.Create(ctx, input)
	if err != nil {
		return nil, classWriteError(err, "failed to create class")
	}
	s.audit.Record(ctx, actor.entry(models.AuditActionCreate, models.EntityClass, &id, nil, input))
	s.invalidate(ctx)
	return s.Get(ctx, id)
}

// Update replaces a class.
func (s *ClassService) Update(ctx context.Context, actor Actor, id int64, input models.ClassInput) (*models.ClassView, error) {
	input, err := normalizeClassInput(input)
	if err != nil {
		return nil, err
	}
	before, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.classes.Update(ctx, id, input); err != nil {
		return nil, classWriteError(err, "failed to update class")
	}
	s.audit.Record(ctx, actor.entry(models.AuditActionUpdate, models.EntityClass, &id, before, input))
	s.invalidate(ctx)
	return s.Get(ctx, id)
}

// Delete removes a class; its reports stay with a null class.
func (s *ClassService) Delete(ctx context.Context, actor Actor, id int64) error {
	before, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.classes.Delete(ctx, id); err != nil {
		return classWriteError(err, "failed to delete class")
	}
	s.audit.Record(ctx, actor.entry(models.AuditActionDelete, models.EntityClass, &id, before, nil))
	s.invalidate(ctx)
	return nil
}

// AssignLecturer sets the class lecturer to an existing staff member.
func (s *ClassService) AssignLecturer(ctx context.Context, actor Actor, classID, lecturerID int64) (*models.ClassView, error) {
	if lecturerID <= 0 {
		return nil, appErrors.Validation("Lecturer ID is required")
	}
	lecturer, err := s.users.FindByID(ctx, lecturerID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, internalError(err, "failed to load lecturer")
	}
	if lecturer == nil || !lecturer.Role.IsStaff() {
		return nil, appErrors.NotFound("Invalid lecturer ID")
	}
	before, err := s.Get(ctx, classID)
	if err != nil {
		return nil, err
	}
	if err := s.classes.AssignLecturer(ctx, classID, &lecturerID); err != nil {
		return nil, classWriteError(err, "failed to assign lecturer")
	}
	s.audit.Record(ctx, actor.entry(models.AuditActionAssign, models.EntityClass, &classID, before.Lecturer,
		map[string]int64{"lecturerId": lecturerID}))
	s.invalidate(ctx)
	return s.Get(ctx, classID)
}

// UnassignLecturer clears the class lecturer.
func (s *ClassService) UnassignLecturer(ctx context.Context, actor Actor, classID int64) (*models.ClassView, error) {
	before, err := s.Get(ctx, classID)
	if err != nil {
		return nil, err
	}
	if err := s.classes.AssignLecturer(ctx, classID, nil); err != nil {
		return nil, classWriteError(err, "failed to unassign lecturer")
	}
	s.audit.Record(ctx, actor.entry(models.AuditActionUnassign, models.EntityClass, &classID, before.Lecturer, nil))
	s.invalidate(ctx)
	return s.Get(ctx, classID)
}

// LecturerAssignments lists the classes a lecturer teaches with roster sizes.
func (s *ClassService) LecturerAssignments(ctx context.Context, lecturerID int64) ([]models.LecturerAssignment, error) {
	records, err := s.classes.List(ctx, models.ClassFilter{
		Scope:      models.AllScope(),
		LecturerID: &lecturerID,
		Order:      models.ClassOrderTerm,
	})
	if err != nil {
		return nil, internalError(err, "failed to list lecturer assignments")
	}
	assignments := make([]models.LecturerAssignment, 0, len(records))
	for _, record := range records {
		assignments = append(assignments, models.LecturerAssignment{
			ClassView:        record.View(),
			EnrolledStudents: record.TotalRegistered,
		})
	}
	return assignments, nil
}

func (s *ClassService) invalidate(ctx context.Context) {
	s.cache.InvalidateAll(ctx, DashboardCachePattern, AnalyticsCachePattern)
}

func normalizeClassInput(input models.ClassInput) (models.ClassInput, error) {
	input.ClassCode = strings.ToUpper(strings.TrimSpace(input.ClassCode))
	input.AcademicYear = strings.TrimSpace(input.AcademicYear)
	input.Semester = strings.TrimSpace(input.Semester)
	if input.ClassCode == "" || input.CourseID <= 0 || input.AcademicYear == "" || input.Semester == "" {
		return input, appErrors.Validation("Class code, course, academic year and semester are required")
	}
	if strings.TrimSpace(input.Mode) == "" {
		input.Mode = models.DefaultDeliveryMode
	}
	if input.ScheduledTime != nil && strings.TrimSpace(*input.ScheduledTime) == "" {
		input.ScheduledTime = nil
	}
	if input.Venue != nil && strings.TrimSpace(*input.Venue) == "" {
		input.Venue = nil
	}
	return input, nil
}

func classWriteError(err error, failed string) *appErrors.Error {
	if database.IsForeignKeyViolation(err) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Course or lecturer does not exist")
	}
	return storeError(err, "Class not found", "Class already exists", "", failed)
}
