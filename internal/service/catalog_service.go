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

const (
	defaultProgramLevel    = "Diploma"
	defaultProgramDuration = 3
)

type facultyRepository interface {
	List(ctx context.Context) ([]models.Faculty, error)
	FindByID(ctx context.Context, id int64) (*models.Faculty, error)
	Create(ctx context.Context, input models.FacultyInput) (int64, error)
	Update(ctx context.Context, id int64, input models.FacultyInput) error
	Delete(ctx context.Context, id int64) error
}

type programRepository interface {
	List(ctx context.Context, filter models.ProgramFilter) ([]models.Program, error)
	FindByID(ctx context.Context, id int64) (*models.Program, error)
	Create(ctx context.Context, input models.ProgramInput) (int64, error)
	Update(ctx context.Context, id int64, input models.ProgramInput) error
	Delete(ctx context.Context, id int64) error
	ListOfferings(ctx context.Context, filter models.OfferingFilter) ([]models.CourseOffering, error)
	CreateOffering(ctx context.Context, programID int64, input models.CourseOfferingInput) (int64, error)
	DeleteOffering(ctx context.Context, programID, offeringID int64) error
}

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	Create(ctx context.Context, input models.CourseInput) (int64, error)
	Update(ctx context.Context, id int64, input models.CourseInput) error
	Delete(ctx context.Context, id int64) error
}

// CatalogServiceParams groups constructor dependencies.
type CatalogServiceParams struct {
	Faculties facultyRepository
	Programs  programRepository
	Courses   courseRepository
	Audit     AuditRecorder
	Cache     *CacheService
	Logger    *zap.Logger
}

// CatalogService manages faculties, programmes, course offerings and courses.
type CatalogService struct {
	faculties facultyRepository
	programs  programRepository
	courses   courseRepository
	audit     AuditRecorder
	cache     *CacheService
	logger    *zap.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(params CatalogServiceParams) *CatalogService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		faculties: params.Faculties,
		programs:  params.Programs,
		courses:   params.Courses,
		audit:     auditOrNop(params.Audit),
		cache:     params.Cache,
		logger:    logger,
	}
}

// Faculties lists faculties by name.
func (s *CatalogService) Faculties(ctx context.Context) ([]models.Faculty, error) {
	faculties, err := s.faculties.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to list faculties")
	}
	if faculties == nil {
		faculties = []models.Faculty{}
	}
	return faculties, nil
}

// CreateFaculty adds a faculty.
func (s *CatalogService) CreateFaculty(ctx context.Context, actor Actor, input models.FacultyInput) (*models.Faculty, error) {
	input, err := normalizeFacultyInput(input)
	if err != nil {
		return nil, err
	}
	id, err := s.faculties.Create(ctx, input)
	if err != nil {
		return nil, storeError(err, "Faculty not found", "Faculty code already exists", "", "failed to create faculty")
	}
	s.audit.Record(ctx, actor.entry(models.AuditActionCreate, models.EntityFaculty, &id, nil, input))
	s.invalidate(ctx)
	return s.faculty(ctx, id)
}

// UpdateFaculty replaces a faculty.
func (s *CatalogService) UpdateFaculty(ctx context.Context, actor Actor, id int64, input models.FacultyInput) (*models.Faculty, error) {
	input, err := normalizeFacultyInput(input)
	if err != nil {
		return nil, err
	}
	before, err := s.faculty(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.faculties.Update(ctx, id, input); err != nil {
		return nil, storeError(err, "Faculty not found", "Faculty code already exists", "", "failed to update faculty")
	}
	s.audit.Record(ctx, actor.entry(models.AuditActionUpdate, models.EntityFaculty, &id, before, input))
	s.invalidate(ctx)
	return s.faculty(ctx, id)
}

// DeleteFaculty removes a faculty nothing references any more.
func (s *CatalogService) DeleteFaculty(ctx context.Context, actor Actor, id int64) error {
	before, err := s.faculty(ctx, id)
	if err != nil {
		return err
	}
	if err := s.faculties.Delete(ctx, id); err != nil {
		return storeError(err, "Faculty not found", "", "Faculty is still referenced", "failed to delete faculty")
	}
	s.audit.Record(ctx, actor.entry(models.AuditActionDelete, models.EntityFaculty, &id, before, nil))
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) faculty(ctx context.Context, id int64) (*models.Faculty, error) {
	faculty, err := s.faculties.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFound("Faculty not found")
		}
		return nil, internalError(err, "failed to load faculty")
	}
	return faculty, nil
}

// Programs lists programmes, optionally narrowed to a faculty and year.
func (s *CatalogService) Programs(ctx context.Context, filter models.ProgramFilter) ([]models.Program, error) {
	if filter.Scope.Kind == "" {
		filter.Scope = models.AllScope()
	}
	if filter.Scope.MatchesNothing() {
		return []models.Program{}, nil
	}
	programs, err := s.programs.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list programs")
	}
	if programs == nil {
		programs = []models.Program{}
	}
	return programs, nil
}

// CreateProgram adds a programme.
func (s *CatalogService) CreateProgram(ctx context.Context, actor Actor, input models.ProgramInput) (*models.Program, error) {
	input, err := normalizeProgramInput(input)
	if err != nil {
		return nil, err
	}
	id, err := s.programs.Create(ctx, input)
	if err != nil {
		return nil, catalogWriteError(err, "Program", "failed to create program")
	}
	s.audit.Record(ctx, actor.entry(models.AuditActionCreate, models.EntityProgram, &id, nil, input))
	s.invalidate(ctx)
	return s.program(ctx, id)
}

// UpdateProgram replaces a programme.
func (s *CatalogService) UpdateProgram(ctx context.Context, actor Actor, id int64, input models.ProgramInput) (*models.Program, error) {
	input, err := normalizeProgramInput(input)
	if err != nil {
		return nil, err
	}
	before, err := s.program(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.programs.Update(ctx, id, input); err != nil {
		return nil, catalogWriteError(err, "Program", "failed to update program")
	}
	s.audit.Record(ctx, actor.entry(models.AuditActionUpdate, models.EntityProgram, &id, before, input))
	s.invalidate(ctx)
	return s.program(ctx, id)
}

// DeleteProgram removes a programme and its offerings.
func (s *CatalogService) DeleteProgram(ctx context.Context, actor Actor, id int64) error {
	before, err := s.program(ctx, id)
	if err != nil {
		return err
	}
	if err := s.programs.Delete(ctx, id); err != nil {
		return storeError(err, "Program not found", "", "Program is still referenced", "failed to delete program")
	}
	s.audit.Record(ctx, actor.entry(models.AuditActionDelete, models.EntityProgram, &id, before, nil))
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) program(ctx context.Context, id int64) (*models.Program, error) {
	program, err := s.programs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFound("Program not found")
		}
		return nil, internalError(err, "failed to load program")
	}
	return program, nil
}

// Offerings lists a programme's course offerings.
func (s *CatalogService) Offerings(ctx context.Context, filter models.OfferingFilter) ([]models.CourseOffering, error) {
	if _, err := s.program(ctx, filter.ProgramID); err != nil {
		return nil, err
	}
	offerings, err := s.programs.ListOfferings(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list offerings")
	}
	if offerings == nil {
		offerings = []models.CourseOffering{}
	}
	return offerings, nil
}

// CreateOffering adds a course to a programme for one term.
func (s *CatalogService) CreateOffering(ctx context.Context, actor Actor, programID int64, input models.CourseOfferingInput) (*models.CourseOffering, error) {
	input.AcademicYear = strings.TrimSpace(input.AcademicYear)
	input.Semester = strings.TrimSpace(input.Semester)
	if input.CourseID <= 0 || input.AcademicYear == "" || input.Semester == "" || input.YearLevel <= 0 {
		return nil, appErrors.Validation("Course, academic year, semester and year level are required")
	}
	if _, err := s.program(ctx, programID); err != nil {
		return nil, err
	}
	id, err := s.programs.CreateOffering(ctx, programID, input)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Course does not exist")
		}
		return nil, storeError(err, "Program not found", "Course is already offered for this term", "", "failed to create offering")
	}
	s.audit.Record(ctx, actor.entry(models.AuditActionCreate, models.EntityCourseOffering, &id, nil, input))
	s.invalidate(ctx)

	offerings, err := s.programs.ListOfferings(ctx, models.OfferingFilter{
		ProgramID:    programID,
		AcademicYear: input.AcademicYear,
		Semester:     input.Semester,
	})
	if err == nil {
		for i := range offerings {
			if offerings[i].ID == id {
				return &offerings[i], nil
			}
		}
	}
	s.logger.Warn("failed to reload offering", zap.Int64("offering_id", id), zap.Error(err))
	isCore := input.IsCore == nil || *input.IsCore
	return &models.CourseOffering{
		ID:           id,
		ProgramID:    programID,
		CourseID:     input.CourseID,
		AcademicYear: input.AcademicYear,
		Semester:     input.Semester,
		YearLevel:    input.YearLevel,
		IsCore:       isCore,
	}, nil
}

// DeleteOffering removes one offering of a programme.
func (s *CatalogService) DeleteOffering(ctx context.Context, actor Actor, programID, offeringID int64) error {
	if err := s.programs.DeleteOffering(ctx, programID, offeringID); err != nil {
		return storeError(err, "Offering not found", "", "", "failed to delete offering")
	}
	s.audit.Record(ctx, actor.entry(models.AuditActionDelete, models.EntityCourseOffering, &offeringID,
		map[string]int64{"programId": programID}, nil))
	s.invalidate(ctx)
	return nil
}

// Courses lists courses.
func (s *CatalogService) Courses(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	courses, err := s.courses.List(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to list courses")
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}

// CreateCourse adds a course.
func (s *CatalogService) CreateCourse(ctx context.Context, actor Actor, input models.CourseInput) (*models.Course, error) {
	input, err := normalizeCourseInput(input)
	if err != nil {
		return nil, err
	}
	id, err := s.courses.Create(ctx, input)
	if err != nil {
		return nil, catalogWriteError(err, "Course", "failed to create course")
	}
	s.audit.Record(ctx, actor.entry(models.AuditActionCreate, models.EntityCourse, &id, nil, input))
	s.invalidate(ctx)
	return courseFromInput(id, input), nil
}

// UpdateCourse replaces a course.
func (s *CatalogService) UpdateCourse(ctx context.Context, actor Actor, id int64, input models.CourseInput) (*models.Course, error) {
	input, err := normalizeCourseInput(input)
	if err != nil {
		return nil, err
	}
	if err := s.courses.Update(ctx, id, input); err != nil {
		return nil, catalogWriteError(err, "Course", "failed to update course")
	}
	s.audit.Record(ctx, actor.entry(models.AuditActionUpdate, models.EntityCourse, &id, nil, input))
	s.invalidate(ctx)
	return courseFromInput(id, input), nil
}

// DeleteCourse removes a course; its classes and reports keep a null course.
func (s *CatalogService) DeleteCourse(ctx context.Context, actor Actor, id int64) error {
	if err := s.courses.Delete(ctx, id); err != nil {
		return storeError(err, "Course not found", "", "Course is still referenced", "failed to delete course")
	}
	s.audit.Record(ctx, actor.entry(models.AuditActionDelete, models.EntityCourse, &id, nil, nil))
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	s.cache.InvalidateAll(ctx, DashboardCachePattern, AnalyticsCachePattern)
}

func normalizeFacultyInput(input models.FacultyInput) (models.FacultyInput, error) {
	input.Code = strings.ToUpper(strings.TrimSpace(input.Code))
	input.Name = strings.TrimSpace(input.Name)
	if input.Code == "" || input.Name == "" {
		return input, appErrors.Validation("Faculty code and name are required")
	}
	input.Description = trimmedOrNil(input.Description)
	return input, nil
}

func normalizeProgramInput(input models.ProgramInput) (models.ProgramInput, error) {
	input.Code = strings.ToUpper(strings.TrimSpace(input.Code))
	input.Name = strings.TrimSpace(input.Name)
	if input.Code == "" || input.Name == "" || input.FacultyID <= 0 {
		return input, appErrors.Validation("Program code, name and faculty are required")
	}
	input.Level = strings.TrimSpace(input.Level)
	if input.Level == "" {
		input.Level = defaultProgramLevel
	}
	if input.DurationYears <= 0 {
		input.DurationYears = defaultProgramDuration
	}
	input.AcademicYear = trimmedOrNil(input.AcademicYear)
	input.Description = trimmedOrNil(input.Description)
	return input, nil
}

func normalizeCourseInput(input models.CourseInput) (models.CourseInput, error) {
	input.Code = strings.ToUpper(strings.TrimSpace(input.Code))
	input.Name = strings.TrimSpace(input.Name)
	if input.Code == "" || input.Name == "" || input.FacultyID <= 0 {
		return input, appErrors.Validation("Course code, name and faculty are required")
	}
	if input.ProgramID != nil && *input.ProgramID <= 0 {
		input.ProgramID = nil
	}
	input.Description = trimmedOrNil(input.Description)
	return input, nil
}

func courseFromInput(id int64, input models.CourseInput) *models.Course {
	return &models.Course{
		ID:          id,
		Code:        input.Code,
		Name:        input.Name,
		Description: input.Description,
		FacultyID:   input.FacultyID,
		ProgramID:   input.ProgramID,
	}
}

// catalogWriteError maps writes whose foreign keys point at a faculty or programme.
func catalogWriteError(err error, entity, failed string) *appErrors.Error {
	if database.IsForeignKeyViolation(err) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Faculty or program does not exist")
	}
	return storeError(err, entity+" not found", entity+" code already exists", "", failed)
}
