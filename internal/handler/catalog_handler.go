package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/luct-reporting-api/internal/models"
	"github.com/noah-isme/luct-reporting-api/internal/service"
	"github.com/noah-isme/luct-reporting-api/pkg/response"
)

type catalogService interface {
	Faculties(ctx context.Context) ([]models.Faculty, error)
	CreateFaculty(ctx context.Context, actor service.Actor, input models.FacultyInput) (*models.Faculty, error)
	UpdateFaculty(ctx context.Context, actor service.Actor, id int64, input models.FacultyInput) (*models.Faculty, error)
	DeleteFaculty(ctx context.Context, actor service.Actor, id int64) error

	Programs(ctx context.Context, filter models.ProgramFilter) ([]models.Program, error)
	CreateProgram(ctx context.Context, actor service.Actor, input models.ProgramInput) (*models.Program, error)
	UpdateProgram(ctx context.Context, actor service.Actor, id int64, input models.ProgramInput) (*models.Program, error)
	DeleteProgram(ctx context.Context, actor service.Actor, id int64) error

	Offerings(ctx context.Context, filter models.OfferingFilter) ([]models.CourseOffering, error)
	CreateOffering(ctx context.Context, actor service.Actor, programID int64, input models.CourseOfferingInput) (*models.CourseOffering, error)
	DeleteOffering(ctx context.Context, actor service.Actor, programID, offeringID int64) error

	Courses(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	CreateCourse(ctx context.Context, actor service.Actor, input models.CourseInput) (*models.Course, error)
	UpdateCourse(ctx context.Context, actor service.Actor, id int64, input models.CourseInput) (*models.Course, error)
	DeleteCourse(ctx context.Context, actor service.Actor, id int64) error
}

// CatalogHandler exposes admin CRUD over faculties, programmes and courses.
type CatalogHandler struct {
	service catalogService
}

// NewCatalogHandler constructs a catalog handler.
func NewCatalogHandler(service catalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// ListFaculties godoc
// @Summary List faculties
// @Tags Admin
// @Produce json
// @Success 200 {array} models.Faculty
// @Router /admin/faculties [get]
func (h *CatalogHandler) ListFaculties(c *gin.Context) {
	faculties, err := h.service.Faculties(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, faculties)
}

// CreateFaculty godoc
// @Summary Create faculty
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.FacultyInput true "Faculty payload"
// @Success 201 {object} models.Faculty
// @Failure 409 {object} response.ErrorBody
// @Router /admin/faculties [post]
func (h *CatalogHandler) CreateFaculty(c *gin.Context) {
	var input models.FacultyInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}
	faculty, err := h.service.CreateFaculty(c.Request.Context(), actorFromContext(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, faculty)
}

// UpdateFaculty replaces a faculty's code, name and description.
func (h *CatalogHandler) UpdateFaculty(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var input models.FacultyInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}
	faculty, err := h.service.UpdateFaculty(c.Request.Context(), actorFromContext(c), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, faculty)
}

func (h *CatalogHandler) DeleteFaculty(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.DeleteFaculty(c.Request.Context(), actorFromContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Faculty deleted successfully")
}

// ListPrograms godoc
// @Summary List programmes
// @Tags Admin
// @Produce json
// @Param facultyId query int false "Faculty"
// @Success 200 {array} models.Program
// @Router /admin/programs [get]
func (h *CatalogHandler) ListPrograms(c *gin.Context) {
	programs, err := h.service.Programs(c.Request.Context(), models.ProgramFilter{
		Scope:        models.AllScope(),
		FacultyID:    queryID(c, "facultyId"),
		AcademicYear: strings.TrimSpace(c.Query("academicYear")),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, programs)
}

func (h *CatalogHandler) CreateProgram(c *gin.Context) {
	var input models.ProgramInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}
	program, err := h.service.CreateProgram(c.Request.Context(), actorFromContext(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, program)
}

func (h *CatalogHandler) UpdateProgram(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var input models.ProgramInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}
	program, err := h.service.UpdateProgram(c.Request.Context(), actorFromContext(c), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, program)
}

func (h *CatalogHandler) DeleteProgram(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.DeleteProgram(c.Request.Context(), actorFromContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Program deleted successfully")
}

// ListOfferings godoc
// @Summary Courses offered by a programme
// @Tags Admin
// @Produce json
// @Param id path int true "Program ID"
// @Param academicYear query string false "Academic year"
// @Param semester query string false "Semester"
// @Success 200 {array} models.CourseOffering
// @Router /admin/programs/{id}/offerings [get]
func (h *CatalogHandler) ListOfferings(c *gin.Context) {
	programID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	offerings, err := h.service.Offerings(c.Request.Context(), models.OfferingFilter{
		ProgramID:    programID,
		AcademicYear: strings.TrimSpace(c.Query("academicYear")),
		Semester:     strings.TrimSpace(c.Query("semester")),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, offerings)
}

func (h *CatalogHandler) CreateOffering(c *gin.Context) {
	programID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var input models.CourseOfferingInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}
	offering, err := h.service.CreateOffering(c.Request.Context(), actorFromContext(c), programID, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, offering)
}

func (h *CatalogHandler) DeleteOffering(c *gin.Context) {
	programID, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	offeringID, err := pathID(c, "offeringId")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.DeleteOffering(c.Request.Context(), actorFromContext(c), programID, offeringID); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Course offering removed successfully")
}

// ListCourses godoc
// @Summary List courses
// @Tags Admin
// @Produce json
// @Param facultyId query int false "Faculty"
// @Param programId query int false "Program"
// @Success 200 {array} models.Course
// @Router /admin/courses [get]
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	courses, err := h.service.Courses(c.Request.Context(), models.CourseFilter{
		FacultyID: queryID(c, "facultyId"),
		ProgramID: queryID(c, "programId"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, courses)
}

func (h *CatalogHandler) CreateCourse(c *gin.Context) {
	var input models.CourseInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}
	course, err := h.service.CreateCourse(c.Request.Context(), actorFromContext(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

func (h *CatalogHandler) UpdateCourse(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var input models.CourseInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}
	course, err := h.service.UpdateCourse(c.Request.Context(), actorFromContext(c), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, course)
}

func (h *CatalogHandler) DeleteCourse(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.DeleteCourse(c.Request.Context(), actorFromContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Course deleted successfully")
}
