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

type classService interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.ClassView, error)
	Create(ctx context.Context, actor service.Actor, input models.ClassInput) (*models.ClassView, error)
	Update(ctx context.Context, actor service.Actor, id int64, input models.ClassInput) (*models.ClassView, error)
	Delete(ctx context.Context, actor service.Actor, id int64) error
	AssignLecturer(ctx context.Context, actor service.Actor, classID, lecturerID int64) (*models.ClassView, error)
	UnassignLecturer(ctx context.Context, actor service.Actor, classID int64) (*models.ClassView, error)
	LecturerAssignments(ctx context.Context, lecturerID int64) ([]models.LecturerAssignment, error)
}

type assignLecturerRequest struct {
	LecturerID int64 `json:"lecturerId"`
}

// ClassHandler exposes admin class CRUD and lecturer assignment.
type ClassHandler struct {
	service classService
}

// NewClassHandler constructs a class handler.
func NewClassHandler(svc classService) *ClassHandler {
	return &ClassHandler{service: svc}
}

// List godoc
// @Summary List classes
// @Tags Admin
// @Produce json
// @Param courseId query int false "Course"
// @Param programId query int false "Program"
// @Param lecturerId query int false "Lecturer"
// @Param semester query string false "Semester"
// @Param academicYear query string false "Academic year"
// @Success 200 {array} models.ClassView
// @Router /admin/classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	classes, err := h.service.List(c.Request.Context(), models.ClassFilter{
		Scope:        models.AllScope(),
		CourseID:     queryID(c, "courseId"),
		ProgramID:    queryID(c, "programId"),
		LecturerID:   queryID(c, "lecturerId"),
		Semester:     strings.TrimSpace(c.Query("semester")),
		AcademicYear: strings.TrimSpace(c.Query("academicYear")),
		Order:        models.ClassOrderCatalog,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, classes)
}

// Create godoc
// @Summary Create class
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.ClassInput true "Class payload"
// @Success 201 {object} models.ClassView
// @Router /admin/classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var input models.ClassInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}
	class, err := h.service.Create(c.Request.Context(), actorFromContext(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

func (h *ClassHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var input models.ClassInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}
	class, err := h.service.Update(c.Request.Context(), actorFromContext(c), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, class)
}

func (h *ClassHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), actorFromContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Class deleted successfully")
}

// AssignLecturer returns the class with its new lecturer.
func (h *ClassHandler) AssignLecturer(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req assignLecturerRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	class, err := h.service.AssignLecturer(c.Request.Context(), actorFromContext(c), id, req.LecturerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"message": "Lecturer assigned to class successfully", "class": class})
}

func (h *ClassHandler) UnassignLecturer(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	class, err := h.service.UnassignLecturer(c.Request.Context(), actorFromContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"message": "Lecturer removed from class successfully", "class": class})
}

// LecturerAssignments lists a lecturer's classes with roster sizes.
func (h *ClassHandler) LecturerAssignments(c *gin.Context) {
	lecturerID, err := pathID(c, "lecturerId")
	if err != nil {
		response.Error(c, err)
		return
	}
	assignments, err := h.service.LecturerAssignments(c.Request.Context(), lecturerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, assignments)
}
