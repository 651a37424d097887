package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/luct-reporting-api/internal/middleware"
	"github.com/noah-isme/luct-reporting-api/internal/models"
	"github.com/noah-isme/luct-reporting-api/pkg/response"
)

type availableClassLister interface {
	Available(ctx context.Context, studentID int64, facultyID *int64, semester string) ([]models.ClassView, error)
}

type enrollmentService interface {
	Enroll(ctx context.Context, studentID, classID int64) (models.EnrollmentOutcome, error)
	Withdraw(ctx context.Context, studentID, classID int64) error
}

// StudentHandler exposes the enrolment endpoints of the student surface.
type StudentHandler struct {
	classes     availableClassLister
	enrollments enrollmentService
}

// NewStudentHandler constructs a student handler.
func NewStudentHandler(classes availableClassLister, enrollments enrollmentService) *StudentHandler {
	return &StudentHandler{classes: classes, enrollments: enrollments}
}

// AvailableClasses godoc
// @Summary Classes open for enrolment
// @Tags Student
// @Produce json
// @Param facultyId query int false "Faculty"
// @Param semester query string false "Semester"
// @Success 200 {array} models.ClassView
// @Router /student/available-classes [get]
func (h *StudentHandler) AvailableClasses(c *gin.Context) {
	claims, err := claimsFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	classes, err := h.classes.Available(c.Request.Context(), claims.ID, queryID(c, "facultyId"), strings.TrimSpace(c.Query("semester")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, classes)
}

// Enroll godoc
// @Summary Enroll in a class
// @Tags Student
// @Accept json
// @Produce json
// @Param payload body models.EnrollmentRequest true "Class to join"
// @Success 200 {object} response.MessageBody "reactivated"
// @Success 201 {object} response.MessageBody
// @Failure 404 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /student/enroll [post]
func (h *StudentHandler) Enroll(c *gin.Context) {
	var req models.EnrollmentRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	outcome, err := h.enrollments.Enroll(c.Request.Context(), middleware.Scope(c).UserID, req.ClassID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if outcome == models.EnrollmentReactivated {
		response.Message(c, http.StatusOK, "Enrollment reactivated successfully")
		return
	}
	response.Message(c, http.StatusCreated, "Successfully enrolled in class")
}

// Withdraw leaves a class.
func (h *StudentHandler) Withdraw(c *gin.Context) {
	var req models.EnrollmentRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.enrollments.Withdraw(c.Request.Context(), middleware.Scope(c).UserID, req.ClassID); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Successfully withdrawn from class")
}
