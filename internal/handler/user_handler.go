package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/luct-reporting-api/internal/models"
	"github.com/noah-isme/luct-reporting-api/internal/service"
	"github.com/noah-isme/luct-reporting-api/pkg/response"
)

type userService interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.UserInfo, error)
	PendingApprovals(ctx context.Context) ([]models.UserInfo, error)
	Approve(ctx context.Context, actor service.Actor, id int64) error
	Reject(ctx context.Context, actor service.Actor, id int64) error
	UpdateRole(ctx context.Context, actor service.Actor, id int64, role models.UserRole) error
	UpdateFaculty(ctx context.Context, actor service.Actor, id int64, facultyID *int64) error
	Lecturers(ctx context.Context) ([]models.LecturerSummary, error)
}

type roleRequest struct {
	Role models.UserRole `json:"role"`
}

type facultyRequest struct {
	FacultyID *int64 `json:"facultyId"`
}

// UserHandler exposes admin user management.
type UserHandler struct {
	service userService
}

// NewUserHandler constructs a user handler.
func NewUserHandler(service userService) *UserHandler {
	return &UserHandler{service: service}
}

// List godoc
// @Summary List users
// @Tags Admin
// @Produce json
// @Param role query string false "Role"
// @Param facultyId query int false "Faculty"
// @Param approved query bool false "Approval state"
// @Success 200 {array} models.UserInfo
// @Router /admin/users [get]
func (h *UserHandler) List(c *gin.Context) {
	filter := models.UserFilter{
		FacultyID: queryID(c, "facultyId"),
		Approved:  queryBool(c, "approved"),
	}
	if role := models.UserRole(c.Query("role")); role != "" {
		filter.Role = &role
	}
	users, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, users)
}

// PendingApprovals lists staff accounts waiting for approval.
func (h *UserHandler) PendingApprovals(c *gin.Context) {
	users, err := h.service.PendingApprovals(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, users)
}

func (h *UserHandler) Approve(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Approve(c.Request.Context(), actorFromContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "User approved successfully")
}

// Reject deletes an unapproved account.
func (h *UserHandler) Reject(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Reject(c.Request.Context(), actorFromContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "User rejected and deleted")
}

func (h *UserHandler) UpdateRole(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req roleRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.UpdateRole(c.Request.Context(), actorFromContext(c), id, req.Role); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"message": "User role updated successfully", "role": req.Role})
}

func (h *UserHandler) UpdateFaculty(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req facultyRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.UpdateFaculty(c.Request.Context(), actorFromContext(c), id, req.FacultyID); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "User faculty updated successfully")
}

// Lecturers lists approved staff that can be assigned to classes.
func (h *UserHandler) Lecturers(c *gin.Context) {
	lecturers, err := h.service.Lecturers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, lecturers)
}
