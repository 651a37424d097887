package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/luct-reporting-api/internal/models"
	"github.com/noah-isme/luct-reporting-api/internal/service"
	"github.com/noah-isme/luct-reporting-api/pkg/response"
)

type announcementService interface {
	List(ctx context.Context, facultyID *int64) ([]models.Announcement, error)
	Create(ctx context.Context, actor service.Actor, input models.AnnouncementInput) (*models.Announcement, error)
	Delete(ctx context.Context, actor service.Actor, id int64) error
}

// AnnouncementHandler lets admins publish dashboard announcements.
type AnnouncementHandler struct {
	service announcementService
}

// NewAnnouncementHandler constructs an announcement handler.
func NewAnnouncementHandler(service announcementService) *AnnouncementHandler {
	return &AnnouncementHandler{service: service}
}

func (h *AnnouncementHandler) List(c *gin.Context) {
	announcements, err := h.service.List(c.Request.Context(), queryID(c, "facultyId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, announcements)
}

// Create godoc
// @Summary Publish an announcement
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.AnnouncementInput true "Announcement"
// @Success 201 {object} models.Announcement
// @Router /admin/announcements [post]
func (h *AnnouncementHandler) Create(c *gin.Context) {
	var input models.AnnouncementInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}
	announcement, err := h.service.Create(c.Request.Context(), actorFromContext(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, announcement)
}

func (h *AnnouncementHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), actorFromContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Announcement deleted successfully")
}
