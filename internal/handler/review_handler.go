package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/luct-reporting-api/internal/middleware"
	"github.com/noah-isme/luct-reporting-api/internal/models"
	"github.com/noah-isme/luct-reporting-api/pkg/response"
)

type reviewService interface {
	Monitoring(ctx context.Context, scope models.Scope) ([]models.MonitoringView, error)
	CreateMonitoring(ctx context.Context, scope models.Scope, req models.CreateMonitoringRequest) (*models.MonitoringView, error)
	Ratings(ctx context.Context, scope models.Scope) ([]models.RatingView, error)
	Rate(ctx context.Context, studentID int64, req models.CreateRatingRequest) (*models.RatingView, error)
}

// ReviewHandler exposes monitoring notes and student ratings.
type ReviewHandler struct {
	service reviewService
}

// NewReviewHandler constructs a review handler.
func NewReviewHandler(service reviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// Monitoring godoc
// @Summary Monitoring notes in the caller's faculty
// @Tags Reviews
// @Produce json
// @Success 200 {array} models.MonitoringView
// @Router /prl/monitoring [get]
func (h *ReviewHandler) Monitoring(c *gin.Context) {
	notes, err := h.service.Monitoring(c.Request.Context(), middleware.Scope(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, notes)
}

// CreateMonitoring godoc
// @Summary Record a monitoring note on a report
// @Tags Reviews
// @Accept json
// @Produce json
// @Param payload body models.CreateMonitoringRequest true "Monitoring payload"
// @Success 201 {object} models.MonitoringView
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /prl/monitoring [post]
func (h *ReviewHandler) CreateMonitoring(c *gin.Context) {
	var req models.CreateMonitoringRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	note, err := h.service.CreateMonitoring(c.Request.Context(), middleware.Scope(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, note)
}

// Ratings lists ratings visible under the route scope: the faculty's for a
// principal lecturer, the caller's own for a student.
func (h *ReviewHandler) Ratings(c *gin.Context) {
	ratings, err := h.service.Ratings(c.Request.Context(), middleware.Scope(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, ratings)
}

// Rate stores the student's rating for a report.
func (h *ReviewHandler) Rate(c *gin.Context) {
	claims, err := claimsFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req models.CreateRatingRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	rating, err := h.service.Rate(c.Request.Context(), claims.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rating)
}
