package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/luct-reporting-api/internal/middleware"
	"github.com/noah-isme/luct-reporting-api/internal/models"
	"github.com/noah-isme/luct-reporting-api/pkg/response"
)

type classLister interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.ClassView, error)
}

type reportService interface {
	List(ctx context.Context, filter models.ReportFilter) ([]models.ReportView, error)
	Create(ctx context.Context, lecturerID int64, req models.CreateReportRequest) (*models.ReportView, error)
}

type programLister interface {
	Programs(ctx context.Context, filter models.ProgramFilter) ([]models.Program, error)
}

// TeachingHandler serves the class, report and programme listings shared by
// the lecturer, principal lecturer and program leader surfaces. Visibility
// comes from the scope resolved for the route.
type TeachingHandler struct {
	classes  classLister
	reports  reportService
	programs programLister
}

// NewTeachingHandler constructs a teaching handler.
func NewTeachingHandler(classes classLister, reports reportService, programs programLister) *TeachingHandler {
	return &TeachingHandler{classes: classes, reports: reports, programs: programs}
}

// Classes lists the classes in the caller's scope using order.
func (h *TeachingHandler) Classes(order models.ClassOrder) gin.HandlerFunc {
	return func(c *gin.Context) {
		classes, err := h.classes.List(c.Request.Context(), models.ClassFilter{
			Scope: middleware.Scope(c),
			Order: order,
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.OK(c, classes)
	}
}

// Reports godoc
// @Summary Reports visible to the caller, newest lecture first
// @Tags Reports
// @Produce json
// @Success 200 {array} models.ReportView
// @Router /lecturer/reports [get]
func (h *TeachingHandler) Reports(c *gin.Context) {
	reports, err := h.reports.List(c.Request.Context(), models.ReportFilter{Scope: middleware.Scope(c)})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, reports)
}

// CreateReport godoc
// @Summary Submit a lecture report for one of the caller's classes
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body models.CreateReportRequest true "Report payload"
// @Success 201 {object} models.ReportView
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Failure 409 {object} response.ErrorBody
// @Router /lecturer/reports [post]
func (h *TeachingHandler) CreateReport(c *gin.Context) {
	claims, err := claimsFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req models.CreateReportRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	report, err := h.reports.Create(c.Request.Context(), claims.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, report)
}

// Programs lists programmes in the caller's faculty, by name.
func (h *TeachingHandler) Programs(c *gin.Context) {
	programs, err := h.programs.Programs(c.Request.Context(), models.ProgramFilter{Scope: middleware.Scope(c)})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, programs)
}
