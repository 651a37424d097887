package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/luct-reporting-api/internal/dto"
	"github.com/noah-isme/luct-reporting-api/internal/middleware"
	"github.com/noah-isme/luct-reporting-api/internal/models"
	"github.com/noah-isme/luct-reporting-api/internal/service"
	"github.com/noah-isme/luct-reporting-api/pkg/response"
)

type exportService interface {
	Reports(ctx context.Context, claims *models.JWTClaims, scope models.Scope, req dto.ExportReportsRequest) (*service.ExportFile, error)
	Users(ctx context.Context, claims *models.JWTClaims, req dto.ExportUsersRequest) (*service.ExportFile, error)
	Programs(ctx context.Context, claims *models.JWTClaims, scope models.Scope, req dto.ExportProgramsRequest) (*service.ExportFile, error)
	LogClientExport(ctx context.Context, userID int64, req models.ExportLogRequest) (int64, error)
	History(ctx context.Context, scope models.Scope) ([]models.ExportLog, error)
	Download(ctx context.Context, token string) (*service.ExportDownload, error)
}

// ExportHandler renders exports as attachments and exposes the export log.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs an export handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// Reports godoc
// @Summary Export reports
// @Tags Export
// @Accept json
// @Produce octet-stream
// @Param payload body dto.ExportReportsRequest true "Format, filters and scope"
// @Success 200 {file} file
// @Failure 400 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Router /export/reports [post]
func (h *ExportHandler) Reports(c *gin.Context) {
	claims, err := claimsFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ExportReportsRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.service.Reports(c.Request.Context(), claims, middleware.Scope(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	attach(c, file)
}

// Users godoc
// @Summary Export users
// @Tags Export
// @Accept json
// @Produce octet-stream
// @Param payload body dto.ExportUsersRequest true "Format and filters"
// @Success 200 {file} file
// @Router /export/users [post]
func (h *ExportHandler) Users(c *gin.Context) {
	claims, err := claimsFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ExportUsersRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.service.Users(c.Request.Context(), claims, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	attach(c, file)
}

// Programs exports programmes; program leaders are pinned to their faculty.
func (h *ExportHandler) Programs(c *gin.Context) {
	claims, err := claimsFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ExportProgramsRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.service.Programs(c.Request.Context(), claims, middleware.Scope(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	attach(c, file)
}

// Log records an export rendered by the client.
func (h *ExportHandler) Log(c *gin.Context) {
	claims, err := claimsFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req models.ExportLogRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	id, err := h.service.LogClientExport(c.Request.Context(), claims.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"id": id, "message": "Export logged"})
}

// History godoc
// @Summary Recent exports with download links for archived files
// @Tags Export
// @Produce json
// @Success 200 {array} models.ExportLog
// @Router /admin/exports/history [get]
func (h *ExportHandler) History(c *gin.Context) {
	logs, err := h.service.History(c.Request.Context(), middleware.Scope(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, logs)
}

// Download streams an archived export addressed by a signed token.
func (h *ExportHandler) Download(c *gin.Context) {
	download, err := h.service.Download(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close() //nolint:errcheck

	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, download.SizeBytes, download.ContentType, download.File, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", download.Filename),
	})
}

func attach(c *gin.Context, file *service.ExportFile) {
	response.Attachment(c, file.ContentType, file.Filename, file.Body)
}
