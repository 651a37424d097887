package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/luct-reporting-api/internal/models"
	"github.com/noah-isme/luct-reporting-api/internal/service"
	"github.com/noah-isme/luct-reporting-api/pkg/response"
)

type registrationCodeService interface {
	List(ctx context.Context) ([]models.RegistrationCode, error)
	Create(ctx context.Context, actor service.Actor, input models.RegistrationCodeInput) (*models.RegistrationCode, error)
	Deactivate(ctx context.Context, actor service.Actor, id int64) error
	Delete(ctx context.Context, actor service.Actor, id int64) error
}

// RegistrationCodeHandler manages staff signup codes.
type RegistrationCodeHandler struct {
	service registrationCodeService
}

// NewRegistrationCodeHandler constructs a registration code handler.
func NewRegistrationCodeHandler(service registrationCodeService) *RegistrationCodeHandler {
	return &RegistrationCodeHandler{service: service}
}

func (h *RegistrationCodeHandler) List(c *gin.Context) {
	codes, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, codes)
}

// Create godoc
// @Summary Issue a staff registration code
// @Tags Admin
// @Accept json
// @Produce json
// @Param payload body models.RegistrationCodeInput true "Code payload"
// @Success 201 {object} models.RegistrationCode
// @Failure 400 {object} response.ErrorBody
// @Router /admin/registration-codes [post]
func (h *RegistrationCodeHandler) Create(c *gin.Context) {
	var input models.RegistrationCodeInput
	if err := bindJSON(c, &input); err != nil {
		response.Error(c, err)
		return
	}
	code, err := h.service.Create(c.Request.Context(), actorFromContext(c), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, code)
}

func (h *RegistrationCodeHandler) Deactivate(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Deactivate(c.Request.Context(), actorFromContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Registration code deactivated successfully")
}

func (h *RegistrationCodeHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), actorFromContext(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Registration code deleted successfully")
}
