package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/unireg/registrar-api/internal/service"
	appErrors "github.com/unireg/registrar-api/pkg/errors"
	"github.com/unireg/registrar-api/pkg/response"
)

// RegistrationHandler exposes the registration workflow endpoints.
type RegistrationHandler struct {
	registrations *service.RegistrationService
}

// NewRegistrationHandler constructs RegistrationHandler.
func NewRegistrationHandler(registrations *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations}
}

// Register godoc
// @Summary Register the caller into an offering
// @Tags Registrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.RegisterCourseRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Router /registrations [post]
func (h *RegistrationHandler) Register(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, ""))
		return
	}
	var req service.RegisterCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	registration, err := h.registrations.Register(claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, registration)
}

// Drop godoc
// @Summary Drop one of the caller's registrations
// @Tags Registrations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Registration ID"
// @Success 200 {object} response.Envelope
// @Router /registrations/{id} [delete]
func (h *RegistrationHandler) Drop(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, ""))
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid registration id"))
		return
	}
	registration, err := h.registrations.Drop(claims.UserID, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, registration, nil)
}

// History godoc
// @Summary List the caller's registration history
// @Tags Registrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /registrations [get]
func (h *RegistrationHandler) History(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, ""))
		return
	}
	response.JSON(c, http.StatusOK, h.registrations.History(claims.UserID), nil)
}

// Roster godoc
// @Summary List registered students of an offering
// @Tags Registrations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Offering ID"
// @Success 200 {object} response.Envelope
// @Router /offerings/{id}/students [get]
func (h *RegistrationHandler) Roster(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid offering id"))
		return
	}
	students, err := h.registrations.StudentsInOffering(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}
