package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/unireg/registrar-api/internal/models"
	"github.com/unireg/registrar-api/internal/service"
	appErrors "github.com/unireg/registrar-api/pkg/errors"
	"github.com/unireg/registrar-api/pkg/response"
)

// AuthHandler exposes authentication and account endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login godoc
// @Summary Authenticate and receive tokens
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.auth.Login(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Refresh godoc
// @Summary Rotate a refresh token
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body models.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} response.Envelope
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.auth.Refresh(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Logout godoc
// @Summary Revoke the caller's refresh tokens
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, ""))
		return
	}
	h.auth.Logout(claims.UserID)
	response.NoContent(c)
}

// SignUp godoc
// @Summary Create a student account
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body service.RegisterStudentRequest true "Signup payload"
// @Success 201 {object} response.Envelope
// @Router /auth/register [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req service.RegisterStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	user, err := h.auth.RegisterStudent(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// CreateInstructor godoc
// @Summary Create an instructor account
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.RegisterInstructorRequest true "Instructor payload"
// @Success 201 {object} response.Envelope
// @Router /users/instructors [post]
func (h *AuthHandler) CreateInstructor(c *gin.Context) {
	var req service.RegisterInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	user, err := h.auth.RegisterInstructor(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, user)
}

// ListUsers godoc
// @Summary List accounts
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param role query string false "Filter by role"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /users [get]
func (h *AuthHandler) ListUsers(c *gin.Context) {
	filter := service.ListUsersFilter{
		Role: models.UserRole(strings.ToUpper(c.Query("role"))),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	users, pagination := h.auth.ListUsers(filter)
	response.JSON(c, http.StatusOK, users, &pagination)
}

// DeleteUser godoc
// @Summary Remove an account
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 204
// @Router /users/{id} [delete]
func (h *AuthHandler) DeleteUser(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, ""))
		return
	}
	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid user id"))
		return
	}
	if err := h.auth.RemoveUser(claims.UserID, targetID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
