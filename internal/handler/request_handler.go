package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/unireg/registrar-api/internal/service"
	appErrors "github.com/unireg/registrar-api/pkg/errors"
	"github.com/unireg/registrar-api/pkg/response"
)

// RequestHandler exposes special request endpoints.
type RequestHandler struct {
	requests *service.RequestService
}

// NewRequestHandler constructs RequestHandler.
func NewRequestHandler(requests *service.RequestService) *RequestHandler {
	return &RequestHandler{requests: requests}
}

// Submit godoc
// @Summary File a special request against an offering
// @Tags Requests
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.SubmitRequestPayload true "Request payload"
// @Success 201 {object} response.Envelope
// @Router /requests [post]
func (h *RequestHandler) Submit(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, ""))
		return
	}
	var payload service.SubmitRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	request, err := h.requests.Submit(claims.UserID, payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// Mine godoc
// @Summary List the caller's filed requests
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /requests [get]
func (h *RequestHandler) Mine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, ""))
		return
	}
	response.JSON(c, http.StatusOK, h.requests.StudentRequests(claims.UserID), nil)
}

// Pending godoc
// @Summary List the caller's pending review queue
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /requests/pending [get]
func (h *RequestHandler) Pending(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, ""))
		return
	}
	response.JSON(c, http.StatusOK, h.requests.Pending(claims.UserID), nil)
}

// Approve godoc
// @Summary Approve a pending request
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/approve [put]
func (h *RequestHandler) Approve(c *gin.Context) {
	h.resolve(c, true)
}

// Reject godoc
// @Summary Reject a pending request
// @Tags Requests
// @Produce json
// @Security BearerAuth
// @Param id path int true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /requests/{id}/reject [put]
func (h *RequestHandler) Reject(c *gin.Context) {
	h.resolve(c, false)
}

func (h *RequestHandler) resolve(c *gin.Context, approve bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, ""))
		return
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid request id"))
		return
	}

	var request interface{}
	if approve {
		request, err = h.requests.Approve(claims.UserID, claims.Role, id)
	} else {
		request, err = h.requests.Reject(claims.UserID, claims.Role, id)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}
