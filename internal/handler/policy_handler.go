package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unireg/registrar-api/internal/service"
	appErrors "github.com/unireg/registrar-api/pkg/errors"
	"github.com/unireg/registrar-api/pkg/response"
)

// PolicyHandler exposes registration policy and term administration.
type PolicyHandler struct {
	policy *service.PolicyService
}

// NewPolicyHandler constructs PolicyHandler.
func NewPolicyHandler(policy *service.PolicyService) *PolicyHandler {
	return &PolicyHandler{policy: policy}
}

// Get godoc
// @Summary Get the active registration policy
// @Tags Policy
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /policy [get]
func (h *PolicyHandler) Get(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.policy.Policy(), nil)
}

// Update godoc
// @Summary Replace the registration policy
// @Tags Policy
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.UpdatePolicyRequest true "Policy payload"
// @Success 200 {object} response.Envelope
// @Router /policy [put]
func (h *PolicyHandler) Update(c *gin.Context) {
	var req service.UpdatePolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	policy, err := h.policy.UpdatePolicy(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, policy, nil)
}

// Terms godoc
// @Summary List configured terms
// @Tags Policy
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /terms [get]
func (h *PolicyHandler) Terms(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.policy.Terms(), nil)
}

// OpenTerm godoc
// @Summary Open registration for a term
// @Tags Policy
// @Produce json
// @Security BearerAuth
// @Param name path string true "Term name"
// @Success 204
// @Router /terms/{name}/open [post]
func (h *PolicyHandler) OpenTerm(c *gin.Context) {
	h.setTerm(c, h.policy.OpenTerm)
}

// CloseTerm godoc
// @Summary Close registration for a term
// @Tags Policy
// @Produce json
// @Security BearerAuth
// @Param name path string true "Term name"
// @Success 204
// @Router /terms/{name}/close [post]
func (h *PolicyHandler) CloseTerm(c *gin.Context) {
	h.setTerm(c, h.policy.CloseTerm)
}

func (h *PolicyHandler) setTerm(c *gin.Context, apply func(service.TermRequest) error) {
	if err := apply(service.TermRequest{Name: c.Param("name")}); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
