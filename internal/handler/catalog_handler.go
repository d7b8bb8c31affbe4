package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/unireg/registrar-api/internal/service"
	appErrors "github.com/unireg/registrar-api/pkg/errors"
	"github.com/unireg/registrar-api/pkg/response"
)

// CatalogHandler exposes course and offering endpoints.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListCourses godoc
// @Summary List catalog courses
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	courses, err := h.catalog.ListCourses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// GetCourse godoc
// @Summary Get one course
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param code path string true "Course code"
// @Success 200 {object} response.Envelope
// @Router /courses/{code} [get]
func (h *CatalogHandler) GetCourse(c *gin.Context) {
	course, err := h.catalog.GetCourse(c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// CreateCourse godoc
// @Summary Add a course to the catalog
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Router /courses [post]
func (h *CatalogHandler) CreateCourse(c *gin.Context) {
	var req service.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.catalog.CreateCourse(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// AddPrerequisite godoc
// @Summary Link a prerequisite to a course
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param code path string true "Course code"
// @Param payload body service.AddPrerequisiteRequest true "Prerequisite payload"
// @Success 200 {object} response.Envelope
// @Router /courses/{code}/prerequisites [post]
func (h *CatalogHandler) AddPrerequisite(c *gin.Context) {
	var req service.AddPrerequisiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.catalog.AddPrerequisite(c.Request.Context(), c.Param("code"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// DeleteCourse godoc
// @Summary Remove a course without offerings
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param code path string true "Course code"
// @Success 204
// @Router /courses/{code} [delete]
func (h *CatalogHandler) DeleteCourse(c *gin.Context) {
	if err := h.catalog.DeleteCourse(c.Request.Context(), c.Param("code")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// CourseOfferings godoc
// @Summary List offerings for a course
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param code path string true "Course code"
// @Success 200 {object} response.Envelope
// @Router /courses/{code}/offerings [get]
func (h *CatalogHandler) CourseOfferings(c *gin.Context) {
	offerings, err := h.catalog.OfferingsForCourse(c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offerings, nil)
}

// ListOfferings godoc
// @Summary List all offerings
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /offerings [get]
func (h *CatalogHandler) ListOfferings(c *gin.Context) {
	offerings, err := h.catalog.ListOfferings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offerings, nil)
}

// GetOffering godoc
// @Summary Get one offering
// @Tags Catalog
// @Produce json
// @Security BearerAuth
// @Param id path int true "Offering ID"
// @Success 200 {object} response.Envelope
// @Router /offerings/{id} [get]
func (h *CatalogHandler) GetOffering(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid offering id"))
		return
	}
	offering, err := h.catalog.GetOffering(id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offering, nil)
}

// CreateOffering godoc
// @Summary Schedule a course offering
// @Tags Catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateOfferingRequest true "Offering payload"
// @Success 201 {object} response.Envelope
// @Router /offerings [post]
func (h *CatalogHandler) CreateOffering(c *gin.Context) {
	var req service.CreateOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	offering, err := h.catalog.CreateOffering(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, offering)
}
