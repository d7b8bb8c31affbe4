package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/unireg/registrar-api/internal/service"
	appErrors "github.com/unireg/registrar-api/pkg/errors"
	"github.com/unireg/registrar-api/pkg/response"
)

// ExportHandler streams roster downloads.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Roster godoc
// @Summary Download an offering roster
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param id path int true "Offering ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} byte
// @Router /offerings/{id}/roster [get]
func (h *ExportHandler) Roster(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid offering id"))
		return
	}
	format := service.ExportFormat(c.DefaultQuery("format", string(service.FormatCSV)))

	result, err := h.exports.Roster(id, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
