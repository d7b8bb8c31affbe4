package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unireg/registrar-api/internal/service"
	appErrors "github.com/unireg/registrar-api/pkg/errors"
	"github.com/unireg/registrar-api/pkg/response"
)

// SnapshotHandler exposes on-demand snapshot persistence to administrators.
type SnapshotHandler struct {
	snapshots *service.SnapshotService
}

// NewSnapshotHandler constructs SnapshotHandler. A nil service means snapshot
// persistence is not configured; the endpoints then report the missing setup.
func NewSnapshotHandler(snapshots *service.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{snapshots: snapshots}
}

// Save godoc
// @Summary Persist the current state to the snapshot store
// @Tags Snapshots
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /snapshots [post]
func (h *SnapshotHandler) Save(c *gin.Context) {
	if h.snapshots == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrPreconditionFailed, "snapshot persistence is not configured"))
		return
	}
	if err := h.snapshots.Save(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "saved"}, nil)
}

// Restore godoc
// @Summary Replace the current state with the stored snapshot
// @Tags Snapshots
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /snapshots/restore [post]
func (h *SnapshotHandler) Restore(c *gin.Context) {
	if h.snapshots == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrPreconditionFailed, "snapshot persistence is not configured"))
		return
	}
	if err := h.snapshots.Restore(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "restored"}, nil)
}
