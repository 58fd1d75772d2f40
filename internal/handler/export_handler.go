package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/skateflow-api/internal/service"
	appErrors "github.com/noah-isme/skateflow-api/pkg/errors"
	"github.com/noah-isme/skateflow-api/pkg/response"
)

// ExportHandler streams generated attendance documents.
type ExportHandler struct {
	exports *service.ExportService
}

// NewExportHandler constructs ExportHandler. A nil service disables exports.
func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// SessionAttendance godoc
// @Summary Download a session attendance sheet
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param id path int true "Session ID"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /sessions/{id}/attendance/export [get]
func (h *ExportHandler) SessionAttendance(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.ErrFeatureDisabled)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.SessionAttendance(c.Request.Context(), id, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// SkaterHistory godoc
// @Summary Download a skater's session history
// @Tags Exports
// @Produce text/csv
// @Param id path int true "Skater ID"
// @Success 200 {file} file
// @Router /skaters/{id}/history/export [get]
func (h *ExportHandler) SkaterHistory(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.ErrFeatureDisabled)
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exports.SkaterHistory(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
