package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/skateflow-api/internal/middleware"
	"github.com/noah-isme/skateflow-api/internal/models"
	"github.com/noah-isme/skateflow-api/internal/service"
	appErrors "github.com/noah-isme/skateflow-api/pkg/errors"
	"github.com/noah-isme/skateflow-api/pkg/response"
)

// AttendanceHandler exposes per-session attendance endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// View godoc
// @Summary Attendance sheet of a session
// @Tags Attendance
// @Produce json
// @Param id path int true "Session ID"
// @Param status query string false "present or absent"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/attendance [get]
func (h *AttendanceHandler) View(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	ctx := c.Request.Context()

	var entries []models.AttendanceEntry
	switch strings.ToLower(strings.TrimSpace(c.Query("status"))) {
	case "":
		entries, err = h.attendance.ViewForSession(ctx, id)
	case "present":
		entries, err = h.attendance.PresentFor(ctx, id)
	case "absent":
		entries, err = h.attendance.AbsentFor(ctx, id)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "status must be present or absent"))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	summary, err := h.attendance.Summary(ctx, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetMeta(c, "summary", summary)
	meta := middleware.ExtractMeta(c)
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, entries, meta)
}

// Toggle godoc
// @Summary Flip presence of an enrolled skater
// @Description A skater without an attendance record is left untouched and applied is false.
// @Tags Attendance
// @Produce json
// @Param id path int true "Session ID"
// @Param skaterId path int true "Skater ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/attendance/{skaterId}/toggle [post]
func (h *AttendanceHandler) Toggle(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	skaterID, err := pathID(c, "skaterId")
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.attendance.Toggle(c.Request.Context(), id, skaterID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
