package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/skateflow-api/internal/dto"
	appErrors "github.com/noah-isme/skateflow-api/pkg/errors"
	"github.com/noah-isme/skateflow-api/pkg/response"
)

type dashboardService interface {
	Dashboard(ctx context.Context) (*dto.DashboardResponse, error)
}

// DashboardHandler wires the stats service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Stats godoc
// @Summary Instructor dashboard aggregates
// @Description Computed on every call: active skaters, scheduled sessions, hours and new skaters this month.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	summary, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}
