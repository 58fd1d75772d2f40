package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/skateflow-api/internal/service"
	"github.com/noah-isme/skateflow-api/pkg/response"
)

// SkaterHandler exposes skater endpoints.
type SkaterHandler struct {
	skaters    *service.SkaterService
	attendance *service.AttendanceService
	photos     PhotoLinker
}

// NewSkaterHandler constructs SkaterHandler. photos may be nil.
func NewSkaterHandler(skaters *service.SkaterService, attendance *service.AttendanceService, photos PhotoLinker) *SkaterHandler {
	return &SkaterHandler{skaters: skaters, attendance: attendance, photos: photos}
}

// List godoc
// @Summary List skaters
// @Tags Skaters
// @Produce json
// @Param q query string false "Search by name or national id"
// @Success 200 {object} response.Envelope
// @Router /skaters [get]
func (h *SkaterHandler) List(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	var (
		err    error
		result interface{}
	)
	if query != "" {
		result, err = h.skaters.Search(c.Request.Context(), query)
	} else {
		result, err = h.skaters.List(c.Request.Context())
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Get godoc
// @Summary Get skater detail
// @Tags Skaters
// @Produce json
// @Param id path int true "Skater ID"
// @Success 200 {object} response.Envelope
// @Router /skaters/{id} [get]
func (h *SkaterHandler) Get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	skater, err := h.skaters.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, skater, photoMeta(c, h.photos, skater.Photo))
}

// Create godoc
// @Summary Register skater
// @Tags Skaters
// @Accept json
// @Produce json
// @Param payload body service.CreateSkaterRequest true "Skater payload"
// @Success 201 {object} response.Envelope
// @Router /skaters [post]
func (h *SkaterHandler) Create(c *gin.Context) {
	var req service.CreateSkaterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	skater, err := h.skaters.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, skater)
}

// Update godoc
// @Summary Update skater
// @Tags Skaters
// @Accept json
// @Produce json
// @Param id path int true "Skater ID"
// @Param payload body service.UpdateSkaterRequest true "Skater payload"
// @Success 200 {object} response.Envelope
// @Router /skaters/{id} [patch]
func (h *SkaterHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpdateSkaterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	skater, err := h.skaters.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, skater)
}

// Delete godoc
// @Summary Delete skater
// @Tags Skaters
// @Param id path int true "Skater ID"
// @Success 204
// @Failure 409 {object} response.Envelope
// @Router /skaters/{id} [delete]
func (h *SkaterHandler) Delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.skaters.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// History godoc
// @Summary Sessions a skater is enrolled in, latest first
// @Tags Skaters
// @Produce json
// @Param id path int true "Skater ID"
// @Success 200 {object} response.Envelope
// @Router /skaters/{id}/history [get]
func (h *SkaterHandler) History(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	history, err := h.attendance.HistoryForSkater(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, history, map[string]interface{}{"total": len(history)})
}
