package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/skateflow-api/internal/service"
	"github.com/noah-isme/skateflow-api/pkg/response"
)

// EnrollRequest lists the skaters to add to a session.
type EnrollRequest struct {
	SkaterIDs []int64 `json:"skater_ids"`
}

// EnrollmentHandler exposes session roster endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// List godoc
// @Summary Enrolled skater ids of a session
// @Tags Enrollments
// @Produce json
// @Param id path int true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/enrollments [get]
func (h *EnrollmentHandler) List(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	ids, err := h.enrollments.EnrolledIDs(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ids, map[string]interface{}{"total": len(ids)})
}

// Enroll godoc
// @Summary Enroll skaters into a session
// @Description Idempotent: already enrolled skaters keep their attendance.
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path int true "Session ID"
// @Param payload body EnrollRequest true "Skater ids"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	result, err := h.enrollments.Enroll(c.Request.Context(), id, req.SkaterIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Unenroll godoc
// @Summary Remove a skater from a session
// @Tags Enrollments
// @Produce json
// @Param id path int true "Session ID"
// @Param skaterId path int true "Skater ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/enrollments/{skaterId} [delete]
func (h *EnrollmentHandler) Unenroll(c *gin.Context) {
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
	result, err := h.enrollments.Unenroll(c.Request.Context(), id, skaterID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Candidates godoc
// @Summary Skaters not yet enrolled in a session
// @Tags Enrollments
// @Produce json
// @Param id path int true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/candidates [get]
func (h *EnrollmentHandler) Candidates(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	skaters, err := h.enrollments.UnenrolledCandidates(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, skaters)
}
