package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/skateflow-api/internal/service"
	"github.com/noah-isme/skateflow-api/pkg/response"
)

// InstructorHandler exposes the instructor profile.
type InstructorHandler struct {
	instructor *service.InstructorService
	photos     PhotoLinker
}

// NewInstructorHandler constructs InstructorHandler. photos may be nil.
func NewInstructorHandler(instructor *service.InstructorService, photos PhotoLinker) *InstructorHandler {
	return &InstructorHandler{instructor: instructor, photos: photos}
}

// Get godoc
// @Summary Instructor profile
// @Tags Instructor
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /instructor [get]
func (h *InstructorHandler) Get(c *gin.Context) {
	profile, err := h.instructor.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, photoMeta(c, h.photos, profile.Photo))
}

// Update godoc
// @Summary Update instructor profile
// @Tags Instructor
// @Accept json
// @Produce json
// @Param payload body service.UpdateInstructorRequest true "Profile fields"
// @Success 200 {object} response.Envelope
// @Router /instructor [put]
func (h *InstructorHandler) Update(c *gin.Context) {
	var req service.UpdateInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	profile, err := h.instructor.Update(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, photoMeta(c, h.photos, profile.Photo))
}
