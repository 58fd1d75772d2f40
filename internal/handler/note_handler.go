package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/skateflow-api/internal/service"
	"github.com/noah-isme/skateflow-api/pkg/response"
)

// NoteHandler exposes skater note endpoints.
type NoteHandler struct {
	notes *service.NoteService
}

// NewNoteHandler constructs NoteHandler.
func NewNoteHandler(notes *service.NoteService) *NoteHandler {
	return &NoteHandler{notes: notes}
}

// List godoc
// @Summary List notes for a skater, newest first
// @Tags Notes
// @Produce json
// @Param id path int true "Skater ID"
// @Success 200 {object} response.Envelope
// @Router /skaters/{id}/notes [get]
func (h *NoteHandler) List(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	notes, err := h.notes.List(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, notes)
}

// Add godoc
// @Summary Add a note to a skater
// @Tags Notes
// @Accept json
// @Produce json
// @Param id path int true "Skater ID"
// @Param payload body service.AddNoteRequest true "Note payload"
// @Success 201 {object} response.Envelope
// @Router /skaters/{id}/notes [post]
func (h *NoteHandler) Add(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.AddNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	note, err := h.notes.Add(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, note)
}
