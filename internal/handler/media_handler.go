package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/skateflow-api/internal/service"
	appErrors "github.com/noah-isme/skateflow-api/pkg/errors"
	"github.com/noah-isme/skateflow-api/pkg/response"
)

// MediaHandler handles photo uploads and signed downloads.
type MediaHandler struct {
	media *service.MediaService
}

// NewMediaHandler constructs MediaHandler. A nil service disables media.
func NewMediaHandler(media *service.MediaService) *MediaHandler {
	return &MediaHandler{media: media}
}

// Upload godoc
// @Summary Upload a skater or instructor photo
// @Tags Media
// @Accept mpfd
// @Produce json
// @Param file formData file true "Photo"
// @Success 201 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 415 {object} response.Envelope
// @Router /media/photos [post]
func (h *MediaHandler) Upload(c *gin.Context) {
	if h.media == nil {
		response.Error(c, appErrors.ErrFeatureDisabled)
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Validation(err, "file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Internal(err, "failed to read upload"))
		return
	}
	defer file.Close()

	upload, err := h.media.UploadPhoto(c.Request.Context(), header.Filename, header.Header.Get("Content-Type"), file, header.Size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, upload)
}

// Download godoc
// @Summary Fetch a photo through a signed link
// @Tags Media
// @Produce image/jpeg
// @Produce image/png
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Router /media/photos/{token} [get]
func (h *MediaHandler) Download(c *gin.Context) {
	if h.media == nil {
		response.Error(c, appErrors.ErrFeatureDisabled)
		return
	}
	file, contentType, err := h.media.Resolve(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "private, max-age=300")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}
