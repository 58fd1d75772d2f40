package handler

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/skateflow-api/pkg/errors"
)

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, name+" must be a positive integer")
	}
	return id, nil
}

func invalidPayload(err error) error {
	return appErrors.Validation(err, "invalid payload")
}

// PhotoLinker issues signed download links for stored photo references.
type PhotoLinker interface {
	SignedURL(ctx context.Context, ref string) (string, time.Time, error)
}

// photoMeta returns response meta carrying a signed link for ref, or nil when
// ref is empty, not a stored upload, or media is disabled.
func photoMeta(c *gin.Context, photos PhotoLinker, ref string) map[string]interface{} {
	if photos == nil || ref == "" {
		return nil
	}
	url, expiresAt, err := photos.SignedURL(c.Request.Context(), ref)
	if err != nil {
		return nil
	}
	return map[string]interface{}{"photo_url": url, "photo_url_expires_at": expiresAt}
}
