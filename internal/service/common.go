package service

import (
	"errors"
	"strings"
	"time"

	"github.com/noah-isme/skateflow-api/internal/models"
	"github.com/noah-isme/skateflow-api/internal/repository"
	appErrors "github.com/noah-isme/skateflow-api/pkg/errors"
)

// storeError maps repository failures onto typed API errors. Errors that are
// already typed pass through untouched.
func storeError(err error, notFound, internal string) error {
	var typed *appErrors.Error
	switch {
	case errors.As(err, &typed):
		return typed
	case errors.Is(err, repository.ErrRecordNotFound):
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	default:
		return appErrors.Internal(err, internal)
	}
}

// clockIn returns a clock reporting the current time in loc.
func clockIn(loc *time.Location) func() time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return func() time.Time { return time.Now().In(loc) }
}

func today(now time.Time) string {
	return now.Format(models.DateLayout)
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}
