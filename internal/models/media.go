package models

import "time"

// PhotoUpload describes a stored photo and how to fetch it.
type PhotoUpload struct {
	Reference   string    `json:"reference"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	URL         string    `json:"url"`
	ExpiresAt   time.Time `json:"expires_at"`
}
