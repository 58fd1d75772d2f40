package models

// Note is a progress note written by the instructor about a skater.
type Note struct {
	ID          int64       `json:"id"`
	Date        string      `json:"date"`
	Title       string      `json:"title"`
	Content     string      `json:"content"`
	Instructor  string      `json:"instructor"`
	SessionType SessionType `json:"session_type,omitempty"`
}
