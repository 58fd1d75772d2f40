package repository

import (
	"fmt"
	"time"
)

// Collection names shared by every backend.
const (
	CollectionSkaters    = "skaters"
	CollectionSessions   = "sessions"
	CollectionInstructor = "instructorProfile"
)

// SessionSkatersKey names the enrollment set of a session.
func SessionSkatersKey(sessionID int64) string {
	return fmt.Sprintf("session_%d_skaters", sessionID)
}

// SessionAttendanceKey names the attendance list of a session.
func SessionAttendanceKey(sessionID int64) string {
	return fmt.Sprintf("session_%d_attendance", sessionID)
}

// SkaterNotesKey names the note list of a skater.
func SkaterNotesKey(skaterID int64) string {
	return fmt.Sprintf("notes_%d", skaterID)
}

// nextID derives a millisecond timestamp id, bumped until unused.
func nextID(now time.Time, taken func(int64) bool) int64 {
	id := now.UnixMilli()
	for taken(id) {
		id++
	}
	return id
}
