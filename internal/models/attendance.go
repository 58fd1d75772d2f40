package models

// AttendanceRecord captures presence for one enrolled skater in one session.
// A record exists exactly while the skater is in the session's enrollment set.
type AttendanceRecord struct {
	SkaterID int64  `json:"skater_id"`
	Present  bool   `json:"present"`
	Date     string `json:"date"`
}

// Roster is the enrollment state of a single session: the ordered set of
// enrolled skater ids and their attendance records.
type Roster struct {
	SessionID  int64              `json:"session_id"`
	SkaterIDs  []int64            `json:"skater_ids"`
	Attendance []AttendanceRecord `json:"attendance"`
}

// Contains reports whether the skater is enrolled.
func (r Roster) Contains(skaterID int64) bool {
	for _, id := range r.SkaterIDs {
		if id == skaterID {
			return true
		}
	}
	return false
}

// Presence returns the presence flag for a skater and whether a record exists.
func (r Roster) Presence(skaterID int64) (bool, bool) {
	for _, rec := range r.Attendance {
		if rec.SkaterID == skaterID {
			return rec.Present, true
		}
	}
	return false, false
}

// AttendanceEntry joins a skater with their presence in a session.
type AttendanceEntry struct {
	Skater  Skater `json:"skater"`
	Present bool   `json:"present"`
}

// AttendanceSummary counts the roster of a session.
type AttendanceSummary struct {
	SessionID  int64 `json:"session_id"`
	Enrolled   int   `json:"enrolled"`
	Present    int   `json:"present"`
	Absent     int   `json:"absent"`
	MaxSkaters int   `json:"max_skaters"`
}

// SessionHistoryEntry is one session a skater is enrolled in.
type SessionHistoryEntry struct {
	Session Session `json:"session"`
	Present bool    `json:"present"`
}

// ToggleResult reports the outcome of a presence toggle.
type ToggleResult struct {
	SessionID int64 `json:"session_id"`
	SkaterID  int64 `json:"skater_id"`
	Present   bool  `json:"present"`
	Applied   bool  `json:"applied"`
}
