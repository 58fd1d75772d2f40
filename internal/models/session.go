package models

import "time"

// SessionType enumerates the kinds of training sessions.
type SessionType string

// Supported session types.
const (
	SessionTechnical   SessionType = "TechnicalTraining"
	SessionRamp        SessionType = "RampTraining"
	SessionStreet      SessionType = "StreetTraining"
	SessionEvaluation  SessionType = "Evaluation"
	SessionCompetition SessionType = "Competition"
)

// Valid returns true when the session type is supported.
func (t SessionType) Valid() bool {
	switch t {
	case SessionTechnical, SessionRamp, SessionStreet, SessionEvaluation, SessionCompetition:
		return true
	default:
		return false
	}
}

// Session is a scheduled training session.
//
// EnrolledCount mirrors the size of the session's enrollment set and is only
// ever written by the enrollment apply step.
type Session struct {
	ID            int64       `json:"id"`
	Title         string      `json:"title"`
	SessionType   SessionType `json:"session_type"`
	Location      string      `json:"location"`
	Level         SkillLevel  `json:"level"`
	DateTime      time.Time   `json:"date_time"`
	MaxSkaters    int         `json:"max_skaters"`
	Instructor    string      `json:"instructor"`
	Notes         string      `json:"notes"`
	EnrolledCount int         `json:"enrolled_count"`
}

// OnDay reports whether the session is scheduled on the calendar day of t.
// Each side is evaluated in its own location.
func (s Session) OnDay(t time.Time) bool {
	y1, m1, d1 := s.DateTime.Date()
	y2, m2, d2 := t.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
