package models

import "time"

// DateLayout is the calendar-day format used for dates stored as strings.
const DateLayout = "2006-01-02"

// SkillLevel classifies skaters and sessions.
type SkillLevel string

// Supported skill levels.
const (
	LevelBeginner     SkillLevel = "Beginner"
	LevelIntermediate SkillLevel = "Intermediate"
	LevelAdvanced     SkillLevel = "Advanced"
)

// Valid returns true when the level is a supported value.
func (l SkillLevel) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	default:
		return false
	}
}

// Skater represents a student registered at the school.
type Skater struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	NationalID       string     `json:"national_id"`
	PostalCode       string     `json:"postal_code"`
	Gender           string     `json:"gender"`
	Phone            string     `json:"phone"`
	MotherName       string     `json:"mother_name"`
	FatherName       string     `json:"father_name"`
	HealthCardNumber string     `json:"health_card_number"`
	Level            SkillLevel `json:"level"`
	Photo            string     `json:"photo,omitempty"`
	EnrollmentDate   string     `json:"enrollment_date"`
	TotalSessions    int        `json:"total_sessions"`
	LastSession      *string    `json:"last_session,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}
