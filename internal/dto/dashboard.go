package dto

import "time"

// DashboardStats is the aggregate snapshot shown on the instructor dashboard.
type DashboardStats struct {
	ActiveSkaters       int       `json:"active_skaters"`
	ScheduledSessions   int       `json:"scheduled_sessions"`
	HoursThisMonth      int       `json:"hours_this_month"`
	NewSkatersThisMonth int       `json:"new_skaters_this_month"`
	WindowStart         time.Time `json:"window_start"`
	WindowEnd           time.Time `json:"window_end"`
}

// DashboardResponse wraps the stats with the instructor greeting data.
type DashboardResponse struct {
	Instructor string         `json:"instructor"`
	Stats      DashboardStats `json:"stats"`
}
