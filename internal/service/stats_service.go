package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/skateflow-api/internal/dto"
	"github.com/noah-isme/skateflow-api/internal/models"
	appErrors "github.com/noah-isme/skateflow-api/pkg/errors"
)

type sessionCatalog interface {
	List(ctx context.Context) ([]models.Session, error)
}

type rosterReader interface {
	Roster(ctx context.Context, sessionID int64) (models.Roster, error)
}

// StatsServiceParams groups constructor dependencies.
type StatsServiceParams struct {
	Skaters    skaterLister
	Sessions   sessionCatalog
	Rosters    rosterReader
	Instructor instructorNamer
	Location   *time.Location
	Logger     *zap.Logger
}

// StatsService computes dashboard aggregates on every call. Nothing is cached.
type StatsService struct {
	skaters    skaterLister
	sessions   sessionCatalog
	rosters    rosterReader
	instructor instructorNamer
	logger     *zap.Logger
	now        func() time.Time
}

// NewStatsService constructs the stats service.
func NewStatsService(params StatsServiceParams) *StatsService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{
		skaters:    params.Skaters,
		sessions:   params.Sessions,
		rosters:    params.Rosters,
		instructor: params.Instructor,
		logger:     logger,
		now:        clockIn(params.Location),
	}
}

// monthWindow returns the first instant of now's month in now's location
// and now itself. Both bounds are inclusive.
func monthWindow(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return start, now
}

func within(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// ActiveSkaterCount returns the number of registered skaters.
func (s *StatsService) ActiveSkaterCount(ctx context.Context) (int, error) {
	skaters, err := s.skaters.List(ctx)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to count skaters")
	}
	return len(skaters), nil
}

// ScheduledSessionCount returns the number of sessions ever scheduled.
func (s *StatsService) ScheduledSessionCount(ctx context.Context) (int, error) {
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to count sessions")
	}
	return len(sessions), nil
}

// HoursThisMonth counts present attendance records of sessions scheduled
// within the current month up to now. Each present record is one hour.
func (s *StatsService) HoursThisMonth(ctx context.Context) (int, error) {
	start, end := monthWindow(s.now())
	return s.hoursBetween(ctx, start, end)
}

func (s *StatsService) hoursBetween(ctx context.Context, start, end time.Time) (int, error) {
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to list sessions")
	}
	hours := 0
	for _, session := range sessions {
		if !within(session.DateTime, start, end) {
			continue
		}
		roster, err := s.rosters.Roster(ctx, session.ID)
		if err != nil {
			return 0, appErrors.Internal(err, "failed to load attendance")
		}
		for _, rec := range roster.Attendance {
			if rec.Present {
				hours++
			}
		}
	}
	return hours, nil
}

// NewSkatersThisMonth counts skaters created within the current month up to now.
func (s *StatsService) NewSkatersThisMonth(ctx context.Context) (int, error) {
	start, end := monthWindow(s.now())
	return s.newSkatersBetween(ctx, start, end)
}

func (s *StatsService) newSkatersBetween(ctx context.Context, start, end time.Time) (int, error) {
	skaters, err := s.skaters.List(ctx)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to list skaters")
	}
	count := 0
	for _, skater := range skaters {
		if within(skater.CreatedAt, start, end) {
			count++
		}
	}
	return count, nil
}

// Snapshot computes all four aggregates against a single clock reading.
func (s *StatsService) Snapshot(ctx context.Context) (*dto.DashboardStats, error) {
	start, end := monthWindow(s.now())

	active, err := s.ActiveSkaterCount(ctx)
	if err != nil {
		return nil, err
	}
	scheduled, err := s.ScheduledSessionCount(ctx)
	if err != nil {
		return nil, err
	}
	hours, err := s.hoursBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	newcomers, err := s.newSkatersBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return &dto.DashboardStats{
		ActiveSkaters:       active,
		ScheduledSessions:   scheduled,
		HoursThisMonth:      hours,
		NewSkatersThisMonth: newcomers,
		WindowStart:         start,
		WindowEnd:           end,
	}, nil
}

// Dashboard returns the snapshot together with the instructor's name.
func (s *StatsService) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	stats, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	resp := &dto.DashboardResponse{Stats: *stats}
	if s.instructor != nil {
		name, err := s.instructor.Name(ctx)
		if err != nil {
			return nil, err
		}
		resp.Instructor = name
	}
	return resp, nil
}
