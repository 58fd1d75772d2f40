package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/skateflow-api/internal/models"
	"github.com/noah-isme/skateflow-api/internal/repository"
	appErrors "github.com/noah-isme/skateflow-api/pkg/errors"
)

type sessionLister interface {
	List(ctx context.Context) ([]models.Session, error)
	FindByID(ctx context.Context, id int64) (*models.Session, error)
}

type skaterFinder interface {
	List(ctx context.Context) ([]models.Skater, error)
	FindByID(ctx context.Context, id int64) (*models.Skater, error)
}

// AttendanceServiceParams groups constructor dependencies.
type AttendanceServiceParams struct {
	Rosters  rosterRepository
	Sessions sessionLister
	Skaters  skaterFinder
	Notifier Notifier
	Metrics  operationRecorder
	Location *time.Location
	Logger   *zap.Logger
}

// AttendanceService toggles presence and builds joined attendance views.
type AttendanceService struct {
	rosters  rosterRepository
	sessions sessionLister
	skaters  skaterFinder
	notifier Notifier
	metrics  operationRecorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(params AttendanceServiceParams) *AttendanceService {
	notifier := params.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		rosters:  params.Rosters,
		sessions: params.Sessions,
		skaters:  params.Skaters,
		notifier: notifier,
		metrics:  params.Metrics,
		logger:   logger,
		now:      clockIn(params.Location),
	}
}

// Toggle flips the presence of an enrolled skater. When no attendance record
// exists for the pair nothing is written and Applied is false.
func (s *AttendanceService) Toggle(ctx context.Context, sessionID, skaterID int64) (*models.ToggleResult, error) {
	outcome := &models.ToggleResult{SessionID: sessionID, SkaterID: skaterID}
	_, err := s.rosters.Apply(ctx, sessionID, today(s.now()), func(state *repository.RosterState) (bool, error) {
		enrolled := false
		for _, id := range state.SkaterIDs {
			if id == skaterID {
				enrolled = true
				break
			}
		}
		if !enrolled {
			return false, nil
		}
		for i := range state.Attendance {
			if state.Attendance[i].SkaterID != skaterID {
				continue
			}
			state.Attendance[i].Present = !state.Attendance[i].Present
			outcome.Present = state.Attendance[i].Present
			outcome.Applied = true
			return true, nil
		}
		return false, nil
	})
	if err != nil && !errors.Is(err, repository.ErrRecordNotFound) {
		s.record("toggle", "failed")
		return nil, appErrors.Internal(err, "failed to toggle attendance")
	}

	if !outcome.Applied {
		s.record("toggle", "noop")
		return outcome, nil
	}
	s.record("toggle", "applied")
	s.notifier.Notify(ctx, Notification{
		Event:   "attendance.toggled",
		Message: "Attendance updated",
		Fields: map[string]string{
			"session_id": strconv.FormatInt(sessionID, 10),
			"skater_id":  strconv.FormatInt(skaterID, 10),
			"present":    strconv.FormatBool(outcome.Present),
		},
	})
	return outcome, nil
}

// ViewForSession joins the session's enrolled skaters with their presence in
// enrollment order. Ids that no longer resolve to a skater are skipped.
func (s *AttendanceService) ViewForSession(ctx context.Context, sessionID int64) ([]models.AttendanceEntry, error) {
	if _, err := s.sessions.FindByID(ctx, sessionID); err != nil {
		return nil, storeError(err, "session not found", "failed to load session")
	}
	roster, err := s.rosters.Roster(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load attendance")
	}
	skaters, err := s.skaters.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list skaters")
	}
	byID := make(map[int64]models.Skater, len(skaters))
	for _, skater := range skaters {
		byID[skater.ID] = skater
	}

	entries := make([]models.AttendanceEntry, 0, len(roster.SkaterIDs))
	for _, id := range roster.SkaterIDs {
		skater, ok := byID[id]
		if !ok {
			continue
		}
		present, _ := roster.Presence(id)
		entries = append(entries, models.AttendanceEntry{Skater: skater, Present: present})
	}
	return entries, nil
}

// PresentFor returns the present part of the session view.
func (s *AttendanceService) PresentFor(ctx context.Context, sessionID int64) ([]models.AttendanceEntry, error) {
	return s.filter(ctx, sessionID, true)
}

// AbsentFor returns the absent part of the session view.
func (s *AttendanceService) AbsentFor(ctx context.Context, sessionID int64) ([]models.AttendanceEntry, error) {
	return s.filter(ctx, sessionID, false)
}

func (s *AttendanceService) filter(ctx context.Context, sessionID int64, present bool) ([]models.AttendanceEntry, error) {
	entries, err := s.ViewForSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := make([]models.AttendanceEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Present == present {
			out = append(out, entry)
		}
	}
	return out, nil
}

// Summary counts the session view.
func (s *AttendanceService) Summary(ctx context.Context, sessionID int64) (*models.AttendanceSummary, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return nil, storeError(err, "session not found", "failed to load session")
	}
	entries, err := s.ViewForSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	summary := &models.AttendanceSummary{
		SessionID:  sessionID,
		Enrolled:   len(entries),
		MaxSkaters: session.MaxSkaters,
	}
	for _, entry := range entries {
		if entry.Present {
			summary.Present++
		} else {
			summary.Absent++
		}
	}
	return summary, nil
}

// HistoryForSkater lists every session the skater is enrolled in, latest
// first, by scanning all sessions.
func (s *AttendanceService) HistoryForSkater(ctx context.Context, skaterID int64) ([]models.SessionHistoryEntry, error) {
	if _, err := s.skaters.FindByID(ctx, skaterID); err != nil {
		return nil, storeError(err, "skater not found", "failed to load skater")
	}
	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list sessions")
	}

	history := make([]models.SessionHistoryEntry, 0)
	for _, session := range sessions {
		roster, err := s.rosters.Roster(ctx, session.ID)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to load attendance")
		}
		if !roster.Contains(skaterID) {
			continue
		}
		present, _ := roster.Presence(skaterID)
		history = append(history, models.SessionHistoryEntry{Session: session, Present: present})
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Session.DateTime.After(history[j].Session.DateTime)
	})
	return history, nil
}

func (s *AttendanceService) record(operation, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordOperation(operation, outcome)
	}
}
