package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/skateflow-api/internal/models"
	"github.com/noah-isme/skateflow-api/internal/repository"
	appErrors "github.com/noah-isme/skateflow-api/pkg/errors"
)

type rosterRepository interface {
	Roster(ctx context.Context, sessionID int64) (models.Roster, error)
	Apply(ctx context.Context, sessionID int64, today string, fn func(state *repository.RosterState) (bool, error)) (repository.ApplyResult, error)
}

type sessionFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Session, error)
}

type skaterLister interface {
	List(ctx context.Context) ([]models.Skater, error)
}

type operationRecorder interface {
	RecordOperation(operation, outcome string)
}

// EnrollmentResult describes a session's roster after an enrollment change.
type EnrollmentResult struct {
	Session   models.Session `json:"session"`
	SkaterIDs []int64        `json:"skater_ids"`
	Added     []int64        `json:"added,omitempty"`
	Removed   bool           `json:"removed"`
}

// EnrollmentServiceParams groups constructor dependencies.
type EnrollmentServiceParams struct {
	Rosters  rosterRepository
	Sessions sessionFinder
	Skaters  skaterLister
	Notifier Notifier
	Metrics  operationRecorder
	Location *time.Location
	Logger   *zap.Logger
}

// EnrollmentService is the single entry point for changing who is enrolled
// in a session. Every change goes through one apply step that also keeps the
// attendance list and the session's enrolled count in sync.
type EnrollmentService struct {
	rosters  rosterRepository
	sessions sessionFinder
	skaters  skaterLister
	notifier Notifier
	metrics  operationRecorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(params EnrollmentServiceParams) *EnrollmentService {
	notifier := params.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		rosters:  params.Rosters,
		sessions: params.Sessions,
		skaters:  params.Skaters,
		notifier: notifier,
		metrics:  params.Metrics,
		logger:   logger,
		now:      clockIn(params.Location),
	}
}

// Enroll adds skaters to a session. Existing members keep their position and
// attendance; new ids are appended in input order and start absent.
func (s *EnrollmentService) Enroll(ctx context.Context, sessionID int64, skaterIDs []int64) (*EnrollmentResult, error) {
	if len(skaterIDs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "select at least one skater")
	}

	var added []int64
	result, err := s.rosters.Apply(ctx, sessionID, today(s.now()), func(state *repository.RosterState) (bool, error) {
		var unknown []int64
		for _, id := range skaterIDs {
			if !state.HasSkater(id) {
				unknown = append(unknown, id)
			}
		}
		if len(unknown) > 0 {
			return false, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown skater ids: %v", unknown))
		}

		members := make(map[int64]struct{}, len(state.SkaterIDs)+len(skaterIDs))
		for _, id := range state.SkaterIDs {
			members[id] = struct{}{}
		}
		for _, id := range skaterIDs {
			if _, ok := members[id]; ok {
				continue
			}
			members[id] = struct{}{}
			state.SkaterIDs = append(state.SkaterIDs, id)
			added = append(added, id)
		}
		return len(added) > 0, nil
	})
	if err != nil {
		s.record("enroll", "failed")
		return nil, storeError(err, "session not found", "failed to enroll skaters")
	}

	if len(added) == 0 {
		s.record("enroll", "noop")
	} else {
		s.record("enroll", "applied")
		s.notifier.Notify(ctx, Notification{
			Event:   "session.enrolled",
			Message: fmt.Sprintf("%d skater(s) enrolled", len(added)),
			Fields:  map[string]string{"session_id": strconv.FormatInt(sessionID, 10)},
		})
	}
	return &EnrollmentResult{Session: result.Session, SkaterIDs: result.Roster.SkaterIDs, Added: added}, nil
}

// Unenroll removes a skater and their attendance record from a session.
// Missing sessions and skaters that are not enrolled are silent no-ops.
func (s *EnrollmentService) Unenroll(ctx context.Context, sessionID, skaterID int64) (*EnrollmentResult, error) {
	removed := false
	result, err := s.rosters.Apply(ctx, sessionID, today(s.now()), func(state *repository.RosterState) (bool, error) {
		ids := state.SkaterIDs[:0]
		for _, id := range state.SkaterIDs {
			if id == skaterID {
				removed = true
				continue
			}
			ids = append(ids, id)
		}
		state.SkaterIDs = ids
		if !removed {
			return false, nil
		}
		records := state.Attendance[:0]
		for _, rec := range state.Attendance {
			if rec.SkaterID != skaterID {
				records = append(records, rec)
			}
		}
		state.Attendance = records
		return true, nil
	})
	if errors.Is(err, repository.ErrRecordNotFound) {
		s.record("unenroll", "noop")
		return &EnrollmentResult{SkaterIDs: []int64{}}, nil
	}
	if err != nil {
		s.record("unenroll", "failed")
		return nil, storeError(err, "session not found", "failed to unenroll skater")
	}

	if removed {
		s.record("unenroll", "applied")
		s.notifier.Notify(ctx, Notification{
			Event:   "session.unenrolled",
			Message: "Skater removed from session",
			Fields: map[string]string{
				"session_id": strconv.FormatInt(sessionID, 10),
				"skater_id":  strconv.FormatInt(skaterID, 10),
			},
		})
	} else {
		s.record("unenroll", "noop")
	}
	return &EnrollmentResult{Session: result.Session, SkaterIDs: result.Roster.SkaterIDs, Removed: removed}, nil
}

// EnrolledIDs returns the session's enrollment set in enrollment order.
func (s *EnrollmentService) EnrolledIDs(ctx context.Context, sessionID int64) ([]int64, error) {
	if _, err := s.sessions.FindByID(ctx, sessionID); err != nil {
		return nil, storeError(err, "session not found", "failed to load session")
	}
	roster, err := s.rosters.Roster(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load enrollments")
	}
	return roster.SkaterIDs, nil
}

// UnenrolledCandidates returns the skaters not yet enrolled in the session.
func (s *EnrollmentService) UnenrolledCandidates(ctx context.Context, sessionID int64) ([]models.Skater, error) {
	ids, err := s.EnrolledIDs(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	skaters, err := s.skaters.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list skaters")
	}
	enrolled := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		enrolled[id] = struct{}{}
	}
	candidates := make([]models.Skater, 0, len(skaters))
	for _, skater := range skaters {
		if _, ok := enrolled[skater.ID]; !ok {
			candidates = append(candidates, skater)
		}
	}
	return candidates, nil
}

func (s *EnrollmentService) record(operation, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordOperation(operation, outcome)
	}
}
