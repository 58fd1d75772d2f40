package repository

import (
	"context"
	"reflect"

	"github.com/noah-isme/skateflow-api/internal/models"
)

// EnrollmentRepository is the only writer of enrollment sets, attendance
// lists and the enrolled count denormalised onto sessions.
type EnrollmentRepository struct {
	store *EntityStore
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(store *EntityStore) *EnrollmentRepository {
	return &EnrollmentRepository{store: store}
}

// RosterState is the mutable view handed to an apply step. Mutations to
// SkaterIDs and Attendance are persisted when the step reports a change.
type RosterState struct {
	Session    models.Session
	Skaters    []models.Skater
	SkaterIDs  []int64
	Attendance []models.AttendanceRecord
}

// HasSkater reports whether id resolves to a stored skater.
func (s *RosterState) HasSkater(id int64) bool {
	for _, skater := range s.Skaters {
		if skater.ID == id {
			return true
		}
	}
	return false
}

// ApplyResult is the committed outcome of an apply step.
type ApplyResult struct {
	Session models.Session
	Roster  models.Roster
	Changed bool
}

// Roster reads the enrollment set and attendance list of a session from one
// committed state.
func (r *EnrollmentRepository) Roster(ctx context.Context, sessionID int64) (models.Roster, error) {
	var roster models.Roster
	err := r.store.View(ctx, func(src Source) error {
		var err error
		roster, err = loadRoster(ctx, src, sessionID)
		return err
	})
	return roster, err
}

func loadRoster(ctx context.Context, src Source, sessionID int64) (models.Roster, error) {
	ids, err := LoadCollection[int64](ctx, src, SessionSkatersKey(sessionID))
	if err != nil {
		return models.Roster{}, err
	}
	records, err := LoadCollection[models.AttendanceRecord](ctx, src, SessionAttendanceKey(sessionID))
	if err != nil {
		return models.Roster{}, err
	}
	return models.Roster{SessionID: sessionID, SkaterIDs: ids, Attendance: records}, nil
}

// Apply runs fn over the session's roster in one transaction. fn reports
// whether it changed anything. Afterwards the enrollment set is deduplicated,
// the attendance list is reconciled to one record per enrolled id (new ones
// absent and dated today) and the session's enrolled count is set to the set
// size. The set, the attendance list and the sessions collection are written
// together, or not at all when nothing changed and no repair was needed.
func (r *EnrollmentRepository) Apply(ctx context.Context, sessionID int64, today string, fn func(state *RosterState) (bool, error)) (ApplyResult, error) {
	var result ApplyResult
	err := r.store.Update(ctx, func(tx *Tx) error {
		sessions, err := LoadCollection[models.Session](ctx, tx, CollectionSessions)
		if err != nil {
			return err
		}
		idx := -1
		for i := range sessions {
			if sessions[i].ID == sessionID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return ErrRecordNotFound
		}

		skaters, err := LoadCollection[models.Skater](ctx, tx, CollectionSkaters)
		if err != nil {
			return err
		}
		roster, err := loadRoster(ctx, tx, sessionID)
		if err != nil {
			return err
		}

		state := &RosterState{
			Session:    sessions[idx],
			Skaters:    skaters,
			SkaterIDs:  append([]int64{}, roster.SkaterIDs...),
			Attendance: append([]models.AttendanceRecord{}, roster.Attendance...),
		}
		changed, err := fn(state)
		if err != nil {
			return err
		}

		ids, records := reconcileRoster(state.SkaterIDs, state.Attendance, today)
		repaired := !reflect.DeepEqual(ids, roster.SkaterIDs) ||
			!reflect.DeepEqual(records, roster.Attendance) ||
			sessions[idx].EnrolledCount != len(ids)

		sessions[idx].EnrolledCount = len(ids)
		result = ApplyResult{
			Session: sessions[idx],
			Roster:  models.Roster{SessionID: sessionID, SkaterIDs: ids, Attendance: records},
			Changed: changed,
		}
		if !changed && !repaired {
			return nil
		}

		if err := tx.Put(SessionSkatersKey(sessionID), ids); err != nil {
			return err
		}
		if err := tx.Put(SessionAttendanceKey(sessionID), records); err != nil {
			return err
		}
		return tx.Put(CollectionSessions, sessions)
	})
	if err != nil {
		return ApplyResult{}, err
	}
	return result, nil
}

// reconcileRoster deduplicates ids in order and returns exactly one
// attendance record per id, keeping the first existing record for each.
func reconcileRoster(ids []int64, records []models.AttendanceRecord, today string) ([]int64, []models.AttendanceRecord) {
	byID := make(map[int64]models.AttendanceRecord, len(records))
	for _, rec := range records {
		if _, ok := byID[rec.SkaterID]; !ok {
			byID[rec.SkaterID] = rec
		}
	}

	seen := make(map[int64]struct{}, len(ids))
	outIDs := make([]int64, 0, len(ids))
	outRecords := make([]models.AttendanceRecord, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		outIDs = append(outIDs, id)
		rec, ok := byID[id]
		if !ok {
			rec = models.AttendanceRecord{SkaterID: id, Present: false, Date: today}
		}
		outRecords = append(outRecords, rec)
	}
	return outIDs, outRecords
}
