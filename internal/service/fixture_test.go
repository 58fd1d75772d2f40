package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/skateflow-api/internal/models"
	"github.com/noah-isme/skateflow-api/internal/repository"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Notify(_ context.Context, note Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, note.Event)
}

type recordingOps struct {
	mu  sync.Mutex
	ops []string
}

func (r *recordingOps) RecordOperation(operation, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, operation+":"+outcome)
}

type fixture struct {
	store       *repository.EntityStore
	rosters     *repository.EnrollmentRepository
	skaters     *SkaterService
	sessions    *SessionService
	enrollments *EnrollmentService
	attendance  *AttendanceService
	notes       *NoteService
	stats       *StatsService
	instructor  *InstructorService
	notifier    *recordingNotifier
	ops         *recordingOps
}

var fixtureNow = time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repository.NewEntityStore(repository.NewMemoryBackend(), zap.NewNop(), nil)
	skaterRepo := repository.NewSkaterRepository(store)
	sessionRepo := repository.NewSessionRepository(store)
	rosters := repository.NewEnrollmentRepository(store)
	notifier := &recordingNotifier{}
	ops := &recordingOps{}
	clock := func() time.Time { return fixtureNow }

	instructor := NewInstructorService(repository.NewInstructorRepository(store), "Bruno Oliveira", nil, nil)
	skaters := NewSkaterService(skaterRepo, nil, notifier, time.UTC, nil)
	skaters.now = clock
	sessions := NewSessionService(SessionServiceParams{
		Repo:       sessionRepo,
		Instructor: instructor,
		Notifier:   notifier,
		Location:   time.UTC,
	})
	enrollments := NewEnrollmentService(EnrollmentServiceParams{
		Rosters:  rosters,
		Sessions: sessionRepo,
		Skaters:  skaterRepo,
		Notifier: notifier,
		Metrics:  ops,
	})
	enrollments.now = clock
	attendance := NewAttendanceService(AttendanceServiceParams{
		Rosters:  rosters,
		Sessions: sessionRepo,
		Skaters:  skaterRepo,
		Notifier: notifier,
		Metrics:  ops,
	})
	attendance.now = clock
	notes := NewNoteService(repository.NewNoteRepository(store), skaterRepo, instructor, nil, notifier, time.UTC, nil)
	notes.now = clock
	stats := NewStatsService(StatsServiceParams{
		Skaters:    skaterRepo,
		Sessions:   sessionRepo,
		Rosters:    rosters,
		Instructor: instructor,
	})
	stats.now = clock

	return &fixture{
		store:       store,
		rosters:     rosters,
		skaters:     skaters,
		sessions:    sessions,
		enrollments: enrollments,
		attendance:  attendance,
		notes:       notes,
		stats:       stats,
		instructor:  instructor,
		notifier:    notifier,
		ops:         ops,
	}
}

func (f *fixture) createSkater(t *testing.T, name string) models.Skater {
	t.Helper()
	skater, err := f.skaters.Create(context.Background(), CreateSkaterRequest{Name: name, NationalID: "id-" + name})
	require.NoError(t, err)
	return *skater
}

func (f *fixture) createSession(t *testing.T, title, when string, capacity int) models.Session {
	t.Helper()
	session, err := f.sessions.Create(context.Background(), CreateSessionRequest{Title: title, DateTime: when, MaxSkaters: Capacity(capacity)})
	require.NoError(t, err)
	return *session
}

// requireRosterConsistent checks the count and attendance invariants for a session.
func (f *fixture) requireRosterConsistent(t *testing.T, sessionID int64) {
	t.Helper()
	ctx := context.Background()
	session, err := f.sessions.Get(ctx, sessionID)
	require.NoError(t, err)
	roster, err := f.rosters.Roster(ctx, sessionID)
	require.NoError(t, err)

	require.Equal(t, len(roster.SkaterIDs), session.EnrolledCount, "enrolled count must match set size")
	require.Len(t, roster.Attendance, len(roster.SkaterIDs), "one attendance record per enrolled skater")
	seen := map[int64]bool{}
	for _, id := range roster.SkaterIDs {
		require.False(t, seen[id], "duplicate id %d in enrollment set", id)
		seen[id] = true
		_, ok := roster.Presence(id)
		require.True(t, ok, "missing attendance record for %d", id)
	}
}
