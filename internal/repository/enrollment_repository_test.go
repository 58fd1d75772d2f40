package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/skateflow-api/internal/models"
)

func seedRoster(t *testing.T, store *EntityStore) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, CollectionSkaters, []models.Skater{{ID: 1, Name: "Ana"}, {ID: 2, Name: "Caio"}, {ID: 3, Name: "Duda"}}))
	require.NoError(t, store.Save(ctx, CollectionSessions, []models.Session{{ID: 10, Title: "Street", MaxSkaters: 5}}))
}

func TestEnrollmentApplyAddsAndReconciles(t *testing.T) {
	store, _ := newTestStore()
	seedRoster(t, store)
	repo := NewEnrollmentRepository(store)
	ctx := context.Background()

	result, err := repo.Apply(ctx, 10, "2024-05-10", func(state *RosterState) (bool, error) {
		assert.True(t, state.HasSkater(2))
		assert.False(t, state.HasSkater(99))
		state.SkaterIDs = append(state.SkaterIDs, 2, 1, 2)
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, result.Roster.SkaterIDs)
	assert.Equal(t, 2, result.Session.EnrolledCount)
	assert.Equal(t, []models.AttendanceRecord{
		{SkaterID: 2, Present: false, Date: "2024-05-10"},
		{SkaterID: 1, Present: false, Date: "2024-05-10"},
	}, result.Roster.Attendance)

	roster, err := repo.Roster(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, result.Roster, roster)

	sessions, err := LoadCollection[models.Session](ctx, store, CollectionSessions)
	require.NoError(t, err)
	assert.Equal(t, 2, sessions[0].EnrolledCount)
}

func TestEnrollmentApplyKeepsExistingPresence(t *testing.T) {
	store, _ := newTestStore()
	seedRoster(t, store)
	repo := NewEnrollmentRepository(store)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, SessionSkatersKey(10), []int64{1}))
	require.NoError(t, store.Save(ctx, SessionAttendanceKey(10), []models.AttendanceRecord{{SkaterID: 1, Present: true, Date: "2024-05-01"}}))

	result, err := repo.Apply(ctx, 10, "2024-05-10", func(state *RosterState) (bool, error) {
		state.SkaterIDs = append(state.SkaterIDs, 3)
		return true, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []models.AttendanceRecord{
		{SkaterID: 1, Present: true, Date: "2024-05-01"},
		{SkaterID: 3, Present: false, Date: "2024-05-10"},
	}, result.Roster.Attendance)
}

func TestEnrollmentApplyRepairsLegacyDrift(t *testing.T) {
	store, _ := newTestStore()
	repo := NewEnrollmentRepository(store)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, CollectionSessions, []models.Session{{ID: 10, EnrolledCount: 7}}))
	require.NoError(t, store.Save(ctx, SessionSkatersKey(10), []int64{1, 1, 2}))
	require.NoError(t, store.Save(ctx, SessionAttendanceKey(10), []models.AttendanceRecord{
		{SkaterID: 5, Present: true, Date: "2024-05-01"},
		{SkaterID: 1, Present: true, Date: "2024-05-01"},
	}))

	result, err := repo.Apply(ctx, 10, "2024-05-10", func(*RosterState) (bool, error) { return false, nil })
	require.NoError(t, err)
	assert.False(t, result.Changed)

	roster, err := repo.Roster(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, roster.SkaterIDs)
	assert.Equal(t, []models.AttendanceRecord{
		{SkaterID: 1, Present: true, Date: "2024-05-01"},
		{SkaterID: 2, Present: false, Date: "2024-05-10"},
	}, roster.Attendance)

	sessions, err := LoadCollection[models.Session](ctx, store, CollectionSessions)
	require.NoError(t, err)
	assert.Equal(t, 2, sessions[0].EnrolledCount)
}

func TestEnrollmentApplyNoChangeSkipsWrite(t *testing.T) {
	obs := &recordingObserver{}
	store := NewEntityStore(NewMemoryBackend(), nil, obs)
	seedRoster(t, store)
	repo := NewEnrollmentRepository(store)
	obs.ops = nil

	_, err := repo.Apply(context.Background(), 10, "2024-05-10", func(*RosterState) (bool, error) { return false, nil })
	require.NoError(t, err)
	assert.NotContains(t, obs.ops, "apply")
}

func TestEnrollmentApplyErrorsLeaveStateUntouched(t *testing.T) {
	store, _ := newTestStore()
	seedRoster(t, store)
	repo := NewEnrollmentRepository(store)
	ctx := context.Background()

	_, err := repo.Apply(ctx, 99, "2024-05-10", func(*RosterState) (bool, error) { return true, nil })
	require.ErrorIs(t, err, ErrRecordNotFound)

	boom := errors.New("boom")
	_, err = repo.Apply(ctx, 10, "2024-05-10", func(state *RosterState) (bool, error) {
		state.SkaterIDs = append(state.SkaterIDs, 1)
		return true, boom
	})
	require.ErrorIs(t, err, boom)

	roster, err := repo.Roster(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, roster.SkaterIDs)
	assert.Empty(t, roster.Attendance)
}

func TestReconcileRosterDropsOrphanRecords(t *testing.T) {
	ids, records := reconcileRoster([]int64{4}, []models.AttendanceRecord{
		{SkaterID: 3, Present: true},
		{SkaterID: 4, Present: true, Date: "2024-01-01"},
		{SkaterID: 4, Present: false, Date: "2024-01-02"},
	}, "2024-05-10")

	assert.Equal(t, []int64{4}, ids)
	assert.Equal(t, []models.AttendanceRecord{{SkaterID: 4, Present: true, Date: "2024-01-01"}}, records)
}

func TestEnrollmentRosterNeverPairsMismatchedCollections(t *testing.T) {
	store, _ := newTestStore()
	seedRoster(t, store)
	repo := NewEnrollmentRepository(store)
	ctx := context.Background()

	var wg sync.WaitGroup
	done := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(done)
		for id := int64(100); id < 140; id++ {
			_, err := repo.Apply(ctx, 10, "2024-05-10", func(state *RosterState) (bool, error) {
				state.SkaterIDs = append(state.SkaterIDs, id)
				return true, nil
			})
			assert.NoError(t, err)
		}
	}()

	for {
		roster, err := repo.Roster(ctx, 10)
		require.NoError(t, err)
		require.Len(t, roster.Attendance, len(roster.SkaterIDs))
		for i, id := range roster.SkaterIDs {
			require.Equal(t, id, roster.Attendance[i].SkaterID)
		}
		select {
		case <-done:
			wg.Wait()
			final, err := repo.Roster(ctx, 10)
			require.NoError(t, err)
			assert.Len(t, final.SkaterIDs, 40)
			return
		default:
		}
	}
}
