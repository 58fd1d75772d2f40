package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/skateflow-api/internal/models"
	"github.com/noah-isme/skateflow-api/internal/repository"
	appErrors "github.com/noah-isme/skateflow-api/pkg/errors"
)

func TestAttendanceTogglePartitionsView(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	k := f.createSkater(t, "Kai")
	other := f.createSkater(t, "Lia")
	session := f.createSession(t, "Street", "2024-05-20T18:00", 5)
	_, err := f.enrollments.Enroll(ctx, session.ID, []int64{k.ID, other.ID})
	require.NoError(t, err)

	result, err := f.attendance.Toggle(ctx, session.ID, k.ID)
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.True(t, result.Present)

	present, err := f.attendance.PresentFor(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, present, 1)
	assert.Equal(t, k.ID, present[0].Skater.ID)

	absent, err := f.attendance.AbsentFor(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, absent, 1)
	assert.Equal(t, other.ID, absent[0].Skater.ID)
	assert.Contains(t, f.notifier.events, "attendance.toggled")
}

func TestAttendanceToggleTwiceRestoresState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	k := f.createSkater(t, "Kai")
	session := f.createSession(t, "Street", "2024-05-20T18:00", 5)
	_, err := f.enrollments.Enroll(ctx, session.ID, []int64{k.ID})
	require.NoError(t, err)

	before, err := f.rosters.Roster(ctx, session.ID)
	require.NoError(t, err)
	_, err = f.attendance.Toggle(ctx, session.ID, k.ID)
	require.NoError(t, err)
	_, err = f.attendance.Toggle(ctx, session.ID, k.ID)
	require.NoError(t, err)
	after, err := f.rosters.Roster(ctx, session.ID)
	require.NoError(t, err)

	assert.Equal(t, before, after)
	f.requireRosterConsistent(t, session.ID)
}

func TestAttendanceToggleWithoutRecordIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	k := f.createSkater(t, "Kai")
	session := f.createSession(t, "Street", "2024-05-20T18:00", 5)

	result, err := f.attendance.Toggle(ctx, session.ID, k.ID)
	require.NoError(t, err)
	assert.False(t, result.Applied)

	result, err = f.attendance.Toggle(ctx, 999, k.ID)
	require.NoError(t, err)
	assert.False(t, result.Applied)

	roster, err := f.rosters.Roster(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, roster.Attendance)
	assert.Equal(t, []string{"toggle:noop", "toggle:noop"}, f.ops.ops)
}

func TestAttendanceViewSkipsUnresolvedSkaters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	k := f.createSkater(t, "Kai")
	session := f.createSession(t, "Street", "2024-05-20T18:00", 5)
	require.NoError(t, f.store.Save(ctx, repository.SessionSkatersKey(session.ID), []int64{404, k.ID}))
	require.NoError(t, f.store.Save(ctx, repository.SessionAttendanceKey(session.ID), []models.AttendanceRecord{
		{SkaterID: 404, Present: true, Date: "2024-05-01"},
		{SkaterID: k.ID, Present: true, Date: "2024-05-01"},
	}))

	view, err := f.attendance.ViewForSession(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, view, 1)
	assert.Equal(t, k.ID, view[0].Skater.ID)
	assert.True(t, view[0].Present)

	summary, err := f.attendance.Summary(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceSummary{SessionID: session.ID, Enrolled: 1, Present: 1, Absent: 0, MaxSkaters: 5}, *summary)

	_, err = f.attendance.ViewForSession(ctx, 999)
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestAttendanceHistoryNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	k := f.createSkater(t, "Kai")
	early := f.createSession(t, "Early", "2024-05-02T18:00", 5)
	late := f.createSession(t, "Late", "2024-05-25T18:00", 5)
	skipped := f.createSession(t, "Skipped", "2024-05-10T18:00", 5)
	mid := f.createSession(t, "Mid", "2024-05-12T18:00", 5)
	for _, s := range []models.Session{early, late, mid} {
		_, err := f.enrollments.Enroll(ctx, s.ID, []int64{k.ID})
		require.NoError(t, err)
	}
	_, err := f.attendance.Toggle(ctx, mid.ID, k.ID)
	require.NoError(t, err)

	history, err := f.attendance.HistoryForSkater(ctx, k.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, late.ID, history[0].Session.ID)
	assert.Equal(t, mid.ID, history[1].Session.ID)
	assert.True(t, history[1].Present)
	assert.Equal(t, early.ID, history[2].Session.ID)
	for _, entry := range history {
		assert.NotEqual(t, skipped.ID, entry.Session.ID)
	}

	_, err = f.attendance.HistoryForSkater(ctx, 999)
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestAttendanceToggleIgnoresRecordOutsideEnrollment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session := f.createSession(t, "Street", "2024-05-20T18:00", 5)
	require.NoError(t, f.store.Save(ctx, repository.SessionAttendanceKey(session.ID), []models.AttendanceRecord{
		{SkaterID: 77, Present: false, Date: "2024-05-01"},
	}))

	result, err := f.attendance.Toggle(ctx, session.ID, 77)
	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.False(t, result.Present)
	assert.Equal(t, []string{"toggle:noop"}, f.ops.ops)
	assert.NotContains(t, f.notifier.events, "attendance.toggled")

	roster, err := f.rosters.Roster(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, roster.Attendance)
	f.requireRosterConsistent(t, session.ID)
}
