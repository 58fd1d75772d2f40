package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/skateflow-api/pkg/errors"
)

func TestEnrollmentScenarioCountAndCandidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.createSkater(t, "Ana")
	b := f.createSkater(t, "Bia")
	c := f.createSkater(t, "Caio")
	d := f.createSkater(t, "Duda")
	session := f.createSession(t, "Training A", "2024-05-20T18:00", 5)

	result, err := f.enrollments.Enroll(ctx, session.ID, []int64{a.ID, b.ID, c.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Session.EnrolledCount)
	assert.Equal(t, []int64{a.ID, b.ID, c.ID}, result.SkaterIDs)
	assert.Equal(t, []int64{a.ID, b.ID, c.ID}, result.Added)

	stored, err := f.sessions.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.EnrolledCount)

	candidates, err := f.enrollments.UnenrolledCandidates(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, d.ID, candidates[0].ID)
	f.requireRosterConsistent(t, session.ID)
}

func TestEnrollmentNewRecordsStartAbsentDatedToday(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.createSkater(t, "Ana")
	session := f.createSession(t, "Street", "2024-05-20T18:00", 5)

	_, err := f.enrollments.Enroll(ctx, session.ID, []int64{a.ID})
	require.NoError(t, err)

	roster, err := f.rosters.Roster(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, roster.Attendance, 1)
	assert.False(t, roster.Attendance[0].Present)
	assert.Equal(t, "2024-05-15", roster.Attendance[0].Date)
}

func TestEnrollmentIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.createSkater(t, "Ana")
	b := f.createSkater(t, "Bia")
	session := f.createSession(t, "Street", "2024-05-20T18:00", 5)

	_, err := f.enrollments.Enroll(ctx, session.ID, []int64{a.ID})
	require.NoError(t, err)
	_, err = f.attendance.Toggle(ctx, session.ID, a.ID)
	require.NoError(t, err)

	first, err := f.enrollments.Enroll(ctx, session.ID, []int64{b.ID, a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID, b.ID}, first.SkaterIDs)
	assert.Equal(t, []int64{b.ID}, first.Added)

	before, err := f.rosters.Roster(ctx, session.ID)
	require.NoError(t, err)
	second, err := f.enrollments.Enroll(ctx, session.ID, []int64{b.ID, a.ID})
	require.NoError(t, err)
	assert.Empty(t, second.Added)
	after, err := f.rosters.Roster(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	present, ok := after.Presence(a.ID)
	require.True(t, ok)
	assert.True(t, present, "re-enrolling keeps existing presence")
	assert.Contains(t, f.ops.ops, "enroll:noop")
	f.requireRosterConsistent(t, session.ID)
}

func TestEnrollmentValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.createSkater(t, "Ana")
	session := f.createSession(t, "Street", "2024-05-20T18:00", 5)

	_, err := f.enrollments.Enroll(ctx, session.ID, nil)
	require.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = f.enrollments.Enroll(ctx, 999, []int64{a.ID})
	require.ErrorIs(t, err, appErrors.ErrNotFound)

	_, err = f.enrollments.Enroll(ctx, session.ID, []int64{a.ID, 12345})
	require.ErrorIs(t, err, appErrors.ErrValidation)

	ids, err := f.enrollments.EnrolledIDs(ctx, session.ID)
	require.NoError(t, err)
	assert.Empty(t, ids, "a rejected enroll writes nothing")
	f.requireRosterConsistent(t, session.ID)
}

func TestUnenrollRemovesRecordAndHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	k := f.createSkater(t, "Kai")
	other := f.createSkater(t, "Lia")
	session := f.createSession(t, "Street", "2024-05-20T18:00", 5)
	_, err := f.enrollments.Enroll(ctx, session.ID, []int64{k.ID, other.ID})
	require.NoError(t, err)

	result, err := f.enrollments.Unenroll(ctx, session.ID, k.ID)
	require.NoError(t, err)
	assert.True(t, result.Removed)
	assert.Equal(t, []int64{other.ID}, result.SkaterIDs)
	assert.Equal(t, 1, result.Session.EnrolledCount)

	roster, err := f.rosters.Roster(ctx, session.ID)
	require.NoError(t, err)
	_, ok := roster.Presence(k.ID)
	assert.False(t, ok)

	history, err := f.attendance.HistoryForSkater(ctx, k.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
	f.requireRosterConsistent(t, session.ID)
}

func TestUnenrollMissingTargetsAreNoops(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.createSkater(t, "Ana")
	session := f.createSession(t, "Street", "2024-05-20T18:00", 5)

	result, err := f.enrollments.Unenroll(ctx, session.ID, a.ID)
	require.NoError(t, err)
	assert.False(t, result.Removed)

	result, err = f.enrollments.Unenroll(ctx, 999, a.ID)
	require.NoError(t, err)
	assert.False(t, result.Removed)
	assert.Equal(t, []string{"unenroll:noop", "unenroll:noop"}, f.ops.ops)
	assert.Empty(t, f.notifier.events[2:], "no notification for no-op unenroll")
}

func TestEnrolledIDsUnknownSession(t *testing.T) {
	f := newFixture(t)
	_, err := f.enrollments.EnrolledIDs(context.Background(), 1)
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}
