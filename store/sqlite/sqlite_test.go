package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridehq/habit-engine/calendar"
	"github.com/stridehq/habit-engine/challenge"
	"github.com/stridehq/habit-engine/personal"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func day(t *testing.T, s string) calendar.Day {
	t.Helper()
	d, err := calendar.ParseDay(s)
	require.NoError(t, err)
	return d
}

func seedEnrollment(t *testing.T, s *Store) challenge.Enrollment {
	t.Helper()
	ctx := context.Background()
	c := challenge.Challenge{
		ID: uuid.New(), Title: "30 day run " + uuid.NewString(),
		DurationDays: 30, CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.CreateChallenge(ctx, c))
	e := challenge.NewEnrollment(uuid.New(), c.ID, day(t, "2026-02-01"), time.Now().UTC())
	require.NoError(t, s.CreateEnrollment(ctx, e))
	return e
}

func TestChallengeTitleUniqueCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := challenge.Challenge{ID: uuid.New(), Title: "Cold Showers", DurationDays: 7, CreatedAt: time.Now().UTC()}
	require.NoError(t, s.CreateChallenge(ctx, c))

	dup := challenge.Challenge{ID: uuid.New(), Title: "cold showers", DurationDays: 7, CreatedAt: time.Now().UTC()}
	err := s.CreateChallenge(ctx, dup)
	require.ErrorIs(t, err, challenge.ErrDuplicateTitle)
}

func TestActiveEnrollmentUnique(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	e := seedEnrollment(t, s)

	dup := challenge.NewEnrollment(e.UserID, e.ChallengeID, e.StartDate, time.Now().UTC())
	err := s.CreateEnrollment(ctx, dup)
	require.ErrorIs(t, err, challenge.ErrAlreadyEnrolled)

	// A terminal row frees the slot.
	e.Status = challenge.StatusFailed
	require.NoError(t, s.UpdateEnrollment(ctx, e, 0))
	fresh := challenge.NewEnrollment(e.UserID, e.ChallengeID, e.StartDate, time.Now().UTC())
	require.NoError(t, s.CreateEnrollment(ctx, fresh))
}

func TestUpdateEnrollmentVersionGuard(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	e := seedEnrollment(t, s)

	e.CompletedDays = 1
	require.NoError(t, s.UpdateEnrollment(ctx, e, 0))

	// Writing from the stale version loses.
	e.CompletedDays = 2
	err := s.UpdateEnrollment(ctx, e, 0)
	require.ErrorIs(t, err, challenge.ErrConcurrentModification)

	got, err := s.GetEnrollment(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CompletedDays)
	assert.Equal(t, int64(1), got.Version)
}

func TestEnrollmentRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	e := seedEnrollment(t, s)

	e.Status = challenge.StatusCompleted
	e.CompletedDays = 30
	e.CurrentStreak = 30
	e.LastCompletedDate = day(t, "2026-03-02")
	e.CompletedOn = time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC)
	require.NoError(t, s.UpdateEnrollment(ctx, e, 0))

	got, err := s.GetEnrollment(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, challenge.StatusCompleted, got.Status)
	assert.Equal(t, "2026-03-02", got.LastCompletedDate.String())
	assert.True(t, got.CompletedOn.Equal(e.CompletedOn))
	assert.Equal(t, "2026-02-01", got.StartDate.String())
}

func TestLogDayUniqueness(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	e := seedEnrollment(t, s)
	h := challenge.Habit{ID: uuid.New(), EnrollmentID: e.ID, Title: "run", CreatedAt: time.Now().UTC()}
	require.NoError(t, s.CreateHabit(ctx, h))

	d := day(t, "2026-02-01")
	l := challenge.HabitLog{ID: uuid.New(), HabitID: h.ID, Day: d, DayStart: time.Now().UTC(), LoggedAt: time.Now().UTC()}
	require.NoError(t, s.AppendLog(ctx, l))

	dup := challenge.HabitLog{ID: uuid.New(), HabitID: h.ID, Day: d, DayStart: time.Now().UTC(), LoggedAt: time.Now().UTC()}
	err := s.AppendLog(ctx, dup)
	require.ErrorIs(t, err, challenge.ErrAlreadyLogged)
	var dupErr *challenge.DuplicateLogError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, h.ID, dupErr.HabitID)

	days, err := s.ListLogDays(ctx, h.ID)
	require.NoError(t, err)
	assert.Len(t, days, 1)
}

func TestHabitTitleUniqueWithinEnrollment(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	e1 := seedEnrollment(t, s)
	e2 := seedEnrollment(t, s)

	require.NoError(t, s.CreateHabit(ctx, challenge.Habit{ID: uuid.New(), EnrollmentID: e1.ID, Title: "Read", CreatedAt: time.Now().UTC()}))
	err := s.CreateHabit(ctx, challenge.Habit{ID: uuid.New(), EnrollmentID: e1.ID, Title: "read", CreatedAt: time.Now().UTC()})
	require.ErrorIs(t, err, challenge.ErrDuplicateTitle)

	// Same title in a different enrollment is fine.
	require.NoError(t, s.CreateHabit(ctx, challenge.Habit{ID: uuid.New(), EnrollmentID: e2.ID, Title: "read", CreatedAt: time.Now().UTC()}))
}

func TestDeleteEnrollmentCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	e := seedEnrollment(t, s)
	h := challenge.Habit{ID: uuid.New(), EnrollmentID: e.ID, Title: "run", CreatedAt: time.Now().UTC()}
	require.NoError(t, s.CreateHabit(ctx, h))
	require.NoError(t, s.AppendLog(ctx, challenge.HabitLog{
		ID: uuid.New(), HabitID: h.ID, Day: day(t, "2026-02-01"),
		DayStart: time.Now().UTC(), LoggedAt: time.Now().UTC(),
	}))

	require.NoError(t, s.DeleteEnrollment(ctx, e.ID))

	_, err := s.GetHabit(ctx, h.ID)
	require.ErrorIs(t, err, challenge.ErrHabitNotFound)
	days, err := s.ListLogDays(ctx, h.ID)
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestListLogDaysForEnrollment(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	e := seedEnrollment(t, s)
	h1 := challenge.Habit{ID: uuid.New(), EnrollmentID: e.ID, Title: "run", CreatedAt: time.Now().UTC()}
	h2 := challenge.Habit{ID: uuid.New(), EnrollmentID: e.ID, Title: "read", CreatedAt: time.Now().UTC()}
	require.NoError(t, s.CreateHabit(ctx, h1))
	require.NoError(t, s.CreateHabit(ctx, h2))

	for _, d := range []string{"2026-02-01", "2026-02-02"} {
		require.NoError(t, s.AppendLog(ctx, challenge.HabitLog{
			ID: uuid.New(), HabitID: h1.ID, Day: day(t, d),
			DayStart: time.Now().UTC(), LoggedAt: time.Now().UTC(),
		}))
	}
	require.NoError(t, s.AppendLog(ctx, challenge.HabitLog{
		ID: uuid.New(), HabitID: h2.ID, Day: day(t, "2026-02-01"),
		DayStart: time.Now().UTC(), LoggedAt: time.Now().UTC(),
	}))

	logged, err := s.ListLogDaysForEnrollment(ctx, e.ID)
	require.NoError(t, err)
	assert.Len(t, logged[h1.ID], 2)
	assert.Len(t, logged[h2.ID], 1)
}

func TestPersonalStoreConstraints(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := s.Personal()
	userID := uuid.New()

	h := personal.Habit{ID: uuid.New(), UserID: userID, Title: "Meditate", CreatedAt: time.Now().UTC()}
	require.NoError(t, p.CreateHabit(ctx, h))

	err := p.CreateHabit(ctx, personal.Habit{ID: uuid.New(), UserID: userID, Title: "meditate", CreatedAt: time.Now().UTC()})
	require.ErrorIs(t, err, personal.ErrDuplicateTitle)

	d := day(t, "2026-02-01")
	require.NoError(t, p.AppendLog(ctx, personal.Log{ID: uuid.New(), HabitID: h.ID, Day: d, DayStart: time.Now().UTC(), LoggedAt: time.Now().UTC()}))
	err = p.AppendLog(ctx, personal.Log{ID: uuid.New(), HabitID: h.ID, Day: d, DayStart: time.Now().UTC(), LoggedAt: time.Now().UTC()})
	require.ErrorIs(t, err, personal.ErrAlreadyLogged)

	require.NoError(t, p.SetArchived(ctx, h.ID, true))
	got, err := p.GetHabit(ctx, h.ID)
	require.NoError(t, err)
	assert.True(t, got.Archived)

	require.NoError(t, p.DeleteHabit(ctx, h.ID))
	days, err := p.ListLogDays(ctx, h.ID)
	require.NoError(t, err)
	assert.Empty(t, days)
}
