package personal_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridehq/habit-engine/calendar"
	"github.com/stridehq/habit-engine/personal"
	"github.com/stridehq/habit-engine/store/memory"
)

type fixture struct {
	svc    *personal.Service
	userID uuid.UUID
	loc    *time.Location
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	f := &fixture{
		userID: uuid.New(),
		loc:    loc,
		now:    time.Date(2026, 2, 26, 8, 0, 0, 0, loc),
	}
	f.svc = personal.NewService(memory.NewPersonalStore()).WithClock(func() time.Time { return f.now })
	return f
}

func (f *fixture) day(s string) calendar.Day {
	d, err := calendar.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCreateAndListWithStreak(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	h, err := f.svc.Create(ctx, f.userID, "drink water")
	require.NoError(t, err)

	for _, d := range []string{"2026-02-24", "2026-02-25", "2026-02-26"} {
		_, err := f.svc.Log(ctx, f.userID, h.ID, f.day(d), f.loc)
		require.NoError(t, err)
	}

	summaries, err := f.svc.List(ctx, f.userID, f.loc)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 3, summaries[0].Streak.Current)
	assert.Equal(t, 3, summaries[0].Streak.Longest)
}

func TestDuplicateTitleRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.userID, "Drink Water")
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.userID, "drink water")
	require.ErrorIs(t, err, personal.ErrDuplicateTitle)
	assert.True(t, personal.IsConflict(err))
}

func TestDuplicateDayLogRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h, err := f.svc.Create(ctx, f.userID, "read")
	require.NoError(t, err)

	_, err = f.svc.Log(ctx, f.userID, h.ID, calendar.Day{}, f.loc)
	require.NoError(t, err)
	_, err = f.svc.Log(ctx, f.userID, h.ID, calendar.Day{}, f.loc)
	require.ErrorIs(t, err, personal.ErrAlreadyLogged)
}

func TestArchivedHabitRejectsLogs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h, err := f.svc.Create(ctx, f.userID, "read")
	require.NoError(t, err)

	require.NoError(t, f.svc.Archive(ctx, f.userID, h.ID, true))

	_, err = f.svc.Log(ctx, f.userID, h.ID, calendar.Day{}, f.loc)
	require.ErrorIs(t, err, personal.ErrHabitArchived)
	assert.True(t, personal.IsInvalidState(err))

	// Unarchiving resumes logging.
	require.NoError(t, f.svc.Archive(ctx, f.userID, h.ID, false))
	_, err = f.svc.Log(ctx, f.userID, h.ID, calendar.Day{}, f.loc)
	require.NoError(t, err)
}

func TestUnlogThenNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h, err := f.svc.Create(ctx, f.userID, "read")
	require.NoError(t, err)
	d := f.day("2026-02-25")

	_, err = f.svc.Log(ctx, f.userID, h.ID, d, f.loc)
	require.NoError(t, err)
	require.NoError(t, f.svc.Unlog(ctx, f.userID, h.ID, d))

	err = f.svc.Unlog(ctx, f.userID, h.ID, d)
	require.ErrorIs(t, err, personal.ErrLogNotFound)
}

func TestAnalytics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h, err := f.svc.Create(ctx, f.userID, "meditate")
	require.NoError(t, err)

	// 7 consecutive days ending today
	for i := 0; i < 7; i++ {
		_, err := f.svc.Log(ctx, f.userID, h.ID, f.day("2026-02-20").AddDays(i), f.loc)
		require.NoError(t, err)
	}

	a, err := f.svc.Analytics(ctx, f.userID, h.ID, f.loc)
	require.NoError(t, err)

	assert.Equal(t, 7, a.Streak.Current)
	assert.Equal(t, 7, a.Streak.TotalDays)
	assert.True(t, a.RateLast7Days.Equal(decimal.NewFromInt(1)), "got %s", a.RateLast7Days)
	assert.True(t, a.RateLast30Days.Equal(decimal.RequireFromString("0.2333")), "got %s", a.RateLast30Days)
	assert.Len(t, a.Weekly, 12)
	assert.Len(t, a.Monthly, 12)
}

func TestForeignHabitNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h, err := f.svc.Create(ctx, f.userID, "read")
	require.NoError(t, err)

	_, err = f.svc.Analytics(ctx, uuid.New(), h.ID, f.loc)
	require.ErrorIs(t, err, personal.ErrHabitNotFound)
}

func TestDeleteCascadesLogs(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	h, err := f.svc.Create(ctx, f.userID, "read")
	require.NoError(t, err)
	_, err = f.svc.Log(ctx, f.userID, h.ID, calendar.Day{}, f.loc)
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, f.userID, h.ID))

	_, err = f.svc.Analytics(ctx, f.userID, h.ID, f.loc)
	require.ErrorIs(t, err, personal.ErrHabitNotFound)

	// Recreating under the same title starts clean.
	h2, err := f.svc.Create(ctx, f.userID, "read")
	require.NoError(t, err)
	a, err := f.svc.Analytics(ctx, f.userID, h2.ID, f.loc)
	require.NoError(t, err)
	assert.Zero(t, a.Streak.TotalDays)
}
