package challenge

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/stridehq/habit-engine/calendar"
)

func day(s string) calendar.Day {
	d, err := calendar.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func activeEnrollment(start calendar.Day) Enrollment {
	return NewEnrollment(uuid.New(), uuid.New(), start, time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC))
}

func TestAdvanceFirstDay(t *testing.T) {
	// GIVEN a fresh enrollment starting today
	e := activeEnrollment(day("2026-02-01"))

	// WHEN the first day is completed
	e, out := Advance(e, day("2026-02-01"), 30, DefaultLives)

	// THEN one day is credited with no misses
	if !out.DayCompleted {
		t.Error("expected DayCompleted")
	}
	if e.CompletedDays != 1 || e.CurrentStreak != 1 {
		t.Errorf("expected 1/1, got completed=%d streak=%d", e.CompletedDays, e.CurrentStreak)
	}
	if e.MissedDays != 0 || e.LivesRemaining != DefaultLives {
		t.Errorf("expected no misses, got missed=%d lives=%d", e.MissedDays, e.LivesRemaining)
	}
	if !e.LastCompletedDate.Equal(day("2026-02-01")) {
		t.Errorf("expected LastCompletedDate 2026-02-01, got %s", e.LastCompletedDate)
	}
}

func TestAdvanceSameDayTwiceIsNoop(t *testing.T) {
	// GIVEN a day already counted
	e := activeEnrollment(day("2026-02-01"))
	e, _ = Advance(e, day("2026-02-01"), 30, DefaultLives)

	// WHEN the same day is advanced again
	again, out := Advance(e, day("2026-02-01"), 30, DefaultLives)

	// THEN nothing changes
	if out.DayCompleted {
		t.Error("expected no-op, got DayCompleted")
	}
	if again.CompletedDays != 1 || again.CurrentStreak != 1 {
		t.Errorf("double-counted: completed=%d streak=%d", again.CompletedDays, again.CurrentStreak)
	}
}

func TestAdvancePerfectRunCompletes(t *testing.T) {
	// GIVEN durationDays = 5 and completions on days 1 through 5
	e := activeEnrollment(day("2026-02-01"))
	var out Outcome
	for i := 0; i < 5; i++ {
		e, out = Advance(e, day("2026-02-01").AddDays(i), 5, DefaultLives)
	}

	// THEN completion happens exactly on day 5's event
	if !out.ChallengeCompleted {
		t.Error("expected ChallengeCompleted on day 5")
	}
	if e.Status != StatusCompleted {
		t.Errorf("expected completed, got %s", e.Status)
	}
	if e.CurrentStreak != 5 || e.MissedDays != 0 {
		t.Errorf("expected streak 5 with no misses, got streak=%d missed=%d", e.CurrentStreak, e.MissedDays)
	}
}

func TestAdvanceMissCostsLifeNotStreak(t *testing.T) {
	// GIVEN day 1 completed, day 2 missed
	e := activeEnrollment(day("2026-02-01"))
	e, _ = Advance(e, day("2026-02-01"), 30, DefaultLives)

	// WHEN day 3 is completed
	e, out := Advance(e, day("2026-02-03"), 30, DefaultLives)

	// THEN the streak still grows and the miss costs a life
	if e.CurrentStreak != 2 {
		t.Errorf("expected streak 2 (cumulative), got %d", e.CurrentStreak)
	}
	if e.MissedDays != 1 {
		t.Errorf("expected 1 miss, got %d", e.MissedDays)
	}
	if out.LivesRemaining != DefaultLives-1 {
		t.Errorf("expected %d lives, got %d", DefaultLives-1, out.LivesRemaining)
	}
	if e.Status != StatusActive {
		t.Errorf("expected still active, got %s", e.Status)
	}
}

func TestAdvanceFailureBeatsCompletion(t *testing.T) {
	// GIVEN duration 3 and lives 2: days 1-2 completed, days 3-4 missed
	e := activeEnrollment(day("2026-02-01"))
	e, _ = Advance(e, day("2026-02-01"), 3, 2)
	e, _ = Advance(e, day("2026-02-02"), 3, 2)

	// WHEN day 5 is completed, which both reaches streak 3 and exhausts lives
	e, out := Advance(e, day("2026-02-05"), 3, 2)

	// THEN failure wins
	if !out.ChallengeFailed {
		t.Error("expected ChallengeFailed")
	}
	if out.ChallengeCompleted {
		t.Error("completion must not fire when lives hit zero on the same day")
	}
	if e.Status != StatusFailed {
		t.Errorf("expected failed, got %s", e.Status)
	}
	if e.CurrentStreak != 3 {
		t.Errorf("expected streak 3, got %d", e.CurrentStreak)
	}
}

func TestAdvanceTerminalIsFrozen(t *testing.T) {
	e := activeEnrollment(day("2026-02-01"))
	e.Status = StatusCompleted
	e.CurrentStreak = 5

	after, out := Advance(e, day("2026-02-10"), 30, DefaultLives)

	if out.DayCompleted {
		t.Error("terminal enrollment must not accept completions")
	}
	if after.CurrentStreak != 5 {
		t.Errorf("terminal state mutated: streak=%d", after.CurrentStreak)
	}
}

func TestRecomputeNoElapsedDays(t *testing.T) {
	// GIVEN a fresh enrollment read on its start day
	e := activeEnrollment(day("2026-02-01"))

	updated, changed := Recompute(e, day("2026-02-01"), DefaultLives)

	// THEN today does not count as elapsed
	if changed {
		t.Error("expected no change on start day")
	}
	if updated.MissedDays != 0 || updated.LivesRemaining != DefaultLives {
		t.Errorf("unexpected state: missed=%d lives=%d", updated.MissedDays, updated.LivesRemaining)
	}
}

func TestRecomputeAppliesPendingFailure(t *testing.T) {
	// GIVEN day 1 completed, then five days of silence
	e := activeEnrollment(day("2026-02-01"))
	e, _ = Advance(e, day("2026-02-01"), 30, DefaultLives)

	// WHEN progress is read on day 7 with no log events in between
	updated, changed := Recompute(e, day("2026-02-07"), DefaultLives)

	// THEN the five misses exhaust lives and the enrollment fails
	if !changed {
		t.Fatal("expected state change")
	}
	if updated.MissedDays != 5 {
		t.Errorf("expected 5 misses, got %d", updated.MissedDays)
	}
	if updated.LivesRemaining != 0 {
		t.Errorf("expected 0 lives, got %d", updated.LivesRemaining)
	}
	if updated.Status != StatusFailed {
		t.Errorf("expected failed, got %s", updated.Status)
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	// GIVEN an enrollment that just failed via recomputation
	e := activeEnrollment(day("2026-02-01"))
	e, _ = Advance(e, day("2026-02-01"), 30, DefaultLives)
	first, _ := Recompute(e, day("2026-02-07"), DefaultLives)

	// WHEN recomputation runs again with no intervening activity
	second, changed := Recompute(first, day("2026-02-07"), DefaultLives)

	// THEN it is a fixed point
	if changed {
		t.Error("second recompute must be a no-op")
	}
	if second != first {
		t.Errorf("state drifted: %+v vs %+v", second, first)
	}
}

func TestRecomputeExcludesTodayCompletion(t *testing.T) {
	// GIVEN today's day already counted as completed
	e := activeEnrollment(day("2026-02-01"))
	e, _ = Advance(e, day("2026-02-01"), 30, DefaultLives)
	e, _ = Advance(e, day("2026-02-02"), 30, DefaultLives)

	// WHEN recomputing on the same day as the last completion
	updated, changed := Recompute(e, day("2026-02-02"), DefaultLives)

	// THEN today's completion does not offset past days: one elapsed day
	// (Feb 1) matched by one past completion means no misses
	if changed {
		t.Errorf("expected no change, got %+v", updated)
	}
	if updated.MissedDays != 0 {
		t.Errorf("expected 0 misses, got %d", updated.MissedDays)
	}
}

func TestRecomputePartialMissesKeepActive(t *testing.T) {
	// GIVEN day 1 completed, read on day 4 (two elapsed misses)
	e := activeEnrollment(day("2026-02-01"))
	e, _ = Advance(e, day("2026-02-01"), 30, DefaultLives)

	updated, changed := Recompute(e, day("2026-02-04"), DefaultLives)

	if !changed {
		t.Fatal("expected state change")
	}
	if updated.MissedDays != 2 || updated.LivesRemaining != 3 {
		t.Errorf("expected missed=2 lives=3, got missed=%d lives=%d",
			updated.MissedDays, updated.LivesRemaining)
	}
	if updated.Status != StatusActive {
		t.Errorf("expected active, got %s", updated.Status)
	}
}
