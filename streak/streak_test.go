package streak

import (
	"testing"
	"time"

	"github.com/stridehq/habit-engine/calendar"
)

func day(s string) calendar.Day {
	d, err := calendar.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func days(labels ...string) []calendar.Day {
	out := make([]calendar.Day, len(labels))
	for i, s := range labels {
		out[i] = day(s)
	}
	return out
}

func TestEmptyHistory(t *testing.T) {
	r := FromDays(nil, day("2026-02-26"))
	if r.Current != 0 || r.Longest != 0 || r.TotalDays != 0 {
		t.Errorf("expected zero result, got %+v", r)
	}
	if !r.LastCompleted.IsZero() {
		t.Errorf("expected zero LastCompleted, got %s", r.LastCompleted)
	}
}

func TestStreakEndingToday(t *testing.T) {
	// GIVEN completions on three consecutive days ending today
	r := FromDays(days("2026-02-24", "2026-02-25", "2026-02-26"), day("2026-02-26"))

	// THEN the current streak is 3
	if r.Current != 3 {
		t.Errorf("expected current 3, got %d", r.Current)
	}
	if r.Longest != 3 {
		t.Errorf("expected longest 3, got %d", r.Longest)
	}
}

func TestYesterdayKeepsStreakAlive(t *testing.T) {
	// GIVEN the last completion was yesterday and today is still in progress
	r := FromDays(days("2026-02-24", "2026-02-25"), day("2026-02-26"))

	// THEN the streak survives
	if r.Current != 2 {
		t.Errorf("expected current 2, got %d", r.Current)
	}
}

func TestTwoDayGapBreaksStreak(t *testing.T) {
	// GIVEN the last completion was two days ago
	r := FromDays(days("2026-02-22", "2026-02-23", "2026-02-24"), day("2026-02-26"))

	// THEN the current streak is dead but longest remembers the run
	if r.Current != 0 {
		t.Errorf("expected current 0, got %d", r.Current)
	}
	if r.Longest != 3 {
		t.Errorf("expected longest 3, got %d", r.Longest)
	}
}

func TestLongestSurvivesLaterShorterRun(t *testing.T) {
	// GIVEN a 4-day run, a gap, then a 2-day run ending today
	r := FromDays(
		days("2026-02-10", "2026-02-11", "2026-02-12", "2026-02-13",
			"2026-02-25", "2026-02-26"),
		day("2026-02-26"))

	if r.Current != 2 {
		t.Errorf("expected current 2, got %d", r.Current)
	}
	if r.Longest != 4 {
		t.Errorf("expected longest 4, got %d", r.Longest)
	}
	if r.TotalDays != 6 {
		t.Errorf("expected 6 total days, got %d", r.TotalDays)
	}
}

func TestSingleCompletionToday(t *testing.T) {
	r := FromDays(days("2026-02-26"), day("2026-02-26"))
	if r.Current != 1 || r.Longest != 1 {
		t.Errorf("expected 1/1, got %d/%d", r.Current, r.Longest)
	}
}

func TestMonthBoundaryAdjacency(t *testing.T) {
	// GIVEN a run spanning a month boundary
	r := FromDays(days("2026-01-30", "2026-01-31", "2026-02-01"), day("2026-02-01"))

	// THEN Jan 31 -> Feb 1 counts as adjacent
	if r.Current != 3 {
		t.Errorf("expected current 3 across month boundary, got %d", r.Current)
	}
}

func TestCalculateDedupesInstants(t *testing.T) {
	// GIVEN two instants on the same local day in a +05:30 zone
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatal(err)
	}
	instants := []time.Time{
		time.Date(2026, 2, 25, 19, 0, 0, 0, time.UTC),  // Feb 26 local
		time.Date(2026, 2, 25, 23, 30, 0, 0, time.UTC), // Feb 26 local (dup)
		time.Date(2026, 2, 25, 10, 0, 0, 0, time.UTC),  // Feb 25 local
	}

	// WHEN calculating with today = Feb 26 local
	r := Calculate(instants, kolkata, day("2026-02-26"))

	// THEN duplicates collapse to one day
	if r.TotalDays != 2 {
		t.Errorf("expected 2 distinct days, got %d", r.TotalDays)
	}
	if r.Current != 2 {
		t.Errorf("expected current 2, got %d", r.Current)
	}
}

func TestFutureCompletionDoesNotCount(t *testing.T) {
	// A completion day after today (clock skew, zone confusion) must not
	// produce a current streak.
	r := FromDays(days("2026-02-27"), day("2026-02-26"))
	if r.Current != 0 {
		t.Errorf("expected current 0 for future-only day, got %d", r.Current)
	}
}
