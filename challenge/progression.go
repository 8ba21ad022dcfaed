/*
progression.go - Enrollment state machine

PURPOSE:
  Pure transition functions over enrollment snapshots. Both take an
  enrollment by value and return a new value; persistence and timestamps are
  the caller's job. Keeping these free of I/O makes the tricky arithmetic
  below exhaustively testable.

TWO ENTRY POINTS:
  - Advance: A habit log just made a previously-incomplete day fully
    completed. Credits the day, re-derives misses and lives, and decides
    termination.
  - Recompute: Progress is being read, or an action is being authorized.
    Catches up on days that elapsed with no logging activity at all, so an
    enrollment left untouched for a week fails the moment anyone looks at
    it, not a moment before.

ARITHMETIC NOTES:
  Days elapsed never include today: a day is only judged once it is over.
  missedDays = elapsed days not accounted for by completions. In Advance the
  day being credited is itself one of the elapsed days, hence the +1 on the
  completion side. Lives derive from misses, never tracked independently:
  livesRemaining = max(0, allowance - missedDays).

  When a single day both exhausts lives and reaches the duration target,
  failure wins. Do not reorder the checks.

SEE ALSO:
  - aggregator.go: Produces the "day fully completed" signal Advance consumes
  - service.go: Calls Recompute before returning or acting on any enrollment
*/
package challenge

import (
	"github.com/stridehq/habit-engine/calendar"
)

// Outcome reports what a completion event did, shaped for the logging
// response clients act on.
type Outcome struct {
	DayCompleted       bool
	ChallengeCompleted bool
	ChallengeFailed    bool
	LivesRemaining     int
}

// Advance credits day as fully completed and returns the updated snapshot.
//
// No-op cases: the enrollment is no longer active, or day equals
// LastCompletedDate (the day was already counted; this guards against
// double-processing from concurrent or repeated triggers).
func Advance(e Enrollment, day calendar.Day, durationDays, lives int) (Enrollment, Outcome) {
	if e.Status != StatusActive {
		return e, Outcome{LivesRemaining: e.LivesRemaining}
	}
	if !e.LastCompletedDate.IsZero() && day.Equal(e.LastCompletedDate) {
		return e, Outcome{LivesRemaining: e.LivesRemaining}
	}

	daysElapsed := day.DaysSince(e.StartDate)
	if daysElapsed < 0 {
		daysElapsed = 0
	}

	e.CompletedDays++
	e.MissedDays = maxInt(0, daysElapsed-e.CompletedDays+1)
	e.LivesRemaining = maxInt(0, lives-e.MissedDays)

	// Streak is cumulative: every newly counted day extends it. Misses cost
	// lives, not the streak.
	e.CurrentStreak++
	e.LastCompletedDate = day

	out := Outcome{DayCompleted: true, LivesRemaining: e.LivesRemaining}
	switch {
	case e.LivesRemaining <= 0:
		e.Status = StatusFailed
		out.ChallengeFailed = true
	case e.CurrentStreak >= durationDays:
		e.Status = StatusCompleted
		out.ChallengeCompleted = true
	}
	return e, out
}

// Recompute re-derives missed days and lives from elapsed time alone,
// applying a pending failure if lives ran out. It returns the (possibly
// updated) snapshot and whether anything changed.
//
// Safe to invoke any number of times: with no intervening activity it
// reaches a fixed point on the first call and is a no-op after.
func Recompute(e Enrollment, today calendar.Day, lives int) (Enrollment, bool) {
	if e.Status != StatusActive {
		return e, false
	}

	daysElapsed := today.DaysSince(e.StartDate)
	if daysElapsed < 0 {
		daysElapsed = 0
	}

	// Today has not elapsed yet. If today was already counted as completed
	// it must not offset a past miss.
	completedForPast := e.CompletedDays
	if !e.LastCompletedDate.IsZero() && e.LastCompletedDate.Equal(today) {
		completedForPast--
	}

	missed := maxInt(0, daysElapsed-completedForPast)
	remaining := maxInt(0, lives-missed)

	changed := missed != e.MissedDays || remaining != e.LivesRemaining
	if !changed && remaining > 0 {
		return e, false
	}

	e.MissedDays = missed
	e.LivesRemaining = remaining
	if remaining <= 0 {
		e.Status = StatusFailed
		return e, true
	}
	return e, changed
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
