/*
Package streak computes streaks and completion analytics from completion days.

PURPOSE:
  Pure calendar math over sets of completion days. No storage, no clocks:
  callers resolve "today" in the user's zone and pass it in, which keeps
  every function here deterministic and trivially testable.

KEY CONCEPTS:
  - Current streak: The length of the unbroken run of consecutive days
    ending at today or yesterday. A streak is NOT broken by today being
    unlogged while the day is still in progress; it dies only once a full
    day has passed without a completion.
  - Longest streak: The longest run of consecutive days anywhere in history,
    including the current one.

SEE ALSO:
  - calendar/: Day type and instant-to-day resolution
  - challenge/: Challenge progression uses its own cumulative counting,
    not this package's adjacency rule
*/
package streak

import (
	"time"

	"github.com/stridehq/habit-engine/calendar"
)

// Result holds the streak figures for one habit.
type Result struct {
	Current       int
	Longest       int
	LastCompleted calendar.Day // zero when there are no completions
	TotalDays     int          // distinct completion days
}

// Calculate computes streaks from raw completion instants. Instants are
// collapsed to distinct calendar days in loc before counting, so multiple
// logs on one day count once.
func Calculate(instants []time.Time, loc *time.Location, today calendar.Day) Result {
	return FromDays(calendar.DedupeDays(instants, loc), today)
}

// FromDays computes streaks from distinct, ascending completion days.
func FromDays(days []calendar.Day, today calendar.Day) Result {
	if len(days) == 0 {
		return Result{}
	}

	r := Result{
		LastCompleted: days[len(days)-1],
		TotalDays:     len(days),
	}

	// Longest: scan runs of adjacent days.
	run := 1
	r.Longest = 1
	for i := 1; i < len(days); i++ {
		if days[i].DaysSince(days[i-1]) == 1 {
			run++
		} else {
			run = 1
		}
		if run > r.Longest {
			r.Longest = run
		}
	}

	// Current: the trailing run counts only if it reaches today or
	// yesterday. Today itself being unlogged does not break the streak
	// while the day is still in progress.
	gap := today.DaysSince(r.LastCompleted)
	if gap > 1 || gap < 0 {
		return r
	}
	r.Current = 1
	for i := len(days) - 2; i >= 0; i-- {
		if days[i+1].DaysSince(days[i]) != 1 {
			break
		}
		r.Current++
	}
	return r
}
