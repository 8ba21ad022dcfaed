/*
Package calendar provides timezone-aware calendar-day arithmetic.

PURPOSE:
  Everything in this system that says "today", "yesterday", or "N days ago"
  means a day in the USER'S local calendar, not the server's clock. This
  package is the single place where instants are converted to calendar days
  and day boundaries are converted back to UTC instants.

KEY CONCEPTS:
  - Day: A calendar date with no time component. Two instants map to the
    same Day iff they fall on the same local date in the given zone.
  - StartOfDay/EndOfDay: The UTC instants bounding a local calendar day.
    Computed by constructing local midnight in the zone, NOT by truncating
    the UTC instant - truncation is wrong for any non-UTC zone.

CORRECTNESS NOTES:
  Works across DST transitions and non-whole-hour offsets (e.g. UTC+5:30,
  UTC+5:45) because time.Date resolves midnight in the zone itself.

  Example (Asia/Kolkata, +05:30):
    instant  2026-02-26T00:25:00+05:30  (= 2026-02-25T18:55:00Z)
    localDay 2026-02-26
    startOfDay 2026-02-25T18:30:00Z

VALIDATION BOUNDARY:
  IsValidTimezone is for validating stored user preferences at the API
  boundary. Every other function assumes a valid *time.Location; callers
  must validate before resolving.

SEE ALSO:
  - streak/: Consumes Days to compute streaks
  - challenge/: Consumes Days for progression arithmetic
*/
package calendar

import (
	"fmt"
	"sort"
	"time"
)

// =============================================================================
// DAY - Calendar date with no time component
// =============================================================================

// Day identifies one calendar day. The zero Day is "no day".
//
// Internally a Day is anchored at UTC midnight of its date label, which makes
// comparison and day arithmetic exact regardless of which zone produced it.
type Day struct {
	t time.Time
}

// NewDay constructs a Day from date components.
func NewDay(year int, month time.Month, day int) Day {
	return Day{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// LocalDay returns the calendar day containing t in the given zone.
func LocalDay(t time.Time, loc *time.Location) Day {
	y, m, d := t.In(loc).Date()
	return NewDay(y, m, d)
}

// Today returns the current calendar day in the given zone.
func Today(loc *time.Location) Day {
	return LocalDay(time.Now(), loc)
}

// Tomorrow returns the day after Today in the given zone.
func Tomorrow(loc *time.Location) Day {
	return Today(loc).Next()
}

// ParseDay parses a YYYY-MM-DD date label.
func ParseDay(s string) (Day, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return Day{t: t}, nil
}

// Comparison
func (d Day) Before(other Day) bool { return d.t.Before(other.t) }
func (d Day) After(other Day) bool  { return d.t.After(other.t) }
func (d Day) Equal(other Day) bool  { return d.t.Equal(other.t) }
func (d Day) IsZero() bool          { return d.t.IsZero() }

// Arithmetic
func (d Day) Next() Day        { return d.AddDays(1) }
func (d Day) Prev() Day        { return d.AddDays(-1) }
func (d Day) AddDays(n int) Day { return Day{t: d.t.AddDate(0, 0, n)} }

// DaysSince returns the number of whole calendar days from other to d.
// Negative when d is earlier than other.
func (d Day) DaysSince(other Day) int {
	return int(d.t.Sub(other.t).Hours() / 24)
}

// Properties
func (d Day) Year() int             { return d.t.Year() }
func (d Day) Month() time.Month     { return d.t.Month() }
func (d Day) DayOfMonth() int       { return d.t.Day() }
func (d Day) Weekday() time.Weekday { return d.t.Weekday() }

// ISOWeek returns the ISO 8601 year and week number of the day.
func (d Day) ISOWeek() (int, int) { return d.t.ISOWeek() }

func (d Day) String() string { return d.t.Format("2006-01-02") }

// StartIn returns the UTC instant of this day's local midnight in loc.
func (d Day) StartIn(loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.DayOfMonth(), 0, 0, 0, 0, loc).UTC()
}

// EndIn returns the UTC instant of the last millisecond of this day in loc.
func (d Day) EndIn(loc *time.Location) time.Time {
	return d.Next().StartIn(loc).Add(-time.Millisecond)
}

// =============================================================================
// DAY BOUNDARIES - Local midnight expressed as UTC instants
// =============================================================================

// StartOfDay returns the UTC instant of local midnight for the calendar day
// containing t in the given zone.
func StartOfDay(loc *time.Location, t time.Time) time.Time {
	return LocalDay(t, loc).StartIn(loc)
}

// EndOfDay returns the UTC instant of the last millisecond of the calendar
// day containing t in the given zone.
func EndOfDay(loc *time.Location, t time.Time) time.Time {
	return LocalDay(t, loc).EndIn(loc)
}

// =============================================================================
// TIMEZONE VALIDATION
// =============================================================================

// IsValidTimezone reports whether name is a resolvable IANA zone identifier.
// The empty string is rejected: callers must apply the configured default
// explicitly rather than inheriting time.LoadLocation's UTC fallback.
func IsValidTimezone(name string) bool {
	if name == "" {
		return false
	}
	_, err := time.LoadLocation(name)
	return err == nil
}

// LoadLocation resolves a validated zone name. Unlike time.LoadLocation it
// treats the empty string as an error.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return nil, fmt.Errorf("empty timezone name")
	}
	return time.LoadLocation(name)
}

// DedupeDays collapses a set of instants to their distinct calendar days in
// the given zone, sorted ascending.
func DedupeDays(instants []time.Time, loc *time.Location) []Day {
	seen := make(map[Day]bool, len(instants))
	var days []Day
	for _, t := range instants {
		d := LocalDay(t, loc)
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}
