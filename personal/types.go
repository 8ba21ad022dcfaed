/*
Package personal implements standalone habits with streak analytics.

PURPOSE:
  Personal habits are tracked independently of any challenge: no lives, no
  failure, no enrollment. The payoff is analytics - the adjacency-based
  streak from streak/ plus completion rates and weekly/monthly breakdowns.

  The ledger shape matches the challenge side (one log per habit per
  calendar day, day stored as the UTC instant of local midnight) but the
  two domains share no storage and no state machine.

SEE ALSO:
  - streak/: All the math behind Analytics
  - challenge/: The enrolled counterpart with lives and termination
*/
package personal

import (
	"time"

	"github.com/google/uuid"

	"github.com/stridehq/habit-engine/calendar"
)

// Habit is a user's standalone habit. Titles are unique case-insensitively
// per user. Archived habits keep their history but reject new logs.
type Habit struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Title     string
	Archived  bool
	CreatedAt time.Time
}

// Log is one completion ledger entry, at most one per (habit, day).
type Log struct {
	ID       uuid.UUID
	HabitID  uuid.UUID
	Day      calendar.Day
	DayStart time.Time // UTC instant of local midnight
	LoggedAt time.Time
}
