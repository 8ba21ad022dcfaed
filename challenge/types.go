/*
Package challenge implements time-boxed habit challenges and the progression
engine that decides whether an enrollment is winning, losing, or finished.

PURPOSE:
  A challenge requires completing every linked habit every day for the
  challenge's duration. Users get a fixed allowance of lives; each fully
  missed day costs one. Lives at zero means the enrollment fails, a streak
  reaching the duration means it completes.

KEY CONCEPTS:
  - Enrollment: One user's run at one challenge. At most one active
    enrollment per (user, challenge); re-enrolling after a terminal state
    creates a fresh one.
  - Progression: Pure state transitions in progression.go. Advance consumes
    a "day fully completed" signal; Recompute catches up on days that
    elapsed with no activity. Nothing here runs on a clock - staleness is
    resolved lazily on the next read or write.
  - Ledger: One log per habit per calendar day, enforced by the store. The
    per-day uniqueness constraint is the only serialization point for
    concurrent logging.

SEE ALSO:
  - progression.go: The state machine
  - aggregator.go: "Was the whole day completed" decision
  - service.go: Orchestration over the Store interface
  - store/sqlite/: Persistent implementation of Store
*/
package challenge

import (
	"time"

	"github.com/google/uuid"

	"github.com/stridehq/habit-engine/calendar"
)

// =============================================================================
// STATUS - Enrollment lifecycle
// =============================================================================

// Status is an enrollment's lifecycle state. Transitions are one-directional:
// active is initial, completed and failed are terminal.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// DefaultLives is the missed-day allowance granted on enrollment.
const DefaultLives = 5

// =============================================================================
// ENTITIES
// =============================================================================

// Challenge is a joinable challenge definition. Titles are unique
// case-insensitively across all challenges.
type Challenge struct {
	ID           uuid.UUID
	Title        string
	Description  string
	DurationDays int
	CreatedAt    time.Time
}

// Enrollment is one user's participation in one challenge. All progress
// fields are derived state owned by the progression functions; nothing else
// mutates them.
type Enrollment struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	ChallengeID uuid.UUID
	Status      Status

	// StartDate is the calendar day, in the user's zone at join time, the
	// enrollment began. Day arithmetic is anchored here.
	StartDate calendar.Day

	// CompletedDays counts distinct fully completed days.
	CompletedDays int

	// CurrentStreak counts days credited toward the win condition. It is
	// cumulative, not calendar-adjacent: missed days cost lives, never the
	// streak. Compare streak.Result, which uses the adjacency rule.
	CurrentStreak int

	// LastCompletedDate is the most recent day counted as fully completed.
	// Zero until the first full day.
	LastCompletedDate calendar.Day

	LivesRemaining int
	MissedDays     int

	// CompletedOn is stamped once, when status leaves active.
	CompletedOn time.Time

	// Version guards read-modify-write cycles. Store updates are conditional
	// on the version the snapshot was read at.
	Version   int64
	CreatedAt time.Time
}

// Habit is a challenge-linked habit. It belongs to exactly one enrollment
// and its title is unique (case-insensitive) within that enrollment.
type Habit struct {
	ID           uuid.UUID
	EnrollmentID uuid.UUID
	Title        string
	CreatedAt    time.Time
}

// HabitLog is one completion ledger entry. At most one exists per
// (habit, day). Day is stored as the UTC instant of the user-local midnight
// plus the date label itself.
type HabitLog struct {
	ID       uuid.UUID
	HabitID  uuid.UUID
	Day      calendar.Day
	DayStart time.Time // UTC instant of local midnight
	LoggedAt time.Time
}

// NewEnrollment constructs a fresh active enrollment starting on startDate.
func NewEnrollment(userID, challengeID uuid.UUID, startDate calendar.Day, now time.Time) Enrollment {
	return Enrollment{
		ID:             uuid.New(),
		UserID:         userID,
		ChallengeID:    challengeID,
		Status:         StatusActive,
		StartDate:      startDate,
		LivesRemaining: DefaultLives,
		CreatedAt:      now,
	}
}
