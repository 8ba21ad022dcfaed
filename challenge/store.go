/*
store.go - Persistence contract for the challenge engine

PURPOSE:
  The service talks to storage through this interface only. Two
  implementations exist: store/sqlite (production) and store/memory (tests).

UNIQUENESS GUARANTEES THE STORE MUST ENFORCE:
  - One active enrollment per (user, challenge)
  - One log per (habit, day)
  - Case-insensitive challenge title uniqueness
  - Case-insensitive habit title uniqueness within an enrollment

  Violations surface as the matching sentinel from errors.go. These
  constraints live in the store, not the service, because they are the
  serialization points for concurrent requests.

CONCURRENCY:
  UpdateEnrollment is conditional on the version the caller read. A lost
  race returns ErrConcurrentModification; the service surfaces it as a
  conflict rather than retrying with a stale base.
*/
package challenge

import (
	"context"

	"github.com/google/uuid"

	"github.com/stridehq/habit-engine/calendar"
)

// Store is the persistence boundary for challenges, enrollments, habits,
// and the completion ledger.
type Store interface {
	// Challenges
	CreateChallenge(ctx context.Context, c Challenge) error
	GetChallenge(ctx context.Context, id uuid.UUID) (Challenge, error)
	ListChallenges(ctx context.Context) ([]Challenge, error)

	// Enrollments. CreateEnrollment fails with ErrAlreadyEnrolled when an
	// active enrollment exists for the same (user, challenge). Terminal
	// enrollments do not block re-enrollment.
	CreateEnrollment(ctx context.Context, e Enrollment) error
	GetEnrollment(ctx context.Context, id uuid.UUID) (Enrollment, error)
	FindActiveEnrollment(ctx context.Context, userID, challengeID uuid.UUID) (Enrollment, error)
	ListEnrollments(ctx context.Context, userID uuid.UUID) ([]Enrollment, error)

	// UpdateEnrollment writes e only if the stored version still equals
	// expectedVersion, then bumps the version. Returns
	// ErrConcurrentModification on a version mismatch.
	UpdateEnrollment(ctx context.Context, e Enrollment, expectedVersion int64) error

	// DeleteEnrollment removes the enrollment and cascades to its habits
	// and their logs.
	DeleteEnrollment(ctx context.Context, id uuid.UUID) error

	// Habits
	CreateHabit(ctx context.Context, h Habit) error
	GetHabit(ctx context.Context, id uuid.UUID) (Habit, error)
	ListHabits(ctx context.Context, enrollmentID uuid.UUID) ([]Habit, error)

	// Completion ledger. AppendLog fails with ErrAlreadyLogged (wrapped in
	// DuplicateLogError) when an entry exists for the same (habit, day).
	AppendLog(ctx context.Context, l HabitLog) error
	DeleteLog(ctx context.Context, habitID uuid.UUID, day calendar.Day) error
	ListLogDays(ctx context.Context, habitID uuid.UUID) ([]calendar.Day, error)

	// ListLogDaysForEnrollment fetches all habits' log days in one call,
	// keyed by habit. Feeds the aggregator without N queries.
	ListLogDaysForEnrollment(ctx context.Context, enrollmentID uuid.UUID) (map[uuid.UUID][]calendar.Day, error)
}
