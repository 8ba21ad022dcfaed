/*
errors.go - Centralized error types for the challenge engine

PURPOSE:
  All challenge errors in one place. Everything the store or service can
  fail with unwraps to one of the sentinels below, so callers classify with
  errors.Is and the helpers at the bottom instead of matching strings.

ERROR CATEGORIES:
  1. NotFound - Referenced resource missing or owned by someone else
  2. Conflict - Uniqueness violations (day logs, titles, active enrollment)
  3. InvalidState - Precondition on enrollment lifecycle failed
  4. Concurrency - Optimistic version check failed

SEE ALSO:
  - service.go: Produces these errors
  - api/handlers.go: Maps them to HTTP status codes
*/
package challenge

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/stridehq/habit-engine/calendar"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrChallengeNotFound is returned when a referenced challenge doesn't exist.
	ErrChallengeNotFound = errors.New("challenge not found")

	// ErrEnrollmentNotFound is returned when a referenced enrollment doesn't
	// exist or does not belong to the requesting user.
	ErrEnrollmentNotFound = errors.New("enrollment not found")

	// ErrHabitNotFound is returned when a referenced habit doesn't exist or
	// does not belong to the requesting user.
	ErrHabitNotFound = errors.New("habit not found")

	// ErrLogNotFound is returned when unlogging a (habit, day) pair that has
	// no ledger entry.
	ErrLogNotFound = errors.New("completion log not found")

	// ErrAlreadyLogged is returned when logging a (habit, day) pair that
	// already has a ledger entry. Expected under concurrent double-taps.
	ErrAlreadyLogged = errors.New("habit already logged for this day")

	// ErrAlreadyEnrolled is returned when joining a challenge the user has an
	// active enrollment in.
	ErrAlreadyEnrolled = errors.New("already enrolled in challenge")

	// ErrDuplicateTitle is returned on a case-insensitive title collision,
	// for challenges globally and for habits within an enrollment.
	ErrDuplicateTitle = errors.New("title already in use")

	// ErrEnrollmentNotActive is returned when logging or adding habits
	// against a completed or failed enrollment.
	ErrEnrollmentNotActive = errors.New("enrollment is not active")

	// ErrHabitsLocked is returned when adding a habit after progress has been
	// counted. A later habit would invalidate already-credited days.
	ErrHabitsLocked = errors.New("cannot add habits after days have been completed")

	// ErrConcurrentModification is returned when an optimistic write loses
	// the race against another update of the same enrollment.
	ErrConcurrentModification = errors.New("enrollment modified concurrently")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// AlreadyEnrolledError carries the existing enrollment so clients can render
// current progress without a second query.
type AlreadyEnrolledError struct {
	Existing Enrollment
}

func (e *AlreadyEnrolledError) Error() string {
	return fmt.Sprintf("already enrolled in challenge %s (enrollment %s, status %s)",
		e.Existing.ChallengeID, e.Existing.ID, e.Existing.Status)
}

func (e *AlreadyEnrolledError) Unwrap() error { return ErrAlreadyEnrolled }

// DuplicateLogError identifies the habit and day of a ledger collision.
type DuplicateLogError struct {
	HabitID uuid.UUID
	Day     calendar.Day
}

func (e *DuplicateLogError) Error() string {
	return fmt.Sprintf("habit %s already logged for %s", e.HabitID, e.Day)
}

func (e *DuplicateLogError) Unwrap() error { return ErrAlreadyLogged }

// NotActiveError identifies the enrollment and its terminal state.
type NotActiveError struct {
	EnrollmentID uuid.UUID
	Status       Status
}

func (e *NotActiveError) Error() string {
	return fmt.Sprintf("enrollment %s is %s", e.EnrollmentID, e.Status)
}

func (e *NotActiveError) Unwrap() error { return ErrEnrollmentNotActive }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrChallengeNotFound) ||
		errors.Is(err, ErrEnrollmentNotFound) ||
		errors.Is(err, ErrHabitNotFound) ||
		errors.Is(err, ErrLogNotFound)
}

// IsConflict returns true if the error is a uniqueness violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyLogged) ||
		errors.Is(err, ErrAlreadyEnrolled) ||
		errors.Is(err, ErrDuplicateTitle) ||
		errors.Is(err, ErrConcurrentModification)
}

// IsInvalidState returns true if the error is a rejected lifecycle
// precondition rather than a server fault.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrEnrollmentNotActive) ||
		errors.Is(err, ErrHabitsLocked)
}
