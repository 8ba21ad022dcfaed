/*
service.go - Challenge operations over the Store

PURPOSE:
  Orchestrates the pure pieces (calendar, aggregator, progression) against
  persistence. Every path that reads or acts on an enrollment resolves
  staleness first: Recompute runs before state is returned to a caller or
  used to authorize an action, so an enrollment abandoned mid-challenge
  fails on the next touch, whatever that touch is.

INPUT ASSUMPTIONS:
  Timezones arrive as resolved *time.Location values and titles as
  validated strings. The API layer owns validation; nothing here re-checks
  primitive input.

CONCURRENCY:
  No internal retries. A lost optimistic write surfaces as
  ErrConcurrentModification and the caller decides whether to retry.
*/
package challenge

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stridehq/habit-engine/calendar"
)

// Service exposes the challenge operations. Construct with NewService.
type Service struct {
	store Store
	lives int
	now   func() time.Time
}

// NewService creates a Service with the default lives allowance.
func NewService(store Store) *Service {
	return &Service{store: store, lives: DefaultLives, now: time.Now}
}

// WithClock overrides the time source. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithLives overrides the missed-day allowance.
func (s *Service) WithLives(lives int) *Service {
	s.lives = lives
	return s
}

// LogResult is the outcome of a completion event, shaped for the client.
type LogResult struct {
	Logged             bool
	DayCompleted       bool
	ChallengeCompleted bool
	ChallengeFailed    bool
	LivesRemaining     int
}

// HabitStatus pairs a habit with its completion state for the day in view.
type HabitStatus struct {
	Habit          Habit
	CompletedToday bool
}

// ProgressView is the fully resolved state of one enrollment.
type ProgressView struct {
	Enrollment Enrollment
	Challenge  Challenge
	Habits     []HabitStatus
	Today      calendar.Day
}

// =============================================================================
// CHALLENGE CRUD
// =============================================================================

// CreateChallenge registers a new joinable challenge.
func (s *Service) CreateChallenge(ctx context.Context, title, description string, durationDays int) (Challenge, error) {
	c := Challenge{
		ID:           uuid.New(),
		Title:        title,
		Description:  description,
		DurationDays: durationDays,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateChallenge(ctx, c); err != nil {
		return Challenge{}, fmt.Errorf("create challenge: %w", err)
	}
	return c, nil
}

// GetChallenge fetches one challenge.
func (s *Service) GetChallenge(ctx context.Context, id uuid.UUID) (Challenge, error) {
	return s.store.GetChallenge(ctx, id)
}

// ListChallenges lists all challenges.
func (s *Service) ListChallenges(ctx context.Context) ([]Challenge, error) {
	return s.store.ListChallenges(ctx)
}

// =============================================================================
// ENROLLMENT LIFECYCLE
// =============================================================================

// Join enrolls the user in a challenge. A zero startDate means today in the
// user's zone. Joining with an active enrollment already in place returns
// AlreadyEnrolledError carrying the existing enrollment's resolved state;
// re-joining after a terminal enrollment creates a fresh one.
func (s *Service) Join(ctx context.Context, userID, challengeID uuid.UUID, startDate calendar.Day, loc *time.Location) (Enrollment, error) {
	if _, err := s.store.GetChallenge(ctx, challengeID); err != nil {
		return Enrollment{}, err
	}

	today := calendar.LocalDay(s.now(), loc)

	existing, err := s.store.FindActiveEnrollment(ctx, userID, challengeID)
	if err == nil {
		existing, err = s.resolve(ctx, existing, today)
		if err != nil {
			return Enrollment{}, err
		}
		// Recompute may have just failed it, in which case the slot is free.
		if existing.Status == StatusActive {
			return Enrollment{}, &AlreadyEnrolledError{Existing: existing}
		}
	} else if !IsNotFound(err) {
		return Enrollment{}, fmt.Errorf("find active enrollment: %w", err)
	}

	if startDate.IsZero() {
		startDate = today
	}
	e := NewEnrollment(userID, challengeID, startDate, s.now().UTC())
	if err := s.store.CreateEnrollment(ctx, e); err != nil {
		return Enrollment{}, fmt.Errorf("create enrollment: %w", err)
	}
	return e, nil
}

// Leave removes the user's active enrollment in a challenge, cascading to
// its habits and their logs. There is no undo.
func (s *Service) Leave(ctx context.Context, userID, challengeID uuid.UUID) error {
	e, err := s.store.FindActiveEnrollment(ctx, userID, challengeID)
	if err != nil {
		return err
	}
	return s.store.DeleteEnrollment(ctx, e.ID)
}

// Enrollments lists the user's enrollments, each resolved to current state.
func (s *Service) Enrollments(ctx context.Context, userID uuid.UUID, loc *time.Location) ([]Enrollment, error) {
	list, err := s.store.ListEnrollments(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := calendar.LocalDay(s.now(), loc)
	for i, e := range list {
		resolved, err := s.resolve(ctx, e, today)
		if err != nil {
			return nil, err
		}
		list[i] = resolved
	}
	return list, nil
}

// =============================================================================
// HABITS
// =============================================================================

// AddHabit links a habit to an active enrollment. Habits are locked once
// any day has been credited: a habit added later would retroactively
// invalidate already-counted days.
func (s *Service) AddHabit(ctx context.Context, userID, enrollmentID uuid.UUID, title string, loc *time.Location) (Habit, error) {
	e, err := s.ownedEnrollment(ctx, userID, enrollmentID)
	if err != nil {
		return Habit{}, err
	}
	e, err = s.resolve(ctx, e, calendar.LocalDay(s.now(), loc))
	if err != nil {
		return Habit{}, err
	}
	if e.Status != StatusActive {
		return Habit{}, &NotActiveError{EnrollmentID: e.ID, Status: e.Status}
	}
	if e.CompletedDays > 0 {
		return Habit{}, fmt.Errorf("enrollment %s: %w", e.ID, ErrHabitsLocked)
	}

	h := Habit{
		ID:           uuid.New(),
		EnrollmentID: enrollmentID,
		Title:        title,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateHabit(ctx, h); err != nil {
		return Habit{}, fmt.Errorf("create habit: %w", err)
	}
	return h, nil
}

// =============================================================================
// COMPLETION LOGGING
// =============================================================================

// LogHabit records a completion for the habit on day (zero day means today
// in the user's zone) and advances the enrollment if this filled the last
// gap for that day.
func (s *Service) LogHabit(ctx context.Context, userID, habitID uuid.UUID, day calendar.Day, loc *time.Location) (LogResult, error) {
	h, e, err := s.ownedHabit(ctx, userID, habitID)
	if err != nil {
		return LogResult{}, err
	}

	today := calendar.LocalDay(s.now(), loc)
	if day.IsZero() {
		day = today
	}

	e, err = s.resolve(ctx, e, today)
	if err != nil {
		return LogResult{}, err
	}
	if e.Status != StatusActive {
		return LogResult{}, &NotActiveError{EnrollmentID: e.ID, Status: e.Status}
	}

	log := HabitLog{
		ID:       uuid.New(),
		HabitID:  h.ID,
		Day:      day,
		DayStart: day.StartIn(loc),
		LoggedAt: s.now().UTC(),
	}
	if err := s.store.AppendLog(ctx, log); err != nil {
		return LogResult{}, err
	}

	habits, err := s.store.ListHabits(ctx, e.ID)
	if err != nil {
		return LogResult{}, fmt.Errorf("list habits: %w", err)
	}
	logged, err := s.store.ListLogDaysForEnrollment(ctx, e.ID)
	if err != nil {
		return LogResult{}, fmt.Errorf("list log days: %w", err)
	}

	result := LogResult{Logged: true, LivesRemaining: e.LivesRemaining}
	if !DayCompleted(habits, logged, day) {
		return result, nil
	}

	c, err := s.store.GetChallenge(ctx, e.ChallengeID)
	if err != nil {
		return LogResult{}, err
	}
	advanced, out := Advance(e, day, c.DurationDays, s.lives)
	if _, err := s.save(ctx, advanced, e.Version); err != nil {
		return LogResult{}, err
	}

	result.DayCompleted = out.DayCompleted
	result.ChallengeCompleted = out.ChallengeCompleted
	result.ChallengeFailed = out.ChallengeFailed
	result.LivesRemaining = out.LivesRemaining
	return result, nil
}

// UnlogHabit removes a completion entry. Progress already credited for the
// day is not rewound; the ledger entry simply disappears.
func (s *Service) UnlogHabit(ctx context.Context, userID, habitID uuid.UUID, day calendar.Day) error {
	h, _, err := s.ownedHabit(ctx, userID, habitID)
	if err != nil {
		return err
	}
	return s.store.DeleteLog(ctx, h.ID, day)
}

// =============================================================================
// PROGRESS
// =============================================================================

// Progress returns the enrollment's fully resolved state together with each
// habit's completion status for today. Lazy recomputation runs first, so
// the returned status reflects every elapsed day.
func (s *Service) Progress(ctx context.Context, userID, enrollmentID uuid.UUID, loc *time.Location) (ProgressView, error) {
	e, err := s.ownedEnrollment(ctx, userID, enrollmentID)
	if err != nil {
		return ProgressView{}, err
	}

	today := calendar.LocalDay(s.now(), loc)
	e, err = s.resolve(ctx, e, today)
	if err != nil {
		return ProgressView{}, err
	}

	c, err := s.store.GetChallenge(ctx, e.ChallengeID)
	if err != nil {
		return ProgressView{}, err
	}
	habits, err := s.store.ListHabits(ctx, e.ID)
	if err != nil {
		return ProgressView{}, fmt.Errorf("list habits: %w", err)
	}
	logged, err := s.store.ListLogDaysForEnrollment(ctx, e.ID)
	if err != nil {
		return ProgressView{}, fmt.Errorf("list log days: %w", err)
	}

	doneToday := CompletedToday(habits, logged, today)
	statuses := make([]HabitStatus, 0, len(habits))
	for _, h := range habits {
		statuses = append(statuses, HabitStatus{Habit: h, CompletedToday: doneToday[h.ID]})
	}

	return ProgressView{Enrollment: e, Challenge: c, Habits: statuses, Today: today}, nil
}

// =============================================================================
// INTERNAL
// =============================================================================

// resolve runs lazy recomputation and persists the result if it changed.
func (s *Service) resolve(ctx context.Context, e Enrollment, today calendar.Day) (Enrollment, error) {
	updated, changed := Recompute(e, today, s.lives)
	if !changed {
		return e, nil
	}
	return s.save(ctx, updated, e.Version)
}

// save persists an enrollment snapshot conditionally on expectedVersion,
// stamping CompletedOn if the snapshot just went terminal.
func (s *Service) save(ctx context.Context, e Enrollment, expectedVersion int64) (Enrollment, error) {
	if e.Status.Terminal() && e.CompletedOn.IsZero() {
		e.CompletedOn = s.now().UTC()
	}
	if err := s.store.UpdateEnrollment(ctx, e, expectedVersion); err != nil {
		return Enrollment{}, fmt.Errorf("update enrollment %s: %w", e.ID, err)
	}
	e.Version = expectedVersion + 1
	return e, nil
}

// ownedEnrollment fetches an enrollment and verifies ownership. A foreign
// enrollment reads as not found rather than forbidden.
func (s *Service) ownedEnrollment(ctx context.Context, userID, enrollmentID uuid.UUID) (Enrollment, error) {
	e, err := s.store.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		return Enrollment{}, err
	}
	if e.UserID != userID {
		return Enrollment{}, ErrEnrollmentNotFound
	}
	return e, nil
}

// ownedHabit fetches a habit and its enrollment, verifying ownership.
func (s *Service) ownedHabit(ctx context.Context, userID, habitID uuid.UUID) (Habit, Enrollment, error) {
	h, err := s.store.GetHabit(ctx, habitID)
	if err != nil {
		return Habit{}, Enrollment{}, err
	}
	e, err := s.store.GetEnrollment(ctx, h.EnrollmentID)
	if err != nil {
		return Habit{}, Enrollment{}, err
	}
	if e.UserID != userID {
		return Habit{}, Enrollment{}, ErrHabitNotFound
	}
	return h, e, nil
}
