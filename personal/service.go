package personal

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stridehq/habit-engine/calendar"
	"github.com/stridehq/habit-engine/streak"
)

// Store is the persistence boundary for personal habits and their logs.
// The store enforces per-user title uniqueness and per-day log uniqueness.
type Store interface {
	CreateHabit(ctx context.Context, h Habit) error
	GetHabit(ctx context.Context, id uuid.UUID) (Habit, error)
	ListHabits(ctx context.Context, userID uuid.UUID) ([]Habit, error)
	SetArchived(ctx context.Context, id uuid.UUID, archived bool) error
	DeleteHabit(ctx context.Context, id uuid.UUID) error

	AppendLog(ctx context.Context, l Log) error
	DeleteLog(ctx context.Context, habitID uuid.UUID, day calendar.Day) error
	ListLogDays(ctx context.Context, habitID uuid.UUID) ([]calendar.Day, error)
}

// Service exposes the personal-habit operations.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// WithClock overrides the time source. Tests only.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Summary pairs a habit with its current streak figures for list views.
type Summary struct {
	Habit  Habit
	Streak streak.Result
}

// Create registers a new personal habit for the user.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, title string) (Habit, error) {
	h := Habit{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.CreateHabit(ctx, h); err != nil {
		return Habit{}, fmt.Errorf("create personal habit: %w", err)
	}
	return h, nil
}

// List returns the user's habits with current streaks, archived included.
func (s *Service) List(ctx context.Context, userID uuid.UUID, loc *time.Location) ([]Summary, error) {
	habits, err := s.store.ListHabits(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := calendar.LocalDay(s.now(), loc)
	summaries := make([]Summary, 0, len(habits))
	for _, h := range habits {
		days, err := s.store.ListLogDays(ctx, h.ID)
		if err != nil {
			return nil, fmt.Errorf("list log days for %s: %w", h.ID, err)
		}
		summaries = append(summaries, Summary{Habit: h, Streak: streak.FromDays(days, today)})
	}
	return summaries, nil
}

// Archive freezes a habit: history and analytics stay readable, new logs
// are rejected. Unarchiving resumes logging.
func (s *Service) Archive(ctx context.Context, userID, habitID uuid.UUID, archived bool) error {
	if _, err := s.owned(ctx, userID, habitID); err != nil {
		return err
	}
	return s.store.SetArchived(ctx, habitID, archived)
}

// Delete removes a habit and all of its logs.
func (s *Service) Delete(ctx context.Context, userID, habitID uuid.UUID) error {
	if _, err := s.owned(ctx, userID, habitID); err != nil {
		return err
	}
	return s.store.DeleteHabit(ctx, habitID)
}

// Log records a completion for the habit on day; a zero day means today in
// the user's zone.
func (s *Service) Log(ctx context.Context, userID, habitID uuid.UUID, day calendar.Day, loc *time.Location) (Log, error) {
	h, err := s.owned(ctx, userID, habitID)
	if err != nil {
		return Log{}, err
	}
	if h.Archived {
		return Log{}, fmt.Errorf("habit %s: %w", h.ID, ErrHabitArchived)
	}
	if day.IsZero() {
		day = calendar.LocalDay(s.now(), loc)
	}
	l := Log{
		ID:       uuid.New(),
		HabitID:  h.ID,
		Day:      day,
		DayStart: day.StartIn(loc),
		LoggedAt: s.now().UTC(),
	}
	if err := s.store.AppendLog(ctx, l); err != nil {
		return Log{}, err
	}
	return l, nil
}

// Unlog removes the completion entry for the habit on day.
func (s *Service) Unlog(ctx context.Context, userID, habitID uuid.UUID, day calendar.Day) error {
	if _, err := s.owned(ctx, userID, habitID); err != nil {
		return err
	}
	return s.store.DeleteLog(ctx, habitID, day)
}

// Analytics computes streaks, completion rates, and weekly/monthly
// breakdowns for one habit.
func (s *Service) Analytics(ctx context.Context, userID, habitID uuid.UUID, loc *time.Location) (streak.Analytics, error) {
	h, err := s.owned(ctx, userID, habitID)
	if err != nil {
		return streak.Analytics{}, err
	}
	days, err := s.store.ListLogDays(ctx, h.ID)
	if err != nil {
		return streak.Analytics{}, fmt.Errorf("list log days: %w", err)
	}
	return streak.Analyze(days, calendar.LocalDay(s.now(), loc)), nil
}

func (s *Service) owned(ctx context.Context, userID, habitID uuid.UUID) (Habit, error) {
	h, err := s.store.GetHabit(ctx, habitID)
	if err != nil {
		return Habit{}, err
	}
	if h.UserID != userID {
		return Habit{}, ErrHabitNotFound
	}
	return h, nil
}
