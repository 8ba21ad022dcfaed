// Package memory provides in-memory Store implementations for tests and dev.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/stridehq/habit-engine/calendar"
	"github.com/stridehq/habit-engine/challenge"
	"github.com/stridehq/habit-engine/personal"
)

// =============================================================================
// CHALLENGE STORE
// =============================================================================

// Store implements challenge.Store backed by maps. It enforces the same
// uniqueness constraints as the SQLite store so service tests exercise the
// real conflict paths.
type Store struct {
	mu          sync.RWMutex
	challenges  map[uuid.UUID]challenge.Challenge
	enrollments map[uuid.UUID]challenge.Enrollment
	habits      map[uuid.UUID]challenge.Habit
	logs        map[logKey]challenge.HabitLog
}

type logKey struct {
	HabitID uuid.UUID
	Day     string
}

func NewStore() *Store {
	return &Store{
		challenges:  make(map[uuid.UUID]challenge.Challenge),
		enrollments: make(map[uuid.UUID]challenge.Enrollment),
		habits:      make(map[uuid.UUID]challenge.Habit),
		logs:        make(map[logKey]challenge.HabitLog),
	}
}

func (s *Store) CreateChallenge(_ context.Context, c challenge.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.challenges {
		if strings.EqualFold(existing.Title, c.Title) {
			return challenge.ErrDuplicateTitle
		}
	}
	s.challenges[c.ID] = c
	return nil
}

func (s *Store) GetChallenge(_ context.Context, id uuid.UUID) (challenge.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.challenges[id]
	if !ok {
		return challenge.Challenge{}, challenge.ErrChallengeNotFound
	}
	return c, nil
}

func (s *Store) ListChallenges(_ context.Context) ([]challenge.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]challenge.Challenge, 0, len(s.challenges))
	for _, c := range s.challenges {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CreateEnrollment(_ context.Context, e challenge.Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.enrollments {
		if existing.UserID == e.UserID && existing.ChallengeID == e.ChallengeID &&
			existing.Status == challenge.StatusActive {
			return &challenge.AlreadyEnrolledError{Existing: existing}
		}
	}
	s.enrollments[e.ID] = e
	return nil
}

func (s *Store) GetEnrollment(_ context.Context, id uuid.UUID) (challenge.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.enrollments[id]
	if !ok {
		return challenge.Enrollment{}, challenge.ErrEnrollmentNotFound
	}
	return e, nil
}

func (s *Store) FindActiveEnrollment(_ context.Context, userID, challengeID uuid.UUID) (challenge.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.enrollments {
		if e.UserID == userID && e.ChallengeID == challengeID && e.Status == challenge.StatusActive {
			return e, nil
		}
	}
	return challenge.Enrollment{}, challenge.ErrEnrollmentNotFound
}

func (s *Store) ListEnrollments(_ context.Context, userID uuid.UUID) ([]challenge.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []challenge.Enrollment
	for _, e := range s.enrollments {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateEnrollment(_ context.Context, e challenge.Enrollment, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.enrollments[e.ID]
	if !ok {
		return challenge.ErrEnrollmentNotFound
	}
	if current.Version != expectedVersion {
		return challenge.ErrConcurrentModification
	}
	e.Version = expectedVersion + 1
	s.enrollments[e.ID] = e
	return nil
}

func (s *Store) DeleteEnrollment(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.enrollments[id]; !ok {
		return challenge.ErrEnrollmentNotFound
	}
	delete(s.enrollments, id)
	for hid, h := range s.habits {
		if h.EnrollmentID != id {
			continue
		}
		delete(s.habits, hid)
		for k := range s.logs {
			if k.HabitID == hid {
				delete(s.logs, k)
			}
		}
	}
	return nil
}

func (s *Store) CreateHabit(_ context.Context, h challenge.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.habits {
		if existing.EnrollmentID == h.EnrollmentID && strings.EqualFold(existing.Title, h.Title) {
			return challenge.ErrDuplicateTitle
		}
	}
	s.habits[h.ID] = h
	return nil
}

func (s *Store) GetHabit(_ context.Context, id uuid.UUID) (challenge.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.habits[id]
	if !ok {
		return challenge.Habit{}, challenge.ErrHabitNotFound
	}
	return h, nil
}

func (s *Store) ListHabits(_ context.Context, enrollmentID uuid.UUID) ([]challenge.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []challenge.Habit
	for _, h := range s.habits {
		if h.EnrollmentID == enrollmentID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) AppendLog(_ context.Context, l challenge.HabitLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := logKey{HabitID: l.HabitID, Day: l.Day.String()}
	if _, ok := s.logs[k]; ok {
		return &challenge.DuplicateLogError{HabitID: l.HabitID, Day: l.Day}
	}
	s.logs[k] = l
	return nil
}

func (s *Store) DeleteLog(_ context.Context, habitID uuid.UUID, day calendar.Day) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := logKey{HabitID: habitID, Day: day.String()}
	if _, ok := s.logs[k]; !ok {
		return challenge.ErrLogNotFound
	}
	delete(s.logs, k)
	return nil
}

func (s *Store) ListLogDays(_ context.Context, habitID uuid.UUID) ([]calendar.Day, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.logDaysLocked(habitID), nil
}

func (s *Store) ListLogDaysForEnrollment(_ context.Context, enrollmentID uuid.UUID) (map[uuid.UUID][]calendar.Day, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[uuid.UUID][]calendar.Day)
	for _, h := range s.habits {
		if h.EnrollmentID == enrollmentID {
			out[h.ID] = s.logDaysLocked(h.ID)
		}
	}
	return out, nil
}

func (s *Store) logDaysLocked(habitID uuid.UUID) []calendar.Day {
	var days []calendar.Day
	for k, l := range s.logs {
		if k.HabitID == habitID {
			days = append(days, l.Day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// =============================================================================
// PERSONAL STORE
// =============================================================================

// PersonalStore implements personal.Store backed by maps.
type PersonalStore struct {
	mu     sync.RWMutex
	habits map[uuid.UUID]personal.Habit
	logs   map[logKey]personal.Log
}

func NewPersonalStore() *PersonalStore {
	return &PersonalStore{
		habits: make(map[uuid.UUID]personal.Habit),
		logs:   make(map[logKey]personal.Log),
	}
}

func (s *PersonalStore) CreateHabit(_ context.Context, h personal.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.habits {
		if existing.UserID == h.UserID && strings.EqualFold(existing.Title, h.Title) {
			return personal.ErrDuplicateTitle
		}
	}
	s.habits[h.ID] = h
	return nil
}

func (s *PersonalStore) GetHabit(_ context.Context, id uuid.UUID) (personal.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.habits[id]
	if !ok {
		return personal.Habit{}, personal.ErrHabitNotFound
	}
	return h, nil
}

func (s *PersonalStore) ListHabits(_ context.Context, userID uuid.UUID) ([]personal.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []personal.Habit
	for _, h := range s.habits {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *PersonalStore) SetArchived(_ context.Context, id uuid.UUID, archived bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.habits[id]
	if !ok {
		return personal.ErrHabitNotFound
	}
	h.Archived = archived
	s.habits[id] = h
	return nil
}

func (s *PersonalStore) DeleteHabit(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.habits[id]; !ok {
		return personal.ErrHabitNotFound
	}
	delete(s.habits, id)
	for k := range s.logs {
		if k.HabitID == id {
			delete(s.logs, k)
		}
	}
	return nil
}

func (s *PersonalStore) AppendLog(_ context.Context, l personal.Log) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := logKey{HabitID: l.HabitID, Day: l.Day.String()}
	if _, ok := s.logs[k]; ok {
		return personal.ErrAlreadyLogged
	}
	s.logs[k] = l
	return nil
}

func (s *PersonalStore) DeleteLog(_ context.Context, habitID uuid.UUID, day calendar.Day) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := logKey{HabitID: habitID, Day: day.String()}
	if _, ok := s.logs[k]; !ok {
		return personal.ErrLogNotFound
	}
	delete(s.logs, k)
	return nil
}

func (s *PersonalStore) ListLogDays(_ context.Context, habitID uuid.UUID) ([]calendar.Day, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var days []calendar.Day
	for k, l := range s.logs {
		if k.HabitID == habitID {
			days = append(days, l.Day)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, nil
}
