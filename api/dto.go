/*
dto.go - Request/response data structures

PURPOSE:
  Typed projections per API response shape, and validated request bodies.
  Handlers never pass raw request structs into the services: input is
  validated here at the boundary, so the domain packages can assume clean
  primitives.

VALIDATION:
  go-playground/validator with struct tags, plus a custom "iana_tz" rule
  for timezone overrides. Date fields are YYYY-MM-DD strings.
*/
package api

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/stridehq/habit-engine/calendar"
	"github.com/stridehq/habit-engine/challenge"
	"github.com/stridehq/habit-engine/personal"
	"github.com/stridehq/habit-engine/streak"
)

// validate is shared by all handlers. Struct validation is stateless.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("iana_tz", func(fl validator.FieldLevel) bool {
		return calendar.IsValidTimezone(fl.Field().String())
	})
	return v
}

// =============================================================================
// REQUESTS
// =============================================================================

type CreateChallengeRequest struct {
	Title        string `json:"title" validate:"required,min=1,max=120"`
	Description  string `json:"description" validate:"max=1000"`
	DurationDays int    `json:"durationDays" validate:"required,min=1,max=365"`
}

type JoinChallengeRequest struct {
	// StartDate backdates the enrollment start. Defaults to today in the
	// user's zone.
	StartDate string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
}

type AddHabitRequest struct {
	Title string `json:"title" validate:"required,min=1,max=120"`
}

type LogCompletionRequest struct {
	// Date defaults to today in the effective zone.
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`

	// Timezone overrides the user's stored zone for this request only.
	Timezone string `json:"timezone" validate:"omitempty,iana_tz"`
}

type ArchiveHabitRequest struct {
	Archived *bool `json:"archived" validate:"required"`
}

// =============================================================================
// RESPONSES
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`

	// Existing carries current state on enrollment conflicts so clients
	// need no follow-up query.
	Existing *EnrollmentDTO `json:"existing,omitempty"`
}

type ChallengeDTO struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	DurationDays int    `json:"durationDays"`
	CreatedAt    string `json:"createdAt"`
}

type ProgressDTO struct {
	CompletedDays     int    `json:"completedDays"`
	CurrentStreak     int    `json:"currentStreak"`
	LastCompletedDate string `json:"lastCompletedDate,omitempty"`
}

type EnrollmentDTO struct {
	ID             string      `json:"id"`
	ChallengeID    string      `json:"challengeId"`
	Status         string      `json:"status"`
	StartDate      string      `json:"startDate"`
	Progress       ProgressDTO `json:"progress"`
	LivesRemaining int         `json:"livesRemaining"`
	MissedDays     int         `json:"missedDays"`
	CompletedOn    string      `json:"completedOn,omitempty"`
}

type HabitDTO struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	CompletedToday bool   `json:"completedToday"`
}

type EnrollmentProgressDTO struct {
	Enrollment EnrollmentDTO `json:"enrollment"`
	Challenge  ChallengeDTO  `json:"challenge"`
	Habits     []HabitDTO    `json:"habits"`
	Today      string        `json:"today"`
}

type LogResultDTO struct {
	Logged             bool `json:"logged"`
	DayCompleted       bool `json:"dayCompleted"`
	ChallengeCompleted bool `json:"challengeCompleted"`
	ChallengeFailed    bool `json:"challengeFailed"`
	LivesRemaining     int  `json:"livesRemaining"`
}

type PersonalHabitDTO struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Archived      bool   `json:"archived"`
	CurrentStreak int    `json:"currentStreak"`
	LongestStreak int    `json:"longestStreak"`
	LastCompleted string `json:"lastCompleted,omitempty"`
}

type BucketDTO struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type AnalyticsDTO struct {
	CurrentStreak    int         `json:"currentStreak"`
	LongestStreak    int         `json:"longestStreak"`
	TotalCompletions int         `json:"totalCompletions"`
	LastCompleted    string      `json:"lastCompleted,omitempty"`
	RateLast7Days    string      `json:"completionRateLast7Days"`
	RateLast30Days   string      `json:"completionRateLast30Days"`
	Weekly           []BucketDTO `json:"weekly"`
	Monthly          []BucketDTO `json:"monthly"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toChallengeDTO(c challenge.Challenge) ChallengeDTO {
	return ChallengeDTO{
		ID:           c.ID.String(),
		Title:        c.Title,
		Description:  c.Description,
		DurationDays: c.DurationDays,
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
	}
}

func toEnrollmentDTO(e challenge.Enrollment) EnrollmentDTO {
	dto := EnrollmentDTO{
		ID:          e.ID.String(),
		ChallengeID: e.ChallengeID.String(),
		Status:      string(e.Status),
		StartDate:   e.StartDate.String(),
		Progress: ProgressDTO{
			CompletedDays: e.CompletedDays,
			CurrentStreak: e.CurrentStreak,
		},
		LivesRemaining: e.LivesRemaining,
		MissedDays:     e.MissedDays,
	}
	if !e.LastCompletedDate.IsZero() {
		dto.Progress.LastCompletedDate = e.LastCompletedDate.String()
	}
	if !e.CompletedOn.IsZero() {
		dto.CompletedOn = e.CompletedOn.Format(time.RFC3339)
	}
	return dto
}

func toProgressDTO(v challenge.ProgressView) EnrollmentProgressDTO {
	habits := make([]HabitDTO, len(v.Habits))
	for i, hs := range v.Habits {
		habits[i] = HabitDTO{
			ID:             hs.Habit.ID.String(),
			Title:          hs.Habit.Title,
			CompletedToday: hs.CompletedToday,
		}
	}
	return EnrollmentProgressDTO{
		Enrollment: toEnrollmentDTO(v.Enrollment),
		Challenge:  toChallengeDTO(v.Challenge),
		Habits:     habits,
		Today:      v.Today.String(),
	}
}

func toLogResultDTO(r challenge.LogResult) LogResultDTO {
	return LogResultDTO{
		Logged:             r.Logged,
		DayCompleted:       r.DayCompleted,
		ChallengeCompleted: r.ChallengeCompleted,
		ChallengeFailed:    r.ChallengeFailed,
		LivesRemaining:     r.LivesRemaining,
	}
}

func toPersonalHabitDTO(s personal.Summary) PersonalHabitDTO {
	dto := PersonalHabitDTO{
		ID:            s.Habit.ID.String(),
		Title:         s.Habit.Title,
		Archived:      s.Habit.Archived,
		CurrentStreak: s.Streak.Current,
		LongestStreak: s.Streak.Longest,
	}
	if !s.Streak.LastCompleted.IsZero() {
		dto.LastCompleted = s.Streak.LastCompleted.String()
	}
	return dto
}

func toAnalyticsDTO(a streak.Analytics) AnalyticsDTO {
	dto := AnalyticsDTO{
		CurrentStreak:    a.Streak.Current,
		LongestStreak:    a.Streak.Longest,
		TotalCompletions: a.Streak.TotalDays,
		RateLast7Days:    a.RateLast7Days.String(),
		RateLast30Days:   a.RateLast30Days.String(),
		Weekly:           toBucketDTOs(a.Weekly),
		Monthly:          toBucketDTOs(a.Monthly),
	}
	if !a.Streak.LastCompleted.IsZero() {
		dto.LastCompleted = a.Streak.LastCompleted.String()
	}
	return dto
}

func toBucketDTOs(buckets []streak.BucketCount) []BucketDTO {
	out := make([]BucketDTO, len(buckets))
	for i, b := range buckets {
		out[i] = BucketDTO{Label: b.Label, Count: b.Count}
	}
	return out
}
