/*
handlers.go - HTTP API handlers for the habit engine

PURPOSE:
  Exposes the challenge and personal-habit services via REST. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Challenges:
    GET    /api/challenges                      List challenges
    POST   /api/challenges                      Create challenge
    GET    /api/challenges/{id}                 Get challenge
    POST   /api/challenges/{id}/join            Enroll
    DELETE /api/challenges/{id}/leave           Unenroll (cascading delete)

  Enrollments:
    GET    /api/enrollments                     List caller's enrollments
    GET    /api/enrollments/{id}/progress       Resolved progress + habits
    POST   /api/enrollments/{id}/habits         Add a habit

  Challenge habit logging:
    POST   /api/habits/{id}/logs                Log a completion
    DELETE /api/habits/{id}/logs/{date}         Unlog

  Personal habits:
    GET    /api/personal-habits                 List with streaks
    POST   /api/personal-habits                 Create
    DELETE /api/personal-habits/{id}            Delete with logs
    POST   /api/personal-habits/{id}/archive    Archive/unarchive
    POST   /api/personal-habits/{id}/logs       Log a completion
    DELETE /api/personal-habits/{id}/logs/{date} Unlog
    GET    /api/personal-habits/{id}/analytics  Streaks, rates, breakdowns

ERROR HANDLING:
  Domain errors map to HTTP status by the classification helpers:
  - 400: Malformed body, bad date or timezone, validation failures
  - 404: Missing resource or foreign ownership
  - 409: Duplicate day log, duplicate title, already enrolled, lost race
  - 422: Action against a terminal enrollment or archived habit
  - 500: Everything else, logged and surfaced generically

SEE ALSO:
  - dto.go: Request/response data structures
  - auth.go: Identity extraction
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stridehq/habit-engine/calendar"
	"github.com/stridehq/habit-engine/challenge"
	"github.com/stridehq/habit-engine/personal"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Challenges *challenge.Service
	Personal   *personal.Service
	Log        *slog.Logger
}

// NewHandler creates a handler over the two services.
func NewHandler(challenges *challenge.Service, habits *personal.Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{Challenges: challenges, Personal: habits, Log: log}
}

// =============================================================================
// CHALLENGE HANDLERS
// =============================================================================

func (h *Handler) ListChallenges(w http.ResponseWriter, r *http.Request) {
	list, err := h.Challenges.ListChallenges(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	dtos := make([]ChallengeDTO, len(list))
	for i, c := range list {
		dtos[i] = toChallengeDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateChallenge(w http.ResponseWriter, r *http.Request) {
	var req CreateChallengeRequest
	if !h.decode(w, r, &req) {
		return
	}
	c, err := h.Challenges.CreateChallenge(r.Context(), req.Title, req.Description, req.DurationDays)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toChallengeDTO(c))
}

func (h *Handler) GetChallenge(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.Challenges.GetChallenge(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toChallengeDTO(c))
}

func (h *Handler) JoinChallenge(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.identity(w, r)
	if !ok {
		return
	}
	challengeID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var req JoinChallengeRequest
	if !h.decodeOptional(w, r, &req) {
		return
	}
	var startDate calendar.Day
	if req.StartDate != "" {
		startDate, _ = calendar.ParseDay(req.StartDate) // format checked by validator
	}

	e, err := h.Challenges.Join(r.Context(), ident.UserID, challengeID, startDate, ident.Location)
	if err != nil {
		var enrolled *challenge.AlreadyEnrolledError
		if errors.As(err, &enrolled) {
			existing := toEnrollmentDTO(enrolled.Existing)
			writeJSON(w, http.StatusConflict, ErrorResponse{
				Error:    "already enrolled in this challenge",
				Existing: &existing,
			})
			return
		}
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEnrollmentDTO(e))
}

func (h *Handler) LeaveChallenge(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.identity(w, r)
	if !ok {
		return
	}
	challengeID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Challenges.Leave(r.Context(), ident.UserID, challengeID); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ENROLLMENT HANDLERS
// =============================================================================

func (h *Handler) ListEnrollments(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.identity(w, r)
	if !ok {
		return
	}
	list, err := h.Challenges.Enrollments(r.Context(), ident.UserID, ident.Location)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	dtos := make([]EnrollmentDTO, len(list))
	for i, e := range list {
		dtos[i] = toEnrollmentDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.identity(w, r)
	if !ok {
		return
	}
	enrollmentID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	view, err := h.Challenges.Progress(r.Context(), ident.UserID, enrollmentID, ident.Location)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProgressDTO(view))
}

func (h *Handler) AddHabit(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.identity(w, r)
	if !ok {
		return
	}
	enrollmentID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req AddHabitRequest
	if !h.decode(w, r, &req) {
		return
	}
	habit, err := h.Challenges.AddHabit(r.Context(), ident.UserID, enrollmentID, req.Title, ident.Location)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, HabitDTO{ID: habit.ID.String(), Title: habit.Title})
}

// =============================================================================
// CHALLENGE LOGGING HANDLERS
// =============================================================================

func (h *Handler) LogHabit(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.identity(w, r)
	if !ok {
		return
	}
	habitID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req LogCompletionRequest
	if !h.decodeOptional(w, r, &req) {
		return
	}
	day, loc, ok := h.resolveDayAndZone(w, req.Date, req.Timezone, ident)
	if !ok {
		return
	}

	res, err := h.Challenges.LogHabit(r.Context(), ident.UserID, habitID, day, loc)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLogResultDTO(res))
}

func (h *Handler) UnlogHabit(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.identity(w, r)
	if !ok {
		return
	}
	habitID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	day, err := calendar.ParseDay(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date (use YYYY-MM-DD)", err)
		return
	}
	if err := h.Challenges.UnlogHabit(r.Context(), ident.UserID, habitID, day); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PERSONAL HABIT HANDLERS
// =============================================================================

func (h *Handler) ListPersonalHabits(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.identity(w, r)
	if !ok {
		return
	}
	summaries, err := h.Personal.List(r.Context(), ident.UserID, ident.Location)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	dtos := make([]PersonalHabitDTO, len(summaries))
	for i, s := range summaries {
		dtos[i] = toPersonalHabitDTO(s)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreatePersonalHabit(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.identity(w, r)
	if !ok {
		return
	}
	var req AddHabitRequest
	if !h.decode(w, r, &req) {
		return
	}
	habit, err := h.Personal.Create(r.Context(), ident.UserID, req.Title)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, PersonalHabitDTO{ID: habit.ID.String(), Title: habit.Title})
}

func (h *Handler) DeletePersonalHabit(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.identity(w, r)
	if !ok {
		return
	}
	habitID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Personal.Delete(r.Context(), ident.UserID, habitID); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ArchivePersonalHabit(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.identity(w, r)
	if !ok {
		return
	}
	habitID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req ArchiveHabitRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.Personal.Archive(r.Context(), ident.UserID, habitID, *req.Archived); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) LogPersonalHabit(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.identity(w, r)
	if !ok {
		return
	}
	habitID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req LogCompletionRequest
	if !h.decodeOptional(w, r, &req) {
		return
	}
	day, loc, ok := h.resolveDayAndZone(w, req.Date, req.Timezone, ident)
	if !ok {
		return
	}

	l, err := h.Personal.Log(r.Context(), ident.UserID, habitID, day, loc)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"id":  l.ID.String(),
		"day": l.Day.String(),
	})
}

func (h *Handler) UnlogPersonalHabit(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.identity(w, r)
	if !ok {
		return
	}
	habitID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	day, err := calendar.ParseDay(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date (use YYYY-MM-DD)", err)
		return
	}
	if err := h.Personal.Unlog(r.Context(), ident.UserID, habitID, day); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) PersonalAnalytics(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.identity(w, r)
	if !ok {
		return
	}
	habitID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	a, err := h.Personal.Analytics(r.Context(), ident.UserID, habitID, ident.Location)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAnalyticsDTO(a))
}

// =============================================================================
// PROFILE HANDLERS
// =============================================================================

// MyTimezone reports the zone all day boundaries resolve against for this
// caller. The preference itself is stored with the auth provider and
// arrives in the token; a missing claim falls back to the server default.
func (h *Handler) MyTimezone(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.identity(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"timezone": ident.Location.String(),
	})
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// decode parses and validates a required JSON body.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return false
	}
	return h.validateBody(w, dst)
}

// decodeOptional tolerates an empty body, for endpoints where every field
// has a default.
func (h *Handler) decodeOptional(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		return true
	}
	return h.decode(w, r, dst)
}

func (h *Handler) validateBody(w http.ResponseWriter, dst any) bool {
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "validation failed", err)
		return false
	}
	return true
}

func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (Identity, bool) {
	ident, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated", nil)
		return Identity{}, false
	}
	return ident, true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id", err)
		return uuid.Nil, false
	}
	return id, true
}

// resolveDayAndZone applies the optional date and timezone override from a
// log request. Both were validated by tags; a zero day means "today".
func (h *Handler) resolveDayAndZone(w http.ResponseWriter, date, tz string, ident Identity) (calendar.Day, *time.Location, bool) {
	loc := ident.Location
	if tz != "" {
		parsed, err := calendar.LoadLocation(tz)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid timezone", err)
			return calendar.Day{}, nil, false
		}
		loc = parsed
	}
	var day calendar.Day
	if date != "" {
		parsed, err := calendar.ParseDay(date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid date (use YYYY-MM-DD)", err)
			return calendar.Day{}, nil, false
		}
		day = parsed
	}
	return day, loc, true
}

// writeDomainError maps domain errors to HTTP status codes.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case challenge.IsNotFound(err) || personal.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not found", err)
	case challenge.IsConflict(err) || personal.IsConflict(err):
		writeError(w, http.StatusConflict, "conflict", err)
	case challenge.IsInvalidState(err) || personal.IsInvalidState(err):
		writeError(w, http.StatusUnprocessableEntity, "invalid state", err)
	default:
		h.Log.Error("internal error",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
