/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements challenge.Store and personal.Store over one database file. The
  same patterns apply to PostgreSQL - only minor SQL dialect differences.

UNIQUENESS ENFORCEMENT:
  The invariants the services rely on live here as unique indexes, so
  concurrent requests serialize at the database rather than in Go:
  - idx_unique_day_log / idx_unique_personal_day_log: one completion per
    habit per calendar day (the ledger's sole concurrency guard)
  - idx_unique_active_enrollment: one active enrollment per (user,
    challenge), partial on status so terminal rows never block re-joining
  - idx_unique_challenge_title, idx_unique_habit_title,
    idx_unique_personal_title: case-insensitive title uniqueness

  Constraint violations are mapped back to domain sentinels by matching the
  index name in the driver error, the only signal SQLite gives us.

OPTIMISTIC CONCURRENCY:
  Enrollment updates are conditional on the version column. A write that
  matched zero rows means another request won the race; the caller gets
  ErrConcurrentModification, never a silent overwrite.

CASCADES:
  habits reference enrollments and habit_logs reference habits with ON
  DELETE CASCADE, so leaving a challenge is one DELETE. Foreign keys are
  switched on in the DSN.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block, single writer at a time.

USAGE:
  store, err := sqlite.New("./data/habits.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  challenges := challenge.NewService(store)
  habits := personal.NewService(store.Personal())

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - challenge/store.go: Interface definition
  - store/memory/: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/stridehq/habit-engine/calendar"
	"github.com/stridehq/habit-engine/challenge"
	"github.com/stridehq/habit-engine/personal"
)

// Store implements challenge.Store using SQLite. Use Personal() for the
// personal.Store view over the same database.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Personal returns the personal.Store view sharing this database.
func (s *Store) Personal() *PersonalStore {
	return &PersonalStore{parent: s}
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS challenges (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		duration_days INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_challenge_title
		ON challenges(title COLLATE NOCASE);

	CREATE TABLE IF NOT EXISTS enrollments (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		challenge_id TEXT NOT NULL REFERENCES challenges(id),
		status TEXT NOT NULL DEFAULT 'active',
		start_date TEXT NOT NULL,
		completed_days INTEGER NOT NULL DEFAULT 0,
		current_streak INTEGER NOT NULL DEFAULT 0,
		last_completed_date TEXT,
		lives_remaining INTEGER NOT NULL,
		missed_days INTEGER NOT NULL DEFAULT 0,
		completed_on TEXT,
		version INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	-- CRITICAL: at most one active enrollment per (user, challenge).
	-- Partial on status so failed/completed rows never block re-enrollment.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_active_enrollment
		ON enrollments(user_id, challenge_id)
		WHERE status = 'active';

	CREATE INDEX IF NOT EXISTS idx_enrollments_user
		ON enrollments(user_id);

	CREATE TABLE IF NOT EXISTS habits (
		id TEXT PRIMARY KEY,
		enrollment_id TEXT NOT NULL REFERENCES enrollments(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_habit_title
		ON habits(enrollment_id, title COLLATE NOCASE);

	CREATE TABLE IF NOT EXISTS habit_logs (
		id TEXT PRIMARY KEY,
		habit_id TEXT NOT NULL REFERENCES habits(id) ON DELETE CASCADE,
		day TEXT NOT NULL,
		day_start TEXT NOT NULL,
		logged_at TEXT NOT NULL
	);

	-- CRITICAL: one completion per habit per calendar day. This index is
	-- the serialization point for concurrent log attempts.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_day_log
		ON habit_logs(habit_id, day);

	CREATE INDEX IF NOT EXISTS idx_habit_logs_habit
		ON habit_logs(habit_id, day);

	CREATE TABLE IF NOT EXISTS personal_habits (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		archived INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_personal_title
		ON personal_habits(user_id, title COLLATE NOCASE);

	CREATE TABLE IF NOT EXISTS personal_habit_logs (
		id TEXT PRIMARY KEY,
		habit_id TEXT NOT NULL REFERENCES personal_habits(id) ON DELETE CASCADE,
		day TEXT NOT NULL,
		day_start TEXT NOT NULL,
		logged_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_personal_day_log
		ON personal_habit_logs(habit_id, day);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CHALLENGES
// =============================================================================

func (s *Store) CreateChallenge(ctx context.Context, c challenge.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO challenges (id, title, description, duration_days, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		c.ID.String(), c.Title, c.Description, c.DurationDays,
		c.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isIndexViolation(err, "idx_unique_challenge_title") {
			return challenge.ErrDuplicateTitle
		}
		return fmt.Errorf("failed to insert challenge: %w", err)
	}
	return nil
}

func (s *Store) GetChallenge(ctx context.Context, id uuid.UUID) (challenge.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, duration_days, created_at
		 FROM challenges WHERE id = ?`, id.String())
	c, err := scanChallenge(row)
	if err == sql.ErrNoRows {
		return challenge.Challenge{}, challenge.ErrChallengeNotFound
	}
	return c, err
}

func (s *Store) ListChallenges(ctx context.Context) ([]challenge.Challenge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, duration_days, created_at
		 FROM challenges ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query challenges: %w", err)
	}
	defer rows.Close()

	var out []challenge.Challenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanChallenge(row scanner) (challenge.Challenge, error) {
	var (
		c              challenge.Challenge
		id, createdAt  string
	)
	if err := row.Scan(&id, &c.Title, &c.Description, &c.DurationDays, &createdAt); err != nil {
		return c, err
	}
	c.ID, _ = uuid.Parse(id)
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return c, nil
}

// =============================================================================
// ENROLLMENTS
// =============================================================================

const enrollmentColumns = `id, user_id, challenge_id, status, start_date,
	completed_days, current_streak, last_completed_date, lives_remaining,
	missed_days, completed_on, version, created_at`

func (s *Store) CreateEnrollment(ctx context.Context, e challenge.Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO enrollments (`+enrollmentColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID.String(), e.UserID.String(), e.ChallengeID.String(), string(e.Status),
		e.StartDate.String(), e.CompletedDays, e.CurrentStreak,
		nullDay(e.LastCompletedDate), e.LivesRemaining, e.MissedDays,
		nullTime(e.CompletedOn), e.Version, e.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isIndexViolation(err, "idx_unique_active_enrollment") {
			return &challenge.AlreadyEnrolledError{Existing: e}
		}
		return fmt.Errorf("failed to insert enrollment: %w", err)
	}
	return nil
}

func (s *Store) GetEnrollment(ctx context.Context, id uuid.UUID) (challenge.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE id = ?`, id.String())
	e, err := scanEnrollment(row)
	if err == sql.ErrNoRows {
		return challenge.Enrollment{}, challenge.ErrEnrollmentNotFound
	}
	return e, err
}

func (s *Store) FindActiveEnrollment(ctx context.Context, userID, challengeID uuid.UUID) (challenge.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments
		 WHERE user_id = ? AND challenge_id = ? AND status = 'active'`,
		userID.String(), challengeID.String())
	e, err := scanEnrollment(row)
	if err == sql.ErrNoRows {
		return challenge.Enrollment{}, challenge.ErrEnrollmentNotFound
	}
	return e, err
}

func (s *Store) ListEnrollments(ctx context.Context, userID uuid.UUID) ([]challenge.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments
		 WHERE user_id = ? ORDER BY created_at ASC`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	defer rows.Close()

	var out []challenge.Enrollment
	for rows.Next() {
		e, err := scanEnrollment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) UpdateEnrollment(ctx context.Context, e challenge.Enrollment, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE enrollments SET
			status = ?, completed_days = ?, current_streak = ?,
			last_completed_date = ?, lives_remaining = ?, missed_days = ?,
			completed_on = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		string(e.Status), e.CompletedDays, e.CurrentStreak,
		nullDay(e.LastCompletedDate), e.LivesRemaining, e.MissedDays,
		nullTime(e.CompletedOn),
		e.ID.String(), expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update enrollment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if n == 0 {
		// Either the row is gone or another writer bumped the version.
		var exists int
		if err := s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM enrollments WHERE id = ?", e.ID.String(),
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check enrollment: %w", err)
		}
		if exists == 0 {
			return challenge.ErrEnrollmentNotFound
		}
		return challenge.ErrConcurrentModification
	}
	return nil
}

func (s *Store) DeleteEnrollment(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM enrollments WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("failed to delete enrollment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return challenge.ErrEnrollmentNotFound
	}
	return nil
}

func scanEnrollment(row scanner) (challenge.Enrollment, error) {
	var (
		e                         challenge.Enrollment
		id, userID, challengeID   string
		status, startDate         string
		lastCompleted, completedOn sql.NullString
		createdAt                 string
	)
	err := row.Scan(&id, &userID, &challengeID, &status, &startDate,
		&e.CompletedDays, &e.CurrentStreak, &lastCompleted, &e.LivesRemaining,
		&e.MissedDays, &completedOn, &e.Version, &createdAt)
	if err != nil {
		return e, err
	}

	e.ID, _ = uuid.Parse(id)
	e.UserID, _ = uuid.Parse(userID)
	e.ChallengeID, _ = uuid.Parse(challengeID)
	e.Status = challenge.Status(status)
	e.StartDate, _ = calendar.ParseDay(startDate)
	if lastCompleted.Valid {
		e.LastCompletedDate, _ = calendar.ParseDay(lastCompleted.String)
	}
	if completedOn.Valid {
		e.CompletedOn, _ = time.Parse(time.RFC3339, completedOn.String)
	}
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return e, nil
}

// =============================================================================
// HABITS
// =============================================================================

func (s *Store) CreateHabit(ctx context.Context, h challenge.Habit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO habits (id, enrollment_id, title, created_at)
		 VALUES (?, ?, ?, ?)`,
		h.ID.String(), h.EnrollmentID.String(), h.Title,
		h.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isIndexViolation(err, "idx_unique_habit_title") {
			return challenge.ErrDuplicateTitle
		}
		return fmt.Errorf("failed to insert habit: %w", err)
	}
	return nil
}

func (s *Store) GetHabit(ctx context.Context, id uuid.UUID) (challenge.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, enrollment_id, title, created_at FROM habits WHERE id = ?`,
		id.String())
	h, err := scanHabit(row)
	if err == sql.ErrNoRows {
		return challenge.Habit{}, challenge.ErrHabitNotFound
	}
	return h, err
}

func (s *Store) ListHabits(ctx context.Context, enrollmentID uuid.UUID) ([]challenge.Habit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, enrollment_id, title, created_at FROM habits
		 WHERE enrollment_id = ? ORDER BY created_at ASC`, enrollmentID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query habits: %w", err)
	}
	defer rows.Close()

	var out []challenge.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func scanHabit(row scanner) (challenge.Habit, error) {
	var (
		h                          challenge.Habit
		id, enrollmentID, createdAt string
	)
	if err := row.Scan(&id, &enrollmentID, &h.Title, &createdAt); err != nil {
		return h, err
	}
	h.ID, _ = uuid.Parse(id)
	h.EnrollmentID, _ = uuid.Parse(enrollmentID)
	h.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return h, nil
}

// =============================================================================
// COMPLETION LEDGER
// =============================================================================

func (s *Store) AppendLog(ctx context.Context, l challenge.HabitLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO habit_logs (id, habit_id, day, day_start, logged_at)
		 VALUES (?, ?, ?, ?, ?)`,
		l.ID.String(), l.HabitID.String(), l.Day.String(),
		l.DayStart.Format(time.RFC3339), l.LoggedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isIndexViolation(err, "idx_unique_day_log") {
			return &challenge.DuplicateLogError{HabitID: l.HabitID, Day: l.Day}
		}
		return fmt.Errorf("failed to insert habit log: %w", err)
	}
	return nil
}

func (s *Store) DeleteLog(ctx context.Context, habitID uuid.UUID, day calendar.Day) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM habit_logs WHERE habit_id = ? AND day = ?",
		habitID.String(), day.String())
	if err != nil {
		return fmt.Errorf("failed to delete habit log: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return challenge.ErrLogNotFound
	}
	return nil
}

func (s *Store) ListLogDays(ctx context.Context, habitID uuid.UUID) ([]calendar.Day, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return queryDays(ctx, s.db,
		"SELECT day FROM habit_logs WHERE habit_id = ? ORDER BY day ASC",
		habitID.String())
}

func (s *Store) ListLogDaysForEnrollment(ctx context.Context, enrollmentID uuid.UUID) (map[uuid.UUID][]calendar.Day, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT l.habit_id, l.day
		 FROM habit_logs l
		 JOIN habits h ON h.id = l.habit_id
		 WHERE h.enrollment_id = ?
		 ORDER BY l.day ASC`, enrollmentID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query enrollment logs: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]calendar.Day)
	for rows.Next() {
		var habitID, dayStr string
		if err := rows.Scan(&habitID, &dayStr); err != nil {
			return nil, err
		}
		hid, err := uuid.Parse(habitID)
		if err != nil {
			return nil, fmt.Errorf("malformed habit id %q: %w", habitID, err)
		}
		d, err := calendar.ParseDay(dayStr)
		if err != nil {
			return nil, fmt.Errorf("malformed day %q: %w", dayStr, err)
		}
		out[hid] = append(out[hid], d)
	}
	return out, rows.Err()
}

// =============================================================================
// PERSONAL STORE
// =============================================================================

// PersonalStore implements personal.Store over the parent's database.
type PersonalStore struct {
	parent *Store
}

func (p *PersonalStore) CreateHabit(ctx context.Context, h personal.Habit) error {
	p.parent.mu.Lock()
	defer p.parent.mu.Unlock()

	_, err := p.parent.db.ExecContext(ctx,
		`INSERT INTO personal_habits (id, user_id, title, archived, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		h.ID.String(), h.UserID.String(), h.Title, boolToInt(h.Archived),
		h.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isIndexViolation(err, "idx_unique_personal_title") {
			return personal.ErrDuplicateTitle
		}
		return fmt.Errorf("failed to insert personal habit: %w", err)
	}
	return nil
}

func (p *PersonalStore) GetHabit(ctx context.Context, id uuid.UUID) (personal.Habit, error) {
	p.parent.mu.RLock()
	defer p.parent.mu.RUnlock()

	row := p.parent.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, archived, created_at
		 FROM personal_habits WHERE id = ?`, id.String())
	h, err := scanPersonalHabit(row)
	if err == sql.ErrNoRows {
		return personal.Habit{}, personal.ErrHabitNotFound
	}
	return h, err
}

func (p *PersonalStore) ListHabits(ctx context.Context, userID uuid.UUID) ([]personal.Habit, error) {
	p.parent.mu.RLock()
	defer p.parent.mu.RUnlock()

	rows, err := p.parent.db.QueryContext(ctx,
		`SELECT id, user_id, title, archived, created_at
		 FROM personal_habits WHERE user_id = ? ORDER BY created_at ASC`,
		userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query personal habits: %w", err)
	}
	defer rows.Close()

	var out []personal.Habit
	for rows.Next() {
		h, err := scanPersonalHabit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (p *PersonalStore) SetArchived(ctx context.Context, id uuid.UUID, archived bool) error {
	p.parent.mu.Lock()
	defer p.parent.mu.Unlock()

	res, err := p.parent.db.ExecContext(ctx,
		"UPDATE personal_habits SET archived = ? WHERE id = ?",
		boolToInt(archived), id.String())
	if err != nil {
		return fmt.Errorf("failed to update personal habit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return personal.ErrHabitNotFound
	}
	return nil
}

func (p *PersonalStore) DeleteHabit(ctx context.Context, id uuid.UUID) error {
	p.parent.mu.Lock()
	defer p.parent.mu.Unlock()

	res, err := p.parent.db.ExecContext(ctx,
		"DELETE FROM personal_habits WHERE id = ?", id.String())
	if err != nil {
		return fmt.Errorf("failed to delete personal habit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return personal.ErrHabitNotFound
	}
	return nil
}

func (p *PersonalStore) AppendLog(ctx context.Context, l personal.Log) error {
	p.parent.mu.Lock()
	defer p.parent.mu.Unlock()

	_, err := p.parent.db.ExecContext(ctx,
		`INSERT INTO personal_habit_logs (id, habit_id, day, day_start, logged_at)
		 VALUES (?, ?, ?, ?, ?)`,
		l.ID.String(), l.HabitID.String(), l.Day.String(),
		l.DayStart.Format(time.RFC3339), l.LoggedAt.Format(time.RFC3339),
	)
	if err != nil {
		if isIndexViolation(err, "idx_unique_personal_day_log") {
			return personal.ErrAlreadyLogged
		}
		return fmt.Errorf("failed to insert personal log: %w", err)
	}
	return nil
}

func (p *PersonalStore) DeleteLog(ctx context.Context, habitID uuid.UUID, day calendar.Day) error {
	p.parent.mu.Lock()
	defer p.parent.mu.Unlock()

	res, err := p.parent.db.ExecContext(ctx,
		"DELETE FROM personal_habit_logs WHERE habit_id = ? AND day = ?",
		habitID.String(), day.String())
	if err != nil {
		return fmt.Errorf("failed to delete personal log: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return personal.ErrLogNotFound
	}
	return nil
}

func (p *PersonalStore) ListLogDays(ctx context.Context, habitID uuid.UUID) ([]calendar.Day, error) {
	p.parent.mu.RLock()
	defer p.parent.mu.RUnlock()

	return queryDays(ctx, p.parent.db,
		"SELECT day FROM personal_habit_logs WHERE habit_id = ? ORDER BY day ASC",
		habitID.String())
}

func scanPersonalHabit(row scanner) (personal.Habit, error) {
	var (
		h                     personal.Habit
		id, userID, createdAt string
		archived              int
	)
	if err := row.Scan(&id, &userID, &h.Title, &archived, &createdAt); err != nil {
		return h, err
	}
	h.ID, _ = uuid.Parse(id)
	h.UserID, _ = uuid.Parse(userID)
	h.Archived = archived != 0
	h.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return h, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func queryDays(ctx context.Context, db *sql.DB, query string, args ...any) ([]calendar.Day, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query log days: %w", err)
	}
	defer rows.Close()

	var days []calendar.Day
	for rows.Next() {
		var dayStr string
		if err := rows.Scan(&dayStr); err != nil {
			return nil, err
		}
		d, err := calendar.ParseDay(dayStr)
		if err != nil {
			return nil, fmt.Errorf("malformed day %q: %w", dayStr, err)
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

func nullDay(d calendar.Day) sql.NullString {
	if d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func nullTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339), Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// isIndexViolation reports whether err is a UNIQUE constraint failure on the
// named index. The index name is the only reliable discriminator SQLite
// exposes for constraint errors.
func isIndexViolation(err error, index string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") &&
		strings.Contains(msg, indexColumns(index))
}

// indexColumns maps an index name to the column list SQLite names in its
// UNIQUE violation message ("UNIQUE constraint failed: table.col, ...").
func indexColumns(index string) string {
	switch index {
	case "idx_unique_challenge_title":
		return "challenges.title"
	case "idx_unique_active_enrollment":
		return "enrollments.user_id, enrollments.challenge_id"
	case "idx_unique_habit_title":
		return "habits.enrollment_id, habits.title"
	case "idx_unique_day_log":
		return "habit_logs.habit_id, habit_logs.day"
	case "idx_unique_personal_title":
		return "personal_habits.user_id, personal_habits.title"
	case "idx_unique_personal_day_log":
		return "personal_habit_logs.habit_id, personal_habit_logs.day"
	default:
		return index
	}
}
