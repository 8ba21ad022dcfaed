package personal

import "errors"

var (
	// ErrHabitNotFound is returned when a referenced habit doesn't exist or
	// belongs to another user.
	ErrHabitNotFound = errors.New("personal habit not found")

	// ErrLogNotFound is returned when unlogging a day with no entry.
	ErrLogNotFound = errors.New("completion log not found")

	// ErrAlreadyLogged is returned when logging a (habit, day) pair that
	// already has an entry.
	ErrAlreadyLogged = errors.New("habit already logged for this day")

	// ErrDuplicateTitle is returned on a case-insensitive title collision
	// within the user's habits.
	ErrDuplicateTitle = errors.New("title already in use")

	// ErrHabitArchived is returned when logging against an archived habit.
	ErrHabitArchived = errors.New("habit is archived")
)

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrHabitNotFound) || errors.Is(err, ErrLogNotFound)
}

// IsConflict returns true if the error is a uniqueness violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyLogged) || errors.Is(err, ErrDuplicateTitle)
}

// IsInvalidState returns true if the error is a rejected precondition.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrHabitArchived)
}
