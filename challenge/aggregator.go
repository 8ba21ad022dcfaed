package challenge

import (
	"github.com/google/uuid"

	"github.com/stridehq/habit-engine/calendar"
)

// DayCompleted reports whether every habit in habits has a completion logged
// for day. The requirement set is the habit set as it exists now: habits
// created after a day passed are still required for that day when evaluated,
// which is why habit creation is locked once progress has been counted.
//
// An enrollment with no habits is never day-completed. Accepting the vacuous
// truth would let an empty enrollment win by doing nothing.
func DayCompleted(habits []Habit, logged map[uuid.UUID][]calendar.Day, day calendar.Day) bool {
	if len(habits) == 0 {
		return false
	}
	for _, h := range habits {
		if !containsDay(logged[h.ID], day) {
			return false
		}
	}
	return true
}

// CompletedToday maps each habit to whether it has a log for day. Used by
// the progress view to render per-habit checkmarks.
func CompletedToday(habits []Habit, logged map[uuid.UUID][]calendar.Day, day calendar.Day) map[uuid.UUID]bool {
	out := make(map[uuid.UUID]bool, len(habits))
	for _, h := range habits {
		out[h.ID] = containsDay(logged[h.ID], day)
	}
	return out
}

func containsDay(days []calendar.Day, day calendar.Day) bool {
	for _, d := range days {
		if d.Equal(day) {
			return true
		}
	}
	return false
}
