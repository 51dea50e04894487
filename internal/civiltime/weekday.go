package civiltime

import "time"

// Availability rules store weekdays Monday-first (Monday=0 .. Sunday=6),
// while time.Weekday is Sunday-first (Sunday=0 .. Saturday=6). All
// re-encoding between the two lives here; nothing else in the codebase is
// allowed to inline the shift.

// InternalWeekday is the Monday-first encoding used by stored rules.
type InternalWeekday int

// ToInternal converts a calendar weekday to the stored encoding.
func ToInternal(d time.Weekday) InternalWeekday {
	if d == time.Sunday {
		return 6
	}
	return InternalWeekday(int(d) - 1)
}

// ToCalendar converts a stored weekday back to the calendar encoding.
func ToCalendar(i InternalWeekday) time.Weekday {
	if i == 6 {
		return time.Sunday
	}
	return time.Weekday(int(i) + 1)
}
