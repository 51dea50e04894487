package civiltime

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the wire format for civil dates.
	DateLayout = "2006-01-02"
	// TimeLayout is the wire format for civil wall-clock times.
	TimeLayout = "15:04"
)

// Clock converts between UTC instants (as persisted) and civil wall-clock
// time in the clinic's configured timezone. The zone is fixed once per
// deployment; per-clinic zones are out of scope.
type Clock struct {
	loc *time.Location
}

// NewClock resolves the named zone. An unknown zone is a configuration
// error and should abort startup.
func NewClock(zone string) (*Clock, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("civiltime: unknown timezone %q: %w", zone, err)
	}
	return &Clock{loc: loc}, nil
}

// Location exposes the underlying zone, mainly for tests.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// ToUTC interprets a civil date ("2006-01-02") and time ("15:04") in the
// clinic zone and returns the UTC instant.
func (c *Clock) ToUTC(date, wallClock string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+wallClock, c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("civiltime: parse %q %q: %w", date, wallClock, err)
	}
	return t.UTC(), nil
}

// FromUTC converts a UTC instant to the civil (date, time) pair in the
// clinic zone.
func (c *Clock) FromUTC(instant time.Time) (date, wallClock string) {
	local := instant.In(c.loc)
	return local.Format(DateLayout), local.Format(TimeLayout)
}

// DayBounds returns the UTC instants covering the whole civil day, as a
// half-open interval [start, end).
func (c *Clock) DayBounds(date string) (start, end time.Time, err error) {
	day, err := time.ParseInLocation(DateLayout, date, c.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("civiltime: parse date %q: %w", date, err)
	}
	return day.UTC(), day.AddDate(0, 0, 1).UTC(), nil
}

// Weekday returns the calendar weekday of a civil date in the clinic zone.
func (c *Clock) Weekday(date string) (time.Weekday, error) {
	day, err := time.ParseInLocation(DateLayout, date, c.loc)
	if err != nil {
		return 0, fmt.Errorf("civiltime: parse date %q: %w", date, err)
	}
	return day.Weekday(), nil
}

// MinutesOfDay parses "HH:MM" into minutes since midnight.
func MinutesOfDay(wallClock string) (int, error) {
	t, err := time.Parse(TimeLayout, wallClock)
	if err != nil {
		return 0, fmt.Errorf("civiltime: parse time %q: %w", wallClock, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatMinutes renders minutes since midnight as "HH:MM".
func FormatMinutes(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
