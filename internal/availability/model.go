package availability

import (
	"errors"

	"github.com/google/uuid"

	"github.com/clinicdesk/platform/internal/civiltime"
)

var (
	// ErrInvalidWindow is returned when start_time is not before end_time.
	ErrInvalidWindow = errors.New("start_time must be before end_time")

	// ErrInvalidDuration is returned when the slot duration is not positive.
	ErrInvalidDuration = errors.New("slot duration must be positive")
)

// Rule is a recurring weekly open-hours window for one clinic. Doctors and
// assistants manage rules elsewhere; the scheduling engine only reads them.
// Multiple rules may exist for the same clinic and weekday (morning and
// afternoon windows) and are not assumed non-overlapping.
type Rule struct {
	ID          uuid.UUID                 `json:"id"`
	ClinicID    uuid.UUID                 `json:"clinic_id"`
	Weekday     civiltime.InternalWeekday `json:"weekday"`
	StartTime   string                    `json:"start_time"` // HH:MM civil
	EndTime     string                    `json:"end_time"`   // HH:MM civil
	SlotMinutes int                       `json:"slot_duration_minutes"`
	IsActive    bool                      `json:"is_active"`
}

// Validate checks the rule's window and duration.
func (r *Rule) Validate() error {
	start, err := civiltime.MinutesOfDay(r.StartTime)
	if err != nil {
		return err
	}
	end, err := civiltime.MinutesOfDay(r.EndTime)
	if err != nil {
		return err
	}
	if start >= end {
		return ErrInvalidWindow
	}
	if r.SlotMinutes <= 0 {
		return ErrInvalidDuration
	}
	return nil
}
