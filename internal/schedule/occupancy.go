package schedule

import (
	"github.com/google/uuid"

	"github.com/clinicdesk/platform/internal/appointments"
	"github.com/clinicdesk/platform/internal/civiltime"
)

type occupancyKey struct {
	clinicID uuid.UUID
	date     string
	start    string
}

// Resolve marks each candidate slot available or occupied. An appointment
// occupies only while scheduled or completed; cancelled appointments free
// their slot immediately. Occupancy is scoped to the clinic: the same
// doctor's appointment at another clinic never blocks a slot here.
func Resolve(slots []Slot, appts []appointments.Appointment, clock *civiltime.Clock) []Slot {
	occupied := make(map[occupancyKey]struct{}, len(appts))
	for _, appt := range appts {
		if !appt.Status.Occupies() {
			continue
		}
		date, start := clock.FromUTC(appt.StartsAt)
		occupied[occupancyKey{clinicID: appt.ClinicID, date: date, start: start}] = struct{}{}
	}

	out := make([]Slot, len(slots))
	for i, slot := range slots {
		_, taken := occupied[occupancyKey{clinicID: slot.ClinicID, date: slot.Date, start: slot.StartTime}]
		slot.Available = !taken
		out[i] = slot
	}
	return out
}
