package appointments

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	// StatusScheduled is the only state the booking flow produces.
	StatusScheduled Status = "scheduled"
	// StatusCompleted is set by the consultation workflow; the original
	// slot stays occupied for audit purposes.
	StatusCompleted Status = "completed"
	// StatusCancelled frees the slot immediately.
	StatusCancelled Status = "cancelled"
)

// Occupies reports whether an appointment in this status blocks its slot.
func (s Status) Occupies() bool {
	return s == StatusScheduled || s == StatusCompleted
}

// Appointment is a booked occupancy of a doctor's time. Times are stored
// in UTC; the civil view is derived through the clinic clock.
type Appointment struct {
	ID        uuid.UUID `json:"id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	ClinicID  uuid.UUID `json:"clinic_id"`
	PatientID uuid.UUID `json:"patient_id"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	Status    Status    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
