package schedule

import "github.com/google/uuid"

// Slot is a derived, bookable time interval for one clinic on one civil
// date. Slots are never persisted; every query recomputes them from the
// availability rules and the appointment book.
type Slot struct {
	ClinicID   uuid.UUID `json:"clinic_id"`
	ClinicName string    `json:"clinic_name,omitempty"`
	Date       string    `json:"date"`       // YYYY-MM-DD civil
	StartTime  string    `json:"start_time"` // HH:MM civil
	EndTime    string    `json:"end_time"`   // HH:MM civil
	Available  bool      `json:"available"`
}
