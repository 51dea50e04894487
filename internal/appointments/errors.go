package appointments

import (
	"errors"
	"fmt"
)

var (
	// ErrSlotTaken is returned when another appointment already occupies
	// the requested doctor/clinic/time. Expected under contention; the
	// caller should re-query slots and pick again.
	ErrSlotTaken = errors.New("slot already booked")

	// ErrTxConflict is returned when the store reports a transaction
	// conflict distinct from a legitimate occupancy conflict. The service
	// retries these before surfacing.
	ErrTxConflict = errors.New("transaction conflict")

	// ErrNoMatchingRule is returned when the requested start time is not a
	// boundary any active availability rule could have produced.
	ErrNoMatchingRule = errors.New("start time does not match an open availability window")

	// ErrAppointmentNotFound is returned for unknown appointment ids.
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrInvalidTransition is returned when a status change is requested
	// on an appointment that is no longer scheduled.
	ErrInvalidTransition = errors.New("appointment is not in scheduled state")
)

// ValidationError marks malformed caller input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is caller input error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
