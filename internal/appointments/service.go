package appointments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/clinicdesk/platform/internal/availability"
	"github.com/clinicdesk/platform/internal/civiltime"
	"github.com/clinicdesk/platform/internal/clinics"
	"github.com/clinicdesk/platform/internal/observability/metrics"
	"github.com/clinicdesk/platform/pkg/logging"
)

var bookingTracer = otel.Tracer("clinicdesk.internal.appointments")

// txConflictRetries bounds retries for store-level serialization failures.
// Slot-taken is a business outcome and is never retried.
const txConflictRetries = 2

// RuleSource supplies the active availability rules for a clinic.
type RuleSource interface {
	ListActiveByClinic(ctx context.Context, clinicID uuid.UUID) ([]availability.Rule, error)
}

// ClinicSource verifies clinic ownership.
type ClinicSource interface {
	GetForDoctor(ctx context.Context, doctorID, clinicID uuid.UUID) (*clinics.Clinic, error)
}

// Store is the persistence surface the service needs.
type Store interface {
	Insert(ctx context.Context, appt *Appointment) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Transition(ctx context.Context, id uuid.UUID, to Status) error
}

// SlotInvalidator drops cached slot views after a write. A nil invalidator
// disables invalidation.
type SlotInvalidator interface {
	Invalidate(ctx context.Context, doctorID uuid.UUID, date string)
}

// BookingRequest is one attempt to book a concrete slot.
type BookingRequest struct {
	DoctorID  uuid.UUID
	ClinicID  uuid.UUID
	Date      string // YYYY-MM-DD civil
	StartTime string // HH:MM civil
	PatientID uuid.UUID
	Notes     string
}

// Service owns the booking transaction and the guarded status transitions.
type Service struct {
	store       Store
	rules       RuleSource
	clinics     ClinicSource
	clock       *civiltime.Clock
	invalidator SlotInvalidator
	metrics     *metrics.SchedulingMetrics
	logger      *logging.Logger

	// Fallback when a matching rule carries no duration of its own.
	defaultSlotMinutes int
}

// NewService constructs the booking service.
func NewService(store Store, rules RuleSource, clinicSource ClinicSource, clock *civiltime.Clock, defaultSlotMinutes int, logger *logging.Logger) *Service {
	if store == nil {
		panic("appointments: store required")
	}
	if clock == nil {
		panic("appointments: clock required")
	}
	if defaultSlotMinutes <= 0 {
		defaultSlotMinutes = 60
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:              store,
		rules:              rules,
		clinics:            clinicSource,
		clock:              clock,
		defaultSlotMinutes: defaultSlotMinutes,
		logger:             logger,
	}
}

// WithInvalidator attaches a slot-cache invalidator.
func (s *Service) WithInvalidator(inv SlotInvalidator) *Service {
	s.invalidator = inv
	return s
}

// WithMetrics attaches scheduling metrics.
func (s *Service) WithMetrics(m *metrics.SchedulingMetrics) *Service {
	s.metrics = m
	return s
}

// Book re-validates the requested slot against the active rules and
// inserts the appointment. Client-supplied availability is never trusted:
// the slot must be a boundary an active rule could generate, and the
// unique index decides occupancy at commit time.
func (s *Service) Book(ctx context.Context, req BookingRequest) (uuid.UUID, error) {
	ctx, span := bookingTracer.Start(ctx, "appointments.book")
	defer span.End()
	span.SetAttributes(
		attribute.String("clinicdesk.doctor_id", req.DoctorID.String()),
		attribute.String("clinicdesk.clinic_id", req.ClinicID.String()),
		attribute.String("clinicdesk.date", req.Date),
	)

	if req.DoctorID == uuid.Nil {
		s.metrics.ObserveBooking("invalid")
		return uuid.Nil, &ValidationError{Field: "doctor_id", Reason: "required"}
	}
	if req.ClinicID == uuid.Nil {
		s.metrics.ObserveBooking("invalid")
		return uuid.Nil, &ValidationError{Field: "clinic_id", Reason: "required"}
	}
	if req.PatientID == uuid.Nil {
		s.metrics.ObserveBooking("invalid")
		return uuid.Nil, &ValidationError{Field: "patient_id", Reason: "required"}
	}

	if s.clinics != nil {
		if _, err := s.clinics.GetForDoctor(ctx, req.DoctorID, req.ClinicID); err != nil {
			s.metrics.ObserveBooking("invalid")
			if errors.Is(err, clinics.ErrClinicNotFound) {
				return uuid.Nil, &ValidationError{Field: "clinic_id", Reason: "unknown clinic for doctor"}
			}
			return uuid.Nil, err
		}
	}

	duration, err := s.matchRule(ctx, req)
	if err != nil {
		s.metrics.ObserveBooking("invalid")
		return uuid.Nil, err
	}

	startsAt, err := s.clock.ToUTC(req.Date, req.StartTime)
	if err != nil {
		s.metrics.ObserveBooking("invalid")
		return uuid.Nil, &ValidationError{Field: "date", Reason: err.Error()}
	}
	appt := &Appointment{
		DoctorID:  req.DoctorID,
		ClinicID:  req.ClinicID,
		PatientID: req.PatientID,
		StartsAt:  startsAt,
		EndsAt:    startsAt.Add(duration),
		Notes:     req.Notes,
	}

	var id uuid.UUID
	for attempt := 0; ; attempt++ {
		id, err = s.store.Insert(ctx, appt)
		if err == nil {
			break
		}
		if errors.Is(err, ErrTxConflict) && attempt < txConflictRetries {
			s.logger.Warn("booking transaction conflict, retrying",
				"doctor_id", req.DoctorID, "clinic_id", req.ClinicID, "date", req.Date, "attempt", attempt+1)
			continue
		}
		span.RecordError(err)
		switch {
		case errors.Is(err, ErrSlotTaken):
			// Normal contention outcome, not an operational error.
			s.metrics.ObserveBooking("slot_taken")
			s.logger.Info("slot already booked",
				"doctor_id", req.DoctorID, "clinic_id", req.ClinicID, "date", req.Date, "start_time", req.StartTime)
		case errors.Is(err, ErrTxConflict):
			s.metrics.ObserveBooking("conflict")
			s.logger.Error("booking failed after conflict retries",
				"doctor_id", req.DoctorID, "clinic_id", req.ClinicID, "date", req.Date)
		default:
			s.metrics.ObserveBooking("error")
			s.logger.Error("booking insert failed", "error", err,
				"doctor_id", req.DoctorID, "clinic_id", req.ClinicID, "date", req.Date)
		}
		return uuid.Nil, err
	}

	s.metrics.ObserveBooking("booked")
	s.logger.Info("appointment booked",
		"appointment_id", id, "doctor_id", req.DoctorID, "clinic_id", req.ClinicID,
		"date", req.Date, "start_time", req.StartTime)
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, req.DoctorID, req.Date)
	}
	return id, nil
}

// matchRule finds the active rule whose slot grid contains the requested
// start time and returns the booking duration.
func (s *Service) matchRule(ctx context.Context, req BookingRequest) (time.Duration, error) {
	weekday, err := s.clock.Weekday(req.Date)
	if err != nil {
		return 0, &ValidationError{Field: "date", Reason: err.Error()}
	}
	startMin, err := civiltime.MinutesOfDay(req.StartTime)
	if err != nil {
		return 0, &ValidationError{Field: "start_time", Reason: err.Error()}
	}

	rules, err := s.rules.ListActiveByClinic(ctx, req.ClinicID)
	if err != nil {
		return 0, err
	}

	internal := civiltime.ToInternal(weekday)
	for _, rule := range rules {
		if rule.Weekday != internal {
			continue
		}
		ruleStart, err := civiltime.MinutesOfDay(rule.StartTime)
		if err != nil {
			continue
		}
		ruleEnd, err := civiltime.MinutesOfDay(rule.EndTime)
		if err != nil {
			continue
		}
		minutes := rule.SlotMinutes
		if minutes <= 0 {
			minutes = s.defaultSlotMinutes
		}
		if startMin < ruleStart || (startMin-ruleStart)%minutes != 0 {
			continue
		}
		if startMin+minutes > ruleEnd {
			continue
		}
		return time.Duration(minutes) * time.Minute, nil
	}
	return 0, ErrNoMatchingRule
}

// Complete marks a scheduled appointment completed. The slot stays
// occupied for its historical date.
func (s *Service) Complete(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, StatusCompleted)
}

// Cancel frees the slot for rebooking on the next query.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, StatusCancelled)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to Status) error {
	appt, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Transition(ctx, id, to); err != nil {
		return err
	}
	date, _ := s.clock.FromUTC(appt.StartsAt)
	s.logger.Info("appointment transitioned",
		"appointment_id", id, "doctor_id", appt.DoctorID, "clinic_id", appt.ClinicID,
		"date", date, "status", to)
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, appt.DoctorID, date)
	}
	return nil
}
