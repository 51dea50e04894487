package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/platform/internal/appointments"
	"github.com/clinicdesk/platform/internal/availability"
	"github.com/clinicdesk/platform/internal/civiltime"
	"github.com/clinicdesk/platform/internal/clinics"
	"github.com/clinicdesk/platform/internal/observability/metrics"
	"github.com/clinicdesk/platform/pkg/logging"
)

// ClinicLister supplies the doctor's clinics.
type ClinicLister interface {
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]clinics.Clinic, error)
}

// RuleLister supplies the active rules per clinic.
type RuleLister interface {
	ListActiveByClinic(ctx context.Context, clinicID uuid.UUID) ([]availability.Rule, error)
}

// AppointmentLister supplies the occupying appointments for a UTC window.
type AppointmentLister interface {
	ListOccupyingBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]appointments.Appointment, error)
}

// Service materializes bookable slots for a doctor and date: rule
// expansion, occupancy resolution, and the short-lived cache in front.
type Service struct {
	clinics ClinicLister
	rules   RuleLister
	appts   AppointmentLister
	clock   *civiltime.Clock
	cache   *SlotCache
	metrics *metrics.SchedulingMetrics
	logger  *logging.Logger

	defaultSlotMinutes int
}

// NewService constructs the slot query service.
func NewService(clinicSource ClinicLister, rules RuleLister, appts AppointmentLister, clock *civiltime.Clock, defaultSlotMinutes int, logger *logging.Logger) *Service {
	if clock == nil {
		panic("schedule: clock required")
	}
	if defaultSlotMinutes <= 0 {
		defaultSlotMinutes = 60
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		clinics:            clinicSource,
		rules:              rules,
		appts:              appts,
		clock:              clock,
		defaultSlotMinutes: defaultSlotMinutes,
		logger:             logger,
	}
}

// WithCache attaches the slot cache.
func (s *Service) WithCache(cache *SlotCache) *Service {
	s.cache = cache
	return s
}

// WithMetrics attaches scheduling metrics.
func (s *Service) WithMetrics(m *metrics.SchedulingMetrics) *Service {
	s.metrics = m
	return s
}

// Slots returns the ordered candidate slots for the doctor on the civil
// date, with availability resolved against the current appointment book.
// When clinicID is non-nil the result is narrowed to that clinic; the
// cache always holds the full doctor-day view so invalidation stays a
// single key.
func (s *Service) Slots(ctx context.Context, doctorID uuid.UUID, date string, clinicID *uuid.UUID) ([]Slot, error) {
	started := time.Now()

	weekday, err := s.clock.Weekday(date)
	if err != nil {
		s.metrics.ObserveSlotQuery("invalid", time.Since(started).Seconds())
		return nil, err
	}

	if cached, ok := s.cache.Get(ctx, doctorID, date); ok {
		s.metrics.ObserveCache("hit")
		s.metrics.ObserveSlotQuery("ok", time.Since(started).Seconds())
		return filterByClinic(cached, clinicID), nil
	}
	s.metrics.ObserveCache("miss")

	clinicList, err := s.clinics.ListByDoctor(ctx, doctorID)
	if err != nil {
		s.metrics.ObserveSlotQuery("error", time.Since(started).Seconds())
		return nil, err
	}

	names := make(map[uuid.UUID]string, len(clinicList))
	var allRules []availability.Rule
	for _, clinic := range clinicList {
		names[clinic.ID] = clinic.Name
		rules, err := s.rules.ListActiveByClinic(ctx, clinic.ID)
		if err != nil {
			s.metrics.ObserveSlotQuery("error", time.Since(started).Seconds())
			return nil, err
		}
		allRules = append(allRules, rules...)
	}

	candidates, err := Expand(allRules, date, weekday, s.defaultSlotMinutes)
	if err != nil {
		s.metrics.ObserveSlotQuery("error", time.Since(started).Seconds())
		return nil, fmt.Errorf("schedule: expand rules: %w", err)
	}
	for i := range candidates {
		candidates[i].ClinicName = names[candidates[i].ClinicID]
	}

	from, to, err := s.clock.DayBounds(date)
	if err != nil {
		s.metrics.ObserveSlotQuery("invalid", time.Since(started).Seconds())
		return nil, err
	}
	appts, err := s.appts.ListOccupyingBetween(ctx, doctorID, from, to)
	if err != nil {
		s.metrics.ObserveSlotQuery("error", time.Since(started).Seconds())
		return nil, err
	}

	resolved := Resolve(candidates, appts, s.clock)
	s.cache.Set(ctx, doctorID, date, resolved)

	s.metrics.ObserveSlotQuery("ok", time.Since(started).Seconds())
	s.logger.Debug("slots materialized",
		"doctor_id", doctorID, "date", date, "slots", len(resolved), "appointments", len(appts))
	return filterByClinic(resolved, clinicID), nil
}

func filterByClinic(slots []Slot, clinicID *uuid.UUID) []Slot {
	if clinicID == nil {
		return slots
	}
	out := make([]Slot, 0, len(slots))
	for _, slot := range slots {
		if slot.ClinicID == *clinicID {
			out = append(out, slot)
		}
	}
	return out
}
