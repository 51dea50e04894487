package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/clinicdesk/platform/internal/appointments"
	"github.com/clinicdesk/platform/internal/availability"
	"github.com/clinicdesk/platform/internal/clinics"
)

type stubClinicLister struct {
	clinics []clinics.Clinic
	calls   int
}

func (s *stubClinicLister) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]clinics.Clinic, error) {
	s.calls++
	return s.clinics, nil
}

type stubRuleLister struct {
	byClinic map[uuid.UUID][]availability.Rule
}

func (s *stubRuleLister) ListActiveByClinic(ctx context.Context, clinicID uuid.UUID) ([]availability.Rule, error) {
	return s.byClinic[clinicID], nil
}

type stubApptLister struct {
	appts []appointments.Appointment
}

func (s *stubApptLister) ListOccupyingBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]appointments.Appointment, error) {
	return s.appts, nil
}

func TestSlotsEndToEnd(t *testing.T) {
	clock := testClock(t)
	doctorID := uuid.New()
	clinicC := uuid.New()
	clinicC2 := uuid.New()

	clinicSource := &stubClinicLister{clinics: []clinics.Clinic{
		{ID: clinicC, DoctorID: doctorID, Name: "Main Street"},
		{ID: clinicC2, DoctorID: doctorID, Name: "Riverside"},
	}}
	rules := &stubRuleLister{byClinic: map[uuid.UUID][]availability.Rule{
		clinicC:  {{ClinicID: clinicC, Weekday: 0, StartTime: "09:00", EndTime: "13:00", SlotMinutes: 60, IsActive: true}},
		clinicC2: {{ClinicID: clinicC2, Weekday: 0, StartTime: "10:00", EndTime: "12:00", SlotMinutes: 60, IsActive: true}},
	}}

	booked, _ := clock.ToUTC("2025-03-10", "10:00")
	appts := &stubApptLister{appts: []appointments.Appointment{{
		DoctorID: doctorID,
		ClinicID: clinicC,
		StartsAt: booked,
		Status:   appointments.StatusScheduled,
	}}}

	svc := NewService(clinicSource, rules, appts, clock, 60, nil)

	slots, err := svc.Slots(context.Background(), doctorID, "2025-03-10", nil)
	if err != nil {
		t.Fatalf("Slots: %v", err)
	}
	// 4 slots at C plus 2 at C2.
	if len(slots) != 6 {
		t.Fatalf("expected 6 slots, got %d", len(slots))
	}
	for _, slot := range slots {
		taken := slot.ClinicID == clinicC && slot.StartTime == "10:00"
		if slot.Available == taken {
			t.Errorf("slot %s@%s availability = %v", slot.StartTime, slot.ClinicName, slot.Available)
		}
	}

	// Clinic names are attached from the directory.
	if slots[0].ClinicName != "Main Street" {
		t.Errorf("expected clinic name on slot, got %q", slots[0].ClinicName)
	}

	// Narrowing to C2 keeps only its slots, all available.
	narrowed, err := svc.Slots(context.Background(), doctorID, "2025-03-10", &clinicC2)
	if err != nil {
		t.Fatalf("Slots narrowed: %v", err)
	}
	if len(narrowed) != 2 {
		t.Fatalf("expected 2 slots for clinic C2, got %d", len(narrowed))
	}
	for _, slot := range narrowed {
		if !slot.Available {
			t.Errorf("C2 slot %s should be available despite the C booking", slot.StartTime)
		}
	}
}

func TestSlotsInvalidDate(t *testing.T) {
	svc := NewService(&stubClinicLister{}, &stubRuleLister{}, &stubApptLister{}, testClock(t), 60, nil)
	if _, err := svc.Slots(context.Background(), uuid.New(), "10/03/2025", nil); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestSlotsCacheHitSkipsSources(t *testing.T) {
	clock := testClock(t)
	doctorID := uuid.New()
	clinicID := uuid.New()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	cache := NewSlotCache(rdb, time.Minute, nil)

	clinicSource := &stubClinicLister{clinics: []clinics.Clinic{{ID: clinicID, DoctorID: doctorID, Name: "Main"}}}
	rules := &stubRuleLister{byClinic: map[uuid.UUID][]availability.Rule{
		clinicID: {{ClinicID: clinicID, Weekday: 0, StartTime: "09:00", EndTime: "11:00", SlotMinutes: 60, IsActive: true}},
	}}
	svc := NewService(clinicSource, rules, &stubApptLister{}, clock, 60, nil).WithCache(cache)

	if _, err := svc.Slots(context.Background(), doctorID, "2025-03-10", nil); err != nil {
		t.Fatalf("first query: %v", err)
	}
	if _, err := svc.Slots(context.Background(), doctorID, "2025-03-10", nil); err != nil {
		t.Fatalf("second query: %v", err)
	}
	if clinicSource.calls != 1 {
		t.Fatalf("expected one source read thanks to the cache, got %d", clinicSource.calls)
	}

	// Invalidation forces a recompute, the freed-slot guarantee after a
	// cancellation depends on it.
	cache.Invalidate(context.Background(), doctorID, "2025-03-10")
	if _, err := svc.Slots(context.Background(), doctorID, "2025-03-10", nil); err != nil {
		t.Fatalf("third query: %v", err)
	}
	if clinicSource.calls != 2 {
		t.Fatalf("expected recompute after invalidation, got %d reads", clinicSource.calls)
	}
}
