package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/platform/internal/appointments"
	"github.com/clinicdesk/platform/internal/civiltime"
	"github.com/clinicdesk/platform/pkg/logging"
)

type stubLister struct {
	appts []appointments.Appointment
	err   error

	gotDoctor uuid.UUID
	gotFrom   time.Time
	gotTo     time.Time
}

func (s *stubLister) ListBetween(_ context.Context, doctorID uuid.UUID, from, to time.Time) ([]appointments.Appointment, error) {
	s.gotDoctor = doctorID
	s.gotFrom = from
	s.gotTo = to
	return s.appts, s.err
}

func mustClock(t *testing.T) *civiltime.Clock {
	t.Helper()
	clock, err := civiltime.NewClock("America/New_York")
	require.NoError(t, err)
	return clock
}

func TestAdminAppointmentsList(t *testing.T) {
	clock := mustClock(t)
	doctorID := uuid.New()
	startsAt, err := clock.ToUTC("2025-03-10", "09:00")
	require.NoError(t, err)

	lister := &stubLister{appts: []appointments.Appointment{{
		ID:        uuid.New(),
		DoctorID:  doctorID,
		ClinicID:  uuid.New(),
		PatientID: uuid.New(),
		StartsAt:  startsAt,
		EndsAt:    startsAt.Add(time.Hour),
		Status:    appointments.StatusScheduled,
	}}}
	h := NewAdminAppointmentsHandler(lister, clock, logging.Default())

	req := httptest.NewRequest(http.MethodGet,
		"/admin/appointments?doctor_id="+doctorID.String()+"&from=2025-03-10&to=2025-03-11", nil)
	rr := httptest.NewRecorder()
	h.List(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp adminAppointmentsResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Len(t, resp.Appointments, 1)
	assert.Equal(t, "2025-03-10", resp.Appointments[0].Date)
	assert.Equal(t, "09:00", resp.Appointments[0].StartTime)
	assert.Equal(t, "10:00", resp.Appointments[0].EndTime)
	assert.Equal(t, appointments.StatusScheduled, resp.Appointments[0].Status)

	assert.Equal(t, doctorID, lister.gotDoctor)
	// Inclusive range: from is the start of the first day, to the end of the last.
	assert.True(t, lister.gotFrom.Before(startsAt))
	assert.True(t, lister.gotTo.After(startsAt.Add(24*time.Hour)))
}

func TestAdminAppointmentsListValidation(t *testing.T) {
	h := NewAdminAppointmentsHandler(&stubLister{}, mustClock(t), logging.Default())
	doctorID := uuid.New().String()

	cases := []struct {
		name string
		url  string
	}{
		{"missing doctor", "/admin/appointments?from=2025-03-10&to=2025-03-11"},
		{"bad doctor", "/admin/appointments?doctor_id=nope&from=2025-03-10&to=2025-03-11"},
		{"missing range", "/admin/appointments?doctor_id=" + doctorID},
		{"bad from", "/admin/appointments?doctor_id=" + doctorID + "&from=03/10/2025&to=2025-03-11"},
		{"bad to", "/admin/appointments?doctor_id=" + doctorID + "&from=2025-03-10&to=tomorrow"},
		{"inverted range", "/admin/appointments?doctor_id=" + doctorID + "&from=2025-03-12&to=2025-03-10"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.List(rr, httptest.NewRequest(http.MethodGet, tc.url, nil))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestAdminAppointmentsListRepoError(t *testing.T) {
	h := NewAdminAppointmentsHandler(&stubLister{err: assert.AnError}, mustClock(t), logging.Default())
	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet,
		"/admin/appointments?doctor_id="+uuid.New().String()+"&from=2025-03-10&to=2025-03-11", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
