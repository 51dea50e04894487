package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/platform/internal/appointments"
	"github.com/clinicdesk/platform/internal/civiltime"
	"github.com/clinicdesk/platform/pkg/logging"
)

// AppointmentLister is the read surface the admin listing needs.
type AppointmentLister interface {
	ListBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]appointments.Appointment, error)
}

// AdminAppointmentsHandler serves the back-office appointment listing.
type AdminAppointmentsHandler struct {
	repo   AppointmentLister
	clock  *civiltime.Clock
	logger *logging.Logger
}

func NewAdminAppointmentsHandler(repo AppointmentLister, clock *civiltime.Clock, logger *logging.Logger) *AdminAppointmentsHandler {
	if repo == nil {
		panic("handlers: appointment lister required")
	}
	if clock == nil {
		panic("handlers: clock required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminAppointmentsHandler{repo: repo, clock: clock, logger: logger}
}

type adminAppointment struct {
	ID        uuid.UUID           `json:"id"`
	DoctorID  uuid.UUID           `json:"doctor_id"`
	ClinicID  uuid.UUID           `json:"clinic_id"`
	PatientID uuid.UUID           `json:"patient_id"`
	Date      string              `json:"date"`
	StartTime string              `json:"start_time"`
	EndTime   string              `json:"end_time"`
	Status    appointments.Status `json:"status"`
	Notes     string              `json:"notes,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
}

type adminAppointmentsResponse struct {
	Appointments []adminAppointment `json:"appointments"`
}

// List handles GET /admin/appointments?doctor_id=&from=&to=. The from and
// to parameters are clinic-local dates; the range is inclusive on both ends.
func (h *AdminAppointmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(r.URL.Query().Get("doctor_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "doctor_id must be a valid uuid")
		return
	}
	fromDate := r.URL.Query().Get("from")
	toDate := r.URL.Query().Get("to")
	if fromDate == "" || toDate == "" {
		writeError(w, http.StatusBadRequest, "from and to dates are required")
		return
	}

	from, _, err := h.clock.DayBounds(fromDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "from must be formatted YYYY-MM-DD")
		return
	}
	_, to, err := h.clock.DayBounds(toDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "to must be formatted YYYY-MM-DD")
		return
	}
	if !from.Before(to) {
		writeError(w, http.StatusBadRequest, "from must not be after to")
		return
	}

	appts, err := h.repo.ListBetween(r.Context(), doctorID, from, to)
	if err != nil {
		h.logger.Error("admin appointment listing failed", "error", err, "doctor_id", doctorID)
		writeError(w, http.StatusInternalServerError, "failed to list appointments")
		return
	}

	resp := adminAppointmentsResponse{Appointments: make([]adminAppointment, 0, len(appts))}
	for _, a := range appts {
		date, start := h.clock.FromUTC(a.StartsAt)
		_, end := h.clock.FromUTC(a.EndsAt)
		resp.Appointments = append(resp.Appointments, adminAppointment{
			ID:        a.ID,
			DoctorID:  a.DoctorID,
			ClinicID:  a.ClinicID,
			PatientID: a.PatientID,
			Date:      date,
			StartTime: start,
			EndTime:   end,
			Status:    a.Status,
			Notes:     a.Notes,
			CreatedAt: a.CreatedAt,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("encode admin appointments response", "error", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
