package appointments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/clinicdesk/platform/pkg/logging"
)

// Handler handles HTTP requests for bookings and status transitions.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates an appointments handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// CreateBookingRequest is the POST /bookings payload.
type CreateBookingRequest struct {
	DoctorID  uuid.UUID `json:"doctor_id"`
	ClinicID  uuid.UUID `json:"clinic_id"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	PatientID uuid.UUID `json:"patient_id"`
	Notes     string    `json:"notes,omitempty"`
}

// CreateBookingResponse carries the new appointment id.
type CreateBookingResponse struct {
	AppointmentID uuid.UUID `json:"appointment_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// CreateBooking handles POST /bookings requests.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.service.Book(r.Context(), BookingRequest{
		DoctorID:  req.DoctorID,
		ClinicID:  req.ClinicID,
		Date:      req.Date,
		StartTime: req.StartTime,
		PatientID: req.PatientID,
		Notes:     req.Notes,
	})
	if err != nil {
		h.writeBookingError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(CreateBookingResponse{AppointmentID: id})
}

func (h *Handler) writeBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSlotTaken):
		writeError(w, http.StatusConflict, "slot already booked")
	case errors.Is(err, ErrNoMatchingRule):
		writeError(w, http.StatusBadRequest, err.Error())
	case IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrTxConflict):
		writeError(w, http.StatusServiceUnavailable, "booking conflict, please retry")
	default:
		h.logger.Error("booking failed", "error", err)
		writeError(w, http.StatusInternalServerError, "booking failed")
	}
}

// Complete handles POST /appointments/{id}/complete.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, StatusCompleted)
}

// Cancel handles POST /appointments/{id}/cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, StatusCancelled)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, to Status) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}

	if to == StatusCompleted {
		err = h.service.Complete(r.Context(), id)
	} else {
		err = h.service.Cancel(r.Context(), id)
	}
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment not found")
	case errors.Is(err, ErrInvalidTransition):
		writeError(w, http.StatusConflict, "appointment is not scheduled")
	case IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("transition failed", "error", err, "appointment_id", id, "status", to)
		writeError(w, http.StatusInternalServerError, "transition failed")
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(errorResponse{Error: msg})
}
