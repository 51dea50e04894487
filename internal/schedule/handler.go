package schedule

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/clinicdesk/platform/pkg/logging"
)

// Handler serves the slot query endpoint.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a schedule handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// SlotsResponse is the response for a slot query.
type SlotsResponse struct {
	Date  string `json:"date"`
	Slots []Slot `json:"slots"`
	Count int    `json:"count"`
}

// Slots handles GET /slots?doctor_id=&date=&clinic_id= requests.
func (h *Handler) Slots(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(r.URL.Query().Get("doctor_id"))
	if err != nil {
		http.Error(w, "invalid doctor_id", http.StatusBadRequest)
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		http.Error(w, "missing date", http.StatusBadRequest)
		return
	}

	var clinicID *uuid.UUID
	if raw := r.URL.Query().Get("clinic_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			http.Error(w, "invalid clinic_id", http.StatusBadRequest)
			return
		}
		clinicID = &id
	}

	slots, err := h.service.Slots(r.Context(), doctorID, date, clinicID)
	if err != nil {
		// A date the clock cannot parse is caller input error.
		if _, parseErr := h.service.clock.Weekday(date); parseErr != nil {
			http.Error(w, "invalid date", http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to materialize slots", "error", err, "doctor_id", doctorID, "date", date)
		http.Error(w, "failed to list slots", http.StatusInternalServerError)
		return
	}
	if slots == nil {
		slots = []Slot{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SlotsResponse{Date: date, Slots: slots, Count: len(slots)})
}
