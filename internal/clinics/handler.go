package clinics

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/clinicdesk/platform/pkg/logging"
)

// Directory is the read surface handlers need.
type Directory interface {
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Clinic, error)
}

// Handler serves the clinic directory.
type Handler struct {
	directory Directory
	logger    *logging.Logger
}

// NewHandler creates a clinics handler.
func NewHandler(directory Directory, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{directory: directory, logger: logger}
}

// ListResponse is the response for listing clinics.
type ListResponse struct {
	Clinics []Clinic `json:"clinics"`
	Count   int      `json:"count"`
}

// List handles GET /clinics?doctor_id= requests.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(r.URL.Query().Get("doctor_id"))
	if err != nil {
		http.Error(w, "invalid doctor_id", http.StatusBadRequest)
		return
	}

	clinics, err := h.directory.ListByDoctor(r.Context(), doctorID)
	if err != nil {
		h.logger.Error("failed to list clinics", "error", err, "doctor_id", doctorID)
		http.Error(w, "failed to list clinics", http.StatusInternalServerError)
		return
	}
	if clinics == nil {
		clinics = []Clinic{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListResponse{Clinics: clinics, Count: len(clinics)})
}
