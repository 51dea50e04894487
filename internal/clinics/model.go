package clinics

import (
	"time"

	"github.com/google/uuid"
)

// Clinic is a physical practice location belonging to one doctor.
// Creation and editing happen outside the scheduling engine; this package
// only reads the directory.
type Clinic struct {
	ID        uuid.UUID `json:"id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}
