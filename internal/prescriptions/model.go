package prescriptions

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("prescription not found")
	// ErrForbidden hides prescriptions from anyone who is neither the
	// authoring doctor nor the receiving patient.
	ErrForbidden = errors.New("prescription not visible to caller")
	ErrEmptyText = errors.New("prescription text is required")
)

// Prescription is a doctor-authored note tied to a patient and, usually,
// to the consultation room it was written in.
type Prescription struct {
	ID        uuid.UUID `json:"id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	PatientID uuid.UUID `json:"patient_id"`
	RoomID    string    `json:"room_id,omitempty"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
