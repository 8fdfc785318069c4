package appointments

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("appointment not found")
	// ErrSlotTaken signals a booking race: another patient already holds
	// the slot.
	ErrSlotTaken      = errors.New("slot already booked")
	ErrInvalidStatus  = errors.New("invalid appointment status")
	ErrNotSlotOwner   = errors.New("slot belongs to another doctor")
	ErrInvalidWindow  = errors.New("invalid time window")
	ErrSlotNotFound   = errors.New("availability slot not found")
	ErrNotAppointment = errors.New("appointment belongs to another doctor")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return Status(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

// Slot is a bookable window a doctor has published.
type Slot struct {
	ID       uuid.UUID `json:"id"`
	DoctorID uuid.UUID `json:"doctor_id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Booked   bool      `json:"booked"`
}

// Appointment links a patient to a booked slot. Its id doubles as the
// video-call room name.
type Appointment struct {
	ID        uuid.UUID `json:"id"`
	SlotID    uuid.UUID `json:"slot_id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	PatientID uuid.UUID `json:"patient_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// RoomName is the signaling room for this appointment's video call. Room
// names only admit word characters, so the uuid is rendered without
// hyphens.
func (a *Appointment) RoomName() string {
	return strings.ReplaceAll(a.ID.String(), "-", "")
}
