package appointments

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type SlotRepository interface {
	Create(ctx context.Context, s *Slot) error
	CreateBatch(ctx context.Context, slots []*Slot) error
	GetByID(ctx context.Context, id uuid.UUID) (*Slot, error)
	// ListFree returns unbooked slots starting after the given time,
	// optionally filtered to one doctor (uuid.Nil means all doctors).
	ListFree(ctx context.Context, doctorID uuid.UUID, after time.Time) ([]*Slot, error)
	// MarkBooked atomically claims a free slot. Returns ErrSlotTaken when
	// the slot is already booked and ErrSlotNotFound when it is unknown.
	MarkBooked(ctx context.Context, id uuid.UUID) error
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
}
