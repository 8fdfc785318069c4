package prescriptions

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	// ListByDoctor returns prescriptions the doctor authored; roomID ""
	// means no room filter.
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, roomID string) ([]*Prescription, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, roomID string) ([]*Prescription, error)
}
