package prescriptions

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/telecare/telecare/internal/auth"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateInput struct {
	PatientID uuid.UUID `json:"patient_id"`
	RoomID    string    `json:"room_id"`
	Text      string    `json:"text"`
}

func (s *Service) Create(ctx context.Context, doctorID uuid.UUID, in CreateInput) (*Prescription, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, ErrEmptyText
	}
	if in.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}

	p := &Prescription{
		DoctorID:  doctorID,
		PatientID: in.PatientID,
		RoomID:    strings.TrimSpace(in.RoomID),
		Text:      in.Text,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create prescription: %w", err)
	}
	return p, nil
}

// ListFor returns the caller's view: doctors see what they authored,
// patients what they received.
func (s *Service) ListFor(ctx context.Context, caller auth.Identity, roomID string) ([]*Prescription, error) {
	switch caller.Role {
	case auth.RoleDoctor:
		return s.repo.ListByDoctor(ctx, caller.ID, roomID)
	case auth.RolePatient:
		return s.repo.ListByPatient(ctx, caller.ID, roomID)
	default:
		return nil, ErrForbidden
	}
}

// GetFor fetches one prescription, enforcing the same visibility rule.
func (s *Service) GetFor(ctx context.Context, caller auth.Identity, id uuid.UUID) (*Prescription, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.DoctorID != caller.ID && p.PatientID != caller.ID {
		return nil, ErrForbidden
	}
	return p, nil
}
