package appointments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	slots SlotRepository
	appts AppointmentRepository
	now   func() time.Time
}

func NewService(slots SlotRepository, appts AppointmentRepository) *Service {
	return &Service{slots: slots, appts: appts, now: time.Now}
}

// CreateSlot publishes a single availability window for a doctor.
func (s *Service) CreateSlot(ctx context.Context, doctorID uuid.UUID, start, end time.Time) (*Slot, error) {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return nil, ErrInvalidWindow
	}
	slot := &Slot{DoctorID: doctorID, Start: start, End: end}
	if err := s.slots.Create(ctx, slot); err != nil {
		return nil, fmt.Errorf("create slot: %w", err)
	}
	return slot, nil
}

// SplitWindow carves [start, end) into consecutive slots of the given
// duration. A trailing remainder shorter than the duration is discarded.
func (s *Service) SplitWindow(ctx context.Context, doctorID uuid.UUID, start, end time.Time, slotDuration time.Duration) ([]*Slot, error) {
	if start.IsZero() || end.IsZero() || !end.After(start) {
		return nil, ErrInvalidWindow
	}
	if slotDuration <= 0 {
		return nil, ErrInvalidWindow
	}

	var slots []*Slot
	for cur := start; !cur.Add(slotDuration).After(end); cur = cur.Add(slotDuration) {
		slots = append(slots, &Slot{
			DoctorID: doctorID,
			Start:    cur,
			End:      cur.Add(slotDuration),
		})
	}
	if len(slots) == 0 {
		return nil, ErrInvalidWindow
	}

	if err := s.slots.CreateBatch(ctx, slots); err != nil {
		return nil, fmt.Errorf("create slots: %w", err)
	}
	return slots, nil
}

// ListFreeSlots returns future unbooked slots. doctorID may be uuid.Nil.
func (s *Service) ListFreeSlots(ctx context.Context, doctorID uuid.UUID) ([]*Slot, error) {
	return s.slots.ListFree(ctx, doctorID, s.now())
}

// Book claims a free slot for a patient. The slot flips to booked in the
// same operation that checks it, so a double booking surfaces ErrSlotTaken
// rather than a second appointment.
func (s *Service) Book(ctx context.Context, patientID, slotID uuid.UUID) (*Appointment, error) {
	slot, err := s.slots.GetByID(ctx, slotID)
	if err != nil {
		return nil, err
	}

	if err := s.slots.MarkBooked(ctx, slotID); err != nil {
		return nil, err
	}

	appt := &Appointment{
		SlotID:    slot.ID,
		DoctorID:  slot.DoctorID,
		PatientID: patientID,
		Start:     slot.Start,
		End:       slot.End,
		Status:    StatusPending,
	}
	if err := s.appts.Create(ctx, appt); err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}
	return appt, nil
}

func (s *Service) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error) {
	return s.appts.ListByDoctor(ctx, doctorID)
}

func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	return s.appts.ListByPatient(ctx, patientID)
}

// UpdateStatus lets the owning doctor move an appointment through its
// lifecycle. Other doctors get ErrNotAppointment.
func (s *Service) UpdateStatus(ctx context.Context, doctorID, apptID uuid.UUID, status Status) (*Appointment, error) {
	appt, err := s.appts.GetByID(ctx, apptID)
	if err != nil {
		return nil, err
	}
	if appt.DoctorID != doctorID {
		return nil, ErrNotAppointment
	}

	if err := s.appts.UpdateStatus(ctx, apptID, status); err != nil {
		return nil, err
	}
	appt.Status = status
	return appt, nil
}
