package appointments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type slotRepoPG struct{ pool *pgxpool.Pool }

func NewSlotRepoPG(pool *pgxpool.Pool) SlotRepository { return &slotRepoPG{pool: pool} }

func (r *slotRepoPG) Create(ctx context.Context, s *Slot) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO availability_slots (id, doctor_id, start_at, end_at, booked)
		VALUES ($1,$2,$3,$4,FALSE)`,
		s.ID, s.DoctorID, s.Start, s.End)
	return err
}

func (r *slotRepoPG) CreateBatch(ctx context.Context, slots []*Slot) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, s := range slots {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO availability_slots (id, doctor_id, start_at, end_at, booked)
			VALUES ($1,$2,$3,$4,FALSE)`,
			s.ID, s.DoctorID, s.Start, s.End); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *slotRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Slot, error) {
	var s Slot
	err := r.pool.QueryRow(ctx, `
		SELECT id, doctor_id, start_at, end_at, booked
		FROM availability_slots WHERE id = $1`, id).
		Scan(&s.ID, &s.DoctorID, &s.Start, &s.End, &s.Booked)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *slotRepoPG) ListFree(ctx context.Context, doctorID uuid.UUID, after time.Time) ([]*Slot, error) {
	query := `
		SELECT id, doctor_id, start_at, end_at, booked
		FROM availability_slots
		WHERE booked = FALSE AND start_at > $1`
	args := []interface{}{after}
	if doctorID != uuid.Nil {
		query += ` AND doctor_id = $2`
		args = append(args, doctorID)
	}
	query += ` ORDER BY start_at`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Slot
	for rows.Next() {
		var s Slot
		if err := rows.Scan(&s.ID, &s.DoctorID, &s.Start, &s.End, &s.Booked); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

// MarkBooked relies on the WHERE clause for atomicity: two concurrent
// bookings of the same slot see exactly one affected row between them.
func (r *slotRepoPG) MarkBooked(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE availability_slots SET booked = TRUE
		WHERE id = $1 AND booked = FALSE`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrSlotTaken
	}
	return nil
}

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

const apptCols = `id, slot_id, doctor_id, patient_id, start_at, end_at, status, created_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var status string
	err := row.Scan(&a.ID, &a.SlotID, &a.DoctorID, &a.PatientID,
		&a.Start, &a.End, &status, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.Status = Status(status)
	return &a, nil
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointments (id, slot_id, doctor_id, patient_id, start_at, end_at, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		a.ID, a.SlotID, a.DoctorID, a.PatientID, a.Start, a.End, string(a.Status))
	return err
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx,
		`SELECT `+apptCols+` FROM appointments WHERE id = $1`, id))
}

func (r *appointmentRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error) {
	return r.list(ctx, `SELECT `+apptCols+` FROM appointments WHERE doctor_id = $1 ORDER BY start_at`, doctorID)
}

func (r *appointmentRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error) {
	return r.list(ctx, `SELECT `+apptCols+` FROM appointments WHERE patient_id = $1 ORDER BY start_at`, patientID)
}

func (r *appointmentRepoPG) list(ctx context.Context, query string, arg interface{}) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *appointmentRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE appointments SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
