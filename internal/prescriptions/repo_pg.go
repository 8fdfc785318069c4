package prescriptions

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const cols = `id, doctor_id, patient_id, room_id, text, created_at`

func (r *repoPG) Create(ctx context.Context, p *Prescription) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO prescriptions (id, doctor_id, patient_id, room_id, text)
		VALUES ($1,$2,$3,$4,$5)`,
		p.ID, p.DoctorID, p.PatientID, p.RoomID, p.Text)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	var p Prescription
	err := r.pool.QueryRow(ctx,
		`SELECT `+cols+` FROM prescriptions WHERE id = $1`, id).
		Scan(&p.ID, &p.DoctorID, &p.PatientID, &p.RoomID, &p.Text, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, roomID string) ([]*Prescription, error) {
	return r.list(ctx, "doctor_id", doctorID, roomID)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, roomID string) ([]*Prescription, error) {
	return r.list(ctx, "patient_id", patientID, roomID)
}

func (r *repoPG) list(ctx context.Context, ownerCol string, ownerID uuid.UUID, roomID string) ([]*Prescription, error) {
	query := `SELECT ` + cols + ` FROM prescriptions WHERE ` + ownerCol + ` = $1`
	args := []interface{}{ownerID}
	if roomID != "" {
		query += ` AND room_id = $2`
		args = append(args, roomID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Prescription
	for rows.Next() {
		var p Prescription
		if err := rows.Scan(&p.ID, &p.DoctorID, &p.PatientID, &p.RoomID, &p.Text, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
