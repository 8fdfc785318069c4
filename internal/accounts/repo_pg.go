package accounts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/telecare/telecare/internal/auth"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const userCols = `id, full_name, email, phone, password_hash, role, verified,
	specialization, hospital_name, medical_license_number,
	address, date_of_birth, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var role string
	err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.Phone, &u.PasswordHash, &role, &u.Verified,
		&u.Specialization, &u.HospitalName, &u.MedicalLicenseNumber,
		&u.Address, &u.DateOfBirth, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.Role = auth.ParseRole(role)
	return &u, nil
}

func (r *repoPG) Create(ctx context.Context, u *User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, full_name, email, phone, password_hash, role, verified,
			specialization, hospital_name, medical_license_number, address, date_of_birth)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		u.ID, u.FullName, u.Email, u.Phone, u.PasswordHash, string(u.Role), u.Verified,
		u.Specialization, u.HospitalName, u.MedicalLicenseNumber, u.Address, u.DateOfBirth)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE email = $1`, email))
}

func (r *repoPG) MarkVerified(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET verified = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) ListVerifiedDoctors(ctx context.Context) ([]*DoctorSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, full_name, specialization, hospital_name
		FROM users
		WHERE role = 'doctor' AND verified = TRUE
		ORDER BY full_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*DoctorSummary
	for rows.Next() {
		var d DoctorSummary
		if err := rows.Scan(&d.ID, &d.FullName, &d.Specialization, &d.HospitalName); err != nil {
			return nil, err
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
