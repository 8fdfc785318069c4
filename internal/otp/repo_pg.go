package otp

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) Upsert(ctx context.Context, o *EmailOTP) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO email_otps (user_id, code, created_at)
		VALUES ($1,$2,$3)
		ON CONFLICT (user_id) DO UPDATE
		SET code = EXCLUDED.code, created_at = EXCLUDED.created_at`,
		o.UserID, o.Code, o.CreatedAt)
	return err
}

func (r *repoPG) GetByUser(ctx context.Context, userID uuid.UUID) (*EmailOTP, error) {
	var o EmailOTP
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, code, created_at FROM email_otps WHERE user_id = $1`, userID).
		Scan(&o.UserID, &o.Code, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repoPG) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM email_otps WHERE user_id = $1`, userID)
	return err
}
