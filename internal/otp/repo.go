package otp

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Upsert stores the code, replacing any previous one for the user.
	Upsert(ctx context.Context, o *EmailOTP) error
	GetByUser(ctx context.Context, userID uuid.UUID) (*EmailOTP, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}
