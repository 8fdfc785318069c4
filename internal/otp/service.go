package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/telecare/telecare/internal/accounts"
	"github.com/telecare/telecare/internal/platform/mail"
)

// AccountStore is the slice of the accounts repository the verifier
// needs. *accounts.Repository implementations satisfy it.
type AccountStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*accounts.User, error)
	MarkVerified(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo     Repository
	users    AccountStore
	sender   mail.Sender
	logger   zerolog.Logger
	now      func() time.Time
	generate func() (string, error)
}

func NewService(repo Repository, users AccountStore, sender mail.Sender, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		users:    users,
		sender:   sender,
		logger:   logger.With().Str("component", "otp").Logger(),
		now:      time.Now,
		generate: randomCode,
	}
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Issue generates a fresh code for the user and mails it. Any previous
// code is replaced.
func (s *Service) Issue(ctx context.Context, userID uuid.UUID, email string) error {
	code, err := s.generate()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	if err := s.repo.Upsert(ctx, &EmailOTP{UserID: userID, Code: code, CreatedAt: s.now()}); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	body := fmt.Sprintf("Your OTP is %s. It is valid for %d minutes.", code, int(TTL.Minutes()))
	if err := s.sender.Send(email, "Your OTP Verification Code", body); err != nil {
		return fmt.Errorf("send otp: %w", err)
	}

	s.logger.Info().Str("user_id", userID.String()).Msg("verification code sent")
	return nil
}

// Verify checks the submitted code and marks the account verified on
// success. The stored code is consumed either way once it matches.
func (s *Service) Verify(ctx context.Context, userID uuid.UUID, code string) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	stored, err := s.repo.GetByUser(ctx, userID)
	if err != nil {
		return err
	}
	if stored.ExpiredAt(s.now()) {
		return ErrExpired
	}
	if stored.Code != code {
		return ErrMismatch
	}

	if err := s.users.MarkVerified(ctx, userID); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	if err := s.repo.DeleteByUser(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("failed to delete consumed otp")
	}
	return nil
}

// Resend reissues the code for an existing account.
func (s *Service) Resend(ctx context.Context, userID uuid.UUID) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	return s.Issue(ctx, userID, u.Email)
}
