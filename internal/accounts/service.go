package accounts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/telecare/telecare/internal/auth"
)

// OTPIssuer sends a fresh verification code to a newly registered account.
// Implemented by the otp service; injected here to avoid a package cycle.
type OTPIssuer interface {
	Issue(ctx context.Context, userID uuid.UUID, email string) error
}

type Service struct {
	repo   Repository
	tokens *auth.TokenIssuer
	otp    OTPIssuer
	logger zerolog.Logger
}

func NewService(repo Repository, tokens *auth.TokenIssuer, otp OTPIssuer, logger zerolog.Logger) *Service {
	return &Service{repo: repo, tokens: tokens, otp: otp, logger: logger}
}

type RegisterDoctorInput struct {
	FullName             string `json:"full_name"`
	Email                string `json:"email"`
	Phone                string `json:"phone"`
	Password             string `json:"password"`
	Specialization       string `json:"specialization"`
	HospitalName         string `json:"hospital_name"`
	MedicalLicenseNumber string `json:"medical_license_number"`
}

func (in *RegisterDoctorInput) validate() error {
	var missing []string
	for field, value := range map[string]string{
		"full_name":              in.FullName,
		"email":                  in.Email,
		"phone":                  in.Phone,
		"password":               in.Password,
		"specialization":         in.Specialization,
		"hospital_name":          in.HospitalName,
		"medical_license_number": in.MedicalLicenseNumber,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// RegisterDoctor creates an unverified doctor account. Verification happens
// out of band (an administrator reviews the medical license).
func (s *Service) RegisterDoctor(ctx context.Context, in RegisterDoctorInput) (*User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		FullName:             strings.TrimSpace(in.FullName),
		Email:                normalizeEmail(in.Email),
		Phone:                strings.TrimSpace(in.Phone),
		PasswordHash:         hash,
		Role:                 auth.RoleDoctor,
		Specialization:       strings.TrimSpace(in.Specialization),
		HospitalName:         strings.TrimSpace(in.HospitalName),
		MedicalLicenseNumber: strings.TrimSpace(in.MedicalLicenseNumber),
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info().Str("doctor_id", u.ID.String()).Msg("doctor registered")
	return u, nil
}

type RegisterPatientInput struct {
	FullName    string     `json:"full_name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Password    string     `json:"password"`
	Address     string     `json:"address"`
	DateOfBirth *time.Time `json:"date_of_birth"`
}

func (in *RegisterPatientInput) validate() error {
	var missing []string
	for field, value := range map[string]string{
		"full_name": in.FullName,
		"email":     in.Email,
		"phone":     in.Phone,
		"password":  in.Password,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// RegisterPatient creates a patient account and emails a verification code.
// A failed OTP send does not roll the account back; the client can request
// a resend.
func (s *Service) RegisterPatient(ctx context.Context, in RegisterPatientInput) (*User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		FullName:     strings.TrimSpace(in.FullName),
		Email:        normalizeEmail(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
		Role:         auth.RolePatient,
		Address:      strings.TrimSpace(in.Address),
		DateOfBirth:  in.DateOfBirth,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	if s.otp != nil {
		if err := s.otp.Issue(ctx, u.ID, u.Email); err != nil {
			s.logger.Error().Err(err).Str("patient_id", u.ID.String()).
				Msg("failed to send verification code")
		}
	}

	s.logger.Info().Str("patient_id", u.ID.String()).Msg("patient registered")
	return u, nil
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginResult struct {
	auth.TokenPair
	User *User `json:"user"`
}

func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	u, err := s.repo.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if err == ErrNotFound {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := auth.CheckPassword(u.PasswordHash, in.Password); err != nil {
		return nil, auth.ErrInvalidCredentials
	}
	if role := auth.ParseRole(in.Role); role != u.Role {
		return nil, ErrRoleMismatch
	}
	if u.Role == auth.RoleDoctor && !u.Verified {
		return nil, ErrNotVerified
	}

	pair, err := s.tokens.Issue(auth.Identity{ID: u.ID, Name: u.FullName, Role: u.Role})
	if err != nil {
		return nil, fmt.Errorf("issue tokens: %w", err)
	}

	return &LoginResult{TokenPair: pair, User: u}, nil
}

// Refresh exchanges a refresh token for a fresh pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	id, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}
	// Re-read the account so revoked or re-roled users lose access.
	u, err := s.repo.GetByID(ctx, id.ID)
	if err != nil {
		return nil, auth.ErrInvalidToken
	}
	pair, err := s.tokens.Issue(auth.Identity{ID: u.ID, Name: u.FullName, Role: u.Role})
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

func (s *Service) ListDoctors(ctx context.Context) ([]*DoctorSummary, error) {
	return s.repo.ListVerifiedDoctors(ctx)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
