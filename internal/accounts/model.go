package accounts

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/telecare/telecare/internal/auth"
)

var (
	ErrNotFound  = errors.New("account not found")
	ErrDuplicate = errors.New("account already exists")
	// ErrRoleMismatch marks a login against the wrong portal (e.g. a
	// patient credential on the doctor login).
	ErrRoleMismatch = errors.New("role mismatch")
	// ErrNotVerified blocks doctors whose registration has not been
	// approved yet.
	ErrNotVerified = errors.New("account not verified")
)

// User is a doctor, patient or admin account. Doctor-only columns are
// empty for patients and vice versa.
type User struct {
	ID           uuid.UUID `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	Role         auth.Role `json:"role"`
	Verified     bool      `json:"verified"`

	// Doctor profile.
	Specialization       string `json:"specialization,omitempty"`
	HospitalName         string `json:"hospital_name,omitempty"`
	MedicalLicenseNumber string `json:"medical_license_number,omitempty"`

	// Patient profile.
	Address     string     `json:"address,omitempty"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DoctorSummary is the public listing entry for verified doctors.
type DoctorSummary struct {
	ID             uuid.UUID `json:"id"`
	FullName       string    `json:"full_name"`
	Specialization string    `json:"specialization"`
	HospitalName   string    `json:"hospital_name"`
}
