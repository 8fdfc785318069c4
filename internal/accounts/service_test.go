package accounts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/telecare/telecare/internal/auth"
)

type mockRepo struct {
	byID    map[uuid.UUID]*User
	byEmail map[string]*User
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		byID:    make(map[uuid.UUID]*User),
		byEmail: make(map[string]*User),
	}
}

func (m *mockRepo) Create(_ context.Context, u *User) error {
	if _, ok := m.byEmail[u.Email]; ok {
		return ErrDuplicate
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = time.Now()
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return u, nil
}

func (m *mockRepo) MarkVerified(_ context.Context, id uuid.UUID) error {
	u, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	u.Verified = true
	return nil
}

func (m *mockRepo) ListVerifiedDoctors(_ context.Context) ([]*DoctorSummary, error) {
	var out []*DoctorSummary
	for _, u := range m.byID {
		if u.Role == auth.RoleDoctor && u.Verified {
			out = append(out, &DoctorSummary{
				ID: u.ID, FullName: u.FullName,
				Specialization: u.Specialization, HospitalName: u.HospitalName,
			})
		}
	}
	return out, nil
}

type mockOTP struct {
	issued []uuid.UUID
}

func (m *mockOTP) Issue(_ context.Context, userID uuid.UUID, _ string) error {
	m.issued = append(m.issued, userID)
	return nil
}

func newTestService(repo Repository, otp OTPIssuer) *Service {
	tokens := auth.NewTokenIssuer("accounts-test-secret", time.Hour, time.Hour)
	return NewService(repo, tokens, otp, zerolog.Nop())
}

func doctorInput() RegisterDoctorInput {
	return RegisterDoctorInput{
		FullName:             "Dr. Chen",
		Email:                "Chen@Example.org",
		Phone:                "+15550001",
		Password:             "secret-pass",
		Specialization:       "cardiology",
		HospitalName:         "General",
		MedicalLicenseNumber: "ML-1234",
	}
}

func TestRegisterDoctor(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, nil)

	u, err := svc.RegisterDoctor(context.Background(), doctorInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Role != auth.RoleDoctor {
		t.Errorf("role = %q", u.Role)
	}
	if u.Verified {
		t.Error("new doctor must start unverified")
	}
	if u.Email != "chen@example.org" {
		t.Errorf("email not normalized: %q", u.Email)
	}
	if u.PasswordHash == "secret-pass" || u.PasswordHash == "" {
		t.Error("password must be hashed")
	}
}

func TestRegisterDoctor_MissingFields(t *testing.T) {
	svc := newTestService(newMockRepo(), nil)
	in := doctorInput()
	in.MedicalLicenseNumber = ""

	if _, err := svc.RegisterDoctor(context.Background(), in); err == nil {
		t.Fatal("expected error for missing license number")
	}
}

func TestRegisterDoctor_Duplicate(t *testing.T) {
	svc := newTestService(newMockRepo(), nil)
	if _, err := svc.RegisterDoctor(context.Background(), doctorInput()); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := svc.RegisterDoctor(context.Background(), doctorInput()); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestRegisterPatient_SendsOTP(t *testing.T) {
	otp := &mockOTP{}
	svc := newTestService(newMockRepo(), otp)

	u, err := svc.RegisterPatient(context.Background(), RegisterPatientInput{
		FullName: "Amina", Email: "amina@example.org", Phone: "+15550002", Password: "pw123456",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.Role != auth.RolePatient {
		t.Errorf("role = %q", u.Role)
	}
	if len(otp.issued) != 1 || otp.issued[0] != u.ID {
		t.Errorf("expected one OTP issue for %s, got %v", u.ID, otp.issued)
	}
}

func TestLogin(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, nil)

	doctor, err := svc.RegisterDoctor(context.Background(), doctorInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// Unverified doctor is blocked.
	_, err = svc.Login(context.Background(), LoginInput{
		Email: "chen@example.org", Password: "secret-pass", Role: "doctor",
	})
	if !errors.Is(err, ErrNotVerified) {
		t.Fatalf("expected ErrNotVerified, got %v", err)
	}

	if err := repo.MarkVerified(context.Background(), doctor.ID); err != nil {
		t.Fatalf("verify: %v", err)
	}

	result, err := svc.Login(context.Background(), LoginInput{
		Email: "chen@example.org", Password: "secret-pass", Role: "doctor",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Error("expected token pair")
	}

	// Wrong role portal.
	_, err = svc.Login(context.Background(), LoginInput{
		Email: "chen@example.org", Password: "secret-pass", Role: "patient",
	})
	if !errors.Is(err, ErrRoleMismatch) {
		t.Fatalf("expected ErrRoleMismatch, got %v", err)
	}

	// Wrong password and unknown email both come back as invalid
	// credentials, indistinguishably.
	_, err = svc.Login(context.Background(), LoginInput{
		Email: "chen@example.org", Password: "wrong", Role: "doctor",
	})
	if !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	_, err = svc.Login(context.Background(), LoginInput{
		Email: "nobody@example.org", Password: "secret-pass", Role: "doctor",
	})
	if !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRefresh(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, nil)

	u, err := svc.RegisterPatient(context.Background(), RegisterPatientInput{
		FullName: "Amina", Email: "amina@example.org", Phone: "+15550002", Password: "pw123456",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	result, err := svc.Login(context.Background(), LoginInput{
		Email: "amina@example.org", Password: "pw123456", Role: "patient",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	pair, err := svc.Refresh(context.Background(), result.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if pair.AccessToken == "" {
		t.Error("expected fresh access token")
	}

	// A deleted account cannot refresh.
	delete(repo.byID, u.ID)
	if _, err := svc.Refresh(context.Background(), result.RefreshToken); err == nil {
		t.Fatal("expected refresh to fail for deleted account")
	}
}
