package auth

import (
	"errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Role is the caller's position in a consultation. It gates which signaling
// messages are relayed and which HTTP endpoints are reachable.
type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
	RoleAdmin   Role = "admin"
	// RoleUnspecified marks an unauthenticated or unrecognized caller.
	RoleUnspecified Role = ""
)

func ParseRole(s string) Role {
	switch s {
	case string(RoleDoctor):
		return RoleDoctor
	case string(RolePatient):
		return RolePatient
	case string(RoleAdmin):
		return RoleAdmin
	default:
		return RoleUnspecified
	}
}

// Identity is the authenticated user attached to a request or a signaling
// connection. The zero value is anonymous.
type Identity struct {
	ID   uuid.UUID
	Name string
	Role Role
}

func (id Identity) Anonymous() bool { return id.ID == uuid.Nil }

func (id Identity) IsDoctor() bool  { return id.Role == RoleDoctor }
func (id Identity) IsPatient() bool { return id.Role == RolePatient }

const identityContextKey = "auth_identity"

var ErrNoIdentity = errors.New("no authenticated identity")

// SetIdentity stores the identity on the echo context for downstream handlers.
func SetIdentity(c echo.Context, id Identity) {
	c.Set(identityContextKey, id)
}

// IdentityFrom returns the identity attached by the JWT middleware.
func IdentityFrom(c echo.Context) (Identity, error) {
	id, ok := c.Get(identityContextKey).(Identity)
	if !ok || id.Anonymous() {
		return Identity{}, ErrNoIdentity
	}
	return id, nil
}
