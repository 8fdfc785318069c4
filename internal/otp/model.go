// Package otp issues and checks the one-time email verification codes
// sent to freshly registered accounts.
package otp

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// TTL is how long an issued code stays valid.
const TTL = 10 * time.Minute

var (
	ErrNotFound = errors.New("otp: no code issued for user")
	ErrExpired  = errors.New("otp: code expired")
	ErrMismatch = errors.New("otp: incorrect code")
)

// EmailOTP is the single active code for a user. Reissuing replaces it.
type EmailOTP struct {
	UserID    uuid.UUID
	Code      string
	CreatedAt time.Time
}

func (o *EmailOTP) ExpiredAt(now time.Time) bool {
	return now.After(o.CreatedAt.Add(TTL))
}
