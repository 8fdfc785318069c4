package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// Claims is the JWT payload for both access and refresh tokens. The name is
// carried so signaling can announce participants without a database lookup.
type Claims struct {
	jwt.RegisteredClaims
	Name      string `json:"name"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
}

// TokenIssuer mints and verifies HS256 tokens for login sessions and
// signaling connections.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// TokenPair is what login hands back to clients.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (t *TokenIssuer) Issue(id Identity) (TokenPair, error) {
	access, err := t.sign(id, tokenTypeAccess, t.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := t.sign(id, tokenTypeRefresh, t.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (t *TokenIssuer) sign(id Identity, tokenType string, ttl time.Duration) (string, error) {
	now := t.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Name:      id.Name,
		Role:      string(id.Role),
		TokenType: tokenType,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// VerifyAccess validates an access token and returns the identity it carries.
func (t *TokenIssuer) VerifyAccess(token string) (Identity, error) {
	return t.verify(token, tokenTypeAccess)
}

// VerifyRefresh validates a refresh token, for the token refresh endpoint.
func (t *TokenIssuer) VerifyRefresh(token string) (Identity, error) {
	return t.verify(token, tokenTypeRefresh)
}

func (t *TokenIssuer) verify(token, wantType string) (Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}
	if claims.TokenType != wantType {
		return Identity{}, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	return Identity{
		ID:   userID,
		Name: claims.Name,
		Role: ParseRole(claims.Role),
	}, nil
}

// IdentityFromQueryToken resolves the ?token= credential WebSocket clients
// present, since browsers cannot set headers on WebSocket dials. Absent or
// invalid tokens yield the anonymous identity rather than an error; the
// signaling handler decides what anonymous callers may do.
func (t *TokenIssuer) IdentityFromQueryToken(token string) Identity {
	if token == "" {
		return Identity{}
	}
	id, err := t.VerifyAccess(token)
	if err != nil {
		return Identity{}
	}
	return id
}
