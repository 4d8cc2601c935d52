package domain

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoAuthToken is returned when a bearer token is required but not provided.
	ErrNoAuthToken = errors.New("no auth token")
	// ErrInvalidAuthToken is returned when a token is malformed, its signature is
	// invalid or it has expired. The causes are deliberately not distinguished.
	ErrInvalidAuthToken = errors.New("invalid auth token")
	// ErrNoSigningSecret is returned when no token signing secret is configured.
	ErrNoSigningSecret = errors.New("no signing secret configured")
)

// RoleAdmin is the only role the relay issues.
const RoleAdmin = "admin"

// Claims is the verified content of a bearer token.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenResponse is the /auth/login success payload.
type TokenResponse struct {
	Token string `json:"token"`
}
