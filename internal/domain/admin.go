package domain

import "errors"

var (
	// ErrAdminNotFound is returned when no administrator matches the given email.
	ErrAdminNotFound = errors.New("admin not found")
	// ErrInvalidCredentials is returned when the email/password combination is
	// incorrect. Unknown email and wrong password both map here.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AdminCredential is the single administrator identity the relay authenticates
// against. An empty PasswordHash disables login rather than failing startup.
type AdminCredential struct {
	Email        string // Login email, compared case-sensitively
	PasswordHash []byte // bcrypt hash; empty means login always fails
}

// LoginRequest is the /auth/login request payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
