// Package admin provides lookup of the administrator credential behind an
// interface, so the default env-seeded identity can later be replaced by a
// multi-admin store without touching the auth service.
package admin

import (
	"context"

	"github.com/otebot/otebot-api/internal/domain"
)

// Repository defines the interface for administrator credential lookup.
type Repository interface {
	// GetAdmin retrieves the administrator credential for the given email.
	// Returns the credential and true if found, or nil and false if not found.
	// Returns an error if the operation fails.
	GetAdmin(ctx context.Context, email string) (*domain.AdminCredential, bool, error)

	// Close releases any resources held by the repository.
	// Returns an error if cleanup fails.
	Close() error
}

// RepositoryFactory is a function that creates a new Repository instance.
// Returns an error if initialization fails.
type RepositoryFactory func() (Repository, error)
