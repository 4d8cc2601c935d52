package admin

import (
	"context"

	"github.com/otebot/otebot-api/internal/domain"
)

// StaticRepositoryConfig holds the env-seeded administrator identity.
type StaticRepositoryConfig struct {
	// AdminEmail is the single administrator login email
	AdminEmail string `env:"ADMIN_EMAIL" default:"admin@otebot.re"`

	// AdminPasswordHash is the precomputed bcrypt hash of the administrator
	// password. When empty, every login attempt fails.
	AdminPasswordHash string `env:"ADMIN_PASSWORD_HASH" default:""`
}

// StaticRepository implements Repository with a single immutable credential
// loaded at construction time. It is the default store of the relay.
type StaticRepository struct {
	credential domain.AdminCredential
}

var _ Repository = (*StaticRepository)(nil)

// StaticRepositoryFactory creates a factory function that returns a new
// StaticRepository. The factory function implements the RepositoryFactory type.
func StaticRepositoryFactory(cfg StaticRepositoryConfig) RepositoryFactory {
	return func() (Repository, error) {
		return NewStaticRepository(cfg), nil
	}
}

// NewStaticRepository creates a StaticRepository from the given configuration.
// A missing password hash yields a credential that can never authenticate,
// not an error: the process must stay up to serve unauthenticated routes.
func NewStaticRepository(cfg StaticRepositoryConfig) *StaticRepository {
	var hash []byte
	if cfg.AdminPasswordHash != "" {
		hash = []byte(cfg.AdminPasswordHash)
	}

	return &StaticRepository{
		credential: domain.AdminCredential{
			Email:        cfg.AdminEmail,
			PasswordHash: hash,
		},
	}
}

// GetAdmin implements Repository.GetAdmin. Email comparison is exact and
// case-sensitive.
func (r *StaticRepository) GetAdmin(ctx context.Context, email string) (*domain.AdminCredential, bool, error) {
	if email != r.credential.Email {
		return nil, false, domain.ErrAdminNotFound
	}

	credential := r.credential

	return &credential, true, nil
}

// Close implements Repository.Close. The static store holds no resources.
func (r *StaticRepository) Close() error {
	return nil
}
