package authsvc

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/otebot/otebot-api/internal/domain"
	"github.com/otebot/otebot-api/internal/infra/logging"
	"github.com/otebot/otebot-api/internal/repo/admin"
)

// AuthService authenticates the administrator and hands out bearer tokens.
type AuthService struct {
	AdminRepo admin.Repository
	Tokens    *TokenService
	Log       logging.Logger
}

// NewAuthService creates a new AuthService with the given credential repository
// factory and token service.
// Returns an error if the credential repository cannot be created.
func NewAuthService(repoFactory admin.RepositoryFactory, tokens *TokenService) (*AuthService, error) {
	log := logging.GetLogger("svc.authsvc.auth_service")

	adminRepo, err := repoFactory()
	if err != nil {
		return nil, fmt.Errorf("new admin repo: %w", err)
	}

	return &AuthService{
		AdminRepo: adminRepo,
		Tokens:    tokens,
		Log:       log,
	}, nil
}

// Login authenticates the administrator and issues a signed bearer token.
// Unknown email, wrong password and an unset password hash all collapse to
// domain.ErrInvalidCredentials; neither the caller nor the log can tell them
// apart.
func (s *AuthService) Login(ctx context.Context, email, password string) (_ string, err error) {
	log := s.Log

	defer func() {
		if err != nil {
			log.WarnContext(ctx, "login failed", "error", err)
		} else {
			log.InfoContext(ctx, "login successful")
		}
	}()

	credential, ok, err := s.AdminRepo.GetAdmin(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAdminNotFound) {
			return "", domain.ErrInvalidCredentials
		}

		return "", fmt.Errorf("get admin: %w", err)
	} else if !ok {
		return "", domain.ErrInvalidCredentials
	}

	// A credential without a stored hash fails closed.
	if len(credential.PasswordHash) == 0 {
		return "", domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword(credential.PasswordHash, []byte(password)) != nil {
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.Tokens.Issue(ctx, credential.Email, domain.RoleAdmin)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	return token, nil
}

// Close releases resources held by the service, such as database connections.
// Returns an error if cleanup fails.
func (s *AuthService) Close() error {
	if err := s.AdminRepo.Close(); err != nil {
		return fmt.Errorf("close admin repo: %w", err)
	}

	return nil
}
