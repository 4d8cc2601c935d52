package authsvc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/otebot/otebot-api/internal/domain"
	"github.com/otebot/otebot-api/internal/infra/logging"
	http_ "github.com/otebot/otebot-api/internal/infra/transport/http"
)

// TokenConfig contains configuration parameters for the token service.
type TokenConfig struct {
	// Secret is the symmetric HS256 signing secret. It is held only in process
	// memory and never logged.
	Secret string `env:"JWT_SECRET" default:""`

	// TokenTTL is the validity duration of issued tokens in seconds
	TokenTTL int64 `env:"TOKEN_TTL" default:"21600"` // 6h
}

// TokenService issues and verifies signed, time-limited bearer tokens.
// Expiry is the sole invalidation mechanism; there is no revocation list.
type TokenService struct {
	Config TokenConfig
	Log    logging.Logger
}

var _ http_.TokenVerifier = (*TokenService)(nil)

// NewTokenService creates a new TokenService with the given configuration.
// A missing secret is not an error here: issuing fails per request instead,
// so the process can still serve unauthenticated routes.
func NewTokenService(cfg TokenConfig) *TokenService {
	return &TokenService{
		Config: cfg,
		Log:    logging.GetLogger("svc.authsvc.token_service"),
	}
}

// Issue signs a claim set for the given identity with an absolute expiry.
// Returns the encoded token string, or domain.ErrNoSigningSecret if no secret
// is configured.
func (s *TokenService) Issue(ctx context.Context, email, role string) (_ string, err error) {
	log := s.Log

	defer func() {
		if err != nil {
			log.ErrorContext(ctx, "issue token failed", "error", err)
		} else {
			log.DebugContext(ctx, "token issued")
		}
	}()

	if s.Config.Secret == "" {
		return "", domain.ErrNoSigningSecret
	}

	now := time.Now()
	expiry := now.Add(time.Duration(s.Config.TokenTTL * int64(time.Second)))

	//nolint:exhaustruct
	claims := domain.Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}

	log = log.With(logging.Group("token",
		"email", email,
		"role", role,
		"exp", expiry.UTC().Format(time.RFC3339),
		"iat", now.UTC().Format(time.RFC3339),
	))

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.Config.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return token, nil
}

// Verify checks a token's signature and expiry and returns the embedded claims.
// Any failure, whether bad signature, expired or malformed, maps to
// domain.ErrInvalidAuthToken so callers cannot probe for the cause.
func (s *TokenService) Verify(ctx context.Context, tokenString string) (_ domain.Claims, err error) {
	log := s.Log

	defer func() {
		if err != nil {
			log.DebugContext(ctx, "verify token failed", "error", err)
		} else {
			log.DebugContext(ctx, "token verified")
		}
	}()

	if s.Config.Secret == "" {
		// No secret means no token can have been issued by this process.
		return domain.Claims{}, errors.Join(domain.ErrInvalidAuthToken, domain.ErrNoSigningSecret)
	}

	var claims domain.Claims

	token, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return []byte(s.Config.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return domain.Claims{}, errors.Join(domain.ErrInvalidAuthToken, err)
	}

	if !token.Valid {
		return domain.Claims{}, domain.ErrInvalidAuthToken
	}

	log = log.With(logging.Group("token",
		"email", claims.Email,
		"role", claims.Role,
	))

	return claims, nil
}
