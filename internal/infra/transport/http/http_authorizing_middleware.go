package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/otebot/otebot-api/internal/domain"
	context_ "github.com/otebot/otebot-api/internal/infra/context"
	"github.com/otebot/otebot-api/internal/infra/logging"
)

// TokenVerifier verifies a bearer token and returns its claims.
type TokenVerifier interface {
	// Verify checks the token's signature and expiry.
	// Returns domain.ErrInvalidAuthToken on any failure; bad signature, expired
	// and malformed tokens are not distinguished.
	Verify(ctx context.Context, token string) (domain.Claims, error)
}

// AuthorizingMiddleware creates middleware that gates protected routes behind
// bearer token verification. Requests without an "Authorization: Bearer <token>"
// header are rejected with 401 before the verifier is consulted; requests whose
// token fails verification are rejected with 401 without revealing why.
// On success the verified claims are added to the request context.
func AuthorizingMiddleware(
	next http.Handler,
	verifier TokenVerifier,
	log logging.Logger,
) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			log.WarnContext(r.Context(), "no bearer token provided")
			WriteError(w, http.StatusUnauthorized, "missing token")

			return
		}

		claims, err := verifier.Verify(r.Context(), token)
		if err != nil {
			log.WarnContext(r.Context(), "token rejected", "error", err)
			WriteError(w, http.StatusUnauthorized, "invalid or expired token")

			return
		}

		next.ServeHTTP(w, r.WithContext(context_.WithClaims(r.Context(), claims)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	token, found := strings.CutPrefix(authHeader, "Bearer ")
	if !found || strings.TrimSpace(token) == "" {
		return "", false
	}

	return strings.TrimSpace(token), true
}
