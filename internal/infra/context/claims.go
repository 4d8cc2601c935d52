package context

import (
	"context"

	"github.com/otebot/otebot-api/internal/domain"
)

const contextKeyClaims = contextKey("claims")

// ClaimsFromContext extracts the verified token claims from the context.
// Returns the claims and true if present, or zero claims and false if not.
func ClaimsFromContext(ctx context.Context) (domain.Claims, bool) {
	claims, ok := ctx.Value(contextKeyClaims).(domain.Claims)

	return claims, ok
}

// WithClaims creates a new context carrying the verified token claims.
// Set by the authorizing middleware after successful token verification.
func WithClaims(ctx context.Context, claims domain.Claims) context.Context {
	return context.WithValue(ctx, contextKeyClaims, claims)
}
