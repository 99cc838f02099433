package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the JWT claims issued to FlowSight callers. The subject
// is the end user identifier that owns linked bank connections.
type Claims struct {
	jwt.RegisteredClaims
}

// OwnerID returns the identifier of the user the token was issued to.
func (c Claims) OwnerID() string {
	return c.Subject
}

type contextKey string

const claimsContextKey contextKey = "claims"

// ContextWithClaims returns a new context with the given Claims attached.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext extracts Claims from the context.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok && claims != nil
}
