package jwtauth

import "context"

// contextKey is an unexported type for context keys to prevent collisions
type contextKey string

const claimsContextKey contextKey = "github.com/wanderventure/wanderventure-server/jwtauth:claims"

// WithClaims stores validated JWT claims in the request context.
// Claims are immutable and should not be modified by downstream handlers.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// GetClaims retrieves validated JWT claims from the request context.
// Returns nil, false if claims are not present or have wrong type.
func GetClaims(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok && claims != nil
}

// MustGetClaims retrieves claims from context and panics if not present.
// Use only behind the Guard.
func MustGetClaims(ctx context.Context) *Claims {
	claims, ok := GetClaims(ctx)
	if !ok {
		panic("jwtauth: claims not found in context")
	}
	return claims
}
