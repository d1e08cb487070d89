package auth

import (
	"context"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// principalKey is the context key for the authenticated user ID.
	principalKey contextKey = "principal"
)

// ContextWithPrincipal adds the authenticated user ID to the context.
func ContextWithPrincipal(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, principalKey, userID)
}

// PrincipalFromContext returns the authenticated user ID.
// Returns empty string if not authenticated.
func PrincipalFromContext(ctx context.Context) string {
	id, _ := ctx.Value(principalKey).(string)
	return id
}
