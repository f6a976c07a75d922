package auth

import (
	"context"

	"github.com/taskly/taskly/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const sessionContextKey contextKey = "session"

// ContextWithAuth adds the authenticated session to the context.
func ContextWithAuth(ctx context.Context, a *model.AuthContext) context.Context {
	return context.WithValue(ctx, sessionContextKey, a)
}

// AuthFromContext retrieves the session from the context.
// Returns nil if not present.
func AuthFromContext(ctx context.Context) *model.AuthContext {
	a, ok := ctx.Value(sessionContextKey).(*model.AuthContext)
	if !ok {
		return nil
	}
	return a
}

// UserIDFromContext returns the authenticated user id, or "" if the request
// did not pass the session guard.
func UserIDFromContext(ctx context.Context) string {
	if a := AuthFromContext(ctx); a != nil {
		return a.UserID
	}
	return ""
}
