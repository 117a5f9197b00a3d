package auth

import (
	"context"

	"github.com/odyssey-erp/odyssey-catalog/internal/users"
)

type identityContextKey struct{}

// ContextWithIdentity stores the authenticated identity in context.
func ContextWithIdentity(ctx context.Context, identity users.Public) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext extracts the authenticated identity from context.
func IdentityFromContext(ctx context.Context) (users.Public, bool) {
	identity, ok := ctx.Value(identityContextKey{}).(users.Public)
	return identity, ok
}
