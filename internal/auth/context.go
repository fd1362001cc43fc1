// Package auth verifies inbound bearer tokens against a cached JWKS key set
// and attaches the tenant-scoped identity to the request context.
package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/LVRodrigues/fpa-management/internal/errors"
)

type contextKey struct{}

// Context is the verified identity of a request. Once built, Tenant is
// trusted as the row-level-security scope for the rest of the request.
type Context struct {
	ID     uuid.UUID
	Tenant uuid.UUID
	Name   string
	Email  string
}

// WithContext attaches the identity to ctx.
func WithContext(ctx context.Context, ident Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ident)
}

// FromContext extracts the identity placed by the gate. An absent identity
// means the request bypassed authentication and is rejected.
func FromContext(ctx context.Context) (Context, error) {
	ident, ok := ctx.Value(contextKey{}).(Context)
	if !ok {
		return Context{}, errors.Unauthorized("")
	}
	return ident, nil
}
