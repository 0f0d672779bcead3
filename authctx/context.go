// Package authctx carries the authenticated identity of a request through
// its context. The identity is established once by the authentication
// middleware and read by downstream handlers.
package authctx

import (
	"context"
	"errors"
)

// Identity is the authenticated principal for the remainder of a request.
// It carries no roles; the service has no permission model.
type Identity struct {
	// UserID is the subject claim of the verified token.
	UserID string
	// TenantID is the tenant claim of the verified token. Downstream code
	// must scope every storage operation to this tenant.
	TenantID string
}

// contextKey is an unexported type to prevent collisions with other packages.
type contextKey struct{}

var identityKey = contextKey{}

// ErrNoIdentity is returned when no identity is present in the context.
var ErrNoIdentity = errors.New("authctx: no identity in context")

// Set stores the authenticated identity in the context.
func Set(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// Get retrieves the authenticated identity from the context.
func Get(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// GetOrError retrieves the identity or returns ErrNoIdentity.
func GetOrError(ctx context.Context) (Identity, error) {
	id, ok := Get(ctx)
	if !ok {
		return Identity{}, ErrNoIdentity
	}
	return id, nil
}
