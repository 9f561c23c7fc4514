// Package principalctx propagates the request-scoped principal installed by
// the bearer middleware to handlers further down the chain.
package principalctx

import (
	"context"
	"errors"

	"github.com/Syafiq-lab/library-management-be/token"
)

// contextKey is an unexported type to prevent collisions with other packages.
type contextKey struct{}

var principalKey = contextKey{}

// ErrNoPrincipal is returned when no principal is stored in the context.
var ErrNoPrincipal = errors.New("principalctx: no principal in context")

// Set stores the validated principal in the context.
func Set(ctx context.Context, p token.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// Get retrieves the principal from the context.
func Get(ctx context.Context) (token.Principal, bool) {
	p, ok := ctx.Value(principalKey).(token.Principal)
	return p, ok
}

// GetOrError retrieves the principal or returns ErrNoPrincipal.
func GetOrError(ctx context.Context) (token.Principal, error) {
	p, ok := Get(ctx)
	if !ok {
		return token.Principal{}, ErrNoPrincipal
	}
	return p, nil
}
