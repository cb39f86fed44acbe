package auth

import "context"

type ctxKey string

const claimsCtxKey = ctxKey("claims")

// WithClaims stores verified claims in ctx.
func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, c)
}

// ClaimsFromContext returns the verified claims of the request, if any.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsCtxKey).(*Claims)
	return c, ok && c != nil
}

// IdentityFromContext extracts the caller identity.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	c, ok := ClaimsFromContext(ctx)
	if !ok {
		return Identity{}, false
	}
	return c.Identity(), true
}

// ClientIDFromContext extracts the caller's client id.
func ClientIDFromContext(ctx context.Context) (uint, bool) {
	id, ok := IdentityFromContext(ctx)
	return id.ClientID, ok && id.ClientID != 0
}
