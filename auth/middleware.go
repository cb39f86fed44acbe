package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/diewo77/medicaments-api/httpx"
)

// Verifier is an optional callback validating that verified claims are still
// acceptable: the token was not revoked and the client still exists and is active.
type Verifier func(ctx context.Context, c *Claims) bool

// Gateway binds bearer tokens to requests.
type Gateway struct {
	Tokens   Tokens
	Verifier Verifier
}

func NewGateway(tokens Tokens, v Verifier) *Gateway {
	return &Gateway{Tokens: tokens, Verifier: v}
}

// BearerToken returns the token of an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Middleware attaches verified claims to the request context when a valid
// bearer token is present. Requests without one pass through anonymously.
func (g *Gateway) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := BearerToken(r); ok {
			if claims, err := g.Tokens.Verify(token); err == nil {
				if g.Verifier == nil || g.Verifier(r.Context(), claims) {
					r = r.WithContext(WithClaims(r.Context(), claims))
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth answers 401 JSON when the request carries no verified identity.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ClientIDFromContext(r.Context()); !ok {
			if _, hasToken := BearerToken(r); hasToken {
				httpx.JSONError(w, http.StatusUnauthorized, "invalid_token", nil)
				return
			}
			httpx.JSONError(w, http.StatusUnauthorized, "authentication_required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
