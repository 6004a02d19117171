// Package middleware provides the HTTP middleware stack for the API layer.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/juanmagp80/Clyra-sub003/internal/api/response"
	"github.com/juanmagp80/Clyra-sub003/internal/logging"
	"github.com/juanmagp80/Clyra-sub003/pkg/types"
)

type contextKey string

const identityKey contextKey = "identity"

// SessionResolver turns a bearer token into the authenticated user. It
// returns nil (no error) when the token does not map to a session.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*types.Identity, error)
}

// SessionResolverFunc adapts a function to the SessionResolver interface.
type SessionResolverFunc func(ctx context.Context, token string) (*types.Identity, error)

// Resolve calls the wrapped function.
func (f SessionResolverFunc) Resolve(ctx context.Context, token string) (*types.Identity, error) {
	return f(ctx, token)
}

// Authenticator resolves Authorization headers into request identities.
// Requests without an Authorization header pass through unauthenticated;
// handlers that require an identity reject those themselves, which keeps
// the trusted-caller fallback (an explicit user_id in the request body)
// possible for server-to-server calls.
type Authenticator struct {
	resolver SessionResolver
	logger   logging.Logger
}

// NewAuthenticator creates the authentication middleware.
func NewAuthenticator(resolver SessionResolver, logger logging.Logger) *Authenticator {
	if logger == nil {
		logger = logging.NewNoop()
	}
	return &Authenticator{resolver: resolver, logger: logger}
}

// Handler returns the middleware handler. A present-but-invalid bearer
// token is rejected with 401; a missing header is not.
func (a *Authenticator) Handler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || a.resolver == nil {
				next.ServeHTTP(w, r)
				return
			}

			token := strings.TrimPrefix(header, "Bearer ")
			if token == header || token == "" {
				response.WriteUnauthorized(w, "Invalid authorization header")
				return
			}

			identity, err := a.resolver.Resolve(r.Context(), token)
			if err != nil {
				a.logger.ErrorContext(r.Context(), "Session resolution failed", "error", err.Error())
				response.WriteUnauthorized(w, "Could not verify session")
				return
			}
			if identity == nil {
				response.WriteUnauthorized(w, "Invalid or expired session")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
		})
	}
}

// ContextWithIdentity stores the authenticated identity on the context.
func ContextWithIdentity(ctx context.Context, identity *types.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext returns the authenticated identity, or nil when the
// request was not authenticated.
func IdentityFromContext(ctx context.Context) *types.Identity {
	if identity, ok := ctx.Value(identityKey).(*types.Identity); ok {
		return identity
	}
	return nil
}
