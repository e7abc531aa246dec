package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	id "duesgate/pkg/domain"
)

// TokenValidator defines the interface for validating bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// TokenClaims represents the claims we expect from the token validator.
type TokenClaims struct {
	Principal id.PrincipalID
}

type contextKeyPrincipal struct{}

// WithPrincipal returns a context carrying the caller principal, exactly as
// RequireAuth sets it. Used by other transports and tests.
func WithPrincipal(ctx context.Context, principal id.PrincipalID) context.Context {
	return context.WithValue(ctx, contextKeyPrincipal{}, principal)
}

// GetPrincipal retrieves the authenticated principal from the context.
// The zero value means the request was not authenticated.
func GetPrincipal(ctx context.Context) id.PrincipalID {
	principal, ok := ctx.Value(contextKeyPrincipal{}).(id.PrincipalID)
	if !ok {
		return id.PrincipalID{}
	}
	return principal
}

// RequireAuth validates the bearer token and stores the caller principal in
// the request context. Requests without a valid token are rejected with 401
// before any handler runs.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				writeUnauthorized(w)
				return
			}
			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				writeUnauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, claims.Principal)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"Invalid or expired token"}`))
}
