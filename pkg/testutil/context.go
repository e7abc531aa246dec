package testutil

import (
	"net/http"

	"duesgate/internal/platform/middleware"
	id "duesgate/pkg/domain"
)

// WithPrincipal adds a caller principal to the request context, simulating
// what the auth middleware does for authenticated requests. If the value is
// not a valid UUID, the request is returned unchanged.
func WithPrincipal(req *http.Request, principal string) *http.Request {
	parsed, err := id.ParsePrincipalID(principal)
	if err != nil {
		return req
	}
	return req.WithContext(middleware.WithPrincipal(req.Context(), parsed))
}

// WithBearerToken sets the Authorization header for requests that go through
// the real auth middleware.
func WithBearerToken(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}
