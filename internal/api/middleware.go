package api

import (
	"net/http"

	"github.com/neuraltc/capsule-service/internal/api/respond"
	"github.com/neuraltc/capsule-service/internal/auth"
)

// RequireAuth verifies the bearer token and attaches the caller identity to
// the request context. There is no guest fallback: missing or invalid
// credentials are rejected.
func RequireAuth(authn *auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.ExtractBearer(r)
			if err != nil {
				respond.WriteUnauthorized(w, err.Error())
				return
			}
			id, err := authn.Verify(token)
			if err != nil {
				respond.WriteUnauthorized(w, err.Error())
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), *id)))
		})
	}
}

// identity pulls the authenticated caregiver from the context. The auth
// middleware guarantees it is present on protected routes.
func identity(r *http.Request) auth.Identity {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		panic("handler reached without identity; route not behind RequireAuth")
	}
	return id
}
