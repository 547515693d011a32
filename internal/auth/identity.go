package auth

import "context"

// Identity is the authenticated caregiver attached to a request. There is
// no guest fallback: every authenticated operation carries an explicit
// identity.
type Identity struct {
	CaregiverID string `json:"caregiverId"`
	Email       string `json:"email"`
}

type contextKey struct{}

// WithIdentity returns a context carrying the identity.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IdentityFrom extracts the identity placed by the auth middleware.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}
