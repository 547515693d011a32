package auth

import "errors"

var (
	// ErrMissingToken is returned when no bearer token is present on the request.
	ErrMissingToken = errors.New("missing bearer token")

	// ErrInvalidToken is returned when the bearer token fails verification.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrBadCredentials is returned when email/password verification fails.
	ErrBadCredentials = errors.New("invalid credentials")
)
