package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neuraltc/capsule-service/internal/model"
)

func TestMintVerifyRoundTrip(t *testing.T) {
	a, err := NewAuthenticator("test-secret", time.Hour)
	require.NoError(t, err)

	tok, err := a.Mint(&model.Caregiver{CaregiverID: "cg-1", Email: "a@b.test", Name: "Ana"})
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	id, err := a.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "cg-1", id.CaregiverID)
	assert.Equal(t, "a@b.test", id.Email)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	a1, err := NewAuthenticator("secret-one", time.Hour)
	require.NoError(t, err)
	a2, err := NewAuthenticator("secret-two", time.Hour)
	require.NoError(t, err)

	tok, err := a1.Mint(&model.Caregiver{CaregiverID: "cg-1"})
	require.NoError(t, err)

	_, err = a2.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	a, err := NewAuthenticator("test-secret", -time.Minute)
	require.NoError(t, err)
	// A non-positive TTL falls back to the default, so mint with a short
	// ttl directly.
	a.ttl = -time.Minute

	tok, err := a.Mint(&model.Caregiver{CaregiverID: "cg-1"})
	require.NoError(t, err)

	_, err = a.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	a, err := NewAuthenticator("test-secret", time.Hour)
	require.NoError(t, err)

	_, err = a.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestEphemeralSecretStillRoundTrips(t *testing.T) {
	a, err := NewAuthenticator("", time.Hour)
	require.NoError(t, err)

	tok, err := a.Mint(&model.Caregiver{CaregiverID: "cg-1"})
	require.NoError(t, err)

	id, err := a.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "cg-1", id.CaregiverID)
}

func TestExtractBearer(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
		err    error
	}{
		{"valid", "Bearer abc123", "abc123", nil},
		{"missing header", "", "", ErrMissingToken},
		{"wrong scheme", "Basic abc123", "", ErrMissingToken},
		{"empty token", "Bearer ", "", ErrMissingToken},
		{"extra parts", "Bearer abc 123", "", ErrMissingToken},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}
			got, err := ExtractBearer(r)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPasswordHashAndCheck(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	require.NotEqual(t, "hunter2", hash)

	assert.NoError(t, CheckPassword(hash, "hunter2"))
	assert.ErrorIs(t, CheckPassword(hash, "hunter3"), ErrBadCredentials)
}
