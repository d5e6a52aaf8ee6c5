package oauth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testClientID = "client-id.apps.googleusercontent.com"

func signIDToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("irrelevant"))
	require.NoError(t, err)
	return raw
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"iss":            "https://accounts.google.com",
		"aud":            testClientID,
		"sub":            "1234567890",
		"email":          "alice@gmail.com",
		"email_verified": true,
		"name":           "Alice",
		"exp":            time.Now().Add(time.Hour).Unix(),
	}
}

func TestParseGoogleIDToken(t *testing.T) {
	identity, err := parseGoogleIDToken(signIDToken(t, validClaims()), testClientID)
	require.NoError(t, err)

	assert.Equal(t, ProviderGoogle, identity.Provider)
	assert.Equal(t, "1234567890", identity.Subject)
	assert.Equal(t, "alice@gmail.com", identity.Email)
	assert.True(t, identity.EmailVerified)
	assert.Equal(t, "Alice", identity.Name)
}

func TestParseGoogleIDToken_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(jwt.MapClaims)
	}{
		{name: "bad issuer", mutate: func(c jwt.MapClaims) { c["iss"] = "https://evil.example.com" }},
		{name: "bad audience", mutate: func(c jwt.MapClaims) { c["aud"] = "someone-else" }},
		{name: "expired", mutate: func(c jwt.MapClaims) { c["exp"] = time.Now().Add(-time.Minute).Unix() }},
		{name: "missing expiry", mutate: func(c jwt.MapClaims) { delete(c, "exp") }},
		{name: "missing email", mutate: func(c jwt.MapClaims) { delete(c, "email") }},
		{name: "missing subject", mutate: func(c jwt.MapClaims) { delete(c, "sub") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := validClaims()
			tt.mutate(claims)

			_, err := parseGoogleIDToken(signIDToken(t, claims), testClientID)
			assert.ErrorIs(t, err, ErrInvalidIDToken)
		})
	}
}

func TestParseGoogleIDToken_Garbage(t *testing.T) {
	_, err := parseGoogleIDToken("not-a-jwt", testClientID)
	assert.ErrorIs(t, err, ErrInvalidIDToken)
}
