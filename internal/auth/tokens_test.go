package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	tm := NewTokenManager("test-secret-key-that-is-long-enough", time.Hour)

	token, err := tm.Generate("kiosk-entrance", []string{"kiosk"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "kiosk-entrance", claims.Subject)
	assert.True(t, claims.HasRole("kiosk"))
	assert.False(t, claims.HasRole("admin"))
	assert.Equal(t, "vericlock", claims.Issuer)
}

func TestValidateRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret-key-that-is-long-enough", time.Hour)

	for _, tok := range []string{"", "not.a.jwt", "...", "garbage"} {
		_, err := tm.Validate(tok)
		assert.Error(t, err, "token %q", tok)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	a := NewTokenManager("secret-one-that-is-long-enough", time.Hour)
	b := NewTokenManager("secret-two-that-is-long-enough", time.Hour)

	token, err := a.Generate("admin-1", []string{"admin"})
	require.NoError(t, err)

	_, err = b.Validate(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpired(t *testing.T) {
	tm := NewTokenManager("test-secret-key-that-is-long-enough", time.Hour)

	claims := Claims{
		Subject: "admin-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			Issuer:    "vericlock",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tm.secret)
	require.NoError(t, err)

	_, err = tm.Validate(signed)
	assert.Error(t, err)
}
