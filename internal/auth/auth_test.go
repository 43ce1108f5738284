package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moevm/nosql1h25-cleanday/internal/apperr"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("корректный-пароль")
	require.NoError(t, err)
	assert.NotEqual(t, "корректный-пароль", hash)

	assert.NoError(t, CheckPassword("корректный-пароль", hash))
	assert.Error(t, CheckPassword("другой-пароль", hash))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("12345678"))

	err := ValidatePassword("1234")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewService("test-secret")

	token, err := svc.CreateAccessToken("boriss")
	require.NoError(t, err)

	login, err := svc.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "boriss", login)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	token, err := NewService("secret-one").CreateAccessToken("boriss")
	require.NoError(t, err)

	_, err = NewService("secret-two").ParseAccessToken(token)
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestAccessTokenGarbage(t *testing.T) {
	_, err := NewService("secret").ParseAccessToken("not-a-token")
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
}

// Просроченный токен должен отличаться от испорченного.
func TestAccessTokenExpired(t *testing.T) {
	svc := NewService("test-secret")

	claims := jwt.RegisteredClaims{
		Subject:   "boriss",
		ExpiresAt: jwt.NewNumericDate(time.Now().UTC().Add(-time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now().UTC().Add(-2 * time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(svc.secret)
	require.NoError(t, err)

	_, err = svc.ParseAccessToken(token)
	require.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestAccessTokenWrongAlgorithm(t *testing.T) {
	svc := NewService("test-secret")

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "boriss"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ParseAccessToken(signed)
	require.ErrorIs(t, err, apperr.ErrUnauthorized)
}
