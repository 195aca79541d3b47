package user

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	password := "secret"
	hash, err := HashPassword(password)
	assert.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, password, hash)
}

func TestCheckPasswordHash(t *testing.T) {
	password := "secret"
	hash, _ := HashPassword(password)

	assert.True(t, CheckPasswordHash(password, hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestGenerateJWT_NoSecret(t *testing.T) {
	_, err := GenerateJWT("", 1, "farmer", "test@example.com")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestParseJWT(t *testing.T) {
	tokenStr, err := GenerateJWT("testsecret", 7, "farmer", "test@example.com")
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		claims, err := ParseJWT("testsecret", tokenStr)
		require.NoError(t, err)
		assert.Equal(t, uint(7), claims.UserID)
		assert.Equal(t, "test@example.com", claims.Email)
		assert.Equal(t, "farmer", claims.Role)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		_, err := ParseJWT("testsecret", "invalid-token-string")
		assert.Error(t, err)
	})

	t.Run("NoSecret", func(t *testing.T) {
		_, err := ParseJWT("", tokenStr)
		assert.ErrorIs(t, err, ErrMissingSecret)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		_, err := ParseJWT("other", tokenStr)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "signature is invalid")
	})

	t.Run("Expired", func(t *testing.T) {
		claims := CustomClaims{
			UserID: 7,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		}
		expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("testsecret"))
		require.NoError(t, err)

		_, err = ParseJWT("testsecret", expired)
		assert.Error(t, err)
	})

	t.Run("Rejects none algorithm", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, CustomClaims{UserID: 1}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = ParseJWT("testsecret", unsigned)
		assert.Error(t, err)
	})
}
