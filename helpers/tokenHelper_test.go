package helpers

import (
	"testing"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateToken("6655a1b2c3d4e5f6a7b8c9d0")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "6655a1b2c3d4e5f6a7b8c9d0", claims.UserID)
	assert.InDelta(t, time.Now().Unix(), claims.IssuedAt, 2)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	past := time.Now().Add(-2 * time.Hour)
	claims := &SignedDetails{
		UserID: "6655a1b2c3d4e5f6a7b8c9d0",
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  past.Unix(),
			ExpiresAt: past.Add(time.Hour).Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = ValidateToken(token)
	require.Error(t, err)

	jwtErr, ok := err.(*jwt.ValidationError)
	require.True(t, ok)
	assert.NotZero(t, jwtErr.Errors&jwt.ValidationErrorExpired)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	token, err := GenerateToken("6655a1b2c3d4e5f6a7b8c9d0")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "another-secret")
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenExpiryDefault(t *testing.T) {
	t.Setenv("JWT_EXPIRES_HOURS", "")
	assert.Equal(t, 24*time.Hour, TokenExpiry())

	t.Setenv("JWT_EXPIRES_HOURS", "72")
	assert.Equal(t, 72*time.Hour, TokenExpiry())
}
