package utils

import (
	"regexp"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestTokenRoundTrip(t *testing.T) {
	tokenString, err := GenerateToken(42, "081234567890", "lab_technician")
	assert.NoError(t, err)
	assert.NotEmpty(t, tokenString)

	token, err := ValidateToken(tokenString)
	assert.NoError(t, err)
	assert.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	assert.True(t, ok)
	assert.Equal(t, float64(42), claims["user_id"]) // JWT nyimpen angka sebagai float64
	assert.Equal(t, "081234567890", claims["phone"])
	assert.Equal(t, "lab_technician", claims["role"])
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := ValidateToken("bukan-token-jwt")
	assert.Error(t, err)
}

func TestGenerateOrderNoFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^EKR-\d{5}$`)
	for i := 0; i < 50; i++ {
		assert.Regexp(t, pattern, GenerateOrderNo())
	}
}

func TestGenerateOTPFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{6}$`)
	for i := 0; i < 50; i++ {
		assert.Regexp(t, pattern, GenerateOTP())
	}
}

func TestPasswordHashAndCheck(t *testing.T) {
	hash, err := HashPassword("rahasia123")
	assert.NoError(t, err)
	assert.NotEqual(t, "rahasia123", hash)

	assert.True(t, CheckPassword("rahasia123", hash))
	assert.False(t, CheckPassword("salah", hash))
}
