package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestNewService(t *testing.T) {
	secretKey := "test-secret-key"
	service := NewService(secretKey)

	assert.NotNil(t, service)
	assert.Equal(t, []byte(secretKey), service.secretKey)
}

func TestGenerateToken(t *testing.T) {
	service := NewService("test-secret-key")
	userID := "user-123"
	role := "member"

	token, err := service.GenerateToken(userID, role)

	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Greater(t, len(token), 0)
}

func TestValidateToken(t *testing.T) {
	service := NewService("test-secret-key")
	userID := "user-123"
	role := "member"

	// Generate token
	token, err := service.GenerateToken(userID, role)
	assert.NoError(t, err)

	// Validate token
	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, role, claims.Role)
}

func TestValidateToken_InvalidToken(t *testing.T) {
	service := NewService("test-secret-key")

	// Invalid token format
	_, err := service.ValidateToken("invalid-token")
	assert.Error(t, err)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	service1 := NewService("secret-key-1")
	service2 := NewService("secret-key-2")

	userID := "user-123"
	role := "member"

	// Generate token with service1
	token, err := service1.GenerateToken(userID, role)
	assert.NoError(t, err)

	// Try to validate with service2 (wrong secret)
	_, err = service2.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_ExpiredToken(t *testing.T) {
	// Note: This test would require mocking time or using a very short expiration
	// For now, we test that token has expiration set
	service := NewService("test-secret-key")
	userID := "user-123"
	role := "member"

	token, err := service.GenerateToken(userID, role)
	assert.NoError(t, err)

	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.NotNil(t, claims.ExpiresAt)
	assert.True(t, time.Now().Before(claims.ExpiresAt.Time))
}

func TestValidateToken_EmptyToken(t *testing.T) {
	service := NewService("test-secret-key")

	_, err := service.ValidateToken("")
	assert.Error(t, err)
}

func TestGenerateAndValidateToken_RoundTrip(t *testing.T) {
	service := NewService("test-secret-key")
	userID := "user-456"
	role := "admin"

	// Generate
	token, err := service.GenerateToken(userID, role)
	assert.NoError(t, err)

	// Validate
	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, role, claims.Role)
}

func TestValidateToken_UnexpectedSigningMethod(t *testing.T) {
	service := NewService("test-secret-key")

	token := gojwt.NewWithClaims(gojwt.SigningMethodNone, &Claims{UserID: "user-123"})
	signed, err := token.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	assert.NoError(t, err)

	_, err = service.ValidateToken(signed)
	assert.Error(t, err)
}

func TestGenerateOrganizationToken(t *testing.T) {
	service := NewService("test-secret-key")

	token, err := service.GenerateOrganizationToken("user-1", "admin", "org-1")
	assert.NoError(t, err)

	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "org-1", claims.OrganizationID)
}

func TestGenerateToken_EmptyValues(t *testing.T) {
	service := NewService("test-secret-key")

	// Generate with empty values should still work
	token, err := service.GenerateToken("", "")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	// Validate
	claims, err := service.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "", claims.UserID)
	assert.Equal(t, "", claims.Role)
}
