package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService(t *testing.T) *JWTService {
	t.Helper()
	svc, err := NewJWTService(JWTConfig{
		Secret:     "test-secret-key-for-unit-tests",
		Issuer:     "flowsight-test",
		Expiration: 15 * time.Minute,
	})
	require.NoError(t, err)
	return svc
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestJWTService(t)

	tokenString, err := svc.GenerateToken("user-42")
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := svc.ValidateToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.OwnerID())
	assert.Equal(t, "flowsight-test", claims.Issuer)
}

func TestValidateToken_Expired(t *testing.T) {
	svc, err := NewJWTService(JWTConfig{
		Secret:     "test-secret-key-for-unit-tests",
		Issuer:     "flowsight-test",
		Expiration: -1 * time.Hour,
	})
	require.NoError(t, err)

	tokenString, err := svc.GenerateToken("user-1")
	require.NoError(t, err)

	_, err = svc.ValidateToken(tokenString)
	assert.Error(t, err)
}

func TestValidateToken_InvalidSignature(t *testing.T) {
	svc1, _ := NewJWTService(JWTConfig{Secret: "secret-one", Expiration: time.Minute})
	svc2, _ := NewJWTService(JWTConfig{Secret: "secret-two", Expiration: time.Minute})

	tokenString, err := svc1.GenerateToken("user-1")
	require.NoError(t, err)

	_, err = svc2.ValidateToken(tokenString)
	assert.Error(t, err)
}

func TestValidateToken_WrongIssuer(t *testing.T) {
	issuer, _ := NewJWTService(JWTConfig{Secret: "shared", Issuer: "someone-else", Expiration: time.Minute})
	validator, _ := NewJWTService(JWTConfig{Secret: "shared", Issuer: "flowsight-test", Expiration: time.Minute})

	tokenString, err := issuer.GenerateToken("user-1")
	require.NoError(t, err)

	_, err = validator.ValidateToken(tokenString)
	assert.Error(t, err)
}

func TestValidateToken_EmptySubject(t *testing.T) {
	svc := newTestJWTService(t)
	tokenString, err := svc.GenerateToken("")
	require.NoError(t, err)

	_, err = svc.ValidateToken(tokenString)
	assert.ErrorContains(t, err, "subject")
}

func TestRSAIssuerAndValidator(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})

	issuer, err := NewJWTService(JWTConfig{PrivateKeyPEM: string(privPEM), Expiration: time.Minute})
	require.NoError(t, err)
	validator, err := NewJWTService(JWTConfig{PublicKeyPEM: string(pubPEM)})
	require.NoError(t, err)

	tokenString, err := issuer.GenerateToken("user-rsa")
	require.NoError(t, err)

	claims, err := validator.ValidateToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "user-rsa", claims.OwnerID())

	_, err = validator.GenerateToken("user-rsa")
	assert.Error(t, err, "validation-only service must not sign")
}

func TestNewJWTService_NoKeyMaterial(t *testing.T) {
	_, err := NewJWTService(JWTConfig{})
	assert.ErrorIs(t, err, ErrNoKeyMaterial)
	assert.False(t, JWTConfig{}.Enabled())
	assert.True(t, JWTConfig{Secret: "x"}.Enabled())
}

func TestClaimsFromContext(t *testing.T) {
	_, ok := ClaimsFromContext(context.Background())
	assert.False(t, ok)

	ctx := ContextWithClaims(context.Background(), &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-9"}})
	claims, ok := ClaimsFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "user-9", claims.OwnerID())
}
