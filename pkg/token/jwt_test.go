package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerifyToken(t *testing.T) {
	m := NewJWTManager("test-secret", 1)

	tokenString, err := m.GenerateToken("admin")
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := m.VerifyToken(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	m1 := NewJWTManager("secret-one", 1)
	m2 := NewJWTManager("secret-two", 1)

	tokenString, err := m1.GenerateToken("admin")
	require.NoError(t, err)

	_, err = m2.VerifyToken(tokenString)
	assert.Error(t, err)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	m := NewJWTManager("test-secret", 1)

	_, err := m.VerifyToken("not.a.token")
	assert.Error(t, err)
}
