package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomembros/internal/pkg/token"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := token.NewService("segredo", time.Hour, "")

	tok, err := svc.GenerateToken("user-1", "admin")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
	assert.Equal(t, "admin", claims.Role)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	tok, err := token.NewService("a", time.Hour, "").GenerateToken("user-1", "admin")
	require.NoError(t, err)

	_, err = token.NewService("b", time.Hour, "").ValidateToken(tok)
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := token.NewService("segredo", -time.Minute, "")
	tok, err := svc.GenerateToken("user-1", "admin")
	require.NoError(t, err)

	_, err = svc.ValidateToken(tok)
	assert.Error(t, err)
}

func TestValidateToken_Issuer(t *testing.T) {
	issued, err := token.NewService("segredo", time.Hour, "outro").GenerateToken("user-1", "authenticated")
	require.NoError(t, err)

	_, err = token.NewService("segredo", time.Hour, "auth-provider").ValidateToken(issued)
	assert.Error(t, err)
}

func TestValidateToken_RejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.MapClaims{"sub": "user-1", "exp": time.Now().Add(time.Hour).Unix()}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("segredo"))
	require.NoError(t, err)

	_, err = token.NewService("segredo", time.Hour, "").ValidateToken(tok)
	assert.Error(t, err)
}

func TestValidateToken_RequiresSubject(t *testing.T) {
	svc := token.NewService("segredo", time.Hour, "")
	tok, err := svc.GenerateToken("", "authenticated")
	require.NoError(t, err)

	_, err = svc.ValidateToken(tok)
	assert.Error(t, err)
}
