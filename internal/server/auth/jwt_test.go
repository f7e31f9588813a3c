package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")
	userID := "user-123"

	tok, err := GenerateToken(userID, secret, time.Hour)
	require.NoError(t, err)

	gotUserID, err := GetUserIDFromToken(tok, secret)
	require.NoError(t, err)
	require.Equal(t, userID, gotUserID)
}

func TestGetUserIDFromToken_Expired(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("u1", []byte("secret"), -1*time.Second)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(tok, []byte("secret"))
	require.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestGetUserIDFromToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken("u2", []byte("right-secret"), time.Hour)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(tok, []byte("wrong-secret"))
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestGetUserIDFromToken_MalformedString(t *testing.T) {
	t.Parallel()

	_, err := GetUserIDFromToken("not.a.jwt", []byte("k"))
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestGetUserIDFromToken_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           "u3",
	}).SignedString(secret)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(tok, secret)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestGetUserIDFromToken_MissingUserID(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")
	tok, err := GenerateToken("", secret, time.Hour)
	require.NoError(t, err)

	_, err = GetUserIDFromToken(tok, secret)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}
