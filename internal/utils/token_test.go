package utils

import (
	eum "eum/errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func TestParseTokenUnverified(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signToken(t, jwt.MapClaims{"userId": 42, "nickname": "민수", "exp": exp.Unix()})

	claims, err := ParseTokenUnverified(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "민수", claims.Nickname)
	assert.True(t, claims.Expires.Equal(exp))
	assert.False(t, claims.Expired(time.Now()))
	assert.True(t, claims.Expired(exp.Add(time.Second)))
}

func TestParseTokenUnverifiedSubject(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"sub": "7"})

	claims, err := ParseTokenUnverified(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.False(t, claims.Expired(time.Now()))
}

func TestParseTokenUnverifiedGarbage(t *testing.T) {
	_, err := ParseTokenUnverified("not-a-token")
	assert.True(t, errors.Is(err, eum.ErrInvalidToken))
}
