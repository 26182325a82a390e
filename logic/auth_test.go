package logic

import (
	"context"
	"eum/dao/localstore"
	eum "eum/errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, userID int64, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId":   userID,
		"nickname": "민수",
		"exp":      exp.Unix(),
	}).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func TestBearerToken(t *testing.T) {
	token, err := BearerToken("Bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	token, err = BearerToken("Bearer null")
	require.NoError(t, err)
	assert.Empty(t, token)

	token, err = BearerToken("")
	require.NoError(t, err)
	assert.Empty(t, token)

	_, err = BearerToken("Basic abc")
	assert.True(t, errors.Is(err, eum.ErrInvalidToken))
}

func TestResolveTokenOrder(t *testing.T) {
	ctx := context.Background()
	local, _ := newLocal(t, "s1")
	auth := NewAuth(local)
	exp := time.Now().Add(time.Hour)

	st, err := auth.Resolve(ctx, "")
	require.NoError(t, err)
	assert.False(t, st.Authenticated)
	assert.Empty(t, st.Token)

	stored := signToken(t, 1, exp)
	require.NoError(t, local.SetJSON(ctx, localstore.KeyAuthStorage, map[string]any{
		"state":   map[string]any{"token": stored, "user": map[string]any{"userId": 1, "name": "저장"}},
		"version": 0,
	}))
	st, err = auth.Resolve(ctx, "Bearer null")
	require.NoError(t, err)
	assert.True(t, st.Authenticated)
	assert.Equal(t, int64(1), st.UserID)
	assert.Equal(t, stored, st.Token)

	direct := signToken(t, 2, exp)
	require.NoError(t, local.Set(ctx, localstore.KeyAuthToken, direct))
	st, err = auth.Resolve(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), st.UserID)

	header := signToken(t, 3, exp)
	st, err = auth.Resolve(ctx, "Bearer "+header)
	require.NoError(t, err)
	assert.Equal(t, int64(3), st.UserID)
	assert.Equal(t, "민수", st.Nickname)
	assert.Equal(t, header, st.Token)
}

func TestResolveExpiredTokenLogsOut(t *testing.T) {
	ctx := context.Background()
	auth := NewAuth(nil)

	st, err := auth.Resolve(ctx, "Bearer "+signToken(t, 1, time.Now().Add(-time.Minute)))
	assert.True(t, errors.Is(err, eum.ErrExpiredToken))
	assert.False(t, st.Authenticated)
	assert.False(t, auth.State().Authenticated)
	assert.Empty(t, st.Token)

	_, err = auth.Resolve(ctx, "Bearer not-a-jwt")
	assert.True(t, errors.Is(err, eum.ErrInvalidToken))
}

func TestLoginAndLogout(t *testing.T) {
	ctx := context.Background()
	local, _ := newLocal(t, "s1")
	auth := NewAuth(local)
	token := signToken(t, 5, time.Now().Add(time.Hour))

	st, err := auth.Login(ctx, token)
	require.NoError(t, err)
	assert.True(t, st.Authenticated)
	assert.Equal(t, int64(5), st.UserID)

	// 新的 Auth 从本地存储恢复
	again := NewAuth(local)
	st, err = again.Resolve(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(5), st.UserID)

	require.NoError(t, again.Logout(ctx))
	st, err = again.Resolve(ctx, "")
	require.NoError(t, err)
	assert.False(t, st.Authenticated)
}
