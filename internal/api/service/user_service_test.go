package service

import (
	"context"
	"ctchen222/Tic-Tac-Toe-AI/internal/api/models"
	"ctchen222/Tic-Tac-Toe-AI/internal/api/repository"
	"ctchen222/Tic-Tac-Toe-AI/internal/db"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) (UserService, *TokenIssuer) {
	t.Helper()
	conn, err := db.Connect(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.InitializeDB(conn))

	tokens := NewTokenIssuer("0123456789abcdef", time.Hour)
	return NewUserService(repository.NewUserRepository(conn), tokens), tokens
}

func TestUserService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, tokens := newUserService(t)

	require.NoError(t, svc.Register(ctx, &models.RegisterRequest{Username: "alice", Password: "secret-pw"}))
	assert.ErrorIs(t, svc.Register(ctx, &models.RegisterRequest{Username: "alice", Password: "other-pw"}), ErrUsernameTaken)

	token, err := svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "secret-pw"})
	require.NoError(t, err)

	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, strings.HasPrefix(claims.Subject, "user-"))
	assert.False(t, claims.Guest)

	_, err = svc.Login(ctx, &models.LoginRequest{Username: "alice", Password: "wrong-pw"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, &models.LoginRequest{Username: "bob", Password: "secret-pw"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_GuestLogin(t *testing.T) {
	svc, tokens := newUserService(t)

	first, err := svc.GuestLogin(context.Background())
	require.NoError(t, err)
	second, err := svc.GuestLogin(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, first.PlayerID, second.PlayerID)

	claims, err := tokens.Parse(first.Token)
	require.NoError(t, err)
	assert.Equal(t, first.PlayerID, claims.Subject)
	assert.True(t, claims.Guest)
}

func TestTokenIssuer_Parse(t *testing.T) {
	tokens := NewTokenIssuer("0123456789abcdef", time.Minute)
	token, err := tokens.Issue("guest-1", "", true)
	require.NoError(t, err)

	t.Run("Wrong secret", func(t *testing.T) {
		_, err := NewTokenIssuer("fedcba9876543210", time.Minute).Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		late := NewTokenIssuer("0123456789abcdef", time.Minute)
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := late.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := tokens.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
