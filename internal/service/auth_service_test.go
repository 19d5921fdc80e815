package service

import (
	"context"
	"quizmaster_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterNormalizesAndHashes(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.auth.Register(context.Background(), &RegisterRequest{
		Username: "  alice ",
		Email:    "Alice@Example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "secret123", user.Password)
	assert.NotNil(t, user.QuizzesCreated)
}

func TestRegisterConflicts(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")
	ctx := context.Background()

	_, err := env.auth.Register(ctx, &RegisterRequest{Username: "other", Email: "alice@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, util.ErrEmailRegistered)
	assert.ErrorIs(t, err, util.ErrConflict)

	_, err = env.auth.Register(ctx, &RegisterRequest{Username: "alice", Email: "new@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, util.ErrUsernameTaken)
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Register(context.Background(), &RegisterRequest{Username: "al", Email: "not-an-email", Password: "123"})
	var vErr *util.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "username")
	assert.Contains(t, vErr.Fields, "email")
	assert.Contains(t, vErr.Fields, "password")
}

func TestLoginAndLogout(t *testing.T) {
	env := newTestEnv(t)
	user := env.register(t, "alice")
	ctx := context.Background()

	token, loggedIn, err := env.auth.Login(ctx, &LoginRequest{Email: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)

	claims, err := util.ParseJWT(token, env.auth.Cfg.JWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.NotEmpty(t, claims.ID)

	_, _, err = env.auth.Login(ctx, &LoginRequest{Username: "alice", Password: "secret123"})
	assert.NoError(t, err)

	require.NoError(t, env.auth.Logout(ctx, claims))
	revoked, err := env.auth.Sessions.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestLoginFailures(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice")
	ctx := context.Background()

	_, _, err := env.auth.Login(ctx, &LoginRequest{Email: "alice@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, util.ErrUnauthorized)

	_, _, err = env.auth.Login(ctx, &LoginRequest{Username: "nobody", Password: "secret123"})
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	_, _, err = env.auth.Login(ctx, &LoginRequest{Password: "secret123"})
	assert.ErrorIs(t, err, util.ErrValidation)
}
