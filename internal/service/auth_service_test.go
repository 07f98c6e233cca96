package service

import (
	"context"
	"testing"
	"time"

	"notevault-be/internal/dto"
	"notevault-be/internal/entity"
	"notevault-be/internal/pkg/apperror"
	"notevault-be/internal/pkg/serverutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestAuth_RegisterLoginMe(t *testing.T) {
	f := newFixture()
	svc := NewAuthService(f.db, testSecret, time.Hour, f.log)
	ctx := context.Background()

	registered, err := svc.Register(ctx, &dto.RegisterRequest{Username: "alice", Email: "Alice@Example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", registered.User.Email)
	assert.Equal(t, "user", registered.User.Role)

	claims, err := serverutils.ParseToken(testSecret, registered.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.Id, claims.UserID)
	assert.Equal(t, entity.UserRoleUser, claims.Role)

	stored := f.db.users[registered.User.Id]
	assert.NotEqual(t, "hunter22", stored.PasswordHash)

	loggedIn, err := svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.Id, loggedIn.User.Id)

	me, err := svc.Me(ctx, registered.User.Id)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)
}

func TestAuth_RegisterRejectsDuplicates(t *testing.T) {
	f := newFixture()
	f.db.addUser("alice", "alice@example.com")
	svc := NewAuthService(f.db, testSecret, time.Hour, f.log)
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterRequest{Username: "other", Email: "alice@example.com", Password: "hunter22"})
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	_, err = svc.Register(ctx, &dto.RegisterRequest{Username: "alice", Email: "new@example.com", Password: "hunter22"})
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	_, err = svc.Register(ctx, &dto.RegisterRequest{Username: "a!", Email: "x@example.com", Password: "1"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestAuth_LoginFailuresAreIndistinguishable(t *testing.T) {
	f := newFixture()
	svc := NewAuthService(f.db, testSecret, time.Hour, f.log)
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "hunter22"})
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "nope"})
	_, unknownUser := svc.Login(ctx, &dto.LoginRequest{Email: "ghost@example.com", Password: "hunter22"})

	for _, err := range []error{wrongPassword, unknownUser} {
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, apperror.KindAuth, appErr.Kind)
		assert.Equal(t, "Invalid credentials", appErr.Message)
	}
}

func TestAuth_CreateAdmin(t *testing.T) {
	f := newFixture()
	svc := NewAuthService(f.db, testSecret, time.Hour, f.log)

	admin, err := svc.CreateAdmin(context.Background(), &dto.RegisterRequest{Username: "ops", Email: "ops@example.com", Password: "s3cret!"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.UserRoleAdmin), admin.Role)
}
