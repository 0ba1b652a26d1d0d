package service

import (
	"context"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/writha/writha-server/internal/auth"
	"github.com/writha/writha-server/internal/domain"
	domainerrors "github.com/writha/writha-server/internal/errors"
)

func setupAuth(t *testing.T) *AuthService {
	t.Helper()
	st := setupStore(t)

	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, 15*time.Minute, 30*24*time.Hour)
	require.NoError(t, err)

	svc := NewAuthService(st, tokens, testLogger())
	t.Cleanup(svc.Stop)
	return svc
}

func TestRegisterLoginRefreshLogout(t *testing.T) {
	svc := setupAuth(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterRequest{
		Email:    "ada@example.com",
		Username: "adaobi",
		Password: "correct-horse-battery",
		UserType: "writer",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.UserTypeWriter, registered.User.UserType)
	assert.NotEmpty(t, registered.AccessToken)
	assert.NotEmpty(t, registered.RefreshToken)
	assert.NotEmpty(t, registered.SessionID)

	logged, err := svc.Login(ctx, LoginRequest{
		Email:    "ada@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, logged.User.ID)

	refreshed, err := svc.Refresh(ctx, RefreshRequest{
		SessionID:    logged.SessionID,
		RefreshToken: logged.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEqual(t, logged.RefreshToken, refreshed.RefreshToken, "refresh tokens rotate")

	// The old refresh token is spent.
	_, err = svc.Refresh(ctx, RefreshRequest{
		SessionID:    logged.SessionID,
		RefreshToken: logged.RefreshToken,
	})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	require.NoError(t, svc.Logout(ctx, logged.User.ID, logged.SessionID))

	_, err = svc.Refresh(ctx, RefreshRequest{
		SessionID:    refreshed.SessionID,
		RefreshToken: refreshed.RefreshToken,
	})
	assert.Error(t, err)
}

func TestRegister_DefaultsToReader(t *testing.T) {
	svc := setupAuth(t)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "tunde@example.com",
		Username: "tunde",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.UserTypeReader, resp.User.UserType)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := setupAuth(t)
	ctx := context.Background()

	req := RegisterRequest{
		Email:    "ada@example.com",
		Username: "adaobi",
		Password: "correct-horse-battery",
	}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	req.Username = "adaobi2"
	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := setupAuth(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{
		Email:    "ada@example.com",
		Username: "adaobi",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	// Unknown emails get the same answer, no account probing.
	_, err = svc.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestLogin_RateLimitedByIP(t *testing.T) {
	svc := setupAuth(t)
	ctx := context.Background()

	req := LoginRequest{Email: "ada@example.com", Password: "wrong", IPAddress: "10.0.0.9"}
	var limited bool
	for range 10 {
		_, err := svc.Login(ctx, req)
		if domainerrors.Is(err, domainerrors.ErrValidation) {
			limited = true
			break
		}
	}
	assert.True(t, limited, "repeated attempts from one IP get throttled")
}

func TestLogoutAll(t *testing.T) {
	svc := setupAuth(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, RegisterRequest{
		Email:    "ada@example.com",
		Username: "adaobi",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	second, err := svc.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "correct-horse-battery"})
	require.NoError(t, err)

	require.NoError(t, svc.LogoutAll(ctx, first.User.ID))

	_, err = svc.Refresh(ctx, RefreshRequest{SessionID: first.SessionID, RefreshToken: first.RefreshToken})
	assert.Error(t, err)
	_, err = svc.Refresh(ctx, RefreshRequest{SessionID: second.SessionID, RefreshToken: second.RefreshToken})
	assert.Error(t, err)
}
