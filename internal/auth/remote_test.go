package auth

import (
	"context"
	"fmt"
	"testing"

	"github.com/TinoSanchez/app-achatrevente/pkg/config"
	"github.com/TinoSanchez/app-achatrevente/pkg/db/models"
	pkgerrors "github.com/TinoSanchez/app-achatrevente/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type fakeSessions struct {
	open    []string
	revoked []string
}

func (f *fakeSessions) Open(ctx context.Context, accessID string) error {
	f.open = append(f.open, accessID)
	return nil
}

func (f *fakeSessions) Revoke(ctx context.Context, accessID string) error {
	f.revoked = append(f.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "achatrevente-test",
		ExpirationMinutes: 15,
	}
}

func testPasswordConfig() config.PasswordConfig {
	// Small parameters keep hashing fast under test.
	return config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func newRemoteGateway(t *testing.T) (*RemoteGateway, *fakeSessions) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.User{}))

	sessions := &fakeSessions{}
	gateway, err := NewRemoteGateway(RemoteGatewayParams{
		Users:          NewUserRepository(conn),
		Sessions:       sessions,
		JWTConfig:      testJWTConfig(),
		PasswordConfig: testPasswordConfig(),
	})
	require.NoError(t, err)
	return gateway, sessions
}

func TestRemoteSignUpAndSignIn(t *testing.T) {
	gateway, sessions := newRemoteGateway(t)
	ctx := context.Background()

	creds, err := gateway.SignUp(ctx, "  Marie@Example.COM ", "motdepasse")
	require.NoError(t, err)
	require.Equal(t, "marie@example.com", creds.Session.Email)
	require.Equal(t, "marie", creds.Session.DisplayName)
	require.False(t, creds.Session.IsAnonymous)
	require.NotEmpty(t, creds.AccessToken)
	require.Len(t, sessions.open, 1)

	again, err := gateway.SignIn(ctx, "marie@example.com", "motdepasse")
	require.NoError(t, err)
	require.Equal(t, creds.Session.UserID, again.Session.UserID)
	require.Len(t, sessions.open, 2)
}

func TestRemoteSignUpRejectsWeakPassword(t *testing.T) {
	gateway, sessions := newRemoteGateway(t)
	ctx := context.Background()

	_, err := gateway.SignUp(ctx, "marie@example.com", "abc")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeWeakPassword), "got %v", err)
	require.Empty(t, sessions.open)

	// The rejected sign-up left no account behind.
	_, err = gateway.SignIn(ctx, "marie@example.com", "abc")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUserNotFound), "got %v", err)
}

func TestRemoteSignUpRejectsDuplicateEmail(t *testing.T) {
	gateway, _ := newRemoteGateway(t)
	ctx := context.Background()

	_, err := gateway.SignUp(ctx, "marie@example.com", "motdepasse")
	require.NoError(t, err)

	_, err = gateway.SignUp(ctx, "marie@example.com", "autremotdepasse")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeEmailInUse), "got %v", err)
}

func TestRemoteSignUpRejectsInvalidEmail(t *testing.T) {
	gateway, _ := newRemoteGateway(t)

	for _, email := range []string{"", "not-an-email", "a@b", "@example.com"} {
		_, err := gateway.SignUp(context.Background(), email, "motdepasse")
		require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInvalidEmail), "email %q: got %v", email, err)
	}
}

func TestRemoteSignInWrongPassword(t *testing.T) {
	gateway, _ := newRemoteGateway(t)
	ctx := context.Background()

	_, err := gateway.SignUp(ctx, "marie@example.com", "motdepasse")
	require.NoError(t, err)

	_, err = gateway.SignIn(ctx, "marie@example.com", "mauvais")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeWrongPassword), "got %v", err)
}

func TestRemoteSignOutRevokesSession(t *testing.T) {
	gateway, sessions := newRemoteGateway(t)
	ctx := context.Background()

	creds, err := gateway.SignUp(ctx, "marie@example.com", "motdepasse")
	require.NoError(t, err)

	require.NoError(t, gateway.SignOut(ctx, creds.AccessToken))
	require.Len(t, sessions.revoked, 1)

	// Garbage tokens revoke nothing.
	require.NoError(t, gateway.SignOut(ctx, "not-a-token"))
	require.Len(t, sessions.revoked, 1)
}

func TestRemoteOnSessionChange(t *testing.T) {
	gateway, _ := newRemoteGateway(t)
	ctx := context.Background()

	var states []*Session
	unsubscribe := gateway.OnSessionChange(func(s *Session) {
		states = append(states, s)
	})
	defer unsubscribe()

	require.Len(t, states, 1)
	require.Nil(t, states[0])

	creds, err := gateway.SignUp(ctx, "marie@example.com", "motdepasse")
	require.NoError(t, err)
	require.Len(t, states, 2)
	require.Equal(t, creds.Session.UserID, states[1].UserID)

	require.NoError(t, gateway.SignOut(ctx, creds.AccessToken))
	require.Len(t, states, 3)
	require.Nil(t, states[2])
}
