package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgauth "github.com/TinoSanchez/app-achatrevente/pkg/auth"
	"github.com/TinoSanchez/app-achatrevente/pkg/auth/session"
	"github.com/TinoSanchez/app-achatrevente/pkg/config"
	"github.com/TinoSanchez/app-achatrevente/pkg/db"
	"github.com/TinoSanchez/app-achatrevente/pkg/db/models"
	pkgerrors "github.com/TinoSanchez/app-achatrevente/pkg/errors"
	"github.com/TinoSanchez/app-achatrevente/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// sessionOpener is the slice of the session manager the gateway needs.
type sessionOpener interface {
	Open(ctx context.Context, accessID string) error
	Revoke(ctx context.Context, accessID string) error
}

// RemoteGateway authenticates against the users table and opens
// redis-backed sessions bound to JWT access tokens.
type RemoteGateway struct {
	users       *UserRepository
	sessions    sessionOpener
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	notify      *notifier
}

// RemoteGatewayParams packages the gateway dependencies.
type RemoteGatewayParams struct {
	Users          *UserRepository
	Sessions       sessionOpener
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
}

// NewRemoteGateway builds the server-backed gateway.
func NewRemoteGateway(params RemoteGatewayParams) (*RemoteGateway, error) {
	if params.Users == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if params.Sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	return &RemoteGateway{
		users:       params.Users,
		sessions:    params.Sessions,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		notify:      newNotifier(nil),
	}, nil
}

// SignUp creates the account. A weak password or malformed email
// leaves no user and no session behind.
func (g *RemoteGateway) SignUp(ctx context.Context, email, password string) (*Credentials, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if err := CheckPasswordStrength(password); err != nil {
		return nil, err
	}

	hash, err := security.HashPassword(password, g.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        normalized,
		PasswordHash: hash,
		DisplayName:  DisplayNameFromEmail(normalized),
	}
	if _, err := g.users.Create(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeEmailInUse, "email already in use")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "db: insert user")
	}

	return g.openSession(ctx, user)
}

// SignIn verifies the password and opens a session.
func (g *RemoteGateway) SignIn(ctx context.Context, email, password string) (*Credentials, error) {
	normalized, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	user, err := g.users.FindByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUserNotFound, "no account for this email")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "db: lookup user")
	}

	valid, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeWrongPassword, "wrong password")
	}

	return g.openSession(ctx, user)
}

// SignOut revokes the session named by the token's jti. Expired or
// garbage tokens revoke nothing and return nil.
func (g *RemoteGateway) SignOut(ctx context.Context, accessToken string) error {
	claims, err := pkgauth.ParseAccessToken(g.jwtCfg, accessToken)
	if err != nil {
		return nil
	}
	if err := g.sessions.Revoke(ctx, claims.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "revoke session")
	}
	g.notify.emit(nil)
	return nil
}

// OnSessionChange registers a session observer.
func (g *RemoteGateway) OnSessionChange(fn func(*Session)) func() {
	return g.notify.subscribe(fn)
}

func (g *RemoteGateway) openSession(ctx context.Context, user *models.User) (*Credentials, error) {
	accessID := session.NewAccessID()
	token, err := pkgauth.MintAccessToken(g.jwtCfg, time.Now(), pkgauth.AccessTokenPayload{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		JTI:         accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	if err := g.sessions.Open(ctx, accessID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "open session")
	}

	sess := Session{
		UserID:      user.ID.String(),
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}
	g.notify.emit(&sess)
	return &Credentials{Session: sess, AccessToken: token}, nil
}
