package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/TinoSanchez/app-achatrevente/api/responses"
	appauth "github.com/TinoSanchez/app-achatrevente/internal/auth"
	pkgauth "github.com/TinoSanchez/app-achatrevente/pkg/auth"
	"github.com/TinoSanchez/app-achatrevente/pkg/auth/session"
	"github.com/TinoSanchez/app-achatrevente/pkg/config"
	pkgerrors "github.com/TinoSanchez/app-achatrevente/pkg/errors"
	"github.com/TinoSanchez/app-achatrevente/pkg/logger"
)

// TokenSessions resolves a bearer token to a live session. The local
// gateway keeps its session table on disk and satisfies this directly.
type TokenSessions interface {
	SessionForToken(accessToken string) (*appauth.Session, bool, error)
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}

// Auth validates a signed bearer token and seeds the request context
// with the owner identity. Revoked sessions are rejected even when the
// token itself is still within its validity window.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			if verifier != nil {
				ok, err := verifier.HasSession(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired"))
					return
				}
			}

			ctx := seedIdentity(r.Context(), logg, claims.UserID.String(), claims.Email, claims.DisplayName)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LocalAuth resolves opaque tokens against the device-local session
// table instead of verifying a signature.
func LocalAuth(sessions TokenSessions, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			sess, ok, err := sessions.SessionForToken(token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "validate session"))
				return
			}
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired"))
				return
			}

			ctx := seedIdentity(r.Context(), logg, sess.UserID, sess.Email, sess.DisplayName)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func seedIdentity(ctx context.Context, logg *logger.Logger, ownerID, email, displayName string) context.Context {
	ctx = context.WithValue(ctx, ctxOwnerID, ownerID)
	ctx = context.WithValue(ctx, ctxEmail, email)
	if displayName != "" {
		ctx = context.WithValue(ctx, ctxDisplayName, displayName)
	}
	if logg != nil {
		ctx = logg.WithOwnerID(ctx, ownerID)
	}
	return ctx
}
