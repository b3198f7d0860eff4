package controllers

import (
	"net/http"
	"strings"

	"github.com/TinoSanchez/app-achatrevente/api/responses"
	"github.com/TinoSanchez/app-achatrevente/api/validators"
	"github.com/TinoSanchez/app-achatrevente/internal/auth"
	pkgerrors "github.com/TinoSanchez/app-achatrevente/pkg/errors"
	"github.com/TinoSanchez/app-achatrevente/pkg/logger"
)

type credentialsRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthRegister wires the sign-up endpoint into the HTTP layer.
func AuthRegister(gateway auth.Gateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if gateway == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth gateway unavailable"))
			return
		}

		var body credentialsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		creds, err := gateway.SignUp(r.Context(), body.Email, body.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, creds)
	}
}

// AuthLogin wires the sign-in endpoint into the HTTP layer.
func AuthLogin(gateway auth.Gateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if gateway == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth gateway unavailable"))
			return
		}

		var body credentialsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		creds, err := gateway.SignIn(r.Context(), body.Email, body.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, creds)
	}
}

// AuthLogout revokes the presented session. Unknown tokens succeed so
// a stale client can always reach the signed-out state.
func AuthLogout(gateway auth.Gateway, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if gateway == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth gateway unavailable"))
			return
		}

		token := strings.TrimSpace(r.Header.Get("Authorization"))
		if strings.HasPrefix(strings.ToLower(token), "bearer ") {
			token = strings.TrimSpace(token[7:])
		}

		if err := gateway.SignOut(r.Context(), token); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "signed_out"})
	}
}
