package controllers

import (
	"net/http"

	"github.com/TinoSanchez/app-achatrevente/api/responses"
	"github.com/TinoSanchez/app-achatrevente/api/validators"
	"github.com/TinoSanchez/app-achatrevente/internal/prefs"
	"github.com/TinoSanchez/app-achatrevente/pkg/logger"
)

// GetPreferences returns the stored settings document, defaults included.
func GetPreferences(store prefs.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		preferences, err := store.Get(r.Context(), ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, preferences)
	}
}

// SavePreferences merges a partial update. Writes go through the
// debounced saver when one is supplied, so a settings screen firing on
// every keystroke coalesces into one store write; the response is the
// optimistic merge result.
func SavePreferences(store prefs.Store, saver *prefs.DebouncedSaver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var patch prefs.Patch
		if err := validators.DecodeJSONBody(r, &patch); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if saver == nil {
			preferences, err := store.Save(r.Context(), ownerID, patch)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, preferences)
			return
		}

		current, err := store.Get(r.Context(), ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		saver.Save(ownerID, patch)
		responses.WriteSuccess(w, current.Apply(patch))
	}
}

// ClearPreferences drops the stored document, restoring defaults.
func ClearPreferences(store prefs.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := store.Clear(r.Context(), ownerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, prefs.Defaults())
	}
}
