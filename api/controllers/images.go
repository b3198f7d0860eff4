package controllers

import (
	"net/http"

	"github.com/TinoSanchez/app-achatrevente/api/responses"
	pkgerrors "github.com/TinoSanchez/app-achatrevente/pkg/errors"
	"github.com/TinoSanchez/app-achatrevente/pkg/logger"
	"github.com/TinoSanchez/app-achatrevente/pkg/storage"
)

// UploadImage accepts a multipart "file" part and returns the stored
// image URL to attach to a record.
func UploadImage(store storage.ImageStore, maxUploadMB int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "image storage unavailable"))
			return
		}

		if _, err := ownerFromRequest(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		maxBytes := int64(maxUploadMB) << 20
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid upload"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "missing file"))
			return
		}
		defer file.Close()

		url, err := store.Upload(r.Context(), header.Filename, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "storing image"))
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{"url": url})
	}
}
