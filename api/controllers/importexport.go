package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/TinoSanchez/app-achatrevente/api/responses"
	"github.com/TinoSanchez/app-achatrevente/internal/importexport"
	pkgerrors "github.com/TinoSanchez/app-achatrevente/pkg/errors"
	"github.com/TinoSanchez/app-achatrevente/pkg/logger"
)

func exportFormat(r *http.Request) string {
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = "csv"
	}
	return format
}

// ExportRecords streams the full inventory as a CSV or JSON download.
func ExportRecords(svc *importexport.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var (
			payload     []byte
			contentType string
			ext         string
		)
		switch format := exportFormat(r); format {
		case "csv":
			payload, err = svc.ExportCSV(r.Context(), ownerID)
			contentType, ext = "text/csv; charset=utf-8", "csv"
		case "json":
			payload, err = svc.ExportJSON(r.Context(), ownerID)
			contentType, ext = "application/json", "json"
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown export format"))
			return
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filename := fmt.Sprintf("inventaire-%s.%s", time.Now().Format("2006-01-02"), ext)
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.WriteHeader(http.StatusOK)
		w.Write(payload)
	}
}

// ImportRecords ingests a CSV or JSON upload. A malformed payload
// aborts before anything is written.
func ImportRecords(svc *importexport.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		format := exportFormat(r)
		if format == "csv" && strings.Contains(r.Header.Get("Content-Type"), "application/json") {
			format = "json"
		}

		var created int
		switch format {
		case "csv":
			created, err = svc.ImportCSV(r.Context(), ownerID, r.Body)
		case "json":
			created, err = svc.ImportJSON(r.Context(), ownerID, r.Body)
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown import format"))
			return
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]int{"created": created})
	}
}
