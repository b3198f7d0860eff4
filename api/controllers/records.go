package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/TinoSanchez/app-achatrevente/api/middleware"
	"github.com/TinoSanchez/app-achatrevente/api/responses"
	"github.com/TinoSanchez/app-achatrevente/api/validators"
	"github.com/TinoSanchez/app-achatrevente/internal/records"
	"github.com/TinoSanchez/app-achatrevente/pkg/enums"
	pkgerrors "github.com/TinoSanchez/app-achatrevente/pkg/errors"
	"github.com/TinoSanchez/app-achatrevente/pkg/logger"
	"github.com/TinoSanchez/app-achatrevente/pkg/pagination"
)

type recordRequest struct {
	Nom         string `json:"nom" validate:"required,min=2"`
	SKU         string `json:"sku"`
	Categorie   string `json:"categorie"`
	Description string `json:"description"`
	Fournisseur string `json:"fournisseur"`
	Etat        string `json:"etat"`
	Emplacement string `json:"emplacement"`
	Tags        string `json:"tags"`
	Notes       string `json:"notes"`

	Quantite             int             `json:"quantite" validate:"omitempty,min=0"`
	PrixAchat            decimal.Decimal `json:"prixAchat"`
	PrixVente            decimal.Decimal `json:"prixVente"`
	Frais                decimal.Decimal `json:"frais"`
	FraisPort            decimal.Decimal `json:"fraisPort"`
	CommissionPlateforme decimal.Decimal `json:"commissionPlateforme"`
	FraisEmballage       decimal.Decimal `json:"fraisEmballage"`
	FraisAnnexes         decimal.Decimal `json:"fraisAnnexes"`

	Statut    string `json:"statut"`
	DateAchat string `json:"dateAchat"`
	DateVente string `json:"dateVente"`
	ImageURL  string `json:"imageUrl"`
}

func (r recordRequest) toInput() records.RecordInput {
	return records.RecordInput{
		Nom:         r.Nom,
		SKU:         r.SKU,
		Categorie:   r.Categorie,
		Description: r.Description,
		Fournisseur: r.Fournisseur,
		Etat:        r.Etat,
		Emplacement: r.Emplacement,
		Tags:        r.Tags,
		Notes:       r.Notes,

		Quantite:             r.Quantite,
		PrixAchat:            r.PrixAchat,
		PrixVente:            r.PrixVente,
		Frais:                r.Frais,
		FraisPort:            r.FraisPort,
		CommissionPlateforme: r.CommissionPlateforme,
		FraisEmballage:       r.FraisEmballage,
		FraisAnnexes:         r.FraisAnnexes,

		Statut:    enums.RecordStatus(r.Statut),
		DateAchat: r.DateAchat,
		DateVente: r.DateVente,
		ImageURL:  r.ImageURL,
	}
}

func ownerFromRequest(r *http.Request) (string, error) {
	ownerID := middleware.OwnerIDFromContext(r.Context())
	if ownerID == "" {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return ownerID, nil
}

// ListRecords serves the filterable, sortable, paginated inventory list.
func ListRecords(store records.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1_000_000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		perPage, err := validators.ParseQueryInt(r, "perPage", pagination.DefaultPerPage, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := records.ListQuery{
			Statut:      r.URL.Query().Get("statut"),
			Categorie:   r.URL.Query().Get("categorie"),
			Fournisseur: r.URL.Query().Get("fournisseur"),
			Query:       r.URL.Query().Get("q"),
			SortBy:      r.URL.Query().Get("sortBy"),
			SortDesc:    validators.ParseQueryBool(r, "desc", false),
			Page:        pagination.Params{Page: page, PerPage: perPage},
		}

		result, err := store.List(r.Context(), ownerID, query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// CreateRecord handles new inventory entries.
func CreateRecord(store records.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body recordRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := store.Create(r.Context(), ownerID, body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, record)
	}
}

// GetRecord returns a single owned record.
func GetRecord(store records.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := store.Get(r.Context(), ownerID, chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, record)
	}
}

// UpdateRecord is a full-replace write; margins are recomputed server side.
func UpdateRecord(store records.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body recordRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := store.Update(r.Context(), ownerID, chi.URLParam(r, "id"), body.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, record)
	}
}

// DeleteRecord removes a record; deleting an absent id succeeds.
func DeleteRecord(store records.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := store.Delete(r.Context(), ownerID, chi.URLParam(r, "id")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type bulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}

// BulkDeleteRecords deletes a batch best-effort.
func BulkDeleteRecords(store records.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body bulkDeleteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := store.BulkDelete(r.Context(), ownerID, body.IDs); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// NextSKU hands out the next generated SKU and persists the advanced counter.
func NextSKU(svc *records.SKUService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sku, err := svc.Next(r.Context(), ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"sku": sku})
	}
}

// ResolveRecord turns a shared deep link into the record it points at
// plus the canonical address without the selection fragment.
func ResolveRecord(store records.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		fragment := r.URL.Query().Get("fragment")
		id, err := records.ParseProductFragment(fragment)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := store.Get(r.Context(), ownerID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"record":  record,
			"address": records.CanonicalAddress(fragment),
		})
	}
}

// StreamRecords pushes the full record list over SSE after every change,
// starting with the current snapshot.
func StreamRecords(store records.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, err := ownerFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		updates := make(chan []records.RecordDTO, 1)
		cancel, err := store.Subscribe(r.Context(), ownerID, func(list []records.RecordDTO) {
			// Keep only the freshest snapshot when the client is slow.
			select {
			case updates <- list:
			default:
				select {
				case <-updates:
				default:
				}
				select {
				case updates <- list:
				default:
				}
			}
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer cancel()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case list := <-updates:
				payload, err := json.Marshal(list)
				if err != nil {
					if logg != nil {
						logg.Error(r.Context(), "records.stream.encode", err)
					}
					return
				}
				fmt.Fprintf(w, "event: records\ndata: %s\n\n", payload)
				flusher.Flush()
			}
		}
	}
}
