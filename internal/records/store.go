package records

import (
	"context"
	"strings"

	"github.com/TinoSanchez/app-achatrevente/pkg/pagination"
)

// Sort keys accepted by the list endpoint.
const (
	SortByNom              = "nom"
	SortByPrixAchat        = "prixAchat"
	SortByPrixVente        = "prixVente"
	SortByBeneficeUnitaire = "beneficeUnitaire"
)

// ListQuery carries the filter, sort, and pagination knobs of the
// record list endpoint.
type ListQuery struct {
	Statut      string
	Categorie   string
	Fournisseur string
	Query       string

	SortBy   string
	SortDesc bool

	Page pagination.Params
}

// ListResult is one page of records plus paging metadata.
type ListResult struct {
	Records    []RecordDTO `json:"records"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	PerPage    int         `json:"perPage"`
	TotalPages int         `json:"totalPages"`
}

// Store is the record persistence contract. The backend is chosen once
// at startup: remote rows behind gorm with a redis change feed, or a
// device-local JSON slot.
type Store interface {
	// List returns one filtered, sorted page of the owner's records.
	List(ctx context.Context, ownerID string, query ListQuery) (*ListResult, error)

	// ListAll returns every record of the owner in the backend's
	// canonical order.
	ListAll(ctx context.Context, ownerID string) ([]RecordDTO, error)

	// Get loads one record, NotFound when absent.
	Get(ctx context.Context, ownerID, id string) (*RecordDTO, error)

	// Create inserts a record; the id is assigned here and never reused.
	Create(ctx context.Context, ownerID string, input RecordInput) (*RecordDTO, error)

	// Update replaces all user-editable fields, NotFound when absent.
	Update(ctx context.Context, ownerID, id string, input RecordInput) (*RecordDTO, error)

	// Delete removes a record; deleting an absent id is a no-op.
	Delete(ctx context.Context, ownerID, id string) error

	// BulkDelete removes records best-effort: successes stand, failures
	// come back aggregated per id.
	BulkDelete(ctx context.Context, ownerID string, ids []string) error

	// Subscribe delivers the full current list immediately, then again
	// after every observed change. The returned func cancels delivery.
	Subscribe(ctx context.Context, ownerID string, fn func([]RecordDTO)) (func(), error)
}

// matchesQuery implements the free-text filter over nom, sku, categorie,
// and tags, case-insensitively. Both backends share it so the remote SQL
// path and the local in-memory path agree.
func matchesQuery(record RecordDTO, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, field := range []string{record.Nom, record.SKU, record.Categorie, record.Tags} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func matchesFilters(record RecordDTO, query ListQuery) bool {
	if query.Statut != "" && string(record.Statut) != query.Statut {
		return false
	}
	if query.Categorie != "" && !strings.EqualFold(record.Categorie, query.Categorie) {
		return false
	}
	if query.Fournisseur != "" && !strings.EqualFold(record.Fournisseur, query.Fournisseur) {
		return false
	}
	return matchesQuery(record, query.Query)
}
