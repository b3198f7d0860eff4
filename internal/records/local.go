package records

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	pkgerrors "github.com/TinoSanchez/app-achatrevente/pkg/errors"
	"github.com/TinoSanchez/app-achatrevente/pkg/localstore"
	"github.com/TinoSanchez/app-achatrevente/pkg/pagination"
	"go.uber.org/multierr"
)

// RecordsSlot is the device-storage slot holding the record array. The
// v2 suffix marks the schema that introduced the fee breakdown fields.
const RecordsSlot = "produits_v2"

// LocalStore keeps all records in one JSON slot on device storage.
// Writes are synchronous read-modify-write cycles; newest records sit
// at the front of the array.
type LocalStore struct {
	store *localstore.Store

	mu     sync.Mutex
	lastID int64
}

// NewLocalStore builds the device-local record backend.
func NewLocalStore(store *localstore.Store) (*LocalStore, error) {
	if store == nil {
		return nil, fmt.Errorf("local store required")
	}
	return &LocalStore{store: store}, nil
}

func (s *LocalStore) load() ([]RecordDTO, error) {
	var records []RecordDTO
	found, err := s.store.Get(RecordsSlot, &records)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "read record slot")
	}
	if !found {
		return []RecordDTO{}, nil
	}
	return records, nil
}

func (s *LocalStore) save(records []RecordDTO) error {
	if err := s.store.Put(RecordsSlot, records); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "write record slot")
	}
	return nil
}

// nextID allocates a millisecond-timestamp id, bumping on same-instant
// allocations so ids stay unique within the device.
func (s *LocalStore) nextID() string {
	now := time.Now().UnixMilli()
	if now <= s.lastID {
		now = s.lastID + 1
	}
	s.lastID = now
	return strconv.FormatInt(now, 10)
}

// ListAll returns the records in insertion order, newest first.
func (s *LocalStore) ListAll(ctx context.Context, ownerID string) ([]RecordDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// List filters, sorts, and pages the slot contents in memory.
func (s *LocalStore) List(ctx context.Context, ownerID string, query ListQuery) (*ListResult, error) {
	records, err := s.ListAll(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	filtered := make([]RecordDTO, 0, len(records))
	for _, record := range records {
		if matchesFilters(record, query) {
			filtered = append(filtered, record)
		}
	}
	sortRecords(filtered, query.SortBy, query.SortDesc)

	page := pagination.Normalize(query.Page)
	total := len(filtered)
	start := page.Offset()
	if start > total {
		start = total
	}
	end := start + page.PerPage
	if end > total {
		end = total
	}

	return &ListResult{
		Records:    filtered[start:end],
		Total:      total,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: pagination.TotalPages(total, page.PerPage),
	}, nil
}

// Get loads one record by id.
func (s *LocalStore) Get(ctx context.Context, ownerID, id string) (*RecordDTO, error) {
	records, err := s.ListAll(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].ID == id {
			return &records[i], nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
}

// Create prepends the new record to the slot.
func (s *LocalStore) Create(ctx context.Context, ownerID string, input RecordInput) (*RecordDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}

	input = input.normalize()
	unitaire, total := input.margins()
	now := time.Now()
	record := RecordDTO{
		ID:                   s.nextID(),
		Nom:                  input.Nom,
		SKU:                  input.SKU,
		Categorie:            input.Categorie,
		Description:          input.Description,
		Fournisseur:          input.Fournisseur,
		Etat:                 input.Etat,
		Emplacement:          input.Emplacement,
		Tags:                 input.Tags,
		Notes:                input.Notes,
		Quantite:             input.Quantite,
		PrixAchat:            input.PrixAchat,
		PrixVente:            input.PrixVente,
		Frais:                input.Frais,
		FraisPort:            input.FraisPort,
		CommissionPlateforme: input.CommissionPlateforme,
		FraisEmballage:       input.FraisEmballage,
		FraisAnnexes:         input.FraisAnnexes,
		Statut:               input.Statut,
		DateAchat:            input.DateAchat,
		DateVente:            input.DateVente,
		ImageURL:             input.ImageURL,
		BeneficeUnitaire:     unitaire,
		BeneficeTotal:        total,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	records = append([]RecordDTO{record}, records...)
	if err := s.save(records); err != nil {
		return nil, err
	}
	return &record, nil
}

// Update replaces the user-editable fields in place, keeping the
// record's position in the array.
func (s *LocalStore) Update(ctx context.Context, ownerID, id string, input RecordInput) (*RecordDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}

	for i := range records {
		if records[i].ID != id {
			continue
		}
		input = input.normalize()
		unitaire, total := input.margins()
		updated := records[i]
		applyInput(&updated, input)
		updated.BeneficeUnitaire = unitaire
		updated.BeneficeTotal = total
		updated.UpdatedAt = time.Now()
		records[i] = updated
		if err := s.save(records); err != nil {
			return nil, err
		}
		return &updated, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
}

// Delete removes the record if present; absent ids are a no-op.
func (s *LocalStore) Delete(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	kept := records[:0]
	for _, record := range records {
		if record.ID != id {
			kept = append(kept, record)
		}
	}
	if len(kept) == len(records) {
		return nil
	}
	return s.save(kept)
}

// BulkDelete removes each id independently and aggregates failures.
func (s *LocalStore) BulkDelete(ctx context.Context, ownerID string, ids []string) error {
	var errs error
	for _, id := range ids {
		if err := s.Delete(ctx, ownerID, id); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("delete %s: %w", id, err))
		}
	}
	return errs
}

// Subscribe delivers the current list once. Device storage has no
// cross-instance change feed, so no further deliveries follow.
func (s *LocalStore) Subscribe(ctx context.Context, ownerID string, fn func([]RecordDTO)) (func(), error) {
	records, err := s.ListAll(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	fn(records)
	return func() {}, nil
}

func applyInput(record *RecordDTO, input RecordInput) {
	record.Nom = input.Nom
	record.SKU = input.SKU
	record.Categorie = input.Categorie
	record.Description = input.Description
	record.Fournisseur = input.Fournisseur
	record.Etat = input.Etat
	record.Emplacement = input.Emplacement
	record.Tags = input.Tags
	record.Notes = input.Notes
	record.Quantite = input.Quantite
	record.PrixAchat = input.PrixAchat
	record.PrixVente = input.PrixVente
	record.Frais = input.Frais
	record.FraisPort = input.FraisPort
	record.CommissionPlateforme = input.CommissionPlateforme
	record.FraisEmballage = input.FraisEmballage
	record.FraisAnnexes = input.FraisAnnexes
	record.Statut = input.Statut
	record.DateAchat = input.DateAchat
	record.DateVente = input.DateVente
	record.ImageURL = input.ImageURL
}

// sortRecords orders a slice by the requested key, leaving the
// backend's canonical order alone when no key is given.
func sortRecords(records []RecordDTO, sortBy string, desc bool) {
	var less func(a, b RecordDTO) bool
	switch sortBy {
	case SortByNom:
		less = func(a, b RecordDTO) bool { return a.Nom < b.Nom }
	case SortByPrixAchat:
		less = func(a, b RecordDTO) bool { return a.PrixAchat.LessThan(b.PrixAchat) }
	case SortByPrixVente:
		less = func(a, b RecordDTO) bool { return a.PrixVente.LessThan(b.PrixVente) }
	case SortByBeneficeUnitaire:
		less = func(a, b RecordDTO) bool { return a.BeneficeUnitaire.LessThan(b.BeneficeUnitaire) }
	default:
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		if desc {
			return less(records[j], records[i])
		}
		return less(records[i], records[j])
	})
}
