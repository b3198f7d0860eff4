package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/TinoSanchez/app-achatrevente/pkg/db/models"
	pkgerrors "github.com/TinoSanchez/app-achatrevente/pkg/errors"
	"github.com/TinoSanchez/app-achatrevente/pkg/logger"
	"github.com/TinoSanchez/app-achatrevente/pkg/pagination"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// RemoteStore keeps records in per-owner Postgres rows and pushes
// change signals through the feed so subscribed clients stay current.
type RemoteStore struct {
	repo *Repository
	feed Feed
	logg *logger.Logger
}

// NewRemoteStore builds the server-backed record store.
func NewRemoteStore(repo *Repository, feed Feed, logg *logger.Logger) (*RemoteStore, error) {
	if repo == nil {
		return nil, fmt.Errorf("record repository required")
	}
	if feed == nil {
		return nil, fmt.Errorf("change feed required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &RemoteStore{repo: repo, feed: feed, logg: logg}, nil
}

func parseOwner(ownerID string) (uuid.UUID, error) {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodePermissionDenied, "unknown owner")
	}
	return owner, nil
}

// ListAll returns every record of the owner, name ascending.
func (s *RemoteStore) ListAll(ctx context.Context, ownerID string) ([]RecordDTO, error) {
	owner, err := parseOwner(ownerID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "db: list records")
	}
	records := make([]RecordDTO, 0, len(rows))
	for i := range rows {
		records = append(records, *NewRecordDTO(&rows[i]))
	}
	return records, nil
}

// List returns one filtered, sorted page.
func (s *RemoteStore) List(ctx context.Context, ownerID string, query ListQuery) (*ListResult, error) {
	owner, err := parseOwner(ownerID)
	if err != nil {
		return nil, err
	}
	page := pagination.Normalize(query.Page)
	rows, total, err := s.repo.ListPage(ctx, owner, query, page.Offset(), page.PerPage)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "db: list records page")
	}
	records := make([]RecordDTO, 0, len(rows))
	for i := range rows {
		records = append(records, *NewRecordDTO(&rows[i]))
	}
	return &ListResult{
		Records:    records,
		Total:      int(total),
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: pagination.TotalPages(int(total), page.PerPage),
	}, nil
}

// Get loads one record, scoped to the owner.
func (s *RemoteStore) Get(ctx context.Context, ownerID, id string) (*RecordDTO, error) {
	owner, err := parseOwner(ownerID)
	if err != nil {
		return nil, err
	}
	recordID, err := uuid.Parse(id)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
	}
	row, err := s.repo.FindByID(ctx, owner, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "db: load record")
	}
	return NewRecordDTO(row), nil
}

// Create inserts the record and announces the change.
func (s *RemoteStore) Create(ctx context.Context, ownerID string, input RecordInput) (*RecordDTO, error) {
	owner, err := parseOwner(ownerID)
	if err != nil {
		return nil, err
	}

	input = input.normalize()
	unitaire, total := input.margins()
	row := &models.ProductRecord{
		ID:                   uuid.New(),
		OwnerID:              owner,
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
	}

	created, err := s.repo.Create(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "db: insert record")
	}
	s.feed.Publish(ctx, ownerID)
	return NewRecordDTO(created), nil
}

// Update replaces all user-editable fields and announces the change.
func (s *RemoteStore) Update(ctx context.Context, ownerID, id string, input RecordInput) (*RecordDTO, error) {
	owner, err := parseOwner(ownerID)
	if err != nil {
		return nil, err
	}
	recordID, err := uuid.Parse(id)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
	}

	row, err := s.repo.FindByID(ctx, owner, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "db: load record")
	}

	input = input.normalize()
	unitaire, total := input.margins()
	row.Nom = input.Nom
	row.SKU = input.SKU
	row.Categorie = input.Categorie
	row.Description = input.Description
	row.Fournisseur = input.Fournisseur
	row.Etat = input.Etat
	row.Emplacement = input.Emplacement
	row.Tags = input.Tags
	row.Notes = input.Notes
	row.Quantite = input.Quantite
	row.PrixAchat = input.PrixAchat
	row.PrixVente = input.PrixVente
	row.Frais = input.Frais
	row.FraisPort = input.FraisPort
	row.CommissionPlateforme = input.CommissionPlateforme
	row.FraisEmballage = input.FraisEmballage
	row.FraisAnnexes = input.FraisAnnexes
	row.Statut = input.Statut
	row.DateAchat = input.DateAchat
	row.DateVente = input.DateVente
	row.ImageURL = input.ImageURL
	row.BeneficeUnitaire = unitaire
	row.BeneficeTotal = total

	saved, err := s.repo.Save(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "db: save record")
	}
	s.feed.Publish(ctx, ownerID)
	return NewRecordDTO(saved), nil
}

// Delete removes the record; deleting an absent id is a no-op and
// publishes nothing.
func (s *RemoteStore) Delete(ctx context.Context, ownerID, id string) error {
	owner, err := parseOwner(ownerID)
	if err != nil {
		return err
	}
	recordID, err := uuid.Parse(id)
	if err != nil {
		return nil
	}
	removed, err := s.repo.DeleteByID(ctx, owner, recordID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "db: delete record")
	}
	if removed {
		s.feed.Publish(ctx, ownerID)
	}
	return nil
}

// BulkDelete removes each id independently; failures aggregate while
// successes stand, and one change is announced when anything changed.
func (s *RemoteStore) BulkDelete(ctx context.Context, ownerID string, ids []string) error {
	owner, err := parseOwner(ownerID)
	if err != nil {
		return err
	}

	var errs error
	changed := false
	for _, id := range ids {
		recordID, err := uuid.Parse(id)
		if err != nil {
			continue
		}
		removed, err := s.repo.DeleteByID(ctx, owner, recordID)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("delete %s: %w", id, err))
			continue
		}
		changed = changed || removed
	}
	if changed {
		s.feed.Publish(ctx, ownerID)
	}
	if errs != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnavailable, errs, "bulk delete incomplete")
	}
	return nil
}

// Subscribe delivers the full list immediately, then re-reads and
// delivers again after every feed signal until unsubscribed.
func (s *RemoteStore) Subscribe(ctx context.Context, ownerID string, fn func([]RecordDTO)) (func(), error) {
	records, err := s.ListAll(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	signals, cancel, err := s.feed.Subscribe(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, "feed: subscribe")
	}

	fn(records)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-signals:
				if !ok {
					return
				}
				current, err := s.ListAll(ctx, ownerID)
				if err != nil {
					s.logg.Warn(s.logg.WithOwnerID(ctx, ownerID), "subscribe re-read failed")
					continue
				}
				fn(current)
			}
		}
	}()

	return cancel, nil
}

// SKUExists adapts the repository lookup for the SKU generator.
func (s *RemoteStore) SKUExists(ctx context.Context, ownerID string) (func(string) bool, error) {
	owner, err := parseOwner(ownerID)
	if err != nil {
		return nil, err
	}
	return func(sku string) bool {
		taken, err := s.repo.SKUExists(ctx, owner, sku)
		if err != nil {
			// Treat lookup failure as a collision so generation walks
			// forward instead of handing out a possibly-taken SKU.
			return true
		}
		return taken
	}, nil
}
