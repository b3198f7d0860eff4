package importexport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/TinoSanchez/app-achatrevente/internal/records"
	pkgerrors "github.com/TinoSanchez/app-achatrevente/pkg/errors"
	"github.com/TinoSanchez/app-achatrevente/pkg/money"
	"go.uber.org/multierr"
)

// Service moves whole record sets in and out of the store as CSV or
// JSON files.
type Service struct {
	store records.Store
}

// NewService builds the import/export flows over the record store.
func NewService(store records.Store) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("record store required")
	}
	return &Service{store: store}, nil
}

// ExportCSV renders every record of the owner in the historical
// all-quoted CSV format.
func (s *Service) ExportCSV(ctx context.Context, ownerID string) ([]byte, error) {
	recs, err := s.store.ListAll(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := writeCSV(&buf, recs); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render CSV")
	}
	return buf.Bytes(), nil
}

// ExportJSON renders every record as a JSON array. Server-assigned
// fields travel along so the file doubles as a backup.
func (s *Service) ExportJSON(ctx context.Context, ownerID string) ([]byte, error) {
	recs, err := s.store.ListAll(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render JSON")
	}
	return data, nil
}

// ImportCSV parses the file and creates every row. A parse error
// aborts before anything is written; create failures aggregate while
// successful rows stand.
func (s *Service) ImportCSV(ctx context.Context, ownerID string, r io.Reader) (int, error) {
	inputs, err := parseCSV(r)
	if err != nil {
		return 0, err
	}
	return s.createAll(ctx, ownerID, inputs)
}

// ImportJSON parses an exported JSON array and creates every record,
// with the same abort-then-aggregate contract as ImportCSV.
func (s *Service) ImportJSON(ctx context.Context, ownerID string, r io.Reader) (int, error) {
	inputs, err := parseJSON(r)
	if err != nil {
		return 0, err
	}
	return s.createAll(ctx, ownerID, inputs)
}

func (s *Service) createAll(ctx context.Context, ownerID string, inputs []records.RecordInput) (int, error) {
	created := 0
	var errs error
	for i, input := range inputs {
		if _, err := s.store.Create(ctx, ownerID, input); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("row %d: %w", i+1, err))
			continue
		}
		created++
	}
	if errs != nil {
		return created, pkgerrors.Wrap(pkgerrors.CodeImport, errs, "import incomplete").
			WithDetails(map[string]int{"created": created, "failed": len(inputs) - created})
	}
	return created, nil
}

// parseJSON reads an exported record array back into create inputs.
// Ids are dropped: the store assigns fresh ones.
func parseJSON(r io.Reader) ([]records.RecordInput, error) {
	var recs []records.RecordDTO
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&recs); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeImport, err, "malformed JSON")
	}

	inputs := make([]records.RecordInput, 0, len(recs))
	for _, record := range recs {
		inputs = append(inputs, records.RecordInput{
			Nom:                  record.Nom,
			SKU:                  record.SKU,
			Categorie:            record.Categorie,
			Description:          record.Description,
			Fournisseur:          record.Fournisseur,
			Etat:                 record.Etat,
			Emplacement:          record.Emplacement,
			Tags:                 record.Tags,
			Notes:                record.Notes,
			Quantite:             record.Quantite,
			PrixAchat:            money.NonNegative(record.PrixAchat),
			PrixVente:            money.NonNegative(record.PrixVente),
			Frais:                money.NonNegative(record.Frais),
			FraisPort:            money.NonNegative(record.FraisPort),
			CommissionPlateforme: money.NonNegative(record.CommissionPlateforme),
			FraisEmballage:       money.NonNegative(record.FraisEmballage),
			FraisAnnexes:         money.NonNegative(record.FraisAnnexes),
			Statut:               record.Statut,
			DateAchat:            record.DateAchat,
			DateVente:            record.DateVente,
			ImageURL:             record.ImageURL,
		})
	}
	return inputs, nil
}
