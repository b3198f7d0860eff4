package importexport

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/TinoSanchez/app-achatrevente/internal/records"
	pkgerrors "github.com/TinoSanchez/app-achatrevente/pkg/errors"
	"github.com/TinoSanchez/app-achatrevente/pkg/enums"
	"github.com/TinoSanchez/app-achatrevente/pkg/money"
)

// csvColumns is the historical export column order. Imports accept any
// column order; exports always emit this one.
var csvColumns = []string{
	"id",
	"nom",
	"sku",
	"categorie",
	"quantite",
	"prixAchat",
	"prixVente",
	"frais",
	"beneficeUnitaire",
	"beneficeTotal",
	"fournisseur",
	"emplacement",
	"tags",
	"notes",
}

// writeCSV renders the records with every value double-quoted, matching
// the files the original app produced. encoding/csv only quotes when it
// must, so the writer is explicit here.
func writeCSV(w io.Writer, recs []records.RecordDTO) error {
	if err := writeCSVRow(w, csvColumns); err != nil {
		return err
	}
	for _, record := range recs {
		row := []string{
			record.ID,
			record.Nom,
			record.SKU,
			record.Categorie,
			strconv.Itoa(record.Quantite),
			record.PrixAchat.String(),
			record.PrixVente.String(),
			record.Frais.String(),
			record.BeneficeUnitaire.String(),
			record.BeneficeTotal.String(),
			record.Fournisseur,
			record.Emplacement,
			record.Tags,
			record.Notes,
		}
		if err := writeCSVRow(w, row); err != nil {
			return err
		}
	}
	return nil
}

func writeCSVRow(w io.Writer, values []string) error {
	var b strings.Builder
	for i, value := range values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(value, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteString("\r\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// parseCSV reads an exported file back into create inputs. Headers
// match case-insensitively; unknown columns are ignored and missing
// numeric values coerce to zero. Any structural error aborts the whole
// parse.
func parseCSV(r io.Reader) ([]records.RecordInput, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeImport, err, "malformed CSV")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeImport, "empty CSV file")
	}

	header := rows[0]
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := index["nom"]; !ok {
		return nil, pkgerrors.New(pkgerrors.CodeImport, "missing required column: nom")
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	inputs := make([]records.RecordInput, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		quantite, _ := strconv.Atoi(field(row, "quantite"))
		input := records.RecordInput{
			Nom:                  field(row, "nom"),
			SKU:                  field(row, "sku"),
			Categorie:            field(row, "categorie"),
			Description:          field(row, "description"),
			Fournisseur:          field(row, "fournisseur"),
			Etat:                 field(row, "etat"),
			Emplacement:          field(row, "emplacement"),
			Tags:                 field(row, "tags"),
			Notes:                field(row, "notes"),
			Quantite:             quantite,
			PrixAchat:            money.Parse(field(row, "prixachat")),
			PrixVente:            money.Parse(field(row, "prixvente")),
			Frais:                money.Parse(field(row, "frais")),
			FraisPort:            money.Parse(field(row, "fraisport")),
			CommissionPlateforme: money.Parse(field(row, "commissionplateforme")),
			FraisEmballage:       money.Parse(field(row, "fraisemballage")),
			FraisAnnexes:         money.Parse(field(row, "fraisannexes")),
			Statut:               enums.RecordStatus(field(row, "statut")),
			DateAchat:            field(row, "dateachat"),
			DateVente:            field(row, "datevente"),
		}
		inputs = append(inputs, input)
	}
	return inputs, nil
}
