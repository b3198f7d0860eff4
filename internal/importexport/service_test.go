package importexport

import (
	"context"
	"strings"
	"testing"

	"github.com/TinoSanchez/app-achatrevente/internal/records"
	pkgerrors "github.com/TinoSanchez/app-achatrevente/pkg/errors"
	"github.com/TinoSanchez/app-achatrevente/pkg/localstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const owner = "local"

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newStore(t *testing.T) records.Store {
	t.Helper()
	slots, err := localstore.New(t.TempDir())
	require.NoError(t, err)
	store, err := records.NewLocalStore(slots)
	require.NoError(t, err)
	return store
}

func newService(t *testing.T) (*Service, records.Store) {
	t.Helper()
	store := newStore(t)
	svc, err := NewService(store)
	require.NoError(t, err)
	return svc, store
}

func seedRecord(t *testing.T, store records.Store) *records.RecordDTO {
	t.Helper()
	created, err := store.Create(context.Background(), owner, records.RecordInput{
		Nom:       `Miroir "soleil" vintage`,
		SKU:       "P-0001",
		Categorie: "Décoration",
		Quantite:  2,
		PrixAchat: dec("10"),
		PrixVente: dec("25"),
		Frais:     dec("1.5"),
		Tags:      "vintage,laiton",
		Notes:     "éclat au dos",
	})
	require.NoError(t, err)
	return created
}

func TestExportCSVQuotesEveryValue(t *testing.T) {
	svc, store := newService(t)
	created := seedRecord(t, store)

	data, err := svc.ExportCSV(context.Background(), owner)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\r\n"), "\r\n")
	require.Len(t, lines, 2)
	require.Equal(t, `"id","nom","sku","categorie","quantite","prixAchat","prixVente","frais","beneficeUnitaire","beneficeTotal","fournisseur","emplacement","tags","notes"`, lines[0])

	require.Contains(t, lines[1], `"`+created.ID+`"`)
	// Embedded quotes double; the value stays wrapped.
	require.Contains(t, lines[1], `"Miroir ""soleil"" vintage"`)
	require.Contains(t, lines[1], `"13.5"`)
	require.Contains(t, lines[1], `"27"`)
}

func TestCSVRoundTrip(t *testing.T) {
	svc, store := newService(t)
	seedRecord(t, store)

	data, err := svc.ExportCSV(context.Background(), owner)
	require.NoError(t, err)

	target, fresh := newService(t)
	count, err := target.ImportCSV(context.Background(), owner, strings.NewReader(string(data)))
	require.NoError(t, err)
	require.Equal(t, 1, count)

	recs, err := fresh.ListAll(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	got := recs[0]
	require.Equal(t, `Miroir "soleil" vintage`, got.Nom)
	require.Equal(t, "P-0001", got.SKU)
	require.Equal(t, 2, got.Quantite)
	require.True(t, got.PrixAchat.Equal(dec("10")))
	require.True(t, got.BeneficeTotal.Equal(dec("27")), "margins recomputed, got %s", got.BeneficeTotal)
}

func TestImportCSVLenientNumbers(t *testing.T) {
	svc, store := newService(t)

	csv := "nom,prixAchat,prixVente,quantite\n" +
		"Chaise,abc,25,\n"
	count, err := svc.ImportCSV(context.Background(), owner, strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 1, count)

	recs, err := store.ListAll(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.True(t, recs[0].PrixAchat.IsZero(), "non-numeric coerces to zero")
	require.Equal(t, 1, recs[0].Quantite, "missing quantity floors at 1")
	require.Equal(t, "En ligne", string(recs[0].Statut))
}

func TestImportCSVCaseInsensitiveHeaders(t *testing.T) {
	svc, store := newService(t)

	csv := "NOM,PrixAchat,PRIXVENTE\nLampe,5,12\n"
	count, err := svc.ImportCSV(context.Background(), owner, strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 1, count)

	recs, err := store.ListAll(context.Background(), owner)
	require.NoError(t, err)
	require.True(t, recs[0].PrixVente.Equal(dec("12")))
}

func TestImportCSVMalformedAborts(t *testing.T) {
	svc, store := newService(t)

	// Unterminated quote: nothing may land.
	csv := "nom,prixAchat\n\"Chaise,10\n"
	_, err := svc.ImportCSV(context.Background(), owner, strings.NewReader(csv))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeImport), "got %v", err)

	recs, err := store.ListAll(context.Background(), owner)
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestImportCSVRequiresNomColumn(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.ImportCSV(context.Background(), owner, strings.NewReader("sku,prixAchat\nP-0001,10\n"))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeImport), "got %v", err)
}

func TestJSONRoundTrip(t *testing.T) {
	svc, store := newService(t)
	created := seedRecord(t, store)

	data, err := svc.ExportJSON(context.Background(), owner)
	require.NoError(t, err)

	target, fresh := newService(t)
	count, err := target.ImportJSON(context.Background(), owner, strings.NewReader(string(data)))
	require.NoError(t, err)
	require.Equal(t, 1, count)

	recs, err := fresh.ListAll(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	got := recs[0]
	require.NotEqual(t, created.ID, got.ID, "imports get fresh ids")
	require.Equal(t, created.Nom, got.Nom)
	require.Equal(t, created.Tags, got.Tags)
	require.True(t, created.PrixVente.Equal(got.PrixVente))
	require.True(t, created.BeneficeUnitaire.Equal(got.BeneficeUnitaire))
}

func TestImportJSONMalformedAborts(t *testing.T) {
	svc, store := newService(t)

	_, err := svc.ImportJSON(context.Background(), owner, strings.NewReader(`[{"nom": "Chaise",`))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeImport), "got %v", err)

	recs, err := store.ListAll(context.Background(), owner)
	require.NoError(t, err)
	require.Empty(t, recs)
}
